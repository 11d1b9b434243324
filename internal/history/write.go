package history

import (
	"context"
	"fmt"
	"time"
)

// Add writes rec and returns its sequence number. Adding a record whose ID
// is already stored is a no-op that returns the existing sequence number.
func (s *Store) Add(ctx context.Context, rec Record) (int64, error) {
	if rec.ID == "" {
		return 0, fmt.Errorf("add record: empty id")
	}
	warnings, err := marshalWarnings(rec.Warnings)
	if err != nil {
		return 0, fmt.Errorf("add record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversions
		(id, seq, target, source, source_hash, ok, ir_hash, code, output_hash,
		 error_kind, error_code, error_message, error_line, error_col, warnings,
		 translator_version, ir_version, created_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM conversions),
		        ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		string(rec.Target),
		rec.Source,
		rec.SourceHash,
		boolToInt(rec.OK),
		rec.IRHash,
		rec.Code,
		rec.OutputHash,
		rec.ErrorKind,
		rec.ErrorCode,
		rec.ErrorMsg,
		rec.ErrorPos.Line,
		rec.ErrorPos.Col,
		warnings,
		rec.TranslatorVersion,
		rec.IRVersion,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("add record: %w", err)
	}

	var seq int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT seq FROM conversions WHERE id = ?", rec.ID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("add record: read seq: %w", err)
	}
	return seq, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
