package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/pyxlate/internal/codegen"
)

const recordColumns = `id, seq, target, source, source_hash, ok, ir_hash, code, output_hash,
	error_kind, error_code, error_message, error_line, error_col, warnings,
	translator_version, ir_version, created_at`

// Get returns the record with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM conversions WHERE id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get %s: %w", id, err)
	}
	return rec, nil
}

// List returns up to limit records, newest first. A limit of zero or less
// returns every record.
//
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM conversions ORDER BY seq DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversions: %w", err)
	}
	return records, nil
}

// Lookup returns the newest record converting exactly src to target with
// the given translator version. Records from other versions never match,
// so upgrading the translator invalidates earlier output.
func (s *Store) Lookup(ctx context.Context, sourceHash string, target codegen.Target, translatorVersion string) (Record, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+recordColumns+` FROM conversions
		WHERE source_hash = ? AND target = ? AND translator_version = ?
		ORDER BY seq DESC LIMIT 1`,
		sourceHash, string(target), translatorVersion)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("lookup: %w", err)
	}
	return rec, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversions").Scan(&n); err != nil {
		return 0, fmt.Errorf("count conversions: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec       Record
		target    string
		ok        int
		warnings  string
		createdAt string
	)
	err := row.Scan(
		&rec.ID, &rec.Seq, &target, &rec.Source, &rec.SourceHash, &ok,
		&rec.IRHash, &rec.Code, &rec.OutputHash,
		&rec.ErrorKind, &rec.ErrorCode, &rec.ErrorMsg, &rec.ErrorPos.Line, &rec.ErrorPos.Col,
		&warnings, &rec.TranslatorVersion, &rec.IRVersion, &createdAt,
	)
	if err != nil {
		return Record{}, err
	}
	rec.Target = codegen.Target(target)
	rec.OK = ok == 1
	if rec.Warnings, err = unmarshalWarnings(warnings); err != nil {
		return Record{}, fmt.Errorf("scan record %s: %w", rec.ID, err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Record{}, fmt.Errorf("scan record %s: parse created_at: %w", rec.ID, err)
	}
	return rec, nil
}
