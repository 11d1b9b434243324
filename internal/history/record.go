package history

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/pyxlate/internal/codegen"
	"github.com/roach88/pyxlate/internal/convert"
	"github.com/roach88/pyxlate/internal/ir"
	"github.com/roach88/pyxlate/internal/resolver"
	"github.com/roach88/pyxlate/internal/source"
)

// Record is one stored conversion.
type Record struct {
	ID         string             `json:"id"`
	Seq        int64              `json:"seq"`
	Target     codegen.Target     `json:"target"`
	Source     string             `json:"source"`
	SourceHash string             `json:"source_hash"`
	OK         bool               `json:"ok"`
	IRHash     string             `json:"ir_hash,omitempty"`
	Code       string             `json:"code,omitempty"`
	OutputHash string             `json:"output_hash,omitempty"`
	ErrorKind  string             `json:"error_kind,omitempty"`
	ErrorCode  string             `json:"error_code,omitempty"`
	ErrorMsg   string             `json:"error_message,omitempty"`
	ErrorPos   source.Pos         `json:"error_position"`
	Warnings   []resolver.Warning `json:"warnings"`

	TranslatorVersion string    `json:"translator_version"`
	IRVersion         string    `json:"ir_version"`
	CreatedAt         time.Time `json:"created_at"`
}

// FromResult builds the record of converting src into res. Seq is assigned
// when the record is written.
func FromResult(src string, res convert.Result, now time.Time) Record {
	rec := Record{
		ID:                res.ID,
		Target:            res.Target,
		Source:            src,
		SourceHash:        ir.SourceHash(src),
		OK:                res.OK,
		IRHash:            res.IRHash,
		Code:              res.Code,
		Warnings:          res.Warnings,
		TranslatorVersion: ir.TranslatorVersion,
		IRVersion:         ir.IRVersion,
		CreatedAt:         now.UTC(),
	}
	if res.OK {
		rec.OutputHash = ir.OutputHash(string(res.Target), res.Code)
	}
	if res.Error != nil {
		rec.ErrorKind = string(res.Error.Kind)
		rec.ErrorCode = res.Error.Code
		rec.ErrorMsg = res.Error.Message
		rec.ErrorPos = res.Error.Pos
	}
	if rec.Warnings == nil {
		rec.Warnings = []resolver.Warning{}
	}
	return rec
}

// Result rebuilds the conversion result a record was made from. The
// construct and symbol details of an error are not stored.
func (r Record) Result() convert.Result {
	res := convert.Result{
		ID:       r.ID,
		Target:   r.Target,
		OK:       r.OK,
		Code:     r.Code,
		IRHash:   r.IRHash,
		Warnings: r.Warnings,
	}
	if len(res.Warnings) == 0 {
		res.Warnings = nil
	}
	if !r.OK {
		res.Error = &convert.ConversionError{
			Kind:    convert.Kind(r.ErrorKind),
			Code:    r.ErrorCode,
			Message: r.ErrorMsg,
			Pos:     r.ErrorPos,
		}
	}
	return res
}

func marshalWarnings(ws []resolver.Warning) (string, error) {
	if ws == nil {
		ws = []resolver.Warning{}
	}
	b, err := json.Marshal(ws)
	if err != nil {
		return "", fmt.Errorf("marshal warnings: %w", err)
	}
	return string(b), nil
}

func unmarshalWarnings(s string) ([]resolver.Warning, error) {
	ws := []resolver.Warning{}
	if s == "" {
		return ws, nil
	}
	if err := json.Unmarshal([]byte(s), &ws); err != nil {
		return nil, fmt.Errorf("unmarshal warnings: %w", err)
	}
	return ws, nil
}
