// Package convert runs the translation pipeline: parse, build the IR,
// resolve types and generate target code. Every failure comes back as a
// structured Result; nothing panics across this boundary.
package convert

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"goa.design/clue/log"

	"github.com/roach88/pyxlate/internal/codegen"
	"github.com/roach88/pyxlate/internal/compiler"
	"github.com/roach88/pyxlate/internal/ir"
	"github.com/roach88/pyxlate/internal/resolver"
	"github.com/roach88/pyxlate/internal/syntax"
)

// TracerName is the instrumentation scope of the pipeline spans.
const TracerName = "pyxlate/convert"

// Result is the outcome of one conversion. Exactly one of Code and Error
// is set.
type Result struct {
	ID       string             `json:"id,omitempty"`
	Target   codegen.Target     `json:"target"`
	OK       bool               `json:"ok"`
	Code     string             `json:"code,omitempty"`
	Error    *ConversionError   `json:"error,omitempty"`
	Warnings []resolver.Warning `json:"warnings,omitempty"`

	// IRHash identifies the typed program independent of the target.
	IRHash string `json:"ir_hash,omitempty"`
}

// Err returns the conversion error as an error, or nil on success.
func (r Result) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

// Pipeline converts programs. It holds no per-conversion state and is safe
// for concurrent use.
type Pipeline struct {
	tracer trace.Tracer
	ids    IDGenerator

	generate func(codegen.Target, *resolver.Program) (string, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTracer sets the tracer used for conversion spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// WithIDGenerator sets the source of conversion ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(p *Pipeline) { p.ids = g }
}

// NewPipeline returns a pipeline using the global tracer provider and
// UUIDv7 ids.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		tracer:   otel.Tracer(TracerName),
		ids:      UUIDv7Generator{},
		generate: codegen.Generate,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Convert translates source into target with a default pipeline.
func Convert(source string, target codegen.Target) Result {
	return NewPipeline().Convert(context.Background(), source, target)
}

// Convert translates source into target. The first failing stage ends the
// conversion.
func (p *Pipeline) Convert(ctx context.Context, source string, target codegen.Target) (res Result) {
	res = Result{ID: p.ids.Generate(), Target: target}
	ctx = log.With(ctx, log.KV{K: "conversion", V: res.ID}, log.KV{K: "target", V: string(target)})
	ctx, span := p.tracer.Start(ctx, "convert", trace.WithAttributes(
		attribute.String("pyxlate.conversion", res.ID),
		attribute.String("pyxlate.target", string(target)),
	))
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res.OK, res.Code, res.Warnings, res.IRHash = false, "", nil, ""
			res.Error = &ConversionError{
				Kind:    KindCodeGen,
				Code:    codegen.ErrInternal,
				Message: fmt.Sprintf("internal error: %v", r),
			}
		}
		p.finish(ctx, span, res, time.Since(started))
	}()

	t, err := codegen.ParseTarget(string(target))
	if err != nil {
		res.Error = classify(err)
		return res
	}
	res.Target = t

	rp, err := p.analyze(ctx, source)
	if err != nil {
		res.Error = classify(err)
		return res
	}
	res.Warnings = rp.Warnings

	var code string
	err = p.stage(ctx, "generate", func() (err error) {
		code, err = p.generate(t, rp)
		return err
	})
	if err != nil {
		res.Error = classify(err)
		return res
	}
	hash, err := ir.ProgramHash(rp.IR)
	if err != nil {
		res.Error = classify(err)
		return res
	}

	res.OK, res.Code, res.IRHash = true, code, hash
	return res
}

// Analyze parses, builds and resolves source without generating code.
// The error, when set, is a *ConversionError.
func (p *Pipeline) Analyze(ctx context.Context, source string) (*resolver.Program, error) {
	ctx, span := p.tracer.Start(ctx, "analyze")
	defer span.End()
	rp, err := p.analyze(ctx, source)
	if err != nil {
		cerr := classify(err)
		span.SetStatus(codes.Error, cerr.Message)
		return nil, cerr
	}
	return rp, nil
}

// Lower parses and builds source into an IR program.
// The error, when set, is a *ConversionError.
func (p *Pipeline) Lower(ctx context.Context, source string) (*ir.Program, error) {
	prog, err := p.lower(ctx, source)
	if err != nil {
		return nil, classify(err)
	}
	return prog, nil
}

func (p *Pipeline) lower(ctx context.Context, source string) (*ir.Program, error) {
	var mod *syntax.Module
	err := p.stage(ctx, "parse", func() (err error) {
		mod, err = syntax.Parse(source)
		return err
	})
	if err != nil {
		return nil, err
	}

	var prog *ir.Program
	err = p.stage(ctx, "build", func() (err error) {
		prog, err = compiler.Build(mod)
		return err
	})
	return prog, err
}

func (p *Pipeline) analyze(ctx context.Context, source string) (*resolver.Program, error) {
	prog, err := p.lower(ctx, source)
	if err != nil {
		return nil, err
	}
	var rp *resolver.Program
	err = p.stage(ctx, "resolve", func() (err error) {
		rp, err = resolver.Resolve(prog)
		return err
	})
	return rp, err
}

// stage runs one pipeline step in its own span.
func (p *Pipeline) stage(ctx context.Context, name string, fn func() error) error {
	ctx, span := p.tracer.Start(ctx, "convert."+name)
	defer span.End()

	if err := fn(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debug(ctx, log.KV{K: "msg", V: "stage failed"}, log.KV{K: "stage", V: name}, log.KV{K: "err", V: err.Error()})
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Debug(ctx, log.KV{K: "msg", V: "stage done"}, log.KV{K: "stage", V: name})
	return nil
}

func (p *Pipeline) finish(ctx context.Context, span trace.Span, res Result, elapsed time.Duration) {
	defer span.End()

	fields := []log.Fielder{
		log.KV{K: "msg", V: "conversion finished"},
		log.KV{K: "ok", V: res.OK},
		log.KV{K: "warnings", V: len(res.Warnings)},
		log.KV{K: "duration_ms", V: elapsed.Milliseconds()},
	}
	if res.Error != nil {
		span.SetStatus(codes.Error, res.Error.Message)
		span.SetAttributes(
			attribute.String("pyxlate.error.kind", string(res.Error.Kind)),
			attribute.String("pyxlate.error.code", res.Error.Code),
		)
		fields = append(fields,
			log.KV{K: "kind", V: string(res.Error.Kind)},
			log.KV{K: "code", V: res.Error.Code},
		)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	log.Info(ctx, fields...)
}
