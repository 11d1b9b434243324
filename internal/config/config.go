// Package config loads the optional pyxlate.cue configuration file and
// validates it against an embedded CUE schema.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// DefaultFile is the file Load reads when no path is given.
const DefaultFile = "pyxlate.cue"

//go:embed schema.cue
var schemaSource string

// Config is the resolved configuration.
type Config struct {
	Target    string    `json:"target"`
	Format    string    `json:"format"`
	History   string    `json:"history"`
	Addr      string    `json:"addr"`
	Toolchain Toolchain `json:"toolchain"`
}

// Toolchain names the host commands that compile and run generated code.
type Toolchain struct {
	CC    string `json:"cc"`
	CXX   string `json:"cxx"`
	Javac string `json:"javac"`
	Java  string `json:"java"`
}

// Error reports an unreadable or invalid configuration file.
type Error struct {
	File    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg, err := Parse(nil, "defaults")
	if err != nil {
		// The embedded schema is known to produce a complete config.
		panic(fmt.Sprintf("config: invalid embedded schema: %v", err))
	}
	return cfg
}

// Load reads the configuration at path. An empty path means DefaultFile,
// which may be absent; an explicitly named file must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return Config{}, &Error{File: path, Message: fmt.Sprintf("reading config: %v", err)}
	}
	return Parse(data, path)
}

// Parse validates CUE source against the schema and returns the config
// with defaults applied. Unknown fields are errors.
func Parse(data []byte, filename string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, formatCUEError(err, "schema.cue")
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Config{}, formatCUEError(err, filename)
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(err, filename)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return Config{}, formatCUEError(err, filename)
	}
	return cfg, nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error, file string) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &Error{File: file, Message: err.Error()}
	}
	first := errs[0]
	out := &Error{File: file, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		out.Pos = positions[0]
	}
	return out
}
