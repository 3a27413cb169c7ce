// Package config loads strudf settings from a CUE file.
//
// The file is unified with an embedded schema that supplies defaults and
// constraints, so a file only needs the fields it changes:
//
//	max_random_bytes: 1024
//	functions: ["str_rot13", "str_xor"]
//	log: level: "debug"
//
// Unknown fields are rejected.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaSrc string

// Config holds every setting.
type Config struct {
	MaxRandomBytes int          `json:"max_random_bytes"`
	Functions      []string     `json:"functions"`
	Log            LogConfig    `json:"log"`
	SQLite         SQLiteConfig `json:"sqlite"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `json:"level"`
}

// SQLiteConfig configures the SQLite host.
type SQLiteConfig struct {
	DSN     string   `json:"dsn"`
	Pragmas []string `json:"pragmas"`
}

// LoadError reports a configuration file that cannot be used.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes.
const (
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeParseFailed = "E010" // CUE syntax error
	ErrCodeInvalid     = "E011" // Schema violation
	ErrCodeDecode      = "E012" // Value does not decode into Config
)

// Default returns the schema defaults.
func Default() Config {
	cfg, err := Parse("defaults.cue", nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema: %v", err))
	}
	return *cfg
}

// Load reads and validates the CUE file at path.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading config file: %v", err)}
	}
	return Parse(path, src)
}

// Parse validates src, named filename in errors, against the schema.
func Parse(filename string, src []byte) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	user := ctx.CompileBytes(src, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return nil, convertCUEError(ErrCodeParseFailed, err)
	}

	value := schema.LookupPath(cue.ParsePath("#Config")).Unify(user)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, convertCUEError(ErrCodeInvalid, err)
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return nil, convertCUEError(ErrCodeDecode, err)
	}
	return &cfg, nil
}

// convertCUEError keeps the position of the first CUE error.
func convertCUEError(code string, err error) *LoadError {
	le := &LoadError{Code: code, Message: err.Error()}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		le.Message = errs[0].Error()
		if positions := cueerrors.Positions(errs[0]); len(positions) > 0 {
			le.Pos = positions[0]
		}
	}
	return le
}
