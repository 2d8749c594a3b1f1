// Package envpath resolves file locations relative to directories named by environment variables.
package envpath

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrMissingEnvironment is matched by every *MissingEnvironmentError.
var ErrMissingEnvironment = errors.New("missing environment variable")

// MissingEnvironmentError reports an unset variable with no fallback.
type MissingEnvironmentError struct {
	Var string
}

func (e *MissingEnvironmentError) Error() string {
	return ErrMissingEnvironment.Error() + " " + e.Var
}

func (e *MissingEnvironmentError) Is(target error) bool {
	return target == ErrMissingEnvironment
}

// LookupFunc reads an environment variable. It has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type config struct {
	lookup     LookupFunc
	fallback   string
	hasDefault bool
}

type Option func(c *config)

// WithDefault is used as the base directory when the variable is unset.
func WithDefault(dir string) Option {
	return func(c *config) {
		c.fallback = dir
		c.hasDefault = true
	}
}

// WithLookup replaces os.LookupEnv.
func WithLookup(lookup LookupFunc) Option {
	return func(c *config) {
		if lookup != nil {
			c.lookup = lookup
		}
	}
}

// Resolve joins the directory held by varName with fragment. A variable set to the empty string resolves to
// the bare fragment. Trailing separators on either side do not change the result.
func Resolve(varName, fragment string, opts ...Option) (string, error) {
	cfg := &config{lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(cfg)
	}

	base, ok := cfg.lookup(varName)
	if !ok {
		if !cfg.hasDefault {
			return "", &MissingEnvironmentError{Var: varName}
		}

		base = cfg.fallback
	}

	return filepath.Join(base, fragment), nil
}

// Map returns a LookupFunc backed by a map, for tests and for job files carrying their own environment.
func Map(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]

		return v, ok
	}
}
