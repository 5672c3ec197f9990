package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is the prefix shared by every environment variable the
// allocation engine reads.
const EnvPrefix = "BLANKWARS_"

// EnvOption adjusts how ParseEnv reads variables.
type EnvOption func(*env.Options)

// WithEnvironment reads from vars instead of the process environment.
func WithEnvironment(vars map[string]string) EnvOption {
	return func(o *env.Options) {
		o.Environment = vars
	}
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any, opts ...EnvOption) error {
	var options env.Options
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if err := env.ParseWithOptions(target, options); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
