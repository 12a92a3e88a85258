// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Enforce UTC timezone to prevent drift bugs.
//  2. Load a .env file via godotenv (non-fatal if absent).
//  3. Use envconfig to process struct tags and populate the Config struct.
//  4. Validate the struct using go-playground/validator.
//
// Any failure is a caller bug, not a payload-shape issue: it aborts startup
// rather than surfacing per-event.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigErrorStage identifies which loading step failed.
type ConfigErrorStage string

const (
	StageParsing    ConfigErrorStage = "parsing"
	StageValidation ConfigErrorStage = "validation"
)

// ConfigError is a diagnostic error type returned by Load to aid debugging.
type ConfigError struct {
	Stage   ConfigErrorStage
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Stage, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Load loads and validates the service configuration from the environment.
func Load() (*Config, error) {
	// Enforce UTC to keep log timestamps and header parsing consistent.
	time.Local = time.UTC

	// Load .env if present. godotenv does NOT override variables that are
	// already set, so real environment always wins.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Stage:   StageParsing,
			Message: "processing environment variables",
			Err:     err,
		}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the populated Config struct against its validate tags.
// Exposed separately so tests can validate hand-built configs.
func Validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		return &ConfigError{
			Stage:   StageValidation,
			Message: "invalid configuration",
			Err:     err,
		}
	}

	if cfg.Discord.MinWait > cfg.Discord.MaxWait {
		return &ConfigError{
			Stage:   StageValidation,
			Message: "DISCORD_RETRY_MIN_WAIT must not exceed DISCORD_RETRY_MAX_WAIT",
		}
	}

	return nil
}
