package ren

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is a package-level singleton; constructing a validator per call
// is expensive and the instance is safe for concurrent use.
var validate = validator.New()

// Config controls engine creation. These settings shape the runtime core
// and the glue around it, not language semantics.
type Config struct {
	// ArenaCapacity hints the initial slot count of the payload arena
	// backing indirect values.
	ArenaCapacity int `json:"arena_capacity" validate:"gte=0"`

	// DeviceBufferSize bounds single transfers through the standard I/O
	// device shim.
	DeviceBufferSize int `json:"device_buffer_size" validate:"gte=64"`

	// LogLevel is the engine logger verbosity.
	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		ArenaCapacity:    64,
		DeviceBufferSize: 16 * 1024,
		LogLevel:         "info",
	}
}

// ConfigError reports an engine configuration that failed validation.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("engine config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("engine config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// validateConfig runs the struct tags and maps the first violation to a
// ConfigError naming the offending field.
func validateConfig(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return &ConfigError{Err: err, Field: verrs[0].Field()}
	}
	return &ConfigError{Err: err}
}
