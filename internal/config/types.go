// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/launchdump/launchdump/pkg/cueutil"
)

const (
	// LogLevelDebug traces every visit, lookup and cancellation.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo reports run summaries.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn reports recoverable problems only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError reports failures only.
	LogLevelError LogLevel = "error"

	// DefaultMaxFileSize is the default cap on launch file size.
	DefaultMaxFileSize = cueutil.DefaultMaxFileSize
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidExtraPath is returned when a lookup search path is blank.
	ErrInvalidExtraPath = errors.New("invalid extra path")
	// ErrInvalidMaxFileSize is returned when the frontend size cap is not positive.
	ErrInvalidMaxFileSize = errors.New("invalid max file size")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level of diagnostic log records.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidExtraPathError reports a blank entry in lookup.extra_paths.
	InvalidExtraPathError struct {
		Index int
	}

	// InvalidMaxFileSizeError reports a non-positive frontend.max_file_size.
	InvalidMaxFileSizeError struct {
		Value int64
	}

	// InvalidConfigError collects every field error of a Config.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Lookup configures how executables are resolved on PATH.
		Lookup LookupConfig `json:"lookup" mapstructure:"lookup"`
		// UI configures diagnostics.
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Frontend configures launch file parsing.
		Frontend FrontendConfig `json:"frontend" mapstructure:"frontend"`
	}

	// LookupConfig controls executable resolution of the first command token.
	LookupConfig struct {
		// Enabled turns PATH resolution on; when off the token is printed as resolved.
		Enabled bool `json:"enabled" mapstructure:"enabled"`
		// ExtraPaths are searched before PATH.
		ExtraPaths []string `json:"extra_paths" mapstructure:"extra_paths"`
	}

	// UIConfig configures diagnostics.
	UIConfig struct {
		// Verbose enables verbose error output.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// LogLevel is the minimum level of the stderr logger.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
	}

	// FrontendConfig configures launch file parsing.
	FrontendConfig struct {
		// MaxFileSize caps the size of a launch file in bytes.
		MaxFileSize int64 `json:"max_file_size" mapstructure:"max_file_size"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Lookup: LookupConfig{
			Enabled: true,
		},
		UI: UIConfig{
			LogLevel: LogLevelWarn,
		},
		Frontend: FrontendConfig{
			MaxFileSize: DefaultMaxFileSize,
		},
	}
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels,
// and a list of validation errors if it is not.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

func (e *InvalidExtraPathError) Error() string {
	return fmt.Sprintf("lookup.extra_paths[%d]: must not be blank", e.Index)
}

// Unwrap returns ErrInvalidExtraPath for errors.Is() compatibility.
func (e *InvalidExtraPathError) Unwrap() error { return ErrInvalidExtraPath }

func (e *InvalidMaxFileSizeError) Error() string {
	return fmt.Sprintf("frontend.max_file_size %d: must be positive", e.Value)
}

// Unwrap returns ErrInvalidMaxFileSize for errors.Is() compatibility.
func (e *InvalidMaxFileSizeError) Unwrap() error { return ErrInvalidMaxFileSize }

// IsValid returns whether every lookup search path is non-blank.
func (c LookupConfig) IsValid() (bool, []error) {
	var errs []error
	for i, p := range c.ExtraPaths {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, &InvalidExtraPathError{Index: i})
		}
	}
	return len(errs) == 0, errs
}

// IsValid delegates to LogLevel.IsValid(); Verbose needs no validation.
func (c UIConfig) IsValid() (bool, []error) {
	return c.LogLevel.IsValid()
}

// IsValid returns whether MaxFileSize is positive.
func (c FrontendConfig) IsValid() (bool, []error) {
	if c.MaxFileSize <= 0 {
		return false, []error{&InvalidMaxFileSizeError{Value: c.MaxFileSize}}
	}
	return true, nil
}

// IsValid returns whether every section of the Config is valid.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	for _, check := range []func() (bool, []error){c.Lookup.IsValid, c.UI.IsValid, c.Frontend.IsValid} {
		if ok, fieldErrs := check(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	return len(errs) == 0, errs
}

// Validate returns an *InvalidConfigError when any field is invalid.
func (c *Config) Validate() error {
	if ok, errs := c.IsValid(); !ok {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
