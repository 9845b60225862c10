// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestLogLevel_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level LogLevel
		want  bool
	}{
		{LogLevelDebug, true},
		{LogLevelInfo, true},
		{LogLevelWarn, true},
		{LogLevelError, true},
		{"", false},
		{"WARN", false},
		{"trace", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			t.Parallel()
			ok, errs := tt.level.IsValid()
			if ok != tt.want {
				t.Fatalf("IsValid() = %v, want %v", ok, tt.want)
			}
			if !ok {
				if len(errs) != 1 || !errors.Is(errs[0], ErrInvalidLogLevel) {
					t.Errorf("IsValid() errors = %v, want one ErrInvalidLogLevel", errs)
				}
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Lookup.ExtraPaths = []string{"/ok", "  "}
	cfg.UI.LogLevel = "loud"
	cfg.Frontend.MaxFileSize = -1

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Validate() error = %v, want ErrInvalidConfig", err)
	}
	var invalid *InvalidConfigError
	if !errors.As(err, &invalid) {
		t.Fatalf("Validate() error = %T, want *InvalidConfigError", err)
	}
	if len(invalid.FieldErrors) != 3 {
		t.Fatalf("FieldErrors = %v, want 3 entries", invalid.FieldErrors)
	}

	for i, sentinel := range []error{ErrInvalidExtraPath, ErrInvalidLogLevel, ErrInvalidMaxFileSize} {
		if !errors.Is(invalid.FieldErrors[i], sentinel) {
			t.Errorf("FieldErrors[%d] = %v, want %v", i, invalid.FieldErrors[i], sentinel)
		}
	}

	var pathErr *InvalidExtraPathError
	if !errors.As(invalid.FieldErrors[0], &pathErr) || pathErr.Index != 1 {
		t.Errorf("FieldErrors[0] = %v, want index 1", invalid.FieldErrors[0])
	}
}
