// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Lookup: {
	enabled:      bool
	extra_paths?: [...string]
}

#Launch: {
	launch: [...{[string]: {...}}]
}

#UI: {
	verbose?:   bool
	log_level?: "debug" | "info" | "warn" | "error"
}
`

type testLookup struct {
	Enabled    bool     `json:"enabled"`
	ExtraPaths []string `json:"extra_paths,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()
		data := []byte(`
enabled: true
extra_paths: ["/opt/ros/bin"]
`)
		result, err := ParseAndDecode[testLookup]([]byte(testSchema), data, "#Lookup")
		if err != nil {
			t.Fatalf("ParseAndDecode() error = %v", err)
		}
		if !result.Value.Enabled || len(result.Value.ExtraPaths) != 1 {
			t.Errorf("Value = %+v", result.Value)
		}
		if !result.Unified.Exists() {
			t.Error("Unified value should exist")
		}
	})

	t.Run("optional field omitted", func(t *testing.T) {
		t.Parallel()
		result, err := ParseAndDecode[testLookup]([]byte(testSchema), []byte(`enabled: false`), "#Lookup")
		if err != nil {
			t.Fatalf("ParseAndDecode() error = %v", err)
		}
		if result.Value.ExtraPaths != nil {
			t.Errorf("ExtraPaths = %v, want nil", result.Value.ExtraPaths)
		}
	})

	t.Run("wrong type names the file", func(t *testing.T) {
		t.Parallel()
		_, err := ParseAndDecode[testLookup]([]byte(testSchema), []byte(`enabled: "yes"`), "#Lookup",
			WithFilename("config.cue"))
		if err == nil || !strings.Contains(err.Error(), "config.cue") {
			t.Errorf("ParseAndDecode() error = %v, want error naming config.cue", err)
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseAndDecode[testLookup]([]byte(testSchema), []byte(`extra_paths: []`), "#Lookup"); err == nil {
			t.Error("expected error for missing required field")
		}
	})

	t.Run("non-concrete accepted with WithConcrete(false)", func(t *testing.T) {
		t.Parallel()
		type ui struct {
			Verbose  bool   `json:"verbose"`
			LogLevel string `json:"log_level"`
		}
		result, err := ParseAndDecode[ui]([]byte(testSchema), []byte(`{}`), "#UI", WithConcrete(false))
		if err != nil {
			t.Fatalf("ParseAndDecode() error = %v", err)
		}
		if result.Value.LogLevel != "" {
			t.Errorf("LogLevel = %q, want empty", result.Value.LogLevel)
		}
	})

	t.Run("invalid enum value", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseAndDecode[map[string]any]([]byte(testSchema), []byte(`log_level: "loud"`), "#UI"); err == nil {
			t.Error("expected error for invalid enum value")
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseAndDecode[testLookup]([]byte(testSchema), []byte(`enabled: {`), "#Lookup"); err == nil {
			t.Error("expected syntax error")
		}
	})

	t.Run("unknown definition", func(t *testing.T) {
		t.Parallel()
		_, err := ParseAndDecode[testLookup]([]byte(testSchema), []byte(`enabled: true`), "#Missing")
		if err == nil || !strings.Contains(err.Error(), "#Missing") {
			t.Errorf("ParseAndDecode() error = %v, want error naming #Missing", err)
		}
	})
}

func TestParseAndDecode_LaunchList(t *testing.T) {
	t.Parallel()

	type doc struct {
		Launch []any `json:"launch"`
	}
	data := []byte(`launch: [{executable: {cmd: "echo"}}, {log: {message: "hi"}}]`)
	result, err := ParseAndDecode[doc]([]byte(testSchema), data, "#Launch")
	if err != nil {
		t.Fatalf("ParseAndDecode() error = %v", err)
	}
	if len(result.Value.Launch) != 2 {
		t.Fatalf("len(Launch) = %d, want 2", len(result.Value.Launch))
	}
	first, ok := result.Value.Launch[0].(map[string]any)
	if !ok || first["executable"] == nil {
		t.Errorf("Launch[0] = %#v", result.Value.Launch[0])
	}
}

func TestParseAndDecode_FileSizeLimit(t *testing.T) {
	t.Parallel()

	data := []byte(`enabled: true`)
	if _, err := ParseAndDecode[testLookup]([]byte(testSchema), data, "#Lookup", WithMaxFileSize(4)); err == nil ||
		!strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("ParseAndDecode() error = %v, want size limit error", err)
	}
	if _, err := ParseAndDecode[testLookup]([]byte(testSchema), data, "#Lookup", WithMaxFileSize(int64(len(data)))); err != nil {
		t.Errorf("ParseAndDecode() at the limit error = %v", err)
	}
}
