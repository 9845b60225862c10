// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
)

// WriteLaunchFile writes a launch file named name into dir and returns its absolute path.
// A leading newline in content is dropped so raw string literals can start on their own line.
func WriteLaunchFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	if len(content) > 0 && content[0] == '\n' {
		content = content[1:]
	}
	path, err := filepath.Abs(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("failed to resolve %s: %v", name, err)
	}
	MustWriteFile(t, path, content)
	return path
}
