// SPDX-License-Identifier: MPL-2.0

package frontend

import (
	_ "embed"

	"github.com/launchdump/launchdump/pkg/cueutil"
)

//go:embed launch_schema.cue
var launchSchema []byte

type (
	cueFrontend struct {
		maxFileSize int64
	}

	cueDocument struct {
		Launch []any `json:"launch"`
	}
)

func (cueFrontend) Name() string         { return "cue" }
func (cueFrontend) Extensions() []string { return []string{".cue"} }

// Decode validates the file against the #Launch schema before converting it.
func (f cueFrontend) Decode(data []byte, filename string) (*Element, error) {
	opts := []cueutil.Option{cueutil.WithFilename(filename)}
	if f.maxFileSize > 0 {
		opts = append(opts, cueutil.WithMaxFileSize(f.maxFileSize))
	}
	result, err := cueutil.ParseAndDecode[cueDocument](launchSchema, data, "#Launch", opts...)
	if err != nil {
		return nil, err
	}
	return dataDocument(map[string]any{rootTag: result.Value.Launch}, filename)
}
