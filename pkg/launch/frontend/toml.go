// SPDX-License-Identifier: MPL-2.0

package frontend

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

type tomlFrontend struct{}

func (tomlFrontend) Name() string         { return "toml" }
func (tomlFrontend) Extensions() []string { return []string{".toml"} }

// Decode reads a document whose actions are a [[launch]] array of tables.
func (tomlFrontend) Decode(data []byte, filename string) (*Element, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return dataDocument(doc, filename)
}
