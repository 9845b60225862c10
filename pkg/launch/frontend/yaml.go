// SPDX-License-Identifier: MPL-2.0

package frontend

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type yamlFrontend struct{}

func (yamlFrontend) Name() string         { return "yaml" }
func (yamlFrontend) Extensions() []string { return []string{".yaml", ".yml"} }

// Decode reads a document with a top-level 'launch' list.
func (yamlFrontend) Decode(data []byte, filename string) (*Element, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return dataDocument(doc, filename)
}
