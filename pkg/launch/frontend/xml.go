// SPDX-License-Identifier: MPL-2.0

package frontend

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

type (
	xmlFrontend struct{}

	xmlNode struct {
		XMLName xml.Name
		Attrs   []xml.Attr `xml:",any,attr"`
		Nodes   []xmlNode  `xml:",any"`
	}
)

func (xmlFrontend) Name() string         { return "xml" }
func (xmlFrontend) Extensions() []string { return []string{".xml"} }

// Decode reads a <launch> document.
func (xmlFrontend) Decode(data []byte, filename string) (*Element, error) {
	var root xmlNode
	dec := xml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if root.XMLName.Local != rootTag {
		return nil, fmt.Errorf("%s: root element is <%s>, expected <%s>", filename, root.XMLName.Local, rootTag)
	}
	return root.element(), nil
}

func (n *xmlNode) element() *Element {
	el := NewElement(n.XMLName.Local)
	for _, a := range n.Attrs {
		el.Attrs[a.Name.Local] = a.Value
	}
	for i := range n.Nodes {
		el.Children = append(el.Children, n.Nodes[i].element())
	}
	return el
}
