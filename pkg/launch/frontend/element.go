// SPDX-License-Identifier: MPL-2.0

package frontend

// Element is one decoded node of a launch file: an action or one of its nested
// sub-elements such as a node parameter.
type Element struct {
	Tag      string
	Attrs    map[string]string
	Children []*Element
}

// NewElement returns an element without attributes or children.
func NewElement(tag string) *Element {
	return &Element{Tag: tag, Attrs: map[string]string{}}
}

// Attr returns the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// Named returns the children with the given tag, in document order.
func (e *Element) Named(tag string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}
