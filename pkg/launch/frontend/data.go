// SPDX-License-Identifier: MPL-2.0

package frontend

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// childrenKey holds the nested actions of a group in map based formats.
const childrenKey = "children"

// dataDocument converts a decoded map document into a launch element. The document holds
// a single "launch" list whose entries are one-key maps from action tag to attributes.
func dataDocument(doc map[string]any, filename string) (*Element, error) {
	root := NewElement(rootTag)
	raw, ok := doc[rootTag]
	if !ok {
		return nil, fmt.Errorf("%s: missing top-level '%s' list", filename, rootTag)
	}
	for key := range doc {
		if key != rootTag {
			return nil, fmt.Errorf("%s: unexpected top-level key '%s'", filename, key)
		}
	}
	if raw == nil {
		return root, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: '%s' must be a list of actions", filename, rootTag)
	}
	actions, err := dataActions(items)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	root.Children = actions
	return root, nil
}

func dataActions(items []any) ([]*Element, error) {
	out := make([]*Element, 0, len(items))
	for n, item := range items {
		m, ok := asMap(item)
		if !ok || len(m) != 1 {
			return nil, fmt.Errorf("action #%d must map exactly one action name to its attributes", n+1)
		}
		for tag, body := range m {
			el, err := dataElement(tag, body)
			if err != nil {
				return nil, err
			}
			out = append(out, el)
		}
	}
	return out, nil
}

// dataElement converts the attributes of one action. Scalars become attributes; maps and
// lists of maps become child elements named after their key.
func dataElement(tag string, body any) (*Element, error) {
	el := NewElement(tag)
	if body == nil {
		return el, nil
	}
	m, ok := asMap(body)
	if !ok {
		return nil, fmt.Errorf("'%s' must be a mapping of attributes", tag)
	}

	for _, key := range slices.Sorted(maps.Keys(m)) {
		switch v := m[key].(type) {
		case []any:
			if key == childrenKey {
				children, err := dataActions(v)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", tag, err)
				}
				el.Children = append(el.Children, children...)
				continue
			}
			if scalars, ok := scalarList(v); ok {
				el.Attrs[key] = strings.Join(scalars, " ")
				continue
			}
			for _, item := range v {
				child, err := dataElement(key, item)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", tag, err)
				}
				el.Children = append(el.Children, child)
			}
		default:
			if sub, ok := asMap(v); ok {
				child, err := dataElement(key, sub)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", tag, err)
				}
				el.Children = append(el.Children, child)
				continue
			}
			s, ok := scalar(v)
			if !ok {
				return nil, fmt.Errorf("%s: attribute '%s' has unsupported type %T", tag, key, v)
			}
			el.Attrs[key] = s
		}
	}
	return el, nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func scalarList(items []any) ([]string, bool) {
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := scalar(item)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func scalar(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case nil:
		return "", true
	default:
		return "", false
	}
}
