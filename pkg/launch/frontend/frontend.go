// SPDX-License-Identifier: MPL-2.0

package frontend

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// rootTag names the document root in every format.
const rootTag = "launch"

var (
	// ErrUnsupportedFormat is the sentinel wrapped by UnsupportedFormatError.
	ErrUnsupportedFormat = errors.New("unsupported launch file format")
	// ErrParse is the sentinel wrapped by ParseError.
	ErrParse = errors.New("invalid launch file")
)

type (
	// Frontend decodes one launch file format into an element tree rooted at <launch>.
	Frontend interface {
		Name() string
		Extensions() []string
		Decode(data []byte, filename string) (*Element, error)
	}

	// UnsupportedFormatError is returned for files no frontend handles.
	UnsupportedFormatError struct {
		Path      string
		Extension string
	}

	// ParseError reports an element that could not be mapped to a launch entity.
	ParseError struct {
		File string
		Tag  string
		Err  error
	}
)

// Error implements the error interface.
func (e *UnsupportedFormatError) Error() string {
	if e.Extension == ".py" {
		return fmt.Sprintf("'%s': Python launch files are not supported", e.Path)
	}
	return fmt.Sprintf("'%s': no launch frontend for extension '%s' (supported: %s)",
		e.Path, e.Extension, strings.Join(SupportedExtensions(), ", "))
}

// Unwrap returns ErrUnsupportedFormat.
func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupportedFormat }

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("%s: <%s>: %v", e.File, e.Tag, e.Err)
}

// Unwrap returns ErrParse and the cause.
func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// builtinFrontends lists the formats in lookup order.
func builtinFrontends(maxFileSize int64) []Frontend {
	return []Frontend{
		xmlFrontend{},
		yamlFrontend{},
		tomlFrontend{},
		cueFrontend{maxFileSize: maxFileSize},
	}
}

// SupportedExtensions returns the file extensions with a frontend.
func SupportedExtensions() []string {
	var out []string
	for _, f := range builtinFrontends(0) {
		out = append(out, f.Extensions()...)
	}
	return out
}

// ForPath returns the frontend for path, chosen by file extension.
func ForPath(path string) (Frontend, error) {
	return forPath(builtinFrontends(0), path)
}

func forPath(frontends []Frontend, path string) (Frontend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range frontends {
		if slices.Contains(f.Extensions(), ext) {
			return f, nil
		}
	}
	return nil, &UnsupportedFormatError{Path: path, Extension: ext}
}
