// SPDX-License-Identifier: MPL-2.0

// Package execpath locates executables on a search path taken from an explicit
// environment rather than the process environment.
package execpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// ErrNotFound is the sentinel wrapped by NotFoundError.
var ErrNotFound = errors.New("executable not found")

type (
	// Lookup searches PATH, with optional extra directories searched first.
	Lookup struct {
		// ExtraPaths are searched before the PATH of the environment.
		ExtraPaths []string
		// Dir is the directory relative PATH entries are resolved against.
		// Empty means the current working directory.
		Dir string
		// Logger receives debug traces. Nil disables them.
		Logger *log.Logger
	}

	// NotFoundError is returned when no search path entry holds the executable.
	NotFoundError struct {
		Name string
		Err  error
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("executable '%s' not found on the search path: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("executable '%s' not found on the search path", e.Name)
}

// Unwrap returns ErrNotFound and the underlying lookup error.
func (e *NotFoundError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNotFound}
	}
	return []error{ErrNotFound, e.Err}
}

// New returns a Lookup that searches extra before PATH.
func New(extra []string, logger *log.Logger) *Lookup {
	return &Lookup{ExtraPaths: slices.Clone(extra), Logger: logger}
}

// LookPath returns the absolute path of name using the PATH found in environ, which is
// a list of KEY=VALUE entries.
func (l *Lookup) LookPath(name string, environ []string) (string, error) {
	if name == "" {
		return "", &NotFoundError{Name: name}
	}
	dir := l.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", &NotFoundError{Name: name, Err: err}
		}
		dir = wd
	}

	env := expand.ListEnviron(l.environ(environ)...)
	path, err := interp.LookPathDir(dir, env, name)
	if err != nil {
		l.debug("lookup failed", "name", name, "err", err)
		return "", &NotFoundError{Name: name, Err: err}
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	l.debug("lookup resolved", "name", name, "path", path)
	return path, nil
}

// environ returns environ with ExtraPaths prepended to its PATH entry.
func (l *Lookup) environ(environ []string) []string {
	if len(l.ExtraPaths) == 0 {
		return environ
	}
	out := make([]string, 0, len(environ)+1)
	var path string
	for _, kv := range environ {
		if v, ok := strings.CutPrefix(kv, "PATH="); ok {
			path = v
			continue
		}
		out = append(out, kv)
	}
	dirs := slices.Clone(l.ExtraPaths)
	if path != "" {
		dirs = append(dirs, path)
	}
	return append(out, "PATH="+strings.Join(dirs, string(os.PathListSeparator)))
}

func (l *Lookup) debug(msg string, keyvals ...any) {
	if l.Logger != nil {
		l.Logger.Debug(msg, keyvals...)
	}
}
