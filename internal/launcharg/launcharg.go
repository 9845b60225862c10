// SPDX-License-Identifier: MPL-2.0

// Package launcharg parses the '<name>:=<value>' launch arguments given on the command line.
package launcharg

import (
	"errors"
	"fmt"
	"strings"
)

// Separator splits an argument name from its value.
const Separator = ":="

// ErrMalformedArgument is the sentinel wrapped by MalformedArgumentError.
var ErrMalformedArgument = errors.New("malformed launch argument")

type (
	// Pair is one launch argument binding.
	Pair struct {
		Name  string
		Value string
	}

	// MalformedArgumentError is returned for a token that is not a '<name>:=<value>' binding.
	MalformedArgumentError struct {
		Argument string
	}
)

// Error implements the error interface.
func (e *MalformedArgumentError) Error() string {
	return fmt.Sprintf("malformed launch argument '%s', expected format '<name>%s<value>'", e.Argument, Separator)
}

// Unwrap returns ErrMalformedArgument.
func (e *MalformedArgumentError) Unwrap() error {
	return ErrMalformedArgument
}

// Parse converts raw tokens into ordered bindings. Each token is split on its first
// separator only, so values may themselves contain ':='. A token is malformed when it has
// no separator, starts with one, or holds a single separator at its very end.
//
// When a name repeats, the last value wins and the binding keeps the position of the
// name's first occurrence.
func Parse(args []string) ([]Pair, error) {
	pairs := make([]Pair, 0, len(args))
	index := make(map[string]int, len(args))
	for _, arg := range args {
		count := strings.Count(arg, Separator)
		if count == 0 || strings.HasPrefix(arg, Separator) || (count == 1 && strings.HasSuffix(arg, Separator)) {
			return nil, &MalformedArgumentError{Argument: arg}
		}
		name, value, _ := strings.Cut(arg, Separator)
		if i, ok := index[name]; ok {
			pairs[i].Value = value
			continue
		}
		index[name] = len(pairs)
		pairs = append(pairs, Pair{Name: name, Value: value})
	}
	return pairs, nil
}

// Names returns the argument names in binding order.
func Names(pairs []Pair) []string {
	names := make([]string, len(pairs))
	for i, p := range pairs {
		names[i] = p.Name
	}
	return names
}
