// SPDX-License-Identifier: MPL-2.0

package dump

import (
	"errors"
	"fmt"
	"strings"

	"github.com/launchdump/launchdump/pkg/launch"
)

// ErrResolution is the sentinel wrapped by ResolutionError.
var ErrResolution = errors.New("token resolution failed")

// ResolutionError is returned when one part of a command token cannot be resolved.
type ResolutionError struct {
	// Token is the unresolved textual form of the whole token.
	Token string
	Err   error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve '%s': %v", e.Token, e.Err)
}

// Unwrap returns ErrResolution and the cause.
func (e *ResolutionError) Unwrap() []error {
	return []error{ErrResolution, e.Err}
}

// Resolve concatenates the resolution of every part of token against lc. It reads
// bindings only and never binds a launch configuration.
func Resolve(token launch.Substitutions, lc *launch.Context) (string, error) {
	var sb strings.Builder
	for _, part := range token {
		if part == nil {
			continue
		}
		v, err := part.Perform(lc)
		if err != nil {
			return "", &ResolutionError{Token: token.String(), Err: err}
		}
		sb.WriteString(v)
	}
	return sb.String(), nil
}

// ResolveOrRaw resolves token, falling back to its unresolved textual form.
func ResolveOrRaw(token launch.Substitutions, lc *launch.Context) (string, error) {
	v, err := Resolve(token, lc)
	if err != nil {
		return token.String(), err
	}
	return v, nil
}
