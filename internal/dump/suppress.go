// SPDX-License-Identifier: MPL-2.0

package dump

import (
	"errors"
	"os"
	"sync"
)

// ErrNoTarget is returned by Suppress for a nil target or a target holding no file.
var ErrNoTarget = errors.New("no output stream to suppress")

// Suppression redirects a process-wide output stream to the null device while it is
// active. The original stream stays reachable through Real.
type Suppression struct {
	target **os.File
	real   *os.File
	null   *os.File

	once sync.Once
	err  error
}

// Suppress points *target at the null device until Restore is called. Callers pass
// &os.Stdout to silence incidental writes to standard output.
func Suppress(target **os.File) (*Suppression, error) {
	if target == nil || *target == nil {
		return nil, ErrNoTarget
	}
	null, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}
	s := &Suppression{target: target, real: *target, null: null}
	*target = null
	return s, nil
}

// Real returns the stream that was active before suppression.
func (s *Suppression) Real() *os.File { return s.real }

// Restore puts the original stream back. It is safe to call more than once.
func (s *Suppression) Restore() error {
	s.once.Do(func() {
		*s.target = s.real
		s.err = s.null.Close()
	})
	return s.err
}
