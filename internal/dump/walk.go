// SPDX-License-Identifier: MPL-2.0

package dump

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/launchdump/launchdump/pkg/launch"
)

var (
	// ErrVisit is the sentinel wrapped by VisitError.
	ErrVisit = errors.New("entity visit failed")
	// ErrFatalWalk is the sentinel wrapped by FatalWalkError.
	ErrFatalWalk = errors.New("launch file processing aborted")
)

type (
	// Step is the outcome of visiting one entity: either the children it produced or
	// the reason it failed.
	Step struct {
		Entity   launch.Entity
		Children []launch.Entity
		Err      *VisitError
	}

	// VisitError reports a single entity whose visit returned an error or panicked.
	VisitError struct {
		Entity launch.Entity
		Err    error
	}

	// FatalWalkError reports a failure that aborted the whole walk.
	FatalWalkError struct {
		Err   error
		Panic any
	}

	// Walker traverses an entity tree depth-first, visiting each entity exactly once.
	Walker struct {
		// OnVisitError is called for every entity that failed to visit.
		OnVisitError func(*VisitError)
		Logger       *log.Logger
	}
)

// Failed reports whether the visit failed.
func (s Step) Failed() bool { return s.Err != nil }

// Kind returns the type name of the failed entity.
func (e *VisitError) Kind() string {
	if e.Entity == nil {
		return "<nil>"
	}
	return e.Entity.TypeName()
}

// Error implements the error interface.
func (e *VisitError) Error() string {
	return fmt.Sprintf("error visiting entity %s: %v", e.Kind(), e.Err)
}

// Unwrap returns ErrVisit and the cause.
func (e *VisitError) Unwrap() []error {
	return []error{ErrVisit, e.Err}
}

// Error implements the error interface.
func (e *FatalWalkError) Error() string {
	if e.Panic != nil {
		return fmt.Sprint(e.Panic)
	}
	if e.Err == nil {
		return ErrFatalWalk.Error()
	}
	return e.Err.Error()
}

// Unwrap returns ErrFatalWalk and the cause.
func (e *FatalWalkError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFatalWalk}
	}
	return []error{ErrFatalWalk, e.Err}
}

// Walk returns the sequence of successfully visited entities in pre-order. The stack
// starts as [root]; children are pushed in reverse so the first child is visited next.
// A failed visit is passed to OnVisitError and the walk goes on with the remaining
// stack. Cancellation of ctx ends the sequence with a FatalWalkError.
//
// The sequence consumes its frontier and must be ranged over only once.
func (w *Walker) Walk(ctx context.Context, root launch.Entity, lc *launch.Context) iter.Seq2[launch.Entity, error] {
	return func(yield func(launch.Entity, error) bool) {
		stack := []launch.Entity{root}
		for len(stack) > 0 {
			if err := ctx.Err(); err != nil {
				yield(nil, &FatalWalkError{Err: err})
				return
			}

			entity := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if entity == nil {
				continue
			}

			step := w.visit(entity, lc)
			if step.Failed() {
				w.debug("visit failed", "entity", step.Err.Kind(), "err", step.Err.Err)
				if w.OnVisitError != nil {
					w.OnVisitError(step.Err)
				}
				continue
			}
			w.debug("visited", "entity", entity.TypeName(), "children", len(step.Children))

			children := slices.Clone(step.Children)
			slices.Reverse(children)
			stack = append(stack, children...)

			if !yield(entity, nil) {
				return
			}
		}
	}
}

// visit runs entity.Visit, converting a panic into a failed Step.
func (w *Walker) visit(entity launch.Entity, lc *launch.Context) (step Step) {
	step.Entity = entity
	defer func() {
		if r := recover(); r != nil {
			step.Children = nil
			step.Err = &VisitError{Entity: entity, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	children, err := entity.Visit(lc)
	if err != nil {
		step.Err = &VisitError{Entity: entity, Err: err}
		return step
	}
	step.Children = children
	return step
}

func (w *Walker) debug(msg string, keyvals ...any) {
	if w.Logger != nil {
		w.Logger.Debug(msg, keyvals...)
	}
}
