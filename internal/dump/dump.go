// SPDX-License-Identifier: MPL-2.0

package dump

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/launchdump/launchdump/pkg/launch"
)

type (
	// Summary counts what one Run did.
	Summary struct {
		Visited   int
		Failed    int
		Emitted   int
		Cancelled int
	}

	// Dumper drives a walk, prints the command lines and cleans up afterwards.
	Dumper struct {
		Interceptor *Interceptor
		// Stdout is the process-wide stream suppressed during the walk, usually &os.Stdout.
		// Command lines go to the stream it held before suppression. When nil, nothing is
		// suppressed and command lines go to Out.
		Stdout **os.File
		Out    io.Writer
		// Diagnostics receives visit warnings and the fatal walk message.
		Diagnostics io.Writer
		Logger      *log.Logger
	}
)

// Run walks root against lc. Output written by entities while they are visited is
// discarded. Async handles exposed by visited entities are cancelled right after their
// visit, and the context's async driver is shut down once the walk ends, whichever way
// it ends.
//
// A failure that aborts the walk is reported on Diagnostics and returned as a
// *FatalWalkError; per-entity failures only show up in the Summary.
func (d *Dumper) Run(ctx context.Context, root launch.Entity, lc *launch.Context) (summary Summary, err error) {
	out := d.Out
	if d.Stdout != nil {
		sup, serr := Suppress(d.Stdout)
		if serr != nil {
			return summary, fmt.Errorf("suppressing standard output: %w", serr)
		}
		defer func() {
			if rerr := sup.Restore(); rerr != nil {
				d.debug("restoring standard output", "err", rerr)
			}
		}()
		out = sup.Real()
	}
	if out == nil {
		out = io.Discard
	}

	ambient := lc.Output()
	lc.SetOutput(io.Discard)
	defer lc.SetOutput(ambient)

	defer func() {
		if serr := lc.ShutdownDriver(); serr != nil {
			d.debug("async driver shutdown", "err", serr)
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			fatal := &FatalWalkError{Panic: r}
			d.reportFatal(fatal)
			err = fatal
		}
	}()

	walker := &Walker{
		Logger: d.Logger,
		OnVisitError: func(ve *VisitError) {
			summary.Failed++
			d.reportVisit(ve)
		},
	}

	interceptor := d.Interceptor
	if interceptor == nil {
		interceptor = &Interceptor{}
	}

	for entity, werr := range walker.Walk(ctx, root, lc) {
		if werr != nil {
			var fatal *FatalWalkError
			if !errors.As(werr, &fatal) {
				fatal = &FatalWalkError{Err: werr}
			}
			d.reportFatal(fatal)
			return summary, fatal
		}
		summary.Visited++

		if line, ok := interceptor.MaybeEmit(entity, lc); ok {
			fmt.Fprintln(out, line)
			summary.Emitted++
		}
		if cancelAsync(entity) {
			summary.Cancelled++
			d.debug("cancelled async handle", "entity", entity.TypeName())
		}
	}
	return summary, nil
}

// cancelAsync cancels the live handle of an entity that exposes one. Failures are
// ignored.
func cancelAsync(entity launch.Entity) (cancelled bool) {
	owner, ok := entity.(launch.AsyncHandleOwner)
	if !ok {
		return false
	}
	defer func() {
		if recover() != nil {
			cancelled = false
		}
	}()
	h := owner.AsyncHandle()
	if h == nil {
		return false
	}
	return h.Cancel()
}

func (d *Dumper) reportVisit(ve *VisitError) {
	if d.Diagnostics != nil {
		fmt.Fprintf(d.Diagnostics, "Warning: Error visiting entity %s: %v\n", ve.Kind(), ve.Err)
	}
}

func (d *Dumper) reportFatal(fe *FatalWalkError) {
	if d.Diagnostics != nil {
		fmt.Fprintf(d.Diagnostics, "Error processing launch file: %v\n", fe)
	}
}

func (d *Dumper) debug(msg string, keyvals ...any) {
	if d.Logger != nil {
		d.Logger.Debug(msg, keyvals...)
	}
}
