// SPDX-License-Identifier: MPL-2.0

// Package eventloop runs the background tasks scheduled while a launch description is
// evaluated, and stops them all on shutdown.
package eventloop

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/launchdump/launchdump/pkg/launch"
)

// ErrClosed is reported by tasks scheduled after Shutdown.
var ErrClosed = errors.New("event loop is shut down")

type (
	// Loop schedules named tasks on goroutines tied to a shared cancellation context.
	// It implements launch.AsyncDriver.
	Loop struct {
		ctx    context.Context
		cancel context.CancelFunc
		group  errgroup.Group
		logger *log.Logger

		mu     sync.Mutex
		tasks  []*Task
		closed bool

		shutdownOnce sync.Once
		shutdownErr  error
	}

	// Task is the handle of one scheduled function.
	Task struct {
		name   string
		cancel context.CancelFunc
		done   chan struct{}
		err    error
	}

	// TaskError records a task that returned a failure other than its own cancellation.
	TaskError struct {
		Name string
		Err  error
	}
)

var _ launch.AsyncDriver = (*Loop)(nil)

// New returns a running Loop whose tasks are cancelled with parent.
func New(parent context.Context, logger *log.Logger) *Loop {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Loop{ctx: ctx, cancel: cancel, logger: logger}
}

// Factory returns a launch.DriverFactory creating Loops bound to parent.
func Factory(parent context.Context, logger *log.Logger) launch.DriverFactory {
	return func() launch.AsyncDriver {
		return New(parent, logger)
	}
}

// Go starts fn on its own goroutine. The context passed to fn is cancelled by the
// returned handle, by Shutdown, or by the Loop's parent context.
func (l *Loop) Go(name string, fn func(ctx context.Context) error) launch.Handle {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		t := &Task{name: name, cancel: func() {}, done: make(chan struct{}), err: ErrClosed}
		close(t.done)
		return t
	}

	ctx, cancel := context.WithCancel(l.ctx)
	t := &Task{name: name, cancel: cancel, done: make(chan struct{})}
	l.tasks = append(l.tasks, t)
	l.debug("task started", "task", name)

	l.group.Go(func() error {
		defer close(t.done)
		defer cancel()
		err := fn(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			t.err = err
			return &TaskError{Name: name, Err: err}
		}
		return nil
	})
	return t
}

// Shutdown cancels every task and waits for them to return. Only the first call does
// any work; later calls return the same result.
func (l *Loop) Shutdown() error {
	l.shutdownOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		pending := len(l.tasks)
		l.mu.Unlock()

		l.cancel()
		l.shutdownErr = l.group.Wait()
		l.debug("event loop shut down", "tasks", pending)
	})
	return l.shutdownErr
}

// Tasks returns the number of tasks scheduled so far.
func (l *Loop) Tasks() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

func (l *Loop) debug(msg string, keyvals ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, keyvals...)
	}
}

// Name returns the name the task was scheduled with.
func (t *Task) Name() string { return t.name }

// Cancel requests the task to stop. It reports false when the task already returned.
func (t *Task) Cancel() bool {
	select {
	case <-t.done:
		return false
	default:
	}
	t.cancel()
	return true
}

// Done is closed once the task function has returned.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the task failure once Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	return fmt.Sprintf("task '%s': %v", e.Name, e.Err)
}

// Unwrap returns the task's own error.
func (e *TaskError) Unwrap() error { return e.Err }
