// SPDX-License-Identifier: MPL-2.0

package eventloop

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func blockUntilCancelled(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("task did not finish")
	}
}

func TestLoop_CancelTask(t *testing.T) {
	t.Parallel()

	l := New(context.Background(), nil)
	h := l.Go("monitor", blockUntilCancelled)

	if !h.Cancel() {
		t.Error("Cancel() on a running task = false, want true")
	}
	waitDone(t, h.Done())
	if h.Cancel() {
		t.Error("Cancel() on a finished task = true, want false")
	}
	if err := h.(*Task).Err(); err != nil {
		t.Errorf("Err() after cancellation = %v, want nil", err)
	}
	if err := l.Shutdown(); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestLoop_ShutdownStopsAll(t *testing.T) {
	t.Parallel()

	l := New(context.Background(), nil)
	handles := []interface{ Done() <-chan struct{} }{
		l.Go("a", blockUntilCancelled),
		l.Go("b", blockUntilCancelled),
	}
	if got := l.Tasks(); got != 2 {
		t.Errorf("Tasks() = %d, want 2", got)
	}

	if err := l.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	for _, h := range handles {
		waitDone(t, h.Done())
	}
	if err := l.Shutdown(); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}

func TestLoop_ShutdownWithoutTasks(t *testing.T) {
	t.Parallel()

	l := New(context.Background(), nil)
	for range 3 {
		if err := l.Shutdown(); err != nil {
			t.Fatalf("Shutdown() error = %v", err)
		}
	}
}

func TestLoop_GoAfterShutdown(t *testing.T) {
	t.Parallel()

	l := New(context.Background(), nil)
	if err := l.Shutdown(); err != nil {
		t.Fatal(err)
	}
	h := l.Go("late", func(context.Context) error {
		t.Error("task scheduled after shutdown must not run")
		return nil
	})
	waitDone(t, h.Done())
	if err := h.(*Task).Err(); !errors.Is(err, ErrClosed) {
		t.Errorf("Err() = %v, want ErrClosed", err)
	}
}

func TestLoop_TaskFailureReported(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	l := New(context.Background(), nil)
	h := l.Go("failing", func(context.Context) error { return boom })
	waitDone(t, h.Done())

	err := l.Shutdown()
	var te *TaskError
	if !errors.As(err, &te) || te.Name != "failing" || !errors.Is(err, boom) {
		t.Errorf("Shutdown() error = %v, want TaskError wrapping boom", err)
	}
}

func TestLoop_ParentCancellation(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithCancel(context.Background())
	l := New(parent, nil)
	h := l.Go("monitor", blockUntilCancelled)
	cancel()
	waitDone(t, h.Done())
	if err := l.Shutdown(); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestFactory(t *testing.T) {
	t.Parallel()

	drv := Factory(context.Background(), nil)()
	if _, ok := drv.(*Loop); !ok {
		t.Fatalf("Factory() created %T, want *Loop", drv)
	}
	if err := drv.Shutdown(); err != nil {
		t.Error(err)
	}
}
