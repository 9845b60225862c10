// SPDX-License-Identifier: MPL-2.0

package dump

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/launchdump/launchdump/pkg/launch"
)

func collect(t *testing.T, w *Walker, ctx context.Context, root launch.Entity) ([]string, error) {
	t.Helper()
	var names []string
	for entity, err := range w.Walk(ctx, root, launch.NewContext()) {
		if err != nil {
			return names, err
		}
		names = append(names, entity.TypeName())
	}
	return names, nil
}

func TestWalk_PreOrder(t *testing.T) {
	t.Parallel()

	root := tree("root",
		tree("a", tree("b"), tree("c", tree("c1"))),
		tree("d"),
	)
	got, err := collect(t, &Walker{}, context.Background(), root)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	want := []string{"root", "a", "b", "c", "c1", "d"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("visit order mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk_FailureIsolation(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var failures []*VisitError
	w := &Walker{OnVisitError: func(ve *VisitError) { failures = append(failures, ve) }}

	root := tree("root",
		tree("a", failingEntity{err: boom}, tree("b")),
		panickingEntity{},
		tree("c"),
	)
	got, err := collect(t, w, context.Background(), root)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if diff := cmp.Diff([]string{"root", "a", "b", "c"}, got); diff != "" {
		t.Errorf("visit order mismatch (-want +got):\n%s", diff)
	}

	if len(failures) != 2 {
		t.Fatalf("OnVisitError called %d times, want 2", len(failures))
	}
	if failures[0].Kind() != "Failing" || !errors.Is(failures[0], boom) || !errors.Is(failures[0], ErrVisit) {
		t.Errorf("first failure = %v", failures[0])
	}
	if failures[1].Kind() != "Panicking" || failures[1].Err.Error() != "panic: visit exploded" {
		t.Errorf("second failure = %v", failures[1])
	}
}

func TestWalk_FailingRoot(t *testing.T) {
	t.Parallel()

	got, err := collect(t, &Walker{}, context.Background(), failingEntity{err: errors.New("x")})
	if err != nil || len(got) != 0 {
		t.Errorf("Walk() = %v, %v; want nothing", got, err)
	}
}

func TestWalk_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := collect(t, &Walker{}, ctx, tree("root"))

	var fatal *FatalWalkError
	if !errors.As(err, &fatal) || !errors.Is(err, context.Canceled) || !errors.Is(err, ErrFatalWalk) {
		t.Errorf("Walk() error = %v, want FatalWalkError wrapping context.Canceled", err)
	}
}

func TestWalk_StopEarly(t *testing.T) {
	t.Parallel()

	visited := 0
	for range (&Walker{}).Walk(context.Background(), tree("root", tree("a"), tree("b")), launch.NewContext()) {
		visited++
		if visited == 2 {
			break
		}
	}
	if visited != 2 {
		t.Errorf("visited = %d, want 2", visited)
	}
}

func TestWalk_FalseConditionHasNoChildren(t *testing.T) {
	t.Parallel()

	group := &launch.GroupAction{
		Condition: launch.IfCondition{Expression: launch.Literal("false")},
		Actions:   []launch.Entity{tree("hidden")},
	}
	got, err := collect(t, &Walker{}, context.Background(), tree("root", group, tree("shown")))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"root", "GroupAction", "shown"}, got); diff != "" {
		t.Errorf("visit order mismatch (-want +got):\n%s", diff)
	}
}
