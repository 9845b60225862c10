// SPDX-License-Identifier: MPL-2.0

package dump

import (
	"context"
	"errors"
	"sync"

	"github.com/launchdump/launchdump/pkg/launch"
)

type (
	treeEntity struct {
		name     string
		children []launch.Entity
	}

	failingEntity struct {
		err error
	}

	panickingEntity struct{}

	brokenKindEntity struct{}

	stubLookup map[string]string

	countingDriver struct {
		mu        sync.Mutex
		shutdowns int
		handles   []*countingHandle
	}

	countingHandle struct {
		mu        sync.Mutex
		cancelled bool
		done      chan struct{}
	}
)

func tree(name string, children ...launch.Entity) *treeEntity {
	return &treeEntity{name: name, children: children}
}

func (e *treeEntity) Kind() launch.Kind { return launch.KindGeneric }
func (e *treeEntity) TypeName() string  { return e.name }
func (e *treeEntity) Visit(*launch.Context) ([]launch.Entity, error) {
	return e.children, nil
}

func (failingEntity) Kind() launch.Kind { return launch.KindGeneric }
func (failingEntity) TypeName() string  { return "Failing" }
func (e failingEntity) Visit(*launch.Context) ([]launch.Entity, error) {
	return nil, e.err
}

func (panickingEntity) Kind() launch.Kind { return launch.KindGeneric }
func (panickingEntity) TypeName() string  { return "Panicking" }
func (panickingEntity) Visit(*launch.Context) ([]launch.Entity, error) {
	panic("visit exploded")
}

func (brokenKindEntity) Kind() launch.Kind { panic("kind exploded") }
func (brokenKindEntity) TypeName() string  { return "BrokenKind" }
func (brokenKindEntity) Visit(*launch.Context) ([]launch.Entity, error) {
	return nil, nil
}

func (l stubLookup) LookPath(name string, _ []string) (string, error) {
	if p, ok := l[name]; ok {
		return p, nil
	}
	return "", errors.New("not found")
}

func (d *countingDriver) Go(string, func(ctx context.Context) error) launch.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	h := &countingHandle{done: make(chan struct{})}
	d.handles = append(d.handles, h)
	return h
}

func (d *countingDriver) Shutdown() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shutdowns++
	return nil
}

func (d *countingDriver) Shutdowns() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdowns
}

func (h *countingHandle) Cancel() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelled {
		return false
	}
	h.cancelled = true
	close(h.done)
	return true
}

func (h *countingHandle) Done() <-chan struct{} { return h.done }

func (h *countingHandle) Cancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}
