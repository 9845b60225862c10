// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"context"
	"errors"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
)

var (
	// ErrNoDriver is returned by Context.Driver when no DriverFactory was configured.
	ErrNoDriver = errors.New("no async driver configured")
	// ErrScopeUnderflow is returned by Context.PopScope without a matching PushScope.
	ErrScopeUnderflow = errors.New("launch configuration scope underflow")
)

type (
	// Handle is a cancellable reference to work scheduled on an AsyncDriver.
	Handle interface {
		// Cancel requests the work to stop. It reports false when the work already finished.
		Cancel() bool
		// Done is closed once the work has returned.
		Done() <-chan struct{}
	}

	// AsyncDriver schedules background work for entities that model supervised,
	// persistently running resources.
	AsyncDriver interface {
		Go(name string, fn func(ctx context.Context) error) Handle
		// Shutdown cancels all outstanding work and waits for it. It must be idempotent.
		Shutdown() error
	}

	// DriverFactory creates the AsyncDriver the first time a Context needs one.
	DriverFactory func() AsyncDriver

	// LookPathFunc locates an executable using the given environment.
	LookPathFunc func(name string, environ []string) (string, error)

	// Option configures a Context.
	Option func(*Context)

	// Context is the mutable evaluation state shared by every entity of one walk.
	// Launch configurations bound by a visit are visible to every entity visited after it,
	// unless a scope pushed before the binding has been popped since.
	Context struct {
		configs   map[string]string
		namespace []string
		env       map[string]string
		scopes    []scope
		out       io.Writer
		lookPath  LookPathFunc

		driverFactory DriverFactory
		driver        AsyncDriver
		driverClosed  bool
	}

	scope struct {
		configs   map[string]string
		namespace []string
		env       map[string]string
	}
)

// WithEnviron replaces the process environment as the base of the context environment.
// Entries are in KEY=VALUE form.
func WithEnviron(environ []string) Option {
	return func(c *Context) {
		c.env = environMap(environ)
	}
}

// WithOutput sets the ambient output entities write user-facing text to.
func WithOutput(w io.Writer) Option {
	return func(c *Context) {
		c.out = w
	}
}

// WithDriverFactory injects the factory used to create the async driver on first use.
func WithDriverFactory(f DriverFactory) Option {
	return func(c *Context) {
		c.driverFactory = f
	}
}

// WithLookPath injects the executable lookup used by $(find-exec).
func WithLookPath(f LookPathFunc) Option {
	return func(c *Context) {
		c.lookPath = f
	}
}

// NewContext creates an empty evaluation context seeded with the process environment.
func NewContext(opts ...Option) *Context {
	c := &Context{
		configs: make(map[string]string),
		env:     environMap(os.Environ()),
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetConfiguration binds a launch configuration. The last write wins.
func (c *Context) SetConfiguration(name, value string) {
	c.configs[name] = value
}

// Configuration returns the value bound to name.
func (c *Context) Configuration(name string) (string, bool) {
	v, ok := c.configs[name]
	return v, ok
}

// Configurations returns a copy of all bound launch configurations.
func (c *Context) Configurations() map[string]string {
	return maps.Clone(c.configs)
}

// PushScope saves the launch configurations, namespace and environment.
func (c *Context) PushScope() {
	c.scopes = append(c.scopes, scope{
		configs:   maps.Clone(c.configs),
		namespace: slices.Clone(c.namespace),
		env:       maps.Clone(c.env),
	})
}

// PopScope restores the state saved by the matching PushScope.
func (c *Context) PopScope() error {
	if len(c.scopes) == 0 {
		return ErrScopeUnderflow
	}
	s := c.scopes[len(c.scopes)-1]
	c.scopes = c.scopes[:len(c.scopes)-1]
	c.configs = s.configs
	c.namespace = s.namespace
	c.env = s.env
	return nil
}

// PushNamespace appends a relative namespace to the current one. An absolute namespace
// (leading slash) replaces it.
func (c *Context) PushNamespace(ns string) {
	if strings.HasPrefix(ns, "/") {
		c.namespace = nil
	}
	for _, part := range strings.Split(ns, "/") {
		if part != "" {
			c.namespace = append(c.namespace, part)
		}
	}
}

// Namespace returns the current namespace as an absolute name, or "" when none was pushed.
func (c *Context) Namespace() string {
	if len(c.namespace) == 0 {
		return ""
	}
	return "/" + strings.Join(c.namespace, "/")
}

// Setenv sets an environment variable for the rest of the walk.
func (c *Context) Setenv(name, value string) {
	c.env[name] = value
}

// Unsetenv removes an environment variable for the rest of the walk.
func (c *Context) Unsetenv(name string) {
	delete(c.env, name)
}

// Getenv looks up an environment variable.
func (c *Context) Getenv(name string) (string, bool) {
	v, ok := c.env[name]
	return v, ok
}

// Environ returns the environment in KEY=VALUE form, sorted by key.
func (c *Context) Environ() []string {
	keys := slices.Sorted(maps.Keys(c.env))
	environ := make([]string, 0, len(keys))
	for _, k := range keys {
		environ = append(environ, k+"="+c.env[k])
	}
	return environ
}

// LookPath locates an executable with the context environment.
func (c *Context) LookPath(name string) (string, error) {
	if c.lookPath == nil {
		return "", ErrNoLookup
	}
	return c.lookPath(name, c.Environ())
}

// Output returns the ambient output writer.
func (c *Context) Output() io.Writer {
	return c.out
}

// SetOutput replaces the ambient output writer.
func (c *Context) SetOutput(w io.Writer) {
	c.out = w
}

// Driver returns the async driver, creating it on first use.
func (c *Context) Driver() (AsyncDriver, error) {
	if c.driverClosed {
		return nil, errors.New("async driver already shut down")
	}
	if c.driver != nil {
		return c.driver, nil
	}
	if c.driverFactory == nil {
		return nil, ErrNoDriver
	}
	c.driver = c.driverFactory()
	return c.driver, nil
}

// ShutdownDriver shuts the async driver down if one was created. Later calls are no-ops.
func (c *Context) ShutdownDriver() error {
	if c.driverClosed {
		return nil
	}
	c.driverClosed = true
	if c.driver == nil {
		return nil
	}
	return c.driver.Shutdown()
}

func environMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		m[k] = v
	}
	return m
}
