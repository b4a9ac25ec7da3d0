package lazy

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// State is the resolution state of a Module.
type State int

const (
	Unresolved State = iota // factory never succeeded and is not running
	Resolving               // factory call in flight
	Resolved                // value cached
	Failed                  // last factory call failed; the next Resolve retries
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Resolving:
		return "resolving"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Factory produces a module value.
type Factory[T any] func(ctx context.Context) (T, error)

// Observer is notified after every factory invocation.
type Observer interface {
	ObserveModuleLoad(module string, d time.Duration, err error)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(module string, d time.Duration, err error)

// ObserveModuleLoad implements Observer.
func (f ObserverFunc) ObserveModuleLoad(module string, d time.Duration, err error) {
	f(module, d, err)
}

// Option configures a Module.
type Option func(*options)

type options struct {
	observers []Observer
	timeout   time.Duration
}

// WithObserver registers an observer for factory invocations.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.observers = append(opts.observers, o)
		}
	}
}

// WithTimeout bounds a single factory invocation.
func WithTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.timeout = d
	}
}

// LoadError reports a failed factory invocation.
type LoadError struct {
	Module string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load module %q: %v", e.Module, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Module is a lazily resolved value shared by every route that references it.
type Module[T any] struct {
	name    string
	factory Factory[T]
	opts    options
	group   singleflight.Group

	mu      sync.RWMutex
	state   State
	value   T
	lastErr error

	loads atomic.Int64
}

// New creates an unresolved module. The factory is not called until the first Resolve.
func New[T any](name string, factory Factory[T], opts ...Option) *Module[T] {
	m := &Module[T]{name: name, factory: factory}
	for _, opt := range opts {
		opt(&m.opts)
	}
	return m
}

// Name returns the module identity.
func (m *Module[T]) Name() string { return m.name }

// State returns the current resolution state.
func (m *Module[T]) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Resolved reports whether the value is cached.
func (m *Module[T]) Resolved() bool {
	return m.State() == Resolved
}

// Err returns the error of the last failed factory call, if the module is in the Failed state.
func (m *Module[T]) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != Failed {
		return nil
	}
	return m.lastErr
}

// Loads returns how many times the factory has been invoked.
func (m *Module[T]) Loads() int64 { return m.loads.Load() }

// Resolve returns the module value, invoking the factory if needed.
// Callers that arrive while a factory call is in flight wait for it instead of
// starting another one. Resolve returns early with ctx.Err() when ctx is done,
// leaving the in-flight call running for the other waiters.
func (m *Module[T]) Resolve(ctx context.Context) (T, error) {
	m.mu.RLock()
	if m.state == Resolved {
		v := m.value
		m.mu.RUnlock()
		return v, nil
	}
	m.mu.RUnlock()

	ch := m.group.DoChan(m.name, func() (any, error) {
		return m.load(context.WithoutCancel(ctx))
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		// A nil interface value comes back as a nil any.
		v, _ := res.Val.(T)
		return v, nil
	}
}

// Preload resolves the module ahead of any navigation.
func (m *Module[T]) Preload(ctx context.Context) error {
	_, err := m.Resolve(ctx)
	return err
}

// load runs the factory once and records the outcome.
func (m *Module[T]) load(ctx context.Context) (v T, err error) {
	m.mu.Lock()
	if m.state == Resolved {
		v = m.value
		m.mu.Unlock()
		return v, nil
	}
	m.state = Resolving
	m.mu.Unlock()

	if m.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.timeout)
		defer cancel()
	}

	m.loads.Add(1)
	start := time.Now()
	v, err = m.invoke(ctx)
	elapsed := time.Since(start)

	m.mu.Lock()
	if err != nil {
		m.state = Failed
		m.lastErr = err
	} else {
		m.state = Resolved
		m.value = v
		m.lastErr = nil
	}
	m.mu.Unlock()

	for _, o := range m.opts.observers {
		o.ObserveModuleLoad(m.name, elapsed, err)
	}
	return v, err
}

// invoke calls the factory, converting errors and panics into a LoadError.
func (m *Module[T]) invoke(ctx context.Context) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &LoadError{Module: m.name, Err: fmt.Errorf("panic: %v\n%s", r, debug.Stack())}
		}
	}()
	v, err = m.factory(ctx)
	if err != nil {
		return v, &LoadError{Module: m.name, Err: err}
	}
	return v, nil
}
