package router

import (
	"context"
	"fmt"
	"net/url"

	"github.com/vango-dev/blogshell/pkg/lazy"
	"github.com/vango-dev/blogshell/pkg/vdom"
)

// LoaderArgs is passed to a route's loader hook.
type LoaderArgs struct {
	// Params are the matched path parameters.
	Params Params

	// URL is the navigated location (path and query).
	URL *url.URL
}

// LoaderFunc produces the data a route's view needs. It is invoked once per
// activation of the route.
type LoaderFunc func(ctx context.Context, args LoaderArgs) (any, error)

// ViewContext is passed to views when they render.
type ViewContext struct {
	// Path is the canonical navigated path.
	Path string

	// Params are the matched path parameters.
	Params Params

	// RouteID identifies the route being rendered.
	RouteID string

	// Data is the value produced by this route's loader, or nil.
	Data any

	// Outlet is the rendered child route, or nil for the deepest route.
	Outlet *vdom.VNode

	loaded map[string]any
}

// RouteData returns the loader value of another matched route by ID.
func (vc *ViewContext) RouteData(id string) any {
	return vc.loaded[id]
}

// View renders a route.
type View func(vc *ViewContext) *vdom.VNode

// ErrorView renders an error boundary.
type ErrorView func(vc *ViewContext, err error) *vdom.VNode

// Element is a renderable unit attached to a route, possibly not loaded yet.
type Element interface {
	// Resolve returns the view, loading it first if needed.
	Resolve(ctx context.Context) (View, error)

	// Resolved reports whether Resolve can return without waiting.
	Resolved() bool
}

// Route is a node of the route table.
type Route struct {
	// ID identifies the route. Generated from the position in the tree when empty.
	ID string

	// Path is "/"-prefixed for top-level routes and relative for children.
	// Empty on index routes and on pathless layout routes.
	Path string

	// Index marks the default child rendered when the parent path matches exactly.
	Index bool

	// Element is rendered when the route is active.
	Element Element

	// Fallback is rendered while Element is loading. Defaults to the router's fallback.
	Fallback View

	// ErrorElement renders instead of Element when this route or a descendant fails.
	ErrorElement ErrorView

	// Loader produces the route's data.
	Loader LoaderFunc

	// Children are the nested routes, in match order.
	Children []Route
}

type staticElement struct {
	view View
}

// Static wraps a view that is always available.
func Static(v View) Element {
	return staticElement{view: v}
}

func (e staticElement) Resolve(context.Context) (View, error) { return e.view, nil }
func (e staticElement) Resolved() bool                        { return true }

// lazyElement resolves its view from a deferred module.
type lazyElement[T any] struct {
	module *lazy.Module[T]
	pick   func(T) View
}

// Lazy wraps a view held by a deferred module. The module is loaded on the
// first activation of a route using it and cached afterwards.
func Lazy[T any](m *lazy.Module[T], pick func(T) View) Element {
	return &lazyElement[T]{module: m, pick: pick}
}

func (e *lazyElement[T]) Resolve(ctx context.Context) (View, error) {
	v, err := e.module.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	view := e.pick(v)
	if view == nil {
		return nil, fmt.Errorf("module %q has no view", e.module.Name())
	}
	return view, nil
}

func (e *lazyElement[T]) Resolved() bool { return e.module.Resolved() }

// ModuleName returns the name of the deferred module.
func (e *lazyElement[T]) ModuleName() string { return e.module.Name() }

// LazyLoader returns a loader that resolves a deferred module and delegates
// to the loader it exports.
func LazyLoader[T any](m *lazy.Module[T], pick func(T) LoaderFunc) LoaderFunc {
	return func(ctx context.Context, args LoaderArgs) (any, error) {
		v, err := m.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		loader := pick(v)
		if loader == nil {
			return nil, nil
		}
		return loader(ctx, args)
	}
}

// deferred is implemented by elements backed by a lazy module.
type deferred interface {
	ModuleName() string
}
