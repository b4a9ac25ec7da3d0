package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/vango-dev/blogshell/internal/errors"
	"github.com/vango-dev/blogshell/pkg/vdom"
)

// Router is a validated, immutable route table.
type Router struct {
	routes  []Route
	mux     *chi.Mux
	entries map[string]*entry // by chi pattern
	ordered []*entry
	nodes   []*compiledRoute

	fallback   View
	notFound   View
	errorView  ErrorView
	middleware []Middleware
	logger     *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithFallback sets the placeholder used by deferred routes without their own Fallback.
func WithFallback(v View) Option {
	return func(r *Router) {
		if v != nil {
			r.fallback = v
		}
	}
}

// WithNotFound sets the view rendered when no route matches.
func WithNotFound(v View) Option {
	return func(r *Router) {
		if v != nil {
			r.notFound = v
		}
	}
}

// WithErrorView sets the view rendered for failures no ErrorElement catches.
func WithErrorView(v ErrorView) Option {
	return func(r *Router) {
		if v != nil {
			r.errorView = v
		}
	}
}

// WithMiddleware appends activation middleware.
func WithMiddleware(mw ...Middleware) Option {
	return func(r *Router) {
		r.middleware = append(r.middleware, mw...)
	}
}

// WithLogger sets the logger for route failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// New validates the route table and builds a Router.
// A malformed table yields a *ConfigurationError.
func New(routes []Route, opts ...Option) (*Router, error) {
	r := &Router{
		routes:    cloneRoutes(routes),
		mux:       chi.NewMux(),
		entries:   make(map[string]*entry),
		fallback:  defaultFallback,
		notFound:  defaultNotFound,
		errorView: defaultErrorView,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	entries, nodes, err := compile(r.routes)
	if err != nil {
		return nil, err
	}
	r.nodes = nodes

	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, e := range entries {
		if err := register(r.mux, e.pattern, noop); err != nil {
			return nil, &ConfigurationError{Problems: []*apperrors.ShellError{
				apperrors.New("E107").WithDetailf("pattern %s: %v", e.display, err),
			}}
		}
		r.entries[e.pattern] = e
		r.ordered = append(r.ordered, e)
	}
	return r, nil
}

// MustNew is like New but panics on error.
func MustNew(routes []Route, opts ...Option) *Router {
	r, err := New(routes, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// register adds a pattern to the mux, turning chi's panics into errors.
func register(mux *chi.Mux, pattern string, h http.Handler) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()
	mux.Method(http.MethodGet, pattern, h)
	return nil
}

// Match is the result of matching a path against the table.
type Match struct {
	// Pattern is the matched route pattern, e.g. "/posts/:id".
	Pattern string

	// Path is the canonical path.
	Path string

	// Query is the raw query string.
	Query string

	// Params are the decoded path parameters.
	Params Params

	// RouteIDs lists the activated routes from the root to the leaf.
	RouteIDs []string

	chain []*compiledRoute
}

// Match resolves a path to its route chain. It returns ErrNotFound when no
// route matches and a canonicalization error for malformed paths.
func (r *Router) Match(path string) (*Match, error) {
	canonical, query, err := CanonicalizePath(path)
	if err != nil {
		return nil, err
	}

	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, http.MethodGet, canonical) || len(rctx.RoutePatterns) == 0 {
		return nil, ErrNotFound
	}
	e, ok := r.entries[rctx.RoutePatterns[len(rctx.RoutePatterns)-1]]
	if !ok {
		return nil, ErrNotFound
	}

	params := make(Params, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		v, err := decodeParam(rctx.URLParams.Values[i], key == "*")
		if err != nil {
			return nil, err
		}
		params[key] = v
	}

	ids := make([]string, len(e.chain))
	for i, cr := range e.chain {
		ids[i] = cr.id
	}
	return &Match{
		Pattern:  e.display,
		Path:     canonical,
		Query:    query,
		Params:   params,
		RouteIDs: ids,
		chain:    e.chain,
	}, nil
}

// RouteInfo describes one matchable pattern of the table.
type RouteInfo struct {
	ID       string   `json:"id" yaml:"id"`
	Pattern  string   `json:"pattern" yaml:"pattern"`
	Chain    []string `json:"chain" yaml:"chain"`
	Modules  []string `json:"modules,omitempty" yaml:"modules,omitempty"`
	Loaders  []string `json:"loaders,omitempty" yaml:"loaders,omitempty"`
	Index    bool     `json:"index,omitempty" yaml:"index,omitempty"`
	Boundary string   `json:"boundary,omitempty" yaml:"boundary,omitempty"`
}

// Table lists the matchable patterns in registration order.
func (r *Router) Table() []RouteInfo {
	infos := make([]RouteInfo, 0, len(r.ordered))
	for _, e := range r.ordered {
		leaf := e.chain[len(e.chain)-1]
		info := RouteInfo{
			ID:      leaf.id,
			Pattern: e.display,
			Index:   leaf.route.Index,
		}
		for _, cr := range e.chain {
			info.Chain = append(info.Chain, cr.id)
			if d, ok := cr.route.Element.(deferred); ok {
				info.Modules = append(info.Modules, d.ModuleName())
			}
			if cr.route.Loader != nil {
				info.Loaders = append(info.Loaders, cr.id)
			}
			if cr.route.ErrorElement != nil {
				info.Boundary = cr.id
			}
		}
		infos = append(infos, info)
	}
	return infos
}

// NodeInfo describes one node of the route tree.
type NodeInfo struct {
	ID       string
	Depth    int
	Path     string
	Index    bool
	Module   string
	Loader   bool
	Boundary bool
}

// Walk visits every route in depth-first order.
func (r *Router) Walk(fn func(NodeInfo)) {
	for _, cr := range r.nodes {
		info := NodeInfo{
			ID:       cr.id,
			Depth:    cr.depth,
			Path:     cr.route.Path,
			Index:    cr.route.Index,
			Loader:   cr.route.Loader != nil,
			Boundary: cr.route.ErrorElement != nil,
		}
		if d, ok := cr.route.Element.(deferred); ok {
			info.Module = d.ModuleName()
		}
		fn(info)
	}
}

// Preload resolves every deferred element of the table concurrently.
func (r *Router) Preload(ctx context.Context) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, cr := range r.nodes {
		cr := cr
		el := cr.route.Element
		if el == nil || el.Resolved() {
			continue
		}
		g.Go(func() error {
			if _, err := el.Resolve(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("route %s: %w", cr.id, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// NewNavigator returns a Navigator that sequences activations on this router.
func (r *Router) NewNavigator() *Navigator {
	return &Navigator{router: r}
}

func cloneRoutes(routes []Route) []Route {
	if routes == nil {
		return nil
	}
	out := make([]Route, len(routes))
	for i, rt := range routes {
		out[i] = rt
		out[i].Children = cloneRoutes(rt.Children)
	}
	return out
}

func defaultFallback(*ViewContext) *vdom.VNode {
	return vdom.Div(vdom.Class("shell-fallback"), vdom.Role("status"), "Loading...")
}

func defaultNotFound(vc *ViewContext) *vdom.VNode {
	return vdom.Div(vdom.Class("shell-not-found"),
		vdom.H1("Not found"),
		vdom.P("No page matches ", vc.Path),
	)
}

func defaultErrorView(_ *ViewContext, err error) *vdom.VNode {
	return vdom.Div(vdom.Class("shell-error"), vdom.Role("alert"),
		vdom.H1("Something went wrong"),
		vdom.Pre(err.Error()),
	)
}
