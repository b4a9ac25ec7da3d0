package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/blogshell/pkg/vdom"
)

// Result is the outcome of an activation.
type Result struct {
	// Tree is the composed view tree: the matched routes, an error boundary
	// in place of a failed route, or the not-found view.
	Tree *vdom.VNode

	// Status is the HTTP status of the outcome.
	Status int

	// Err is the failure caught by a boundary, ErrNotFound, or nil.
	Err error

	// Pattern is the matched route pattern, empty if nothing matched.
	Pattern string

	// Params are the matched path parameters.
	Params Params
}

// Activation is one navigation to a path: the loaders and view fetches of
// every matched route, joined into a Result.
type Activation struct {
	router  *Router
	ctx     context.Context
	work    context.Context // handed to loaders and view fetches
	cancel  context.CancelFunc
	started time.Time

	url   *url.URL
	match *Match

	nav   *Navigator
	token uint64

	placeholder *vdom.VNode
	done        chan struct{}
	result      *Result
}

// Activate matches path and starts its loaders and pending view fetches.
// The returned activation is independent of any other; use a Navigator to
// discard the results of superseded activations.
func (r *Router) Activate(ctx context.Context, path string) *Activation {
	return r.activate(ctx, path, nil, 0)
}

func (r *Router) activate(ctx context.Context, path string, nav *Navigator, token uint64) *Activation {
	ctx, cancel := context.WithCancel(ctx)
	a := &Activation{
		router:  r,
		ctx:     ctx,
		work:    ctx,
		cancel:  cancel,
		started: time.Now(),
		nav:     nav,
		token:   token,
		done:    make(chan struct{}),
	}

	m, err := r.Match(path)
	if err != nil {
		a.url = &url.URL{Path: path}
		a.run(func() *Result { return r.unmatched(a, err) })
		return a
	}
	a.match = m
	a.url = &url.URL{Path: m.Path, RawQuery: m.Query}

	for i, cr := range m.chain {
		if el := cr.route.Element; el != nil && !el.Resolved() {
			a.placeholder = a.buildPlaceholder(i)
			break
		}
	}

	go a.run(a.join)
	return a
}

// unmatched builds the immediate result of a path that matched nothing or was malformed.
func (r *Router) unmatched(a *Activation, err error) *Result {
	vc := &ViewContext{Path: a.url.Path, Params: Params{}}
	if errors.Is(err, ErrNotFound) {
		tree, perr := safeView(r.notFound, vc)
		if perr != nil {
			tree = vdom.Text("Not found")
		}
		return &Result{Tree: tree, Status: http.StatusNotFound, Err: err, Params: vc.Params}
	}
	err = WithStatus(http.StatusBadRequest, fmt.Errorf("invalid path %q: %w", a.url.Path, err))
	return &Result{Tree: r.renderErrorView(vc, err), Status: http.StatusBadRequest, Err: err, Params: vc.Params}
}

func (a *Activation) finish(res *Result) {
	a.result = res
	a.cancel()
	close(a.done)
}

// Context returns the activation's context. It is cancelled when the
// activation completes or is superseded.
func (a *Activation) Context() context.Context { return a.ctx }

// SetContext replaces the context handed to loaders and view fetches.
// Middleware may call it before next to attach request-scoped values such as
// a trace span. ctx should derive from Context().
func (a *Activation) SetContext(ctx context.Context) {
	if ctx != nil {
		a.work = ctx
	}
}

// Path returns the canonical navigated path.
func (a *Activation) Path() string { return a.url.Path }

// URL returns the navigated location.
func (a *Activation) URL() *url.URL { return a.url }

// Pattern returns the matched route pattern, or "" if nothing matched.
func (a *Activation) Pattern() string {
	if a.match == nil {
		return ""
	}
	return a.match.Pattern
}

// Params returns the matched path parameters.
func (a *Activation) Params() Params {
	if a.match == nil {
		return Params{}
	}
	return a.match.Params
}

// RouteID returns the ID of the deepest matched route.
func (a *Activation) RouteID() string {
	if a.match == nil || len(a.match.RouteIDs) == 0 {
		return ""
	}
	return a.match.RouteIDs[len(a.match.RouteIDs)-1]
}

// Token returns the navigator sequence number, or 0 for standalone activations.
func (a *Activation) Token() uint64 { return a.token }

// Started returns when the activation began.
func (a *Activation) Started() time.Time { return a.started }

// Placeholder returns the tree to show until Wait returns, or nil if every
// view of the matched routes was already loaded.
func (a *Activation) Placeholder() *vdom.VNode { return a.placeholder }

// Pending reports whether the activation had to fetch a view.
func (a *Activation) Pending() bool { return a.placeholder != nil }

// Done is closed when the activation has completed.
func (a *Activation) Done() <-chan struct{} { return a.done }

// Superseded reports whether a newer activation of the same navigator started.
func (a *Activation) Superseded() bool {
	return a.nav != nil && !a.nav.IsCurrent(a.token)
}

// Wait blocks until the activation completes and returns its result. A
// superseded activation returns ErrSuperseded and its result is discarded.
func (a *Activation) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-a.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if a.Superseded() {
		return nil, ErrSuperseded
	}
	return a.result, nil
}

// Cancel abandons the activation. Shared view fetches keep running for other waiters.
func (a *Activation) Cancel() { a.cancel() }

// run passes handler through the middleware chain and publishes its result.
func (a *Activation) run(handler func() *Result) {
	var res *Result
	err := ComposeMiddleware(a, a.router.middleware, func() error {
		res = handler()
		return res.Err
	})
	if res == nil {
		// A middleware rejected the activation without calling next.
		res = a.rejected(err)
	}
	a.finish(res)
}

func (a *Activation) rejected(err error) *Result {
	if a.match == nil {
		vc := &ViewContext{Path: a.url.Path, Params: Params{}}
		return &Result{Tree: a.router.renderErrorView(vc, err), Status: StatusOf(err), Err: err, Params: vc.Params}
	}
	vc := a.viewContext(len(a.match.chain)-1, nil, nil)
	return &Result{
		Tree:    a.router.renderErrorView(vc, err),
		Status:  StatusOf(err),
		Err:     err,
		Pattern: a.match.Pattern,
		Params:  a.match.Params,
	}
}

// join runs every loader once and fetches every unresolved view, all
// concurrently, then composes the result.
func (a *Activation) join() *Result {
	chain := a.match.chain
	n := len(chain)
	var (
		data       = make([]any, n)
		views      = make([]View, n)
		loadErrs   = make([]error, n)
		loaderErrs = make([]error, n)
		g          errgroup.Group
	)

	for i, cr := range chain {
		i, cr := i, cr
		if loader := cr.route.Loader; loader != nil {
			g.Go(func() error {
				data[i], loaderErrs[i] = a.runLoader(loader)
				return nil
			})
		}
		el := cr.route.Element
		if el == nil {
			continue
		}
		if el.Resolved() {
			views[i], loadErrs[i] = resolveElement(a.work, el)
			continue
		}
		g.Go(func() error {
			views[i], loadErrs[i] = resolveElement(a.work, el)
			return nil
		})
	}
	_ = g.Wait()

	var failure *RouteError
	fail := -1
	for i, cr := range chain {
		switch {
		case loadErrs[i] != nil:
			failure = newRouteError(cr.id, LoadFailure, loadErrs[i])
		case loaderErrs[i] != nil:
			failure = newRouteError(cr.id, LoaderFailure, loaderErrs[i])
		default:
			continue
		}
		fail = i
		break
	}

	loaded := make(map[string]any, n)
	for i, cr := range chain {
		if data[i] != nil {
			loaded[cr.id] = data[i]
		}
	}
	return a.render(views, data, loaded, fail, failure)
}

// render composes the final tree. A failure at index fail is handed to the
// nearest ErrorElement at or above it; views that panic while composing are
// treated as failures of their own route.
func (a *Activation) render(views []View, data []any, loaded map[string]any, fail int, failure *RouteError) *Result {
	chain := a.match.chain
	res := &Result{Pattern: a.match.Pattern, Params: a.match.Params}

	if fail < 0 {
		tree, k, err := a.compose(views, data, loaded, len(chain), nil)
		if err == nil {
			res.Tree, res.Status = tree, http.StatusOK
			return res
		}
		fail, failure = k, newRouteError(chain[k].id, RenderFailure, err)
	}

	below := fail
	for {
		a.router.logger.Warn("route failure",
			"path", a.url.Path,
			"route", failure.RouteID,
			"kind", failure.Kind.String(),
			"err", failure.Err)

		j := nearestBoundary(chain, below)
		if j < 0 {
			vc := a.viewContext(len(chain)-1, data, loaded)
			res.Tree = a.router.renderErrorView(vc, failure)
			res.Status, res.Err = failure.StatusCode(), failure
			return res
		}

		vc := a.viewContext(j, data, loaded)
		leaf, err := safeErrorView(chain[j].route.ErrorElement, vc, failure)
		if err != nil {
			below = j - 1
			continue
		}
		tree, k, err := a.compose(views, data, loaded, j, leaf)
		if err != nil {
			failure = newRouteError(chain[k].id, RenderFailure, err)
			below = k
			continue
		}
		res.Tree, res.Status, res.Err = tree, failure.StatusCode(), failure
		return res
	}
}

// compose renders routes [0, upto) from the deepest up, each wrapping the
// outlet produced below it. Routes without a view pass the outlet through.
// On a view panic it returns the index of the failing route.
func (a *Activation) compose(views []View, data []any, loaded map[string]any, upto int, outlet *vdom.VNode) (*vdom.VNode, int, error) {
	for i := upto - 1; i >= 0; i-- {
		if views[i] == nil {
			continue
		}
		vc := a.viewContext(i, data, loaded)
		vc.Outlet = outlet
		node, err := safeView(views[i], vc)
		if err != nil {
			return nil, i, err
		}
		outlet = node
	}
	return outlet, -1, nil
}

// buildPlaceholder renders the fallback of route p wrapped by its already
// loaded ancestors, which see no loader data yet.
func (a *Activation) buildPlaceholder(p int) *vdom.VNode {
	chain := a.match.chain
	fallback := chain[p].route.Fallback
	if fallback == nil {
		fallback = a.router.fallback
	}

	vc := a.viewContext(p, nil, nil)
	leaf, err := safeView(fallback, vc)
	if err != nil {
		leaf, _ = safeView(defaultFallback, vc)
	}

	views := make([]View, p)
	for i := 0; i < p; i++ {
		if el := chain[i].route.Element; el != nil {
			v, err := resolveElement(a.ctx, el)
			if err != nil {
				return leaf
			}
			views[i] = v
		}
	}
	tree, _, err := a.compose(views, make([]any, p), nil, p, leaf)
	if err != nil {
		return leaf
	}
	return tree
}

func (a *Activation) viewContext(i int, data []any, loaded map[string]any) *ViewContext {
	vc := &ViewContext{
		Path:   a.url.Path,
		Params: a.match.Params,
		loaded: loaded,
	}
	if i >= 0 && i < len(a.match.chain) {
		vc.RouteID = a.match.chain[i].id
		if i < len(data) {
			vc.Data = data[i]
		}
	}
	return vc
}

func (a *Activation) runLoader(loader LoaderFunc) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("loader panic: %v\n%s", rec, debug.Stack())
		}
	}()
	return loader(a.work, LoaderArgs{Params: a.match.Params, URL: a.url})
}

func resolveElement(ctx context.Context, el Element) (v View, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("view resolve panic: %v", rec)
		}
	}()
	return el.Resolve(ctx)
}

func safeView(v View, vc *ViewContext) (node *vdom.VNode, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("view panic: %v", rec)
		}
	}()
	return v(vc), nil
}

func safeErrorView(v ErrorView, vc *ViewContext, cause error) (node *vdom.VNode, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("error view panic: %v", rec)
		}
	}()
	return v(vc, cause), nil
}

func (r *Router) renderErrorView(vc *ViewContext, cause error) *vdom.VNode {
	node, err := safeErrorView(r.errorView, vc, cause)
	if err != nil {
		return defaultErrorView(vc, cause)
	}
	return node
}

// nearestBoundary returns the deepest route at or above index i with an ErrorElement.
func nearestBoundary(chain []*compiledRoute, i int) int {
	for j := i; j >= 0; j-- {
		if chain[j].route.ErrorElement != nil {
			return j
		}
	}
	return -1
}
