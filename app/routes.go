// Package app is the blog's route table.
//
// The layout is:
//
//	/            root layout, error boundary
//	  (index)    home page
//	  posts
//	    (index)  blog page, deferred, loader lists posts
//	    :id      post page, deferred, loader fetches one post
//
// The blog and post pages are deferred modules: their code is only built on
// the first visit, and their loaders resolve the module before delegating to
// the loader it exports.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/vango-dev/blogshell/app/pages"
	"github.com/vango-dev/blogshell/app/pages/blog"
	"github.com/vango-dev/blogshell/app/pages/home"
	"github.com/vango-dev/blogshell/app/pages/post"
	"github.com/vango-dev/blogshell/app/pages/root"
	"github.com/vango-dev/blogshell/pkg/lazy"
	"github.com/vango-dev/blogshell/pkg/posts"
	"github.com/vango-dev/blogshell/pkg/router"
)

// Route IDs.
const (
	RouteRoot  = "root"
	RouteHome  = "home"
	RoutePosts = "posts"
	RouteBlog  = "blog"
	RoutePost  = "post"
)

// Modules are the deferred pages of the application.
type Modules struct {
	Blog *lazy.Module[pages.Module]
	Post *lazy.Module[pages.Module]
}

// NewModules returns the deferred pages backed by store.
func NewModules(store posts.Store, opts ...lazy.Option) Modules {
	return Modules{
		Blog: lazy.New(blog.Name, func(context.Context) (pages.Module, error) {
			return blog.New(store), nil
		}, opts...),
		Post: lazy.New(post.Name, func(context.Context) (pages.Module, error) {
			return post.New(store), nil
		}, opts...),
	}
}

// Options configure the application router.
type Options struct {
	// Title is shown in the layout header.
	Title string

	// FallbackText is shown while a deferred page loads.
	FallbackText string

	// LoadTimeout bounds a single module load. Zero means no limit.
	LoadTimeout time.Duration

	// Observers are notified of every module load.
	Observers []lazy.Observer

	// Middleware wraps every activation.
	Middleware []router.Middleware

	Logger *slog.Logger
}

// App is the assembled application.
type App struct {
	Router  *router.Router
	Modules Modules
}

// New builds the application on top of store.
func New(store posts.Store, opts Options) (*App, error) {
	var lazyOpts []lazy.Option
	if opts.LoadTimeout > 0 {
		lazyOpts = append(lazyOpts, lazy.WithTimeout(opts.LoadTimeout))
	}
	for _, o := range opts.Observers {
		lazyOpts = append(lazyOpts, lazy.WithObserver(o))
	}
	modules := NewModules(store, lazyOpts...)

	r, err := NewRouter(modules, opts)
	if err != nil {
		return nil, err
	}
	return &App{Router: r, Modules: modules}, nil
}

// NewRouter validates the route table built from modules.
func NewRouter(m Modules, opts Options) (*router.Router, error) {
	if opts.Title == "" {
		opts.Title = "Blog"
	}
	if opts.FallbackText == "" {
		opts.FallbackText = "Loading..."
	}

	routerOpts := []router.Option{
		router.WithFallback(pages.Fallback(opts.FallbackText)),
		router.WithMiddleware(opts.Middleware...),
	}
	if opts.Logger != nil {
		routerOpts = append(routerOpts, router.WithLogger(opts.Logger))
	}
	return router.New(Routes(m, opts), routerOpts...)
}

// Routes returns the route table.
func Routes(m Modules, opts Options) []router.Route {
	fallback := pages.Fallback(opts.FallbackText)
	return []router.Route{
		{
			ID:           RouteRoot,
			Path:         "/",
			Element:      router.Static(root.Layout(opts.Title)),
			ErrorElement: root.ErrorPage,
			Children: []router.Route{
				{
					ID:      RouteHome,
					Index:   true,
					Element: router.Static(home.View),
				},
				{
					ID:   RoutePosts,
					Path: "posts",
					Children: []router.Route{
						{
							ID:       RouteBlog,
							Index:    true,
							Element:  router.Lazy(m.Blog, pickView),
							Fallback: fallback,
							Loader:   router.LazyLoader(m.Blog, pickLoader),
						},
						{
							ID:       RoutePost,
							Path:     ":id",
							Element:  router.Lazy(m.Post, pickView),
							Fallback: fallback,
							Loader:   router.LazyLoader(m.Post, pickLoader),
						},
					},
				},
			},
		},
	}
}

func pickView(m pages.Module) router.View         { return m.View }
func pickLoader(m pages.Module) router.LoaderFunc { return m.Loader }
