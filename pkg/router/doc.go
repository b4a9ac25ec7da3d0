// Package router declares the application's route table and activates routes.
//
// A route table is an ordered tree of Route values. Each route may carry a
// view (Element), a placeholder shown while a deferred view is still loading
// (Fallback), an error boundary (ErrorElement) and a data hook (Loader):
//
//	r, err := router.New([]router.Route{{
//	    Path:    "/",
//	    Element: router.Static(root.Layout),
//	    Children: []router.Route{
//	        {Index: true, Element: router.Static(home.Page)},
//	        {Path: "posts", Children: []router.Route{
//	            {Index: true, Element: router.Lazy(blogModule, blog.View), Loader: blogLoader},
//	            {Path: ":id", Element: router.Lazy(postModule, post.View), Loader: postLoader},
//	        }},
//	    },
//	}})
//
// The table is validated once in New and is immutable afterwards. Malformed
// tables produce a *ConfigurationError listing every problem.
//
// # Matching
//
// Every matchable route compiles to a chi pattern; path matching is done by
// a private chi.Mux. ":name" segments bind a parameter, "*" as the last
// segment binds the rest of the path to the "*" parameter.
//
// # Activation
//
// Activate matches a path and starts, concurrently, every matched route's
// loader and the resolution of every deferred view that is not cached yet.
// If some view is not cached, Placeholder returns the tree to show meanwhile.
// Wait joins both kinds of work and composes the final tree, routing loader
// and load failures to the nearest ErrorElement at or above the failing route.
//
// A Navigator sequences the activations of one client: starting a new one
// cancels the previous activation, whose Wait then returns ErrSuperseded.
package router
