// Package lazy defers building a view module until a route first needs it.
//
// A Module wraps a factory and is a two-state cache keyed by the module's
// identity: unresolved until the factory succeeds once, resolved forever
// after. Concurrent callers share one in-flight factory call, so a route whose
// element and loader both need the module triggers a single fetch.
//
//	var blogModule = lazy.New("pages/blog", func(ctx context.Context) (*blog.Page, error) {
//	    return blog.New(store), nil
//	})
//
//	page, err := blogModule.Resolve(ctx)
//
// A failed factory call is not cached: the next Resolve tries again, which is
// how a user-initiated re-navigation retries a failed load. The factory runs
// on a context detached from the caller's cancellation, so abandoning a
// navigation does not abort a fetch that other activations are waiting on.
package lazy
