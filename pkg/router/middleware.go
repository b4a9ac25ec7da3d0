package router

// Middleware wraps the join of every activation. Handle must call next to
// run the loaders and view fetches; the error it returns is the failure
// caught by a boundary, if any.
type Middleware interface {
	Handle(a *Activation, next func() error) error
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(a *Activation, next func() error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(a *Activation, next func() error) error {
	return f(a, next)
}

// ComposeMiddleware builds a handler chain from middleware and a final handler.
// Middleware is executed in order (first to last), with the handler at the end.
func ComposeMiddleware(a *Activation, mw []Middleware, handler func() error) error {
	if len(mw) == 0 {
		return handler()
	}

	chain := handler
	for i := len(mw) - 1; i >= 0; i-- {
		m := mw[i]
		next := chain
		chain = func() error {
			return m.Handle(a, next)
		}
	}
	return chain()
}

// Chain creates a middleware that combines multiple middleware in order.
func Chain(middleware ...Middleware) Middleware {
	return MiddlewareFunc(func(a *Activation, next func() error) error {
		return ComposeMiddleware(a, middleware, next)
	})
}

// Only runs mw for activations matching condition and skips it otherwise.
func Only(condition func(a *Activation) bool, mw Middleware) Middleware {
	return MiddlewareFunc(func(a *Activation, next func() error) error {
		if !condition(a) {
			return next()
		}
		return mw.Handle(a, next)
	})
}
