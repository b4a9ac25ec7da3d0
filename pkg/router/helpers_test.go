package router

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/vango-dev/blogshell/pkg/lazy"
	"github.com/vango-dev/blogshell/pkg/vdom"
)

func textView(s string) View {
	return func(*ViewContext) *vdom.VNode { return vdom.Text(s) }
}

func layoutView(name string) View {
	return func(vc *ViewContext) *vdom.VNode {
		return vdom.Div(vdom.Class(name), "["+name+"]", vc.Outlet)
	}
}

func dataView(prefix string) View {
	return func(vc *ViewContext) *vdom.VNode {
		return vdom.Text(fmt.Sprintf("%s:%v", prefix, vc.Data))
	}
}

func boundaryView(name string) ErrorView {
	return func(vc *ViewContext, err error) *vdom.VNode {
		return vdom.Text("boundary " + name)
	}
}

// gatedModule is a deferred view module whose factory blocks until released.
type gatedModule struct {
	release chan struct{}
	err     error
	module  *lazy.Module[View]
}

func newGatedModule(name string, view View) *gatedModule {
	g := &gatedModule{release: make(chan struct{})}
	g.module = lazy.New(name, func(ctx context.Context) (View, error) {
		<-g.release
		if g.err != nil {
			return nil, g.err
		}
		return view, nil
	})
	return g
}

func (g *gatedModule) element() Element {
	return Lazy(g.module, func(v View) View { return v })
}

// countingLoader counts its invocations and returns a fixed value.
type countingLoader struct {
	calls atomic.Int64
	value any
	err   error
}

func (c *countingLoader) load(ctx context.Context, args LoaderArgs) (any, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.value, nil
}
