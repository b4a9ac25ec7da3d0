// Package blog lists every post.
package blog

import (
	"context"
	"fmt"

	"github.com/vango-dev/blogshell/app/pages"
	"github.com/vango-dev/blogshell/pkg/posts"
	"github.com/vango-dev/blogshell/pkg/router"
	"github.com/vango-dev/blogshell/pkg/vdom"
)

// Name identifies the deferred module.
const Name = "pages/blog"

// New builds the page on top of store.
func New(store posts.Store) pages.Module {
	return pages.Module{
		View: View,
		Loader: func(ctx context.Context, _ router.LoaderArgs) (any, error) {
			return store.List(ctx)
		},
	}
}

// View renders the list produced by the loader.
func View(vc *router.ViewContext) *vdom.VNode {
	list, _ := vc.Data.([]posts.Post)
	if len(list) == 0 {
		return vdom.Fragment(vdom.H1("Our Blog Posts"), vdom.P("No posts yet."))
	}

	items := make([]*vdom.VNode, 0, len(list))
	for _, p := range list {
		items = append(items, vdom.Li(
			vdom.A(vdom.Href(fmt.Sprintf("/posts/%d", p.ID)), p.Title),
		))
	}
	return vdom.Fragment(
		vdom.H1("Our Blog Posts"),
		vdom.Ul(vdom.Class("posts"), items),
	)
}
