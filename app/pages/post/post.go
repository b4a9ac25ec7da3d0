// Package post shows a single post.
package post

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vango-dev/blogshell/app/pages"
	"github.com/vango-dev/blogshell/pkg/posts"
	"github.com/vango-dev/blogshell/pkg/router"
	"github.com/vango-dev/blogshell/pkg/vdom"
)

// Name identifies the deferred module.
const Name = "pages/post"

// New builds the page on top of store.
func New(store posts.Store) pages.Module {
	return pages.Module{
		View:   View,
		Loader: loader(store),
	}
}

func loader(store posts.Store) router.LoaderFunc {
	return func(ctx context.Context, args router.LoaderArgs) (any, error) {
		var p struct {
			ID int `param:"id"`
		}
		if err := args.Params.Decode(&p); err != nil {
			return nil, router.WithStatus(http.StatusNotFound, err)
		}

		post, err := store.Get(ctx, p.ID)
		if errors.Is(err, posts.ErrNotFound) {
			return nil, router.WithStatus(http.StatusNotFound, fmt.Errorf("post %d: %w", p.ID, err))
		}
		if err != nil {
			return nil, err
		}
		return post, nil
	}
}

// View renders the post produced by the loader.
func View(vc *router.ViewContext) *vdom.VNode {
	post, _ := vc.Data.(*posts.Post)
	if post == nil {
		return vdom.P("Post not available.")
	}
	return vdom.Article(vdom.Class("post"), vdom.Data("id", vc.Params.Get("id")),
		vdom.H1(post.Title),
		vdom.P(post.Body),
		vdom.A(vdom.Href("/posts"), "All posts"),
	)
}
