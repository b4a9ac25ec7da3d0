// Package pages holds the views and loader hooks of the blog application.
//
// Each page lives in its own subpackage. Pages that are loaded on demand
// export a constructor returning a Module, which the route table wraps in a
// lazy.Module so the page is only built on its first visit.
package pages

import (
	"github.com/vango-dev/blogshell/pkg/router"
	"github.com/vango-dev/blogshell/pkg/vdom"
)

// Module is what a deferred page exports.
type Module struct {
	// View renders the page.
	View router.View

	// Loader fetches the page's data, nil when the page needs none.
	Loader router.LoaderFunc
}

// Fallback renders text in place of a page that is still loading.
func Fallback(text string) router.View {
	return func(*router.ViewContext) *vdom.VNode {
		return vdom.P(vdom.Class("loading"), vdom.Role("status"), text)
	}
}
