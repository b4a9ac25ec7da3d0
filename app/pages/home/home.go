// Package home is the landing page.
package home

import (
	"github.com/vango-dev/blogshell/pkg/router"
	"github.com/vango-dev/blogshell/pkg/vdom"
)

// View renders the landing page.
func View(*router.ViewContext) *vdom.VNode {
	return vdom.Fragment(
		vdom.H1("My Demo Website"),
		vdom.P("Welcome! Have a look at ", vdom.A(vdom.Href("/posts"), "the blog"), "."),
	)
}
