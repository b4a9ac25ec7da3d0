// Package root is the application layout and its error page.
package root

import (
	"errors"
	"strconv"

	"github.com/vango-dev/blogshell/pkg/router"
	"github.com/vango-dev/blogshell/pkg/vdom"
)

// Layout renders the navigation bar around the active child page.
func Layout(title string) router.View {
	return func(vc *router.ViewContext) *vdom.VNode {
		return vdom.Fragment(
			vdom.Header(vdom.Class("main-header"),
				vdom.Nav(
					vdom.Ul(
						vdom.Li(link("/", "Home", vc.Path == "/")),
						vdom.Li(link("/posts", "Blog", vc.Path == "/posts")),
					),
				),
				vdom.Span(vdom.Class("brand"), title),
			),
			vdom.Main(vc.Outlet),
		)
	}
}

func link(href, label string, active bool) *vdom.VNode {
	var class vdom.Attr
	if active {
		class = vdom.Class("active")
	}
	return vdom.A(vdom.Href(href), class, label)
}

// ErrorPage is the application's error boundary.
func ErrorPage(vc *router.ViewContext, err error) *vdom.VNode {
	status := router.StatusOf(err)
	message := "Something went wrong."
	if status == 404 {
		message = "Could not find the requested resource."
	}

	var re *router.RouteError
	detail := err.Error()
	if errors.As(err, &re) {
		detail = re.Err.Error()
	}

	return vdom.Section(vdom.Class("error"), vdom.Data("status", strconv.Itoa(status)),
		vdom.H1("An error occurred!"),
		vdom.P(message),
		vdom.Pre(detail),
		vdom.A(vdom.Href("/"), "Back home"),
	)
}
