// Package vdom defines the view node tree produced by route views.
//
// Views never write markup directly. They return a *VNode tree built with the
// element helpers in this package, and the render package turns that tree
// into HTML:
//
//	func Home(vc *router.ViewContext) *vdom.VNode {
//	    return vdom.Div(vdom.Class("home"),
//	        vdom.H1("Welcome"),
//	        vdom.A(vdom.Href("/posts"), "Read the blog"),
//	    )
//	}
//
// Arguments to element helpers can be attributes (Attr), child nodes
// (*VNode or []*VNode), plain strings (escaped text) or nil, which is skipped
// so that conditional children read naturally.
package vdom
