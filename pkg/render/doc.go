// Package render turns vdom trees into HTML.
//
// Renderer writes a single tree. RenderPage wraps a tree in a complete HTML
// document whose body holds the application container (#app) that the
// navigation client swaps on every route change.
//
// StreamingRenderer is used when an activation is still pending: the document
// shell and the placeholder are flushed first, and the resolved tree follows
// in the same response inside a <template> that an inline script moves into
// #app:
//
//	sr := render.NewStreamingRenderer(w)
//	sr.Open(render.PageData{Title: "Blog", Body: placeholder})
//	tree := waitForActivation()
//	sr.Resolve(tree)
//	sr.Close(page)
package render
