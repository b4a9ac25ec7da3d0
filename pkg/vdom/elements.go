package vdom

import "fmt"

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":  true,
	"base":  true,
	"br":    true,
	"col":   true,
	"embed": true,
	"hr":    true,
	"img":   true,
	"input": true,
	"link":  true,
	"meta":  true,
	"wbr":   true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// El creates an element node with the given tag.
// Arguments can be: nil, Attr, []Attr, *VNode, []*VNode, string.
func El(tag string, args ...any) *VNode {
	node := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: make(Props),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Attr:
			if !v.IsEmpty() {
				node.Props[v.Key] = v.Value
			}
		case []Attr:
			for _, a := range v {
				if !a.IsEmpty() {
					node.Props[a.Key] = a.Value
				}
			}
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					node.Children = append(node.Children, c)
				}
			}
		case string:
			node.Children = append(node.Children, Text(v))
		default:
			panic(fmt.Sprintf("vdom: unsupported argument %T for <%s>", arg, tag))
		}
	}

	return node
}

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Raw creates an unescaped HTML node.
// Use with caution - can lead to XSS if content is user-provided.
func Raw(html string) *VNode {
	return &VNode{Kind: KindRaw, Text: html}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *VNode {
	node := El("", children...)
	node.Kind = KindFragment
	node.Props = nil
	return node
}

func Div(args ...any) *VNode     { return El("div", args...) }
func Span(args ...any) *VNode    { return El("span", args...) }
func P(args ...any) *VNode       { return El("p", args...) }
func H1(args ...any) *VNode      { return El("h1", args...) }
func H2(args ...any) *VNode      { return El("h2", args...) }
func A(args ...any) *VNode       { return El("a", args...) }
func Ul(args ...any) *VNode      { return El("ul", args...) }
func Li(args ...any) *VNode      { return El("li", args...) }
func Nav(args ...any) *VNode     { return El("nav", args...) }
func Main(args ...any) *VNode    { return El("main", args...) }
func Header(args ...any) *VNode  { return El("header", args...) }
func Article(args ...any) *VNode { return El("article", args...) }
func Section(args ...any) *VNode { return El("section", args...) }
func Pre(args ...any) *VNode     { return El("pre", args...) }

// Attribute helpers.

func Class(name string) Attr      { return Attr{Key: "class", Value: name} }
func ID(id string) Attr           { return Attr{Key: "id", Value: id} }
func Href(url string) Attr        { return Attr{Key: "href", Value: url} }
func Role(role string) Attr       { return Attr{Key: "role", Value: role} }
func Data(key, value string) Attr { return Attr{Key: "data-" + key, Value: value} }
func Prop(key string, v any) Attr { return Attr{Key: key, Value: v} }
