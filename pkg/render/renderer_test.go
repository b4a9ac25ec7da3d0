package render

import (
	"strings"
	"testing"

	"github.com/vango-dev/blogshell/pkg/vdom"
)

func TestRenderToString(t *testing.T) {
	tests := []struct {
		name string
		node *vdom.VNode
		want string
	}{
		{
			name: "nil node",
			node: nil,
			want: "",
		},
		{
			name: "text is escaped",
			node: vdom.Text(`<script>alert("x")</script>`),
			want: "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;",
		},
		{
			name: "raw is not escaped",
			node: vdom.Raw("<b>bold</b>"),
			want: "<b>bold</b>",
		},
		{
			name: "element with sorted attributes",
			node: vdom.A(vdom.Href("/posts"), vdom.Class("link"), "Posts"),
			want: `<a class="link" href="/posts">Posts</a>`,
		},
		{
			name: "fragment has no wrapper",
			node: vdom.Fragment(vdom.P("a"), vdom.P("b")),
			want: "<p>a</p><p>b</p>",
		},
		{
			name: "void element",
			node: vdom.El("br"),
			want: "<br>",
		},
		{
			name: "boolean attributes",
			node: vdom.El("input", vdom.Prop("disabled", true), vdom.Prop("checked", false)),
			want: "<input disabled>",
		},
		{
			name: "internal and empty attributes are skipped",
			node: vdom.Div(vdom.Prop("_key", "x"), vdom.Prop("title", ""), vdom.Prop("data-n", 3)),
			want: `<div data-n="3"></div>`,
		},
		{
			name: "attribute values are escaped",
			node: vdom.Div(vdom.Prop("title", "a\"b\nc")),
			want: `<div title="a&quot;b&#10;c"></div>`,
		},
	}

	r := NewRenderer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.RenderToString(tt.node)
			if err != nil {
				t.Fatalf("RenderToString() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RenderToString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderUnknownKind(t *testing.T) {
	r := NewRenderer()
	if _, err := r.RenderToString(&vdom.VNode{Kind: vdom.VKind(99)}); err == nil {
		t.Error("expected error for unknown node kind")
	}
	if _, err := r.RenderToString(&vdom.VNode{Kind: vdom.KindElement}); err == nil {
		t.Error("expected error for element without tag")
	}
}

func TestRenderPage(t *testing.T) {
	var b strings.Builder
	err := NewRenderer().RenderPage(&b, PageData{
		Title:       "Blog <dev>",
		Body:        vdom.Main("hello"),
		StyleSheets: []string{"/style.css"},
		Styles:      []string{"body{margin:0}"},
		Scripts:     []string{"/_shell/client.js"},
	})
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	html := b.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="en">`,
		"<title>Blog &lt;dev&gt;</title>",
		`<link rel="stylesheet" href="/style.css">`,
		"<style>body{margin:0}</style>",
		`<div id="app"><main>hello</main></div>`,
		`<script src="/_shell/client.js" defer></script>`,
		"</html>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q\n%s", want, html)
		}
	}
}
