package root

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/vango-dev/blogshell/pkg/router"
	"github.com/vango-dev/blogshell/pkg/vdom"
)

func TestLayoutWrapsOutlet(t *testing.T) {
	vc := &router.ViewContext{Path: "/", Outlet: vdom.Text("child")}
	node := Layout("Notes")(vc)

	text := node.TextContent()
	if !strings.Contains(text, "Notes") || !strings.HasSuffix(text, "child") {
		t.Errorf("layout text = %q", text)
	}
	active := node.Find(func(n *vdom.VNode) bool { return n.Props["class"] == "active" })
	if active == nil || active.Props["href"] != "/" {
		t.Errorf("active link = %+v, want href /", active)
	}
}

func TestErrorPage(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status string
		text   string
	}{
		{"not found", router.WithStatus(http.StatusNotFound, errors.New("post 9")), "404", "Could not find"},
		{"generic", errors.New("boom"), "500", "Something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := ErrorPage(&router.ViewContext{}, tt.err)
			if got := node.Props["data-status"]; got != tt.status {
				t.Errorf("data-status = %v, want %s", got, tt.status)
			}
			if !strings.Contains(node.TextContent(), tt.text) {
				t.Errorf("text = %q, want %q", node.TextContent(), tt.text)
			}
		})
	}
}
