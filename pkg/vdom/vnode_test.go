package vdom

import "testing"

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindFragment, "Fragment"},
		{KindRaw, "Raw"},
		{VKind(42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("VKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestElArguments(t *testing.T) {
	var missing *VNode
	node := Div(
		Class("card"),
		[]Attr{ID("main"), {}},
		nil,
		missing,
		"hello",
		[]*VNode{Span("a"), nil, Span("b")},
	)

	if node.Tag != "div" || node.Kind != KindElement {
		t.Fatalf("node = %+v, want div element", node)
	}
	if node.Props["class"] != "card" || node.Props["id"] != "main" {
		t.Errorf("Props = %v", node.Props)
	}
	if len(node.Props) != 2 {
		t.Errorf("len(Props) = %d, want 2 (empty attrs skipped)", len(node.Props))
	}
	if len(node.Children) != 3 {
		t.Fatalf("len(Children) = %d, want 3", len(node.Children))
	}
	if got := node.TextContent(); got != "helloab" {
		t.Errorf("TextContent() = %q, want %q", got, "helloab")
	}
}

func TestElPanicsOnUnsupportedArgument(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("El() with an int argument did not panic")
		}
	}()
	Div(42)
}

func TestFragment(t *testing.T) {
	f := Fragment(P("x"), "y")
	if f.Kind != KindFragment {
		t.Errorf("Kind = %v, want Fragment", f.Kind)
	}
	if f.Props != nil {
		t.Errorf("Props = %v, want nil", f.Props)
	}
	if len(f.Children) != 2 {
		t.Errorf("len(Children) = %d, want 2", len(f.Children))
	}
}

func TestFind(t *testing.T) {
	tree := Div(Nav(A(Href("/"), "Home")), Main(P(ID("msg"), "hi")))

	found := tree.Find(func(n *VNode) bool { return n.Props["id"] == "msg" })
	if found == nil || found.TextContent() != "hi" {
		t.Fatalf("Find(id=msg) = %+v", found)
	}
	if tree.Find(func(n *VNode) bool { return n.Tag == "table" }) != nil {
		t.Error("Find(table) should be nil")
	}
	var nilNode *VNode
	if nilNode.Find(func(*VNode) bool { return true }) != nil {
		t.Error("nil.Find should be nil")
	}
}

func TestIsVoidElement(t *testing.T) {
	if !IsVoidElement("br") || IsVoidElement("div") {
		t.Error("IsVoidElement mismatch")
	}
}
