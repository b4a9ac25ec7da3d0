package render

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vango-dev/blogshell/pkg/vdom"
)

func TestStreamingRendererSequence(t *testing.T) {
	w := httptest.NewRecorder()
	sr := NewStreamingRenderer(w)
	page := PageData{Title: "Posts", Body: vdom.P("Loading...")}

	if err := sr.Open(page); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !w.Flushed {
		t.Error("Open() should flush the shell")
	}
	shell := w.Body.String()
	if !strings.Contains(shell, `<div id="app"><p>Loading...</p></div>`) {
		t.Errorf("shell missing placeholder:\n%s", shell)
	}
	if strings.Contains(shell, "</html>") {
		t.Error("shell should not close the document")
	}

	if err := sr.Resolve(vdom.Ul(vdom.Li("first post"))); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if err := sr.Close(page); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	html := w.Body.String()
	tmpl := `<template id="shell-resolved"><ul><li>first post</li></ul></template>`
	if !strings.Contains(html, tmpl) {
		t.Errorf("missing resolved template:\n%s", html)
	}
	if strings.Index(html, "Loading...") > strings.Index(html, tmpl) {
		t.Error("placeholder must be written before the resolved tree")
	}
	if !strings.Contains(html, "replaceChildren") {
		t.Error("missing swap script")
	}
	if !strings.HasSuffix(html, "</html>\n") {
		t.Error("document not closed")
	}
}

func TestStreamingRendererFlushes(t *testing.T) {
	var buf bytes.Buffer
	fw := &FlushableWriter{Writer: &buf}
	sr := &StreamingRenderer{Renderer: NewRenderer(), flusher: fw, w: fw}

	page := PageData{Body: vdom.Div("Content")}
	if err := sr.Open(page); err != nil {
		t.Fatal(err)
	}
	if err := sr.Resolve(vdom.Div("Done")); err != nil {
		t.Fatal(err)
	}
	if err := sr.Close(page); err != nil {
		t.Fatal(err)
	}
	if fw.FlushCount != 3 {
		t.Errorf("FlushCount = %d, want 3", fw.FlushCount)
	}
}
