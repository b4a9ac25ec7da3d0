package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/blogshell/pkg/lazy"
	"github.com/vango-dev/blogshell/pkg/router"
	"github.com/vango-dev/blogshell/pkg/vdom"
)

func text(s string) router.View {
	return func(*router.ViewContext) *vdom.VNode { return vdom.P(s) }
}

// testApp is a small route table with one deferred view gated by release.
type testApp struct {
	release chan struct{}
	slow    *lazy.Module[router.View]
	router  *router.Router
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	app := &testApp{release: make(chan struct{})}
	app.slow = lazy.New("pages/slow", func(ctx context.Context) (router.View, error) {
		select {
		case <-app.release:
			return text("slow page"), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	layout := func(vc *router.ViewContext) *vdom.VNode {
		return vdom.Div(vdom.Class("layout"), vc.Outlet)
	}
	app.router = router.MustNew([]router.Route{{
		Path:    "/",
		Element: router.Static(layout),
		ErrorElement: func(vc *router.ViewContext, err error) *vdom.VNode {
			return vdom.P("oops")
		},
		Children: []router.Route{
			{Index: true, Element: router.Static(text("home"))},
			{Path: "slow", Element: router.Lazy(app.slow, func(v router.View) router.View { return v }), Fallback: text("Loading...")},
			{Path: "broken", Element: router.Static(text("never")), Loader: func(context.Context, router.LoaderArgs) (any, error) {
				return nil, router.WithStatus(http.StatusNotFound, errors.New("gone"))
			}},
		},
	}})
	return app
}

func quietConfig() *Config {
	cfg := DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg.Gatherer = prometheus.NewRegistry()
	return cfg
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServePageStatic(t *testing.T) {
	app := newTestApp(t)
	s := New(app.router, quietConfig())

	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		`<div id="app"><div class="layout"><p>home</p></div></div>`,
		`<script src="/_shell/client.js" defer></script>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "<template") {
		t.Error("resolved routes should not stream")
	}
}

func TestServePageStatuses(t *testing.T) {
	app := newTestApp(t)
	s := New(app.router, quietConfig())

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/nowhere", http.StatusNotFound, "Not found"},
		{"/broken", http.StatusNotFound, "oops"},
	}
	for _, tt := range tests {
		rec := get(t, s, tt.path)
		if rec.Code != tt.status {
			t.Errorf("GET %s status = %d, want %d", tt.path, rec.Code, tt.status)
		}
		if !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("GET %s body missing %q", tt.path, tt.want)
		}
	}
}

func TestServePageRedirectsToCanonicalPath(t *testing.T) {
	app := newTestApp(t)
	s := New(app.router, quietConfig())

	rec := get(t, s, "/slow/?x=1")
	if rec.Code != http.StatusPermanentRedirect {
		t.Fatalf("status = %d, want 308", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/slow?x=1" {
		t.Errorf("Location = %q, want /slow?x=1", loc)
	}
}

func TestServePageStreamsPendingView(t *testing.T) {
	app := newTestApp(t)
	s := New(app.router, quietConfig())
	close(app.release)

	rec := get(t, s, "/slow")
	body := rec.Body.String()

	placeholder := strings.Index(body, "<p>Loading...</p>")
	resolved := strings.Index(body, `<template id="shell-resolved"><div class="layout"><p>slow page</p></div></template>`)
	if placeholder < 0 || resolved < 0 {
		t.Fatalf("body missing placeholder or resolved template:\n%s", body)
	}
	if placeholder > resolved {
		t.Error("placeholder should be written before the resolved tree")
	}
	if !strings.HasSuffix(strings.TrimSpace(body), "</html>") {
		t.Error("document should be closed after streaming")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestServePageWithoutStreamingWaits(t *testing.T) {
	app := newTestApp(t)
	cfg := quietConfig()
	cfg.Streaming = false
	s := New(app.router, cfg)
	close(app.release)

	body := get(t, s, "/slow").Body.String()
	if strings.Contains(body, "Loading...") || strings.Contains(body, "<template") {
		t.Errorf("non-streaming render should contain only the final tree:\n%s", body)
	}
	if !strings.Contains(body, "<p>slow page</p>") {
		t.Errorf("body missing final tree:\n%s", body)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	cfg := quietConfig()
	cfg.Gatherer = reg
	s := New(app.router, cfg)

	if rec := get(t, s, "/healthz"); rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
	rec := get(t, s, "/metrics")
	if !strings.Contains(rec.Body.String(), "test_total 1") {
		t.Errorf("metrics body missing counter:\n%s", rec.Body.String())
	}

	cfg.MetricsPath = ""
	s = New(app.router, cfg)
	if rec := get(t, s, "/metrics"); rec.Code != http.StatusNotFound {
		t.Errorf("disabled metrics status = %d, want 404 page", rec.Code)
	}
}

func TestServeClient(t *testing.T) {
	app := newTestApp(t)
	s := New(app.router, quietConfig())

	rec := get(t, s, clientPath)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/_shell/nav") {
		t.Fatalf("client.js = %d, %d bytes", rec.Code, rec.Body.Len())
	}
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, clientPath, nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Errorf("conditional GET status = %d, want 304", rec.Code)
	}
}

func TestEtagMatches(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{`"abc"`, true},
		{`W/"abc"`, true},
		{`"x", "abc"`, true},
		{`*`, true},
		{`"x"`, false},
		{``, false},
	}
	for _, tt := range tests {
		if got := etagMatches(tt.header, `"abc"`); got != tt.want {
			t.Errorf("etagMatches(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
