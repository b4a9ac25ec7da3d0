package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type countingObserver struct {
	opened, closed, dropped atomic.Int64
}

func (o *countingObserver) SessionOpened() { o.opened.Add(1) }
func (o *countingObserver) SessionClosed() { o.closed.Add(1) }
func (o *countingObserver) FrameDropped()  { o.dropped.Add(1) }

func dialNav(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + navPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	hello := readFrame(t, conn)
	if hello.Type != FrameHello || hello.Session == "" {
		t.Fatalf("first frame = %+v, want hello with session id", hello)
	}
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func sendNavigate(t *testing.T, conn *websocket.Conn, path string) {
	t.Helper()
	if err := conn.WriteJSON(Frame{Type: FrameNavigate, Path: path}); err != nil {
		t.Fatalf("write navigate: %v", err)
	}
}

func TestNavSessionNavigate(t *testing.T) {
	app := newTestApp(t)
	s := New(app.router, quietConfig())
	srv := httptest.NewServer(s)
	defer srv.Close()
	conn := dialNav(t, srv)

	sendNavigate(t, conn, "/")
	f := readFrame(t, conn)
	if f.Type != FrameView || f.Status != http.StatusOK || f.Path != "/" {
		t.Fatalf("frame = %+v, want view 200 for /", f)
	}
	if f.HTML != `<div class="layout"><p>home</p></div>` {
		t.Errorf("html = %q", f.HTML)
	}
}

func TestNavSessionFallbackThenView(t *testing.T) {
	app := newTestApp(t)
	s := New(app.router, quietConfig())
	srv := httptest.NewServer(s)
	defer srv.Close()
	conn := dialNav(t, srv)

	sendNavigate(t, conn, "/slow")
	fb := readFrame(t, conn)
	if fb.Type != FrameFallback || !strings.Contains(fb.HTML, "Loading...") {
		t.Fatalf("first frame = %+v, want fallback", fb)
	}

	close(app.release)
	v := readFrame(t, conn)
	if v.Type != FrameView || v.Token != fb.Token || !strings.Contains(v.HTML, "slow page") {
		t.Errorf("second frame = %+v, want view with token %d", v, fb.Token)
	}
}

func TestNavSessionDropsSupersededResults(t *testing.T) {
	app := newTestApp(t)
	obs := &countingObserver{}
	cfg := quietConfig()
	cfg.Sessions = obs
	s := New(app.router, cfg)
	srv := httptest.NewServer(s)
	defer srv.Close()
	conn := dialNav(t, srv)

	sendNavigate(t, conn, "/slow")
	if fb := readFrame(t, conn); fb.Type != FrameFallback {
		t.Fatalf("frame = %+v, want fallback", fb)
	}
	sendNavigate(t, conn, "/")
	home := readFrame(t, conn)
	if home.Type != FrameView || home.Path != "/" {
		t.Fatalf("frame = %+v, want view of /", home)
	}

	// Let the superseded fetch finish; its view must not be delivered.
	close(app.release)
	deadline := time.Now().Add(5 * time.Second)
	for obs.dropped.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if obs.dropped.Load() != 1 {
		t.Fatalf("dropped = %d, want 1", obs.dropped.Load())
	}

	sendNavigate(t, conn, "/")
	next := readFrame(t, conn)
	if next.Type != FrameView || next.Path != "/" || next.Token <= home.Token {
		t.Errorf("frame after drop = %+v, want a newer view of /", next)
	}
}

func TestNavSessionErrors(t *testing.T) {
	app := newTestApp(t)
	s := New(app.router, quietConfig())
	srv := httptest.NewServer(s)
	defer srv.Close()
	conn := dialNav(t, srv)

	sendNavigate(t, conn, "https://evil.example/")
	f := readFrame(t, conn)
	if f.Type != FrameError || f.Code != "E301" || f.Status != http.StatusBadRequest {
		t.Errorf("frame = %+v, want E301 error", f)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	f = readFrame(t, conn)
	if f.Type != FrameError || f.Code != "E300" {
		t.Errorf("frame = %+v, want E300 error", f)
	}
}

func TestNavSessionLifecycle(t *testing.T) {
	app := newTestApp(t)
	obs := &countingObserver{}
	cfg := quietConfig()
	cfg.Sessions = obs
	s := New(app.router, cfg)
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dialNav(t, srv)
	if s.SessionCount() != 1 || obs.opened.Load() != 1 {
		t.Fatalf("sessions = %d, opened = %d", s.SessionCount(), obs.opened.Load())
	}
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for s.SessionCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.SessionCount() != 0 || obs.closed.Load() != 1 {
		t.Errorf("after close: sessions = %d, closed = %d", s.SessionCount(), obs.closed.Load())
	}
}
