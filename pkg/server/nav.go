package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	apperrors "github.com/vango-dev/blogshell/internal/errors"
	"github.com/vango-dev/blogshell/pkg/render"
	"github.com/vango-dev/blogshell/pkg/router"
)

// Frame types.
const (
	FrameHello    = "hello"
	FrameNavigate = "navigate"
	FrameFallback = "fallback"
	FrameView     = "view"
	FrameError    = "error"
)

// Frame is a JSON message on the navigation socket.
type Frame struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	Token   uint64 `json:"token,omitempty"`
	Path    string `json:"path,omitempty"`
	Status  int    `json:"status,omitempty"`
	HTML    string `json:"html,omitempty"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

// navSession is one client's navigation socket.
type navSession struct {
	id     string
	server *Server
	conn   *websocket.Conn
	nav    *router.Navigator
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// writeMu serializes writes and orders them with token changes.
	writeMu   sync.Mutex
	closeOnce sync.Once
}

// handleNav upgrades the connection and runs a navigation session.
func (s *Server) handleNav(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	sess := &navSession{
		id:     uuid.NewString(),
		server: s,
		conn:   conn,
		nav:    s.router.NewNavigator(),
		ctx:    ctx,
		cancel: cancel,
	}
	sess.logger = s.logger.With("session_id", sess.id)
	s.addSession(sess)
	sess.logger.Debug("session opened", "remote", r.RemoteAddr)

	if err := sess.write(Frame{Type: FrameHello, Session: sess.id}); err != nil {
		sess.close(websocket.CloseInternalServerErr, "")
		return
	}
	go sess.pingLoop()
	sess.readLoop()
}

func (n *navSession) readLoop() {
	defer n.close(websocket.CloseNormalClosure, "")

	cfg := n.server.config
	n.conn.SetReadLimit(cfg.MaxMessageSize)
	_ = n.conn.SetReadDeadline(time.Now().Add(2 * cfg.PingInterval))
	n.conn.SetPongHandler(func(string) error {
		return n.conn.SetReadDeadline(time.Now().Add(2 * cfg.PingInterval))
	})

	for {
		_, msg, err := n.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				n.logger.Warn("read error", "error", err)
			}
			return
		}
		_ = n.conn.SetReadDeadline(time.Now().Add(2 * cfg.PingInterval))

		var f Frame
		if err := json.Unmarshal(msg, &f); err != nil || f.Type != FrameNavigate {
			perr := apperrors.New("E300")
			if err != nil {
				perr = perr.Wrap(err)
			} else {
				perr = perr.WithDetailf("unexpected frame type %q", f.Type)
			}
			n.logger.Debug("bad frame", "error", perr)
			_ = n.write(Frame{Type: FrameError, Code: perr.Code, Error: perr.Error()})
			continue
		}
		n.navigate(f.Path)
	}
}

// navigate starts an activation of path and delivers its frames unless a
// later navigation supersedes it first.
func (n *navSession) navigate(path string) {
	target, err := router.ValidateNavPath(path)
	if err != nil {
		perr := apperrors.New("E301").WithDetailf("%q", path).Wrap(err)
		_ = n.write(Frame{Type: FrameError, Path: path, Status: http.StatusBadRequest, Code: perr.Code, Error: perr.Error()})
		return
	}

	// Holding writeMu while the token changes keeps a stale frame from
	// being written between the supersede check and the write.
	n.writeMu.Lock()
	a := n.nav.Navigate(n.ctx, target)
	n.logger.Debug("navigate", "path", a.Path(), "token", a.Token())
	if ph := a.Placeholder(); ph != nil {
		html, err := render.NewRenderer().RenderToString(ph)
		if err == nil {
			err = n.writeLocked(Frame{Type: FrameFallback, Token: a.Token(), Path: a.Path(), HTML: html})
		}
		if err != nil {
			n.logger.Debug("write fallback", "error", err)
		}
	}
	n.writeMu.Unlock()

	go n.deliver(a)
}

// deliver waits for the activation and sends its view if still current.
func (n *navSession) deliver(a *router.Activation) {
	res, err := a.Wait(n.ctx)
	if err != nil {
		if errors.Is(err, router.ErrSuperseded) {
			n.dropped(a)
		}
		return
	}

	html, err := render.NewRenderer().RenderToString(res.Tree)
	if err != nil {
		n.logger.Error("render view", "path", a.Path(), "error", err)
		return
	}

	n.writeMu.Lock()
	defer n.writeMu.Unlock()
	if a.Superseded() {
		n.dropped(a)
		return
	}
	if err := n.writeLocked(Frame{
		Type:   FrameView,
		Token:  a.Token(),
		Path:   a.Path(),
		Status: res.Status,
		HTML:   html,
	}); err != nil {
		n.logger.Debug("write view", "error", err)
	}
}

func (n *navSession) dropped(a *router.Activation) {
	n.logger.Debug("stale result dropped", "path", a.Path(), "token", a.Token())
	if obs := n.server.config.Sessions; obs != nil {
		obs.FrameDropped()
	}
}

func (n *navSession) write(f Frame) error {
	n.writeMu.Lock()
	defer n.writeMu.Unlock()
	return n.writeLocked(f)
}

func (n *navSession) writeLocked(f Frame) error {
	_ = n.conn.SetWriteDeadline(time.Now().Add(n.server.config.WriteTimeout))
	return n.conn.WriteJSON(f)
}

func (n *navSession) pingLoop() {
	ticker := time.NewTicker(n.server.config.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(n.server.config.WriteTimeout)
			if err := n.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				n.close(websocket.CloseGoingAway, "")
				return
			}
		case <-n.ctx.Done():
			return
		}
	}
}

// close ends the session once: pending activations are cancelled and the
// socket is closed.
func (n *navSession) close(code int, reason string) {
	n.closeOnce.Do(func() {
		n.cancel()
		n.nav.Close()
		deadline := time.Now().Add(time.Second)
		_ = n.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
		_ = n.conn.Close()
		n.server.removeSession(n)
		n.logger.Debug("session closed")
	})
}
