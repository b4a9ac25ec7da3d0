package server

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/vango-dev/blogshell/pkg/render"
	"github.com/vango-dev/blogshell/pkg/router"
	"github.com/vango-dev/blogshell/pkg/vdom"
)

// servePage activates the requested path and renders the document.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	rawPath := r.URL.EscapedPath()
	canonical, _, err := router.CanonicalizePath(rawPath)
	if err != nil {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	if canonical != rawPath {
		target := canonical
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
		return
	}

	input := canonical
	if r.URL.RawQuery != "" {
		input += "?" + r.URL.RawQuery
	}
	a := s.router.Activate(r.Context(), input)
	defer a.Cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if ph := a.Placeholder(); ph != nil && s.config.Streaming {
		s.streamPage(w, r, a, ph)
		return
	}

	res, err := a.Wait(r.Context())
	if err != nil {
		// Client went away.
		return
	}
	var buf bytes.Buffer
	if err := render.NewRenderer().RenderPage(&buf, s.page(res.Tree)); err != nil {
		s.logger.Error("render page", "path", canonical, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(res.Status)
	_, _ = w.Write(buf.Bytes())
}

// streamPage flushes the shell with the placeholder, then the resolved tree.
// The status is committed before the outcome is known and is always 200.
func (s *Server) streamPage(w http.ResponseWriter, r *http.Request, a *router.Activation, placeholder *vdom.VNode) {
	sr := render.NewStreamingRenderer(w)
	page := s.page(placeholder)

	w.WriteHeader(http.StatusOK)
	if err := sr.Open(page); err != nil {
		s.logger.Debug("stream open", "path", a.Path(), "error", err)
		return
	}

	res, err := a.Wait(r.Context())
	if err != nil {
		if !errors.Is(err, r.Context().Err()) {
			s.logger.Warn("stream wait", "path", a.Path(), "error", err)
		}
		return
	}
	if err := sr.Resolve(res.Tree); err != nil {
		s.logger.Debug("stream resolve", "path", a.Path(), "error", err)
		return
	}
	_ = sr.Close(page)
}

func (s *Server) page(body *vdom.VNode) render.PageData {
	return render.PageData{
		Body:        body,
		Title:       s.config.Title,
		Lang:        s.config.Lang,
		StyleSheets: s.config.StyleSheets,
		Scripts:     []string{clientPath},
	}
}
