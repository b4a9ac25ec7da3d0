package render

import (
	"fmt"
	"io"
	"net/http"

	"github.com/vango-dev/blogshell/pkg/vdom"
)

// resolvedTemplateID is the id of the template carrying a streamed tree.
const resolvedTemplateID = "shell-resolved"

// swapScript moves the streamed template into the application container.
var swapScript = fmt.Sprintf(`(function(){var t=document.getElementById(%q),a=document.getElementById(%q);`+
	`if(t&&a){a.replaceChildren(t.content.cloneNode(true));t.remove();}})();`, resolvedTemplateID, AppContainerID)

// StreamingRenderer wraps Renderer with chunked output support.
// It flushes the document shell and placeholder before the routed tree is
// known, and appends the resolved tree once the activation completes.
type StreamingRenderer struct {
	*Renderer
	flusher http.Flusher
	w       io.Writer
}

// NewStreamingRenderer creates a streaming renderer that writes to
// an http.ResponseWriter. If the writer implements http.Flusher,
// content is flushed after each section.
func NewStreamingRenderer(w http.ResponseWriter) *StreamingRenderer {
	flusher, _ := w.(http.Flusher)
	return &StreamingRenderer{
		Renderer: NewRenderer(),
		flusher:  flusher,
		w:        w,
	}
}

// Open writes the document shell with page.Body (the placeholder) inside the
// application container, then flushes.
func (s *StreamingRenderer) Open(page PageData) error {
	if err := s.openDocument(s.w, page); err != nil {
		return err
	}
	s.flush()
	return nil
}

// Resolve streams the resolved tree and the script that swaps it into place.
func (s *StreamingRenderer) Resolve(tree *vdom.VNode) error {
	if _, err := fmt.Fprintf(s.w, "<template id=\"%s\">", resolvedTemplateID); err != nil {
		return err
	}
	if err := s.RenderToWriter(s.w, tree); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "</template>\n<script>%s</script>\n", swapScript); err != nil {
		return err
	}
	s.flush()
	return nil
}

// Close finishes the document.
func (s *StreamingRenderer) Close(page PageData) error {
	if err := s.closeDocument(s.w, page); err != nil {
		return err
	}
	s.flush()
	return nil
}

// flush flushes the writer if it supports flushing.
func (s *StreamingRenderer) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

// FlushableWriter wraps an io.Writer with optional flushing capability.
// This is useful for testing streaming behavior without an http.ResponseWriter.
type FlushableWriter struct {
	io.Writer
	FlushCount int
}

// Flush implements http.Flusher.
func (w *FlushableWriter) Flush() {
	w.FlushCount++
}
