package render

import (
	"fmt"
	"io"

	"github.com/vango-dev/blogshell/pkg/vdom"
)

// AppContainerID is the id of the element holding the routed view tree.
const AppContainerID = "app"

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is the routed tree placed inside the application container.
	Body *vdom.VNode

	// Title is the page title.
	Title string

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified.
	Lang string

	// StyleSheets contains paths to external stylesheets.
	StyleSheets []string

	// Styles contains inline CSS styles.
	Styles []string

	// Scripts are paths of deferred scripts loaded after the body.
	Scripts []string
}

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	if err := r.openDocument(w, page); err != nil {
		return err
	}
	return r.closeDocument(w, page)
}

// openDocument writes everything up to and including the application container.
func (r *Renderer) openDocument(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"%s\">\n", escapeAttr(lang)); err != nil {
		return err
	}
	if err := r.renderHead(w, page); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "<body>\n<div id=\"%s\">", AppContainerID); err != nil {
		return err
	}
	if err := r.RenderToWriter(w, page.Body); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</div>\n")
	return err
}

// closeDocument writes the trailing scripts and closes the document.
func (r *Renderer) closeDocument(w io.Writer, page PageData) error {
	for _, src := range page.Scripts {
		if _, err := fmt.Fprintf(w, "<script src=\"%s\" defer></script>\n", escapeAttr(src)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}

// renderHead renders the document head section.
func (r *Renderer) renderHead(w io.Writer, page PageData) error {
	if _, err := io.WriteString(w, "<head>\n"+
		`  <meta charset="utf-8">`+"\n"+
		`  <meta name="viewport" content="width=device-width, initial-scale=1">`+"\n"); err != nil {
		return err
	}

	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "  <title>%s</title>\n", escapeHTML(page.Title)); err != nil {
			return err
		}
	}

	for _, href := range page.StyleSheets {
		if _, err := fmt.Fprintf(w, "  <link rel=\"stylesheet\" href=\"%s\">\n", escapeAttr(href)); err != nil {
			return err
		}
	}

	for _, style := range page.Styles {
		if _, err := fmt.Fprintf(w, "  <style>%s</style>\n", style); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</head>\n")
	return err
}
