package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// ErrPageRender indicates the page template failed to render.
var ErrPageRender = errors.New("page template rendering failed")

// PageData is everything a page template can reference.
type PageData struct {
	Title        string
	Nonce        string        // CSP nonce for inline scripts
	MermaidTheme string        // default, dark, forest or neutral
	Dark         bool          // page colors follow the dark palette
	Diagrams     []string      // diagram sources in document order
	Body         template.HTML // restored document body (preview)
	Outline      template.HTML // rendered outline (preview)
	LiveURL      string        // WebSocket endpoint; empty for static pages
	PrintAll     bool          // lay out every slide for printing
	CSS          string        // page styles, placed in the head
}

// Stylesheet returns CSS for the template's <style> element in the head.
// A "</" sequence would end the element early, so it is escaped.
func (d *PageData) Stylesheet() template.CSS {
	return template.CSS(strings.ReplaceAll(d.CSS, "</", `<\/`)) // #nosec G203 -- built-in or user styles, escaped above
}

// PageRenderer defines the contract for assembling a complete page.
type PageRenderer interface {
	RenderPage(ctx context.Context, data *PageData) (string, error)
}

// PageTemplate renders a complete HTML page from a template.
type PageTemplate struct {
	tmpl *template.Template
}

// NewPageTemplate creates a PageTemplate from template content.
// Returns error if the template cannot be parsed.
func NewPageTemplate(name, tmplContent string) (*PageTemplate, error) {
	tmpl, err := template.New(name).Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing %s template: %w", name, err)
	}

	return &PageTemplate{tmpl: tmpl}, nil
}

// RenderPage executes the template with data.
// Body and Outline are trusted markup; every other field is escaped for the
// context it appears in (Diagrams become a JSON array inside scripts).
func (p *PageTemplate) RenderPage(ctx context.Context, data *PageData) (string, error) {
	// Check for cancellation
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	var page PageData
	if data != nil {
		page = *data
	}
	// Marshal as [] rather than null.
	if page.Diagrams == nil {
		page.Diagrams = []string{}
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, &page); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	return buf.String(), nil
}
