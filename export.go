package mdslides

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-mdslides/internal/pipeline"
)

// DefaultExportTimeout bounds one PDF snapshot, browser start included.
const DefaultExportTimeout = 30 * time.Second

// ExportOption configures an Exporter.
type ExportOption func(*Exporter)

// WithTimeout sets the PDF snapshot timeout.
// Panics if d <= 0 (programmer error).
func WithTimeout(d time.Duration) ExportOption {
	if d <= 0 {
		panic("mdslides: WithTimeout duration must be positive")
	}
	return func(e *Exporter) {
		e.timeout = d
	}
}

// WithMinify enables minification of exported HTML.
func WithMinify(enabled bool) ExportOption {
	return func(e *Exporter) {
		e.minify = enabled
	}
}

// Exporter writes standalone pages and PDF snapshots of rendered documents.
// Each Exporter owns at most one headless browser, started on the first
// ExportPDF call. An Exporter is not safe for concurrent use; use an
// ExporterPool to export several documents in parallel.
type Exporter struct {
	renderer *Renderer
	minifier *pipeline.Minifier
	pdf      pdfConverter
	timeout  time.Duration
	minify   bool
}

// NewExporter creates an Exporter backed by renderer.
// The renderer may be shared between exporters.
func NewExporter(renderer *Renderer, opts ...ExportOption) *Exporter {
	e := &Exporter{
		renderer: renderer,
		minifier: pipeline.NewMinifier(),
		timeout:  DefaultExportTimeout,
	}

	for _, opt := range opts {
		opt(e)
	}

	// Create PDF converter if not injected (e.g., by tests)
	if e.pdf == nil {
		e.pdf = newRodConverter(e.timeout)
	}

	return e
}

// ExportHTML renders input as a standalone page: no live connection, assets
// resolved by input.Assets. Returns ErrEmptyMarkdown for blank documents.
func (e *Exporter) ExportHTML(ctx context.Context, input Input) (*Result, error) {
	if strings.TrimSpace(input.Markdown) == "" {
		return nil, ErrEmptyMarkdown
	}
	input.LiveURL = ""

	result, err := e.renderer.Render(ctx, input)
	if err != nil {
		return nil, err
	}

	if e.minify {
		page, err := e.minifier.MinifyHTML(result.HTML)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMinify, err)
		}
		result.HTML = page
	}
	return result, nil
}

// ExportPDF renders input with every slide on its own page and prints the
// page once the browser finished drawing diagrams and math.
// Slides print in landscape, previews in portrait.
func (e *Exporter) ExportPDF(ctx context.Context, input Input) ([]byte, error) {
	input.PrintAll = true

	result, err := e.ExportHTML(ctx, input)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	pdf, err := e.pdf.ToPDF(ctx, result.HTML, &pdfOptions{
		Landscape: result.Mode == ModeSlides,
	})
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}
	return pdf, nil
}

// Close releases the browser, if one was started.
func (e *Exporter) Close() error {
	if e.pdf != nil {
		return e.pdf.Close()
	}
	return nil
}
