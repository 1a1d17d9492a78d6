package mdslides

import (
	"errors"

	"github.com/alnah/go-mdslides/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown  = errors.New("markdown content cannot be empty")
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrPageRender     = errors.New("page rendering failed")
	ErrRender         = errors.New("render failed")
	ErrMinify         = errors.New("minification failed")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Input validation errors.
	ErrInvalidTheme = errors.New("invalid theme")
	ErrInvalidMode  = errors.New("invalid mode")

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)

// ErrUnresolvedPlaceholder marks a placeholder token left in the output
// because no fragment matched it. Render does not fail on it: the token stays
// visible, Result.Unresolved lists the indices and a warning is logged.
var ErrUnresolvedPlaceholder = pipeline.ErrUnresolvedPlaceholder
