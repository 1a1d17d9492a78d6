package pipeline

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
)

// ErrMinify indicates the minifier rejected the document.
var ErrMinify = errors.New("minification failed")

// Minifier shrinks standalone pages for export.
// Scripts are left as written: the minifier has no JS handler registered and
// copies script bodies through unchanged.
type Minifier struct {
	m *minify.M
}

// NewMinifier creates a Minifier for HTML pages with inline CSS.
func NewMinifier() *Minifier {
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^text/css;"), css.Minify)
	return &Minifier{m: m}
}

// MinifyHTML returns the minified page.
func (m *Minifier) MinifyHTML(page string) (string, error) {
	out, err := m.m.String("text/html", page)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMinify, err)
	}
	return out, nil
}
