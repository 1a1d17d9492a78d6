package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// HTMLConverter turns protected Markdown into an HTML fragment.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter is the goldmark-backed HTMLConverter.
//
// Raw HTML is not passed through: diagrams and math reach the page as
// placeholders restored after conversion, so nothing else needs it.
// Headings come out without ids; InjectAnchors assigns them.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a converter with GFM, footnotes and
// class-based chroma highlighting. The highlight colors come from the page
// stylesheet.
func NewGoldmarkConverter() *GoldmarkConverter {
	return &GoldmarkConverter{md: goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)}
}

// ToHTML converts content. goldmark takes no context, so the conversion
// runs in its own goroutine and ctx only bounds how long we wait for it.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	out := make(chan string, 1)
	fail := make(chan error, 1)
	go func() {
		var buf bytes.Buffer
		buf.Grow(len(content) * 2)
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			fail <- fmt.Errorf("%w: %v", ErrHTMLConversion, err)
			return
		}
		out <- buf.String()
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-fail:
		return "", err
	case s := <-out:
		return s, nil
	}
}
