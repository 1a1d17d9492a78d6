package mdslides

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"strings"

	"github.com/alnah/go-mdslides/internal/assets"
	"github.com/alnah/go-mdslides/internal/fileutil"
	"github.com/alnah/go-mdslides/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.PageRenderer         = (*pipeline.PageTemplate)(nil)
	_ pipeline.AssetResolver        = AssetResolver(nil)
)

// Default page titles when the document has no level-1 heading.
const (
	defaultSlidesTitle  = "Mermaid Slides"
	defaultPreviewTitle = "Markdown Preview"
)

// Renderer turns Markdown snapshots into display pages.
// Create with NewRenderer. A Renderer is safe for concurrent use.
type Renderer struct {
	cfg               rendererConfig
	logger            *slog.Logger
	assetLoader       assets.AssetLoader
	publicAssetLoader AssetLoader
	preprocessor      pipeline.MarkdownPreprocessor
	htmlConverter     pipeline.HTMLConverter
	pages             map[Mode]pipeline.PageRenderer
	waiting           pipeline.PageRenderer
	styles            *pageStyles
	cache             *renderCache
	nonce             func() string
}

// NewRenderer creates a Renderer with default configuration.
// Use options to customize behavior (e.g., WithStyle, WithAssetPath, WithLogger).
// Returns error if asset loading or template parsing fails.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		cfg: rendererConfig{
			cacheSize: DefaultCacheSize,
			ambient:   EnvAmbient,
		},
		logger:        discardLogger(),
		assetLoader:   assets.NewEmbeddedLoader(),
		preprocessor:  &pipeline.CommonMarkPreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
		nonce:         newNonce,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(r.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		r.assetLoader = resolver
	}

	// The public interface has the same method set as the internal one.
	if r.publicAssetLoader != nil {
		r.assetLoader = r.publicAssetLoader
	}

	if err := r.resolveStyle(); err != nil {
		return nil, err
	}

	styles, err := loadPageStyles(r.assetLoader)
	if err != nil {
		return nil, err
	}
	styles.custom = r.cfg.resolvedStyle
	r.styles = styles

	r.pages = make(map[Mode]pipeline.PageRenderer, len(Modes))
	for _, entry := range []struct {
		mode Mode
		name string
	}{
		{ModeSlides, SlidesTemplate},
		{ModePreview, PreviewTemplate},
	} {
		page, err := r.loadPage(entry.name)
		if err != nil {
			return nil, err
		}
		r.pages[entry.mode] = page
	}

	if r.waiting, err = r.loadPage(WaitingTemplate); err != nil {
		return nil, err
	}

	r.cache = newRenderCache(r.cfg.cacheSize)
	return r, nil
}

func (r *Renderer) loadPage(name string) (*pipeline.PageTemplate, error) {
	content, err := r.assetLoader.LoadTemplate(name)
	if err != nil {
		return nil, fmt.Errorf("loading %s template: %w", name, convertAssetError(err))
	}
	page, err := pipeline.NewPageTemplate(name, content)
	if err != nil {
		return nil, fmt.Errorf("initializing %s template: %w", name, err)
	}
	return page, nil
}

// resolveStyle resolves the style input (name, path, or CSS content) to CSS content.
func (r *Renderer) resolveStyle() error {
	input := r.cfg.styleInput
	if input == "" {
		return nil
	}

	// File path? (contains / or \)
	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("loading style file %q: %w", input, err)
		}
		r.cfg.resolvedStyle = string(content)
		return nil
	}

	// CSS content? (contains {)
	if strings.Contains(input, "{") {
		r.cfg.resolvedStyle = input
		return nil
	}

	css, err := r.assetLoader.LoadStyle(input)
	if err != nil {
		return fmt.Errorf("loading style %q: %w", input, convertAssetError(err))
	}
	r.cfg.resolvedStyle = css
	return nil
}

// Render runs the full pipeline and returns the page for input.Mode.
// The stages run in a fixed order: headings and fragments are extracted,
// diagrams and math are protected behind placeholders, the text is converted
// with goldmark, anchors are injected, placeholders are restored and image
// references are rewritten. The result is then placed in the page template.
//
// Unresolved placeholders do not fail the render; see Result.Unresolved.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (r *Renderer) Render(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = fmt.Errorf("%w: internal error: %v", ErrRender, p)
		}
	}()

	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := input.Mode.orDefault()
	theme := input.Theme.Resolve(r.cfg.ambient)

	markdown := r.preprocessor.PreprocessMarkdown(ctx, input.Markdown)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conv, err := r.convert(ctx, markdown)
	if err != nil {
		return nil, err
	}

	body := conv.body
	if input.Assets != nil {
		body = pipeline.RewriteAssetRefs(body, input.Assets, func(ref string, err error) {
			r.logger.Debug("asset reference kept", "ref", ref, "error", err)
		})
	}

	data := &pipeline.PageData{
		Title:        pageTitle(input.Title, conv.headings, mode),
		Nonce:        r.nonce(),
		MermaidTheme: string(theme),
		Dark:         theme.Dark(),
		Diagrams:     conv.diagrams,
		LiveURL:      input.LiveURL,
		PrintAll:     input.PrintAll,
		CSS:          r.styles.css(mode, theme.Dark()),
	}
	if input.CSS != "" {
		data.CSS += "\n" + input.CSS
	}
	if mode == ModePreview {
		data.Body = template.HTML(body)            // #nosec G203 -- goldmark output without WithUnsafe
		data.Outline = template.HTML(conv.outline) // #nosec G203 -- labels sanitized by bluemonday
	}

	page, err := r.pages[mode].RenderPage(ctx, data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPageRender, err)
	}

	return &Result{
		HTML:       page,
		Body:       body,
		Outline:    conv.outline,
		Diagrams:   append([]string{}, conv.diagrams...),
		Headings:   append([]Heading(nil), conv.headings...),
		Theme:      theme,
		Mode:       mode,
		Unresolved: append([]int(nil), conv.unresolved...),
	}, nil
}

// convert runs the text-dependent stages, consulting the cache first.
func (r *Renderer) convert(ctx context.Context, markdown string) (*converted, error) {
	key := cacheKey(markdown)
	if c, ok := r.cache.get(key); ok {
		return c, nil
	}

	ex := pipeline.Extract(markdown)

	htmlContent, err := r.htmlConverter.ToHTML(ctx, ex.Protected)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}

	htmlContent = pipeline.InjectAnchors(htmlContent, ex.Headings)

	var unresolved []int
	body, err := pipeline.Restore(htmlContent, ex.Fragments, pipeline.RenderFragment)
	if err != nil {
		var upe *pipeline.UnresolvedPlaceholderError
		if !errors.As(err, &upe) {
			return nil, fmt.Errorf("restoring fragments: %w", err)
		}
		unresolved = upe.Indices
		r.logger.Warn("unresolved placeholders left in output", "indices", upe.Indices)
	}

	c := &converted{
		body:       body,
		outline:    pipeline.RenderOutline(pipeline.BuildOutline(ex.Headings)),
		diagrams:   ex.Diagrams(),
		headings:   toHeadings(ex.Headings),
		unresolved: unresolved,
	}
	r.cache.add(key, c)
	return c, nil
}

// RenderWaiting returns the page shown before any document is open.
func (r *Renderer) RenderWaiting(ctx context.Context, theme Theme, liveURL string) (string, error) {
	if err := theme.Validate(); err != nil {
		return "", err
	}
	resolved := theme.Resolve(r.cfg.ambient)

	palette := r.styles.light
	if resolved.Dark() {
		palette = r.styles.dark
	}

	page, err := r.waiting.RenderPage(ctx, &pipeline.PageData{
		Title:        defaultSlidesTitle,
		Nonce:        r.nonce(),
		MermaidTheme: string(resolved),
		Dark:         resolved.Dark(),
		LiveURL:      liveURL,
		CSS:          palette + "\n" + r.styles.slides,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	return page, nil
}

// pageTitle picks the explicit title, then the first level-1 heading, then
// the mode default.
func pageTitle(title string, headings []Heading, mode Mode) string {
	if title != "" {
		return title
	}
	for _, h := range headings {
		if h.Level == 1 && h.Text != "" {
			return h.Text
		}
	}
	if mode == ModePreview {
		return defaultPreviewTitle
	}
	return defaultSlidesTitle
}

func toHeadings(hs []pipeline.Heading) []Heading {
	if len(hs) == 0 {
		return nil
	}
	out := make([]Heading, len(hs))
	for i, h := range hs {
		out[i] = Heading(h)
	}
	return out
}

// newNonce returns a random 32-character CSP nonce.
func newNonce() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b) // never fails; crashes the program instead
	return base64.RawURLEncoding.EncodeToString(b)
}
