package mdslides

import (
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/go-mdslides/internal/assets"
)

// Chroma styles for highlighted code blocks in preview mode.
const (
	chromaLightStyle = "github"
	chromaDarkStyle  = "monokai"
)

// pageStyles holds every stylesheet a page may need, loaded once per Renderer.
type pageStyles struct {
	light       string
	dark        string
	slides      string
	preview     string
	chromaLight string
	chromaDark  string
	custom      string
}

// loadPageStyles loads the built-in palettes and layouts through loader and
// generates the syntax highlighting CSS.
func loadPageStyles(loader assets.AssetLoader) (*pageStyles, error) {
	s := &pageStyles{}
	for _, entry := range []struct {
		name string
		dst  *string
	}{
		{assets.LightStyleName, &s.light},
		{assets.DarkStyleName, &s.dark},
		{assets.SlidesStyleName, &s.slides},
		{assets.PreviewStyleName, &s.preview},
	} {
		css, err := loader.LoadStyle(entry.name)
		if err != nil {
			return nil, fmt.Errorf("loading %s style: %w", entry.name, convertAssetError(err))
		}
		*entry.dst = css
	}

	var err error
	if s.chromaLight, err = buildChromaCSS(chromaLightStyle); err != nil {
		return nil, err
	}
	if s.chromaDark, err = buildChromaCSS(chromaDarkStyle); err != nil {
		return nil, err
	}
	return s, nil
}

// css assembles the stylesheet for a page.
// Order: palette, layout, highlighting, custom. Later rules win.
func (s *pageStyles) css(mode Mode, dark bool) string {
	var buf strings.Builder

	if dark {
		buf.WriteString(s.dark)
	} else {
		buf.WriteString(s.light)
	}
	buf.WriteString("\n")

	switch mode {
	case ModePreview:
		buf.WriteString(s.preview)
		buf.WriteString("\n")
		if dark {
			buf.WriteString(s.chromaDark)
		} else {
			buf.WriteString(s.chromaLight)
		}
	default:
		buf.WriteString(s.slides)
	}

	if s.custom != "" {
		buf.WriteString("\n/* Custom style */\n")
		buf.WriteString(s.custom)
	}
	return buf.String()
}

// buildChromaCSS generates class-based CSS for a chroma style, matching the
// classes emitted by the goldmark highlighting extension.
// Unknown style names fall back to chroma's default style.
func buildChromaCSS(styleName string) (string, error) {
	style := styles.Get(styleName)
	formatter := chromahtml.New(chromahtml.WithClasses(true))

	var buf strings.Builder
	if err := formatter.WriteCSS(&buf, style); err != nil {
		return "", fmt.Errorf("generating %s highlight CSS: %w", styleName, err)
	}
	return buf.String(), nil
}
