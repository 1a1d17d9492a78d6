package mdslides

// Notes:
// - loadPageStyles: tests built-in styles load and chroma CSS is generated
// - pageStyles.css: tests stylesheet order per mode and palette
// - buildChromaCSS: tests class-based output and fallback for unknown styles

import (
	"strings"
	"testing"

	"github.com/alnah/go-mdslides/internal/assets"
)

func newTestStyles() *pageStyles {
	return &pageStyles{
		light:       "/* light */",
		dark:        "/* dark */",
		slides:      "/* slides */",
		preview:     "/* preview */",
		chromaLight: "/* chroma-light */",
		chromaDark:  "/* chroma-dark */",
	}
}

// ---------------------------------------------------------------------------
// TestLoadPageStyles - Built-in Styles
// ---------------------------------------------------------------------------

func TestLoadPageStyles(t *testing.T) {
	t.Parallel()

	s, err := loadPageStyles(assets.NewEmbeddedLoader())
	if err != nil {
		t.Fatalf("loadPageStyles() error = %v", err)
	}

	for name, css := range map[string]string{
		"light":        s.light,
		"dark":         s.dark,
		"slides":       s.slides,
		"preview":      s.preview,
		"chroma light": s.chromaLight,
		"chroma dark":  s.chromaDark,
	} {
		if strings.TrimSpace(css) == "" {
			t.Errorf("%s style is empty", name)
		}
	}
	if s.chromaLight == s.chromaDark {
		t.Error("light and dark highlight styles should differ")
	}
}

// ---------------------------------------------------------------------------
// TestPageStyles_CSS - Stylesheet Assembly
// ---------------------------------------------------------------------------

func TestPageStyles_CSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mode    Mode
		dark    bool
		custom  string
		want    []string
		notWant []string
	}{
		{
			name:    "slides light",
			mode:    ModeSlides,
			want:    []string{"/* light */", "/* slides */"},
			notWant: []string{"/* dark */", "/* preview */", "chroma"},
		},
		{
			name:    "slides dark",
			mode:    ModeSlides,
			dark:    true,
			want:    []string{"/* dark */", "/* slides */"},
			notWant: []string{"/* light */"},
		},
		{
			name:    "preview light",
			mode:    ModePreview,
			want:    []string{"/* light */", "/* preview */", "/* chroma-light */"},
			notWant: []string{"/* slides */", "/* chroma-dark */"},
		},
		{
			name:    "preview dark",
			mode:    ModePreview,
			dark:    true,
			want:    []string{"/* dark */", "/* preview */", "/* chroma-dark */"},
			notWant: []string{"/* chroma-light */"},
		},
		{
			name:   "custom style last",
			mode:   ModeSlides,
			custom: ".x { color: red; }",
			want:   []string{"/* Custom style */", ".x { color: red; }"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestStyles()
			s.custom = tt.custom
			css := s.css(tt.mode, tt.dark)

			for _, want := range tt.want {
				if !strings.Contains(css, want) {
					t.Errorf("css missing %q\ngot: %s", want, css)
				}
			}
			for _, unwanted := range tt.notWant {
				if strings.Contains(css, unwanted) {
					t.Errorf("css should not contain %q\ngot: %s", unwanted, css)
				}
			}
		})
	}
}

func TestPageStyles_CSSOrder(t *testing.T) {
	t.Parallel()

	s := newTestStyles()
	s.custom = "/* custom */"
	css := s.css(ModePreview, false)

	order := []string{"/* light */", "/* preview */", "/* chroma-light */", "/* custom */"}
	last := -1
	for _, part := range order {
		idx := strings.Index(css, part)
		if idx <= last {
			t.Fatalf("%q out of order in:\n%s", part, css)
		}
		last = idx
	}
}

// ---------------------------------------------------------------------------
// TestBuildChromaCSS - Syntax Highlighting CSS
// ---------------------------------------------------------------------------

func TestBuildChromaCSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		style string
	}{
		{"light style", chromaLightStyle},
		{"dark style", chromaDarkStyle},
		{"unknown falls back", "no-such-style"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			css, err := buildChromaCSS(tt.style)
			if err != nil {
				t.Fatalf("buildChromaCSS(%q) error = %v", tt.style, err)
			}
			if !strings.Contains(css, ".chroma") {
				t.Errorf("buildChromaCSS(%q) should emit .chroma classes", tt.style)
			}
		})
	}
}
