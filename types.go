package mdslides

import (
	"fmt"
	"strings"
)

// Mode selects how a document is displayed.
type Mode string

// Display modes.
const (
	ModeSlides  Mode = "slides"  // one Mermaid diagram per slide
	ModePreview Mode = "preview" // full document with outline, diagrams and math
)

// Modes lists every display mode.
var Modes = []Mode{ModeSlides, ModePreview}

// ParseMode converts a mode name (case-insensitive) to a Mode.
// The empty string yields ModeSlides.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return ModeSlides, nil
	}
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// Validate checks that m is a known mode. The zero value is valid and means
// ModeSlides.
func (m Mode) Validate() error {
	switch m {
	case "", ModeSlides, ModePreview:
		return nil
	}
	return fmt.Errorf("%w: %q (must be slides or preview)", ErrInvalidMode, string(m))
}

func (m Mode) orDefault() Mode {
	if m == "" {
		return ModeSlides
	}
	return m
}

// Input contains rendering parameters for one document snapshot.
type Input struct {
	Markdown string        // Markdown source; may be empty (renders the empty state)
	Theme    Theme         // Requested theme; zero value = ThemeDefault
	Mode     Mode          // Display mode; zero value = ModeSlides
	Title    string        // Page title; empty = first H1, then a mode default
	Assets   AssetResolver // Rewrites relative image references; nil keeps them
	LiveURL  string        // WebSocket endpoint for live pages; empty for static output
	PrintAll bool          // Lay out every slide on its own page (PDF export)
	CSS      string        // Extra CSS appended after the built-in styles
}

// Validate checks theme and mode.
func (in *Input) Validate() error {
	if err := in.Theme.Validate(); err != nil {
		return err
	}
	return in.Mode.Validate()
}

// Heading is a Markdown ATX heading found in the document.
type Heading struct {
	Level    int    // 1..6
	Text     string // heading text without # markers
	AnchorID string // id attribute assigned to the rendered heading
	Line     int    // 0-based source line
}

// Result is the output of one render.
type Result struct {
	HTML       string    // complete page for the requested mode
	Body       string    // restored document body (assets rewritten)
	Outline    string    // rendered heading outline, empty without headings
	Diagrams   []string  // Mermaid sources in document order, never nil
	Headings   []Heading // headings in document order
	Theme      Theme     // resolved theme (never ThemeDefault with a dark ambient)
	Mode       Mode      // display mode used
	Unresolved []int     // placeholder indices left unresolved, normally empty
}
