package mdslides

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Theme is a Mermaid diagram theme. It also selects the page palette.
type Theme string

// Mermaid themes.
const (
	ThemeDefault Theme = "default" // follows the ambient theme
	ThemeDark    Theme = "dark"
	ThemeForest  Theme = "forest"
	ThemeNeutral Theme = "neutral"
)

// Themes lists every accepted theme.
var Themes = []Theme{ThemeDefault, ThemeDark, ThemeForest, ThemeNeutral}

// ParseTheme converts a theme name (case-insensitive) to a Theme.
// The empty string yields ThemeDefault.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return ThemeDefault, nil
	}
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

// Validate checks that t is a known theme. The zero value is valid and
// means ThemeDefault.
func (t Theme) Validate() error {
	switch t {
	case "", ThemeDefault, ThemeDark, ThemeForest, ThemeNeutral:
		return nil
	}
	return fmt.Errorf("%w: %q (must be default, dark, forest or neutral)", ErrInvalidTheme, string(t))
}

// Resolve returns the theme to render with. ThemeDefault (or the zero value)
// consults ambient and becomes ThemeDark for dark and high-contrast
// ambients; explicit themes are returned unchanged. A nil ambient counts
// as light.
func (t Theme) Resolve(ambient AmbientFunc) Theme {
	if t != "" && t != ThemeDefault {
		return t
	}
	if ambient != nil {
		switch ambient() {
		case AmbientDark, AmbientHighContrast:
			return ThemeDark
		}
	}
	return ThemeDefault
}

// Dark reports whether the page uses the dark palette.
func (t Theme) Dark() bool {
	return t == ThemeDark
}

// Ambient is the color scheme of the environment the document is shown in.
type Ambient int

// Ambient color schemes.
const (
	AmbientLight Ambient = iota
	AmbientDark
	AmbientHighContrast
)

// String returns the lowercase name used by MDSLIDES_AMBIENT.
func (a Ambient) String() string {
	switch a {
	case AmbientDark:
		return "dark"
	case AmbientHighContrast:
		return "high-contrast"
	default:
		return "light"
	}
}

// ParseAmbient converts a name to an Ambient.
func ParseAmbient(s string) (Ambient, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return AmbientLight, true
	case "dark":
		return AmbientDark, true
	case "high-contrast", "highcontrast", "hc":
		return AmbientHighContrast, true
	}
	return AmbientLight, false
}

// AmbientFunc queries the current ambient color scheme.
// It is called on every render so changes are picked up without restarting.
type AmbientFunc func() Ambient

// FixedAmbient returns an AmbientFunc that always reports a.
func FixedAmbient(a Ambient) AmbientFunc {
	return func() Ambient { return a }
}

// EnvAmbient reads the ambient scheme from the environment.
// MDSLIDES_AMBIENT (light, dark, high-contrast) wins; otherwise the
// terminal's COLORFGBG background color is used; otherwise light.
func EnvAmbient() Ambient {
	if a, ok := ParseAmbient(os.Getenv("MDSLIDES_AMBIENT")); ok {
		return a
	}
	return ambientFromColorFGBG(os.Getenv("COLORFGBG"))
}

// ambientFromColorFGBG interprets COLORFGBG ("fg;bg" or "fg;default;bg").
// Background colors 0-6 and 8 are dark in the 16-color palette.
func ambientFromColorFGBG(v string) Ambient {
	if v == "" {
		return AmbientLight
	}
	parts := strings.Split(v, ";")
	bg, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return AmbientLight
	}
	if (bg >= 0 && bg <= 6) || bg == 8 {
		return AmbientDark
	}
	return AmbientLight
}
