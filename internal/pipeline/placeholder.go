package pipeline

import (
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	xhtml "golang.org/x/net/html"
)

// Placeholder delimiters use Unicode Private Use Area characters.
// They pass through goldmark unchanged (no escaping, no case folding, also
// inside code spans) and never occur in ordinary prose.
const (
	PlaceholderStart = "\uE002" // U+E002: Private Use Area
	PlaceholderEnd   = "\uE003" // U+E003: Private Use Area
)

// ErrUnresolvedPlaceholder indicates a placeholder with no matching fragment.
var ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")

// UnresolvedPlaceholderError lists every placeholder index left in the output.
type UnresolvedPlaceholderError struct {
	Indices []int
}

func (e *UnresolvedPlaceholderError) Error() string {
	parts := make([]string, len(e.Indices))
	for i, idx := range e.Indices {
		parts[i] = strconv.Itoa(idx)
	}
	return fmt.Sprintf("%v: %s", ErrUnresolvedPlaceholder, strings.Join(parts, ", "))
}

func (e *UnresolvedPlaceholderError) Unwrap() error {
	return ErrUnresolvedPlaceholder
}

var (
	placeholderPattern = regexp.MustCompile(PlaceholderStart + "([0-9]+)" + PlaceholderEnd)

	// A block placeholder on its own line becomes a paragraph of its own.
	paragraphPlaceholderPattern = regexp.MustCompile("<p>" + PlaceholderStart + "([0-9]+)" + PlaceholderEnd + "</p>")

	// goldmark percent-encodes a token that lands in a link or image URL.
	encodedPlaceholderPattern = regexp.MustCompile(`(?i)%EE%80%82([0-9]+)%EE%80%83`)
)

// hasEncodedPlaceholder reports whether s may hold a percent-encoded token.
func hasEncodedPlaceholder(s string) bool {
	return strings.Contains(s, "%EE%80%82") || strings.Contains(s, "%ee%80%82")
}

// RenderFunc produces the final HTML for one fragment.
type RenderFunc func(f Fragment) string

// placeholder returns the token standing for fragment i.
func placeholder(i int) string {
	return PlaceholderStart + strconv.Itoa(i) + PlaceholderEnd
}

// placeholderIndex returns the decimal index inside a token.
func placeholderIndex(token string) string {
	return strings.TrimSuffix(strings.TrimPrefix(token, PlaceholderStart), PlaceholderEnd)
}

// RenderFragment is the default RenderFunc.
// Diagram sources are emitted unescaped inside a mermaid container so the
// client-side renderer receives them verbatim. Math keeps its delimiters and
// is escaped as text for the client-side typesetter.
func RenderFragment(f Fragment) string {
	switch f.Kind {
	case KindDiagram:
		return `<pre class="mermaid">` + f.Content + `</pre>`
	case KindMathBlock:
		return `<div class="math math-block">` + html.EscapeString(f.Raw) + `</div>`
	default:
		return `<span class="math math-inline">` + html.EscapeString(f.Raw) + `</span>`
	}
}

// Restore replaces every placeholder in content with render(fragment).
// Block fragments that goldmark wrapped in a paragraph of their own replace
// the whole paragraph. Tokens inside a tag are attribute values: they get the
// fragment's raw text, escaped, whatever render returns, and percent-encoded
// tokens in URLs are restored the same way. Unknown tokens stay in the output
// and are reported in an *UnresolvedPlaceholderError; the returned content is
// still usable.
func Restore(content string, fragments []Fragment, render RenderFunc) (string, error) {
	if !strings.Contains(content, PlaceholderStart) && !hasEncodedPlaceholder(content) {
		return content, nil
	}

	var missing []int
	lookup := func(index string) (Fragment, bool) {
		i, err := strconv.Atoi(index)
		if err != nil || i < 0 || i >= len(fragments) {
			return Fragment{}, false
		}
		return fragments[i], true
	}
	attr := func(pattern *regexp.Regexp, s string) string {
		return pattern.ReplaceAllStringFunc(s, func(token string) string {
			index := pattern.FindStringSubmatch(token)[1]
			f, ok := lookup(index)
			if !ok {
				i, _ := strconv.Atoi(index)
				missing = append(missing, i)
				return token
			}
			return html.EscapeString(f.Raw)
		})
	}

	// Tags first, while every literal '<' in text is still escaped.
	content = restoreInTags(content, func(tag string) string {
		return attr(encodedPlaceholderPattern, attr(placeholderPattern, tag))
	})

	content = paragraphPlaceholderPattern.ReplaceAllStringFunc(content, func(p string) string {
		f, ok := lookup(placeholderIndex(strings.TrimSuffix(strings.TrimPrefix(p, "<p>"), "</p>")))
		if !ok {
			// Left for the inline pass, which reports it.
			return p
		}
		if f.Kind.isBlock() {
			return render(f)
		}
		return "<p>" + render(f) + "</p>"
	})

	content = placeholderPattern.ReplaceAllStringFunc(content, func(token string) string {
		f, ok := lookup(placeholderIndex(token))
		if !ok {
			i, _ := strconv.Atoi(placeholderIndex(token))
			missing = append(missing, i)
			return token
		}
		return render(f)
	})

	if len(missing) > 0 {
		slices.Sort(missing)
		return content, &UnresolvedPlaceholderError{Indices: missing}
	}
	return content, nil
}

// restoreInTags passes the raw text of every tag holding a token through fn
// and copies everything else byte for byte. Content the tokenizer cannot read
// is returned unchanged.
func restoreInTags(content string, fn func(tag string) string) string {
	if !strings.Contains(content, "<") {
		return content
	}

	z := xhtml.NewTokenizer(strings.NewReader(content))
	var buf strings.Builder
	buf.Grow(len(content))

	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			if z.Err() == io.EOF {
				return buf.String()
			}
			return content

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken, xhtml.EndTagToken:
			raw := string(z.Raw())
			if strings.Contains(raw, PlaceholderStart) || hasEncodedPlaceholder(raw) {
				raw = fn(raw)
			}
			buf.WriteString(raw)

		default:
			buf.Write(z.Raw())
		}
	}
}
