package pipeline

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// FragmentKind identifies the kind of protected region.
type FragmentKind int

// Fragment kinds.
const (
	KindDiagram FragmentKind = iota
	KindMathBlock
	KindMathInline
)

// String returns the kind name used in logs and tests.
func (k FragmentKind) String() string {
	switch k {
	case KindDiagram:
		return "diagram"
	case KindMathBlock:
		return "math-block"
	case KindMathInline:
		return "math-inline"
	}
	return "unknown"
}

// isBlock reports whether the fragment renders as a block-level element.
func (k FragmentKind) isBlock() bool {
	return k == KindDiagram || k == KindMathBlock
}

// Span is a half-open byte range into the original source text.
type Span struct {
	Start int
	End   int
}

// Fragment is a protected, delimiter-bounded region of source text.
type Fragment struct {
	Kind    FragmentKind
	Content string // trimmed inner text, never empty
	Raw     string // full delimited source text
	Span    Span
}

// Extraction is the result of scanning one source text.
// Protected holds the source with every fragment replaced by its placeholder.
// Fragments are indexed by placeholder number, in pass order.
type Extraction struct {
	Protected string
	Fragments []Fragment
	Headings  []Heading
}

// Precompiled patterns for protected regions.
// Every pattern stops at the nearest closing delimiter (non-greedy, no nesting).
var (
	// Block math: opening $$ must be followed by a newline.
	mathBlockPattern = regexp.MustCompile(`(?s)\$\$\n(.*?)\$\$`)

	// Inline math never spans a line break.
	mathInlinePattern = regexp.MustCompile(`\$([^$\n]+)\$`)

	// ```mermaid ... ```
	backtickDiagramPattern = regexp.MustCompile("(?s)```mermaid\\s*\\n(.*?)```")

	// ::: mermaid ... ::: (space after the colons is optional)
	colonDiagramPattern = regexp.MustCompile(`(?s):::\s*mermaid\s*\n(.*?):::`)

	// URLs where a dollar sign belongs to the address: inline link and image
	// destinations, reference definitions, autolinks and the bare URLs GFM
	// turns into links.
	urlPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\]\(\s*(<[^<>\n]*>|[^\s)]+)`),
		regexp.MustCompile(`(?m)^ {0,3}\[[^\]\n]+\]:[ \t]*(<[^<>\n]*>|\S+)`),
		regexp.MustCompile(`<([A-Za-z][A-Za-z0-9+.\-]{1,31}:[^\s<>]*)>`),
		regexp.MustCompile(`(?i)\b((?:https?://|www\.)[^\s<]+)`),
	}
)

// protectPass is one substitution pass over the text.
type protectPass struct {
	kind    FragmentKind
	pattern *regexp.Regexp
}

// protectPasses run in this exact order. Block math goes before inline math
// so a $$ delimiter is never read as two inline delimiters.
var protectPasses = []protectPass{
	{kind: KindMathBlock, pattern: mathBlockPattern},
	{kind: KindMathInline, pattern: mathInlinePattern},
	{kind: KindDiagram, pattern: backtickDiagramPattern},
	{kind: KindDiagram, pattern: colonDiagramPattern},
}

// Extract scans src for headings, math and diagram blocks and replaces every
// protected region with a placeholder. src is not modified.
// Unterminated delimiters produce no fragment and leave the text untouched.
// Math delimiters inside backtick fences, code spans and URLs are not math.
func Extract(src string) *Extraction {
	ex := &Extraction{Headings: ExtractHeadings(src)}

	text := src
	for _, p := range protectPasses {
		text = ex.protect(text, p)
	}
	ex.Protected = text

	return ex
}

// ExtractDiagrams returns the diagram sources of src in document order.
func ExtractDiagrams(src string) []string {
	return Extract(src).Diagrams()
}

// Diagrams returns the content of every diagram fragment in source order,
// regardless of fence style. A diagram fenced inside a diagram of the other
// style is listed after the one enclosing it.
func (ex *Extraction) Diagrams() []string {
	var found []Fragment
	for _, f := range ex.Fragments {
		if f.Kind == KindDiagram {
			found = append(found, f)
		}
	}
	slices.SortStableFunc(found, func(a, b Fragment) int {
		return cmp.Compare(a.Span.Start, b.Span.Start)
	})

	diagrams := make([]string, 0, len(found))
	for _, f := range found {
		diagrams = append(diagrams, f.Content)
	}
	return diagrams
}

// protect runs a single pass over text, which is the previous pass's output.
func (ex *Extraction) protect(text string, p protectPass) string {
	matches := p.pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var literal []Span
	if p.kind != KindDiagram {
		literal = slices.Concat(codeFenceSpans(text), codeSpans(text), urlSpans(text))
	}

	var buf strings.Builder
	buf.Grow(len(text))
	last := 0

	for _, m := range matches {
		start, end := m[0], m[1]

		// Dollar signs in code and URLs are literal.
		if inSpans(literal, start) || inSpans(literal, end-1) {
			continue
		}

		// Earlier passes may have left placeholders inside this span.
		content := strings.TrimSpace(ex.expand(text[m[2]:m[3]]))
		if content == "" {
			continue
		}

		frag := Fragment{
			Kind:    p.kind,
			Content: content,
			Raw:     ex.expand(text[start:end]),
			Span: Span{
				Start: ex.sourceOffset(text, start),
				End:   ex.sourceOffset(text, end),
			},
		}

		buf.WriteString(text[last:start])
		buf.WriteString(placeholder(len(ex.Fragments)))
		ex.Fragments = append(ex.Fragments, frag)
		last = end
	}

	buf.WriteString(text[last:])
	return buf.String()
}

// codeFenceSpans returns the byte ranges of backtick-fenced blocks in text,
// fence lines included. An unterminated fence runs to the end of text.
func codeFenceSpans(text string) []Span {
	var spans []Span
	open := -1
	pos := 0

	for _, line := range strings.SplitAfter(text, "\n") {
		if backtickFenceLine.MatchString(line) {
			if open == -1 {
				open = pos
			} else {
				spans = append(spans, Span{Start: open, End: pos + len(line)})
				open = -1
			}
		}
		pos += len(line)
	}
	if open != -1 {
		spans = append(spans, Span{Start: open, End: len(text)})
	}
	return spans
}

// codeSpans returns the byte ranges of backtick code spans in text. A run of
// backticks is closed by the next run of the same length; a run with no
// closer is literal.
func codeSpans(text string) []Span {
	var spans []Span
	i := 0
	for i < len(text) {
		if text[i] != '`' {
			i++
			continue
		}
		n := backtickRun(text, i)
		if i > 0 && text[i-1] == '\\' {
			i += n
			continue
		}

		closed := false
		for j := i + n; j < len(text); {
			if text[j] != '`' {
				j++
				continue
			}
			m := backtickRun(text, j)
			if m == n {
				spans = append(spans, Span{Start: i, End: j + m})
				i = j + m
				closed = true
				break
			}
			j += m
		}
		if !closed {
			i += n
		}
	}
	return spans
}

func backtickRun(text string, i int) int {
	n := 0
	for i+n < len(text) && text[i+n] == '`' {
		n++
	}
	return n
}

// urlSpans returns the byte ranges of link destinations and URLs in text.
func urlSpans(text string) []Span {
	var spans []Span
	for _, re := range urlPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			spans = append(spans, Span{Start: m[2], End: m[3]})
		}
	}
	return spans
}

func inSpans(spans []Span, pos int) bool {
	for _, s := range spans {
		if pos >= s.Start && pos < s.End {
			return true
		}
	}
	return false
}

// expand replaces placeholders in s with the raw text they stand for.
func (ex *Extraction) expand(s string) string {
	if !strings.Contains(s, PlaceholderStart) {
		return s
	}
	return placeholderPattern.ReplaceAllStringFunc(s, func(token string) string {
		f, ok := ex.fragment(placeholderIndex(token))
		if !ok {
			return token
		}
		return f.Raw
	})
}

// sourceOffset maps a byte position in a partially protected text back to the
// original source by adding the length difference of every earlier placeholder.
func (ex *Extraction) sourceOffset(text string, pos int) int {
	offset := pos
	for _, m := range placeholderPattern.FindAllStringSubmatchIndex(text[:pos], -1) {
		f, ok := ex.fragment(text[m[2]:m[3]])
		if !ok {
			continue
		}
		offset += (f.Span.End - f.Span.Start) - (m[1] - m[0])
	}
	return offset
}

// fragment looks up a fragment by its decimal placeholder index.
func (ex *Extraction) fragment(index string) (Fragment, bool) {
	i, err := strconv.Atoi(index)
	if err != nil || i < 0 || i >= len(ex.Fragments) {
		return Fragment{}, false
	}
	return ex.Fragments[i], true
}
