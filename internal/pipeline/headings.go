package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

// Heading is one ATX heading found outside fenced regions.
type Heading struct {
	Level    int    // 1..6
	Text     string // heading text without the # markers
	AnchorID string // unique within the document
	Line     int    // 0-based source line index
}

var (
	// Any backtick fence line, whatever its language tag.
	backtickFenceLine = regexp.MustCompile("^\\s*```")

	// Opening line of a colon-fenced mermaid block.
	colonMermaidOpenLine = regexp.MustCompile(`^\s*:::\s*mermaid\b`)

	// ATX heading: up to three spaces of indent, 1-6 #, whitespace, text.
	atxHeadingLine = regexp.MustCompile(`^ {0,3}(#{1,6})[ \t]+(.*\S)`)

	// Optional closing sequence: "## Title ##".
	closingHashes = regexp.MustCompile(`[ \t]+#+$`)

	anchorUnsafeChars = regexp.MustCompile(`[^\w\s-]`)
	anchorWhitespace  = regexp.MustCompile(`\s+`)
)

// ExtractHeadings walks src line by line and returns its headings in order.
// Lines inside backtick fences or colon-fenced mermaid blocks are skipped.
// A colon opener inside a backtick fence is ordinary fence content.
func ExtractHeadings(src string) []Heading {
	var headings []Heading
	inBacktickFence := false
	inColonMermaid := false

	for i, line := range strings.Split(src, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if backtickFenceLine.MatchString(line) {
			inBacktickFence = !inBacktickFence
			continue
		}
		if inBacktickFence {
			continue
		}

		if colonMermaidOpenLine.MatchString(line) {
			inColonMermaid = true
			continue
		}
		if inColonMermaid {
			if strings.TrimSpace(line) == ":::" {
				inColonMermaid = false
			}
			continue
		}

		m := atxHeadingLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(closingHashes.ReplaceAllString(m[2], ""))
		if text == "" {
			continue
		}

		headings = append(headings, Heading{
			Level:    len(m[1]),
			Text:     text,
			AnchorID: AnchorID(text, i),
			Line:     i,
		})
	}

	return headings
}

// AnchorID derives a fragment identifier from heading text and its line.
// The text is lowercased, stripped of everything except word characters,
// whitespace and hyphens, and whitespace runs become single hyphens. The line
// suffix keeps identical headings distinct.
func AnchorID(text string, line int) string {
	id := strings.ToLower(text)
	id = anchorUnsafeChars.ReplaceAllString(id, "")
	id = anchorWhitespace.ReplaceAllString(id, "-")
	return id + "-" + strconv.Itoa(line)
}
