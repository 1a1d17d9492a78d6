package pipeline

import (
	"html"
	"strconv"
	"strings"
)

// InjectAnchors gives the converted headings their anchor ids.
// For each heading in document order, the first bare <hN> tag of the same
// level gets id="AnchorID". Tags that already carry attributes are left alone,
// so the converter must run without automatic heading ids.
//
// Matching is positional: a heading the walker saw but the converter did not
// render (or the reverse) shifts ids onto later tags of that level.
func InjectAnchors(content string, headings []Heading) string {
	for _, h := range headings {
		level := strconv.Itoa(h.Level)
		bare := "<h" + level + ">"

		idx := strings.Index(content, bare)
		if idx == -1 {
			continue
		}

		tagged := `<h` + level + ` id="` + html.EscapeString(h.AnchorID) + `">`
		content = content[:idx] + tagged + content[idx+len(bare):]
	}
	return content
}
