package pipeline

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// OutlineNode is one heading with the headings nested under it.
type OutlineNode struct {
	Heading  Heading
	Children []*OutlineNode
}

// Outline indentation, in em.
const (
	outlineIndentStep  = 1.0
	outlineMarkerWidth = 1.2 // width of the <summary> disclosure marker
)

// outlineLabelPolicy strips any markup from heading text.
var outlineLabelPolicy = bluemonday.StrictPolicy()

// BuildOutline nests headings into a forest.
// A heading becomes a child of the nearest preceding heading with a strictly
// smaller level; headings with no such predecessor are roots. Skipped levels
// are allowed (H1 then H3 nests the H3 directly under the H1).
func BuildOutline(headings []Heading) []*OutlineNode {
	type stackEntry struct {
		node  *OutlineNode
		level int
	}

	root := &OutlineNode{}
	stack := []stackEntry{{node: root, level: 0}}

	for _, h := range headings {
		node := &OutlineNode{Heading: h}

		for len(stack) > 1 && stack[len(stack)-1].level >= h.Level {
			stack = stack[:len(stack)-1]
		}

		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, node)
		stack = append(stack, stackEntry{node: node, level: h.Level})
	}

	return root.Children
}

// RenderOutline renders the outline as collapsible navigation.
// Nodes with children become <details> groups, expanded by default only for
// level-1 headings. Leaves are plain entries padded to line up with the text
// of sibling group summaries. Returns "" for an empty outline.
func RenderOutline(nodes []*OutlineNode) string {
	if len(nodes) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(`<nav class="outline">`)
	for _, n := range nodes {
		writeOutlineNode(&buf, n, 0)
	}
	buf.WriteString(`</nav>`)
	return buf.String()
}

func writeOutlineNode(buf *strings.Builder, n *OutlineNode, depth int) {
	indent := float64(depth) * outlineIndentStep
	link := outlineLink(n.Heading)

	if len(n.Children) == 0 {
		fmt.Fprintf(buf, `<div class="outline-item outline-leaf" style="padding-left:%.1fem">%s</div>`,
			indent+outlineMarkerWidth, link)
		return
	}

	buf.WriteString(`<details class="outline-group"`)
	if n.Heading.Level <= 1 {
		buf.WriteString(` open`)
	}
	fmt.Fprintf(buf, `><summary class="outline-item" style="padding-left:%.1fem">%s</summary>`, indent, link)
	for _, child := range n.Children {
		writeOutlineNode(buf, child, depth+1)
	}
	buf.WriteString(`</details>`)
}

// outlineLink renders the anchor for one heading.
func outlineLink(h Heading) string {
	label := outlineLabelPolicy.Sanitize(h.Text)
	return `<a href="#` + html.EscapeString(h.AnchorID) + `">` + label + `</a>`
}
