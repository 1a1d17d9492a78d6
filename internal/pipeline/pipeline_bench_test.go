//go:build bench

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// generateDeckMarkdown builds a document with n sections, each carrying a
// heading, prose with inline math, a diagram and a code block.
func generateDeckMarkdown(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "## Section %d\n\nThe cost is $O(n^%d)$ per step.\n\n", i, i%4)
		fmt.Fprintf(&sb, "```mermaid\ngraph TD\n  A%d --> B%d\n```\n\n", i, i)
		sb.WriteString("```go\nfmt.Println(\"hi\")\n```\n\n")
		if i%5 == 0 {
			sb.WriteString("$$\n\\sum_{k=0}^{n} k\n$$\n\n")
		}
	}
	return sb.String()
}

func BenchmarkExtract(b *testing.B) {
	for _, n := range []int{10, 50, 200} {
		src := generateDeckMarkdown(n)
		b.Run(fmt.Sprintf("sections_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = Extract(src)
			}
		})
	}
}

// BenchmarkRenderBody benchmarks the text-dependent stages of a render pass.
func BenchmarkRenderBody(b *testing.B) {
	converter := NewGoldmarkConverter()
	ctx := context.Background()

	for _, n := range []int{10, 50, 200} {
		src := generateDeckMarkdown(n)
		b.Run(fmt.Sprintf("sections_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				ex := Extract(src)
				body, err := converter.ToHTML(ctx, ex.Protected)
				if err != nil {
					b.Fatal(err)
				}
				body = InjectAnchors(body, ex.Headings)
				if _, err := Restore(body, ex.Fragments, RenderFragment); err != nil {
					b.Fatal(err)
				}
				_ = RenderOutline(BuildOutline(ex.Headings))
			}
		})
	}
}
