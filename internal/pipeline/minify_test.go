package pipeline

import (
	"strings"
	"testing"
)

func TestMinifier_MinifyHTML(t *testing.T) {
	t.Parallel()

	m := NewMinifier()

	page := "<!DOCTYPE html>\n<html>\n<head>\n  <style>\n    body {  color : red ;  }\n  </style>\n</head>\n<body>\n" +
		"  <p>\n    Hello   world\n  </p>\n" +
		"  <pre class=\"mermaid\">graph TD\n  A --> B</pre>\n" +
		"  <script type=\"module\">const x = 1;   const y = 2;</script>\n" +
		"</body>\n</html>\n"

	got, err := m.MinifyHTML(page)
	if err != nil {
		t.Fatalf("MinifyHTML() error = %v", err)
	}

	if len(got) >= len(page) {
		t.Errorf("MinifyHTML() did not shrink the page: %d >= %d", len(got), len(page))
	}
	if !strings.Contains(got, "color:red") {
		t.Errorf("inline CSS not minified: %q", got)
	}
	if !strings.Contains(got, "graph TD\n  A --> B") {
		t.Errorf("pre content altered: %q", got)
	}
	if !strings.Contains(got, "const x = 1;   const y = 2;") {
		t.Errorf("script content altered: %q", got)
	}
	if !strings.Contains(strings.ToLower(got), "<html") || !strings.Contains(got, "</body>") {
		t.Errorf("document tags dropped: %q", got)
	}
}
