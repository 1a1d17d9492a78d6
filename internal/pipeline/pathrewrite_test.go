package pipeline

// Notes:
// - Resolvers are tested against t.TempDir() so paths are valid on every OS
// - Traversal tests check the observable behavior (reference kept, error
//   reported) rather than isPathUnderDir directly

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestRewriteAssetRefs(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	resolver := PrefixResolver{BaseDir: baseDir, Prefix: "/files/"}

	tests := []struct {
		name         string
		html         string
		wantContains []string
	}{
		{
			name:         "relative image",
			html:         `<p><img src="img/logo.png" alt="Logo" /></p>`,
			wantContains: []string{`src="/files/img/logo.png"`, `alt="Logo"`},
		},
		{
			name:         "dot slash image",
			html:         `<img src="./a.png">`,
			wantContains: []string{`src="/files/a.png"`},
		},
		{
			name:         "escaped name",
			html:         `<img src="my%20shot.png">`,
			wantContains: []string{`src="/files/my%20shot.png"`},
		},
		{
			name:         "https unchanged",
			html:         `<img src="https://example.com/x.png">`,
			wantContains: []string{`<img src="https://example.com/x.png">`},
		},
		{
			name:         "http unchanged",
			html:         `<img src="http://example.com/x.png">`,
			wantContains: []string{`<img src="http://example.com/x.png">`},
		},
		{
			name:         "data uri unchanged",
			html:         `<img src="data:image/png;base64,ABC123">`,
			wantContains: []string{`<img src="data:image/png;base64,ABC123">`},
		},
		{
			name:         "links untouched",
			html:         `<a href="doc.md">doc</a><img src="b.png">`,
			wantContains: []string{`<a href="doc.md">doc</a>`, `src="/files/b.png"`},
		},
		{
			name:         "diagram text copied verbatim",
			html:         "<pre class=\"mermaid\">graph TD\n  A[\"a & b\"] --> B</pre><img src=\"c.png\">",
			wantContains: []string{"<pre class=\"mermaid\">graph TD\n  A[\"a & b\"] --> B</pre>", `src="/files/c.png"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := RewriteAssetRefs(tt.html, resolver, nil)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("RewriteAssetRefs() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestRewriteAssetRefs_FailureKeepsOriginal(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	resolver := PrefixResolver{BaseDir: baseDir, Prefix: "/files/"}

	for _, ref := range []string{"../secret.png", "a/../../secret.png"} {
		html := `<img src="` + ref + `">`

		var gotRef string
		var gotErr error
		got := RewriteAssetRefs(html, resolver, func(r string, err error) {
			gotRef, gotErr = r, err
		})

		if got != html {
			t.Errorf("RewriteAssetRefs(%q) = %q, want unchanged", html, got)
		}
		if gotRef != ref || !errors.Is(gotErr, ErrAssetOutsideBase) {
			t.Errorf("onError(%q, %v), want (%q, ErrAssetOutsideBase)", gotRef, gotErr, ref)
		}
	}
}

func TestRewriteAssetRefs_ResolverFunc(t *testing.T) {
	t.Parallel()

	calls := 0
	resolver := AssetResolverFunc(func(ref string) (string, error) {
		calls++
		if ref == "bad.png" {
			return "", errors.New("nope")
		}
		return "asset://" + ref, nil
	})

	got := RewriteAssetRefs(`<img src="ok.png"><img src="bad.png"><img src="https://x/y.png">`, resolver, nil)

	if calls != 2 {
		t.Errorf("resolver called %d times, want 2", calls)
	}
	if !strings.Contains(got, `src="asset://ok.png"`) || !strings.Contains(got, `<img src="bad.png">`) {
		t.Errorf("RewriteAssetRefs() = %q", got)
	}
}

func TestRewriteAssetRefs_NoImages(t *testing.T) {
	t.Parallel()

	html := "<p>a &amp; b</p>"
	if got := RewriteAssetRefs(html, PrefixResolver{BaseDir: t.TempDir()}, nil); got != html {
		t.Errorf("RewriteAssetRefs() = %q, want unchanged", got)
	}
	if got := RewriteAssetRefs(html, nil, nil); got != html {
		t.Errorf("RewriteAssetRefs(nil resolver) = %q, want unchanged", got)
	}
}

func TestFileURLResolver(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	r := FileURLResolver{BaseDir: baseDir}

	got, err := r.ResolveAsset("img/a.png")
	if err != nil {
		t.Fatalf("ResolveAsset() error = %v", err)
	}
	if !strings.HasPrefix(got, "file://") || !strings.HasSuffix(got, "/img/a.png") {
		t.Errorf("ResolveAsset() = %q, want file:// URL ending in /img/a.png", got)
	}

	abs := filepath.Join(baseDir, "b.png")
	if _, err := r.ResolveAsset(filepath.ToSlash(abs)); err != nil {
		t.Errorf("ResolveAsset(absolute under base) error = %v", err)
	}

	if _, err := r.ResolveAsset("../../etc/passwd"); !errors.Is(err, ErrAssetOutsideBase) {
		t.Errorf("ResolveAsset(traversal) error = %v, want ErrAssetOutsideBase", err)
	}

	if _, err := (FileURLResolver{}).ResolveAsset("a.png"); !errors.Is(err, ErrAssetReference) {
		t.Errorf("ResolveAsset(no base) error = %v, want ErrAssetReference", err)
	}
}

func TestIsRelativePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ref  string
		want bool
	}{
		{"", false},
		{"#section", false},
		{"http://example.com/a.png", false},
		{"https://example.com/a.png", false},
		{"//cdn.example.com/a.png", false},
		{"data:image/png;base64,AA", false},
		{"file:///tmp/a.png", false},
		{"a.png", true},
		{"./img/a.png", true},
		{"/abs/a.png", true},
	}

	for _, tt := range tests {
		if got := isRelativePath(tt.ref); got != tt.want {
			t.Errorf("isRelativePath(%q) = %v, want %v", tt.ref, got, tt.want)
		}
	}
}

func TestIsPathUnderDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(string(filepath.Separator), "docs")

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(dir, "a.png"), true},
		{dir, true},
		{filepath.Join(dir, "sub", "b.png"), true},
		{filepath.Join(string(filepath.Separator), "docs2", "a.png"), false},
		{filepath.Join(dir, "..", "etc", "passwd"), false},
	}

	for _, tt := range tests {
		if got := IsPathUnderDir(tt.path, dir); got != tt.want {
			t.Errorf("IsPathUnderDir(%q, %q) = %v, want %v", tt.path, dir, got, tt.want)
		}
	}
}
