package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeAsset creates root/rel with content, creating parent directories.
func writeAsset(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "directory", path: t.TempDir()},
		{name: "empty path", path: "", wantErr: ErrInvalidBasePath},
		{name: "missing directory", path: "/nonexistent/mdslides/assets", wantErr: ErrInvalidBasePath},
		{name: "regular file", path: file, wantErr: ErrInvalidBasePath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			loader, err := NewFilesystemLoader(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewFilesystemLoader(%q) error = %v, want %v", tt.path, err, tt.wantErr)
				}
				return
			}
			if err != nil || loader == nil {
				t.Fatalf("NewFilesystemLoader(%q) = %v, %v", tt.path, loader, err)
			}
		})
	}
}

func TestFilesystemLoader_Load(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeAsset(t, root, "styles/midnight.css", ":root { --bg: #000; }")
	writeAsset(t, root, "templates/slides.html", "<main>{{.Body}}</main>")

	loader, err := NewFilesystemLoader(root)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	tests := []struct {
		name    string
		load    func(string) (string, error)
		asset   string
		want    string
		wantErr error
	}{
		{name: "style", load: loader.LoadStyle, asset: "midnight", want: ":root { --bg: #000; }"},
		{name: "template", load: loader.LoadTemplate, asset: "slides", want: "<main>{{.Body}}</main>"},
		{name: "missing style", load: loader.LoadStyle, asset: "sunrise", wantErr: ErrStyleNotFound},
		{name: "missing template", load: loader.LoadTemplate, asset: "preview", wantErr: ErrTemplateNotFound},
		{name: "style looked up as template", load: loader.LoadTemplate, asset: "midnight", wantErr: ErrTemplateNotFound},
		{name: "traversal in style", load: loader.LoadStyle, asset: "../templates/slides", wantErr: ErrInvalidAssetName},
		{name: "empty template name", load: loader.LoadTemplate, asset: "", wantErr: ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.load(tt.asset)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("load(%q) error = %v, want %v", tt.asset, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("load(%q) error = %v", tt.asset, err)
			}
			if got != tt.want {
				t.Errorf("load(%q) = %q, want %q", tt.asset, got, tt.want)
			}
		})
	}
}

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "styles"), 0o755); err != nil {
		t.Fatal(err)
	}
	outside := filepath.Join(t.TempDir(), "secret.css")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "styles", "evil.css")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	loader, err := NewFilesystemLoader(root)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}
	if _, err := loader.LoadStyle("evil"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadStyle(evil) error = %v, want ErrPathTraversal", err)
	}
}

func TestFilesystemLoader_SymlinkInsideRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeAsset(t, root, "styles/base.css", "body{}")
	if err := os.Symlink(filepath.Join(root, "styles", "base.css"), filepath.Join(root, "styles", "alias.css")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	loader, err := NewFilesystemLoader(root)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}
	got, err := loader.LoadStyle("alias")
	if err != nil || got != "body{}" {
		t.Errorf("LoadStyle(alias) = %q, %v", got, err)
	}
}
