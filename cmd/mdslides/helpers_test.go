package main

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a polling test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testEnv struct {
	*Environment
	stdout *syncBuffer
	stderr *syncBuffer

	mu     sync.Mutex
	opened []string
}

func newTestEnv() *testEnv {
	te := &testEnv{stdout: &syncBuffer{}, stderr: &syncBuffer{}}
	te.Environment = &Environment{
		Now:    func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) },
		Stdout: te.stdout,
		Stderr: te.stderr,
		OpenBrowser: func(url string) {
			te.mu.Lock()
			defer te.mu.Unlock()
			te.opened = append(te.opened, url)
		},
	}
	return te
}

func (te *testEnv) openedURLs() []string {
	te.mu.Lock()
	defer te.mu.Unlock()
	return append([]string(nil), te.opened...)
}

// setupTestDir creates a temp directory with the given file structure.
// Files map paths to content. Returns the temp directory path.
func setupTestDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for path, content := range files {
		full := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
			t.Fatalf("creating dir for %s: %v", path, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", path, err)
		}
	}
	return dir
}

const deckMarkdown = "# Deck\n\n```mermaid\ngraph TD\n  A-->B\n```\n\nInline $x^2$ math.\n"
