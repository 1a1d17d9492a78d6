package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiscoverInputs(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{
		"a.md":            "# A",
		"notes.txt":       "x",
		"talks/b.md":      "# B",
		"talks/deep/c.md": "# C",
		"talks/skip.txt":  "x",
	})
	a := filepath.Join(dir, "a.md")
	talks := filepath.Join(dir, "talks")

	t.Run("single file next to source", func(t *testing.T) {
		t.Parallel()

		jobs, err := discoverInputs([]string{a}, "", ".html")
		if err != nil {
			t.Fatalf("discoverInputs() error = %v", err)
		}
		if len(jobs) != 1 || jobs[0].OutputPath != filepath.Join(dir, "a.html") {
			t.Errorf("jobs = %+v", jobs)
		}
	})

	t.Run("single file to named output", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(dir, "out", "deck.pdf")
		jobs, err := discoverInputs([]string{a}, out, ".pdf")
		if err != nil {
			t.Fatalf("discoverInputs() error = %v", err)
		}
		if len(jobs) != 1 || jobs[0].OutputPath != out {
			t.Errorf("jobs = %+v", jobs)
		}
	})

	t.Run("directory mirrors layout", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(dir, "site")
		jobs, err := discoverInputs([]string{talks}, out, ".html")
		if err != nil {
			t.Fatalf("discoverInputs() error = %v", err)
		}
		got := make(map[string]bool)
		for _, j := range jobs {
			got[j.OutputPath] = true
		}
		for _, want := range []string{
			filepath.Join(out, "b.html"),
			filepath.Join(out, "deep", "c.html"),
		} {
			if !got[want] {
				t.Errorf("missing output %s in %+v", want, jobs)
			}
		}
		if len(jobs) != 2 {
			t.Errorf("len(jobs) = %d, want 2", len(jobs))
		}
	})

	t.Run("named output with many inputs", func(t *testing.T) {
		t.Parallel()

		_, err := discoverInputs([]string{talks}, filepath.Join(dir, "one.html"), ".html")
		if !errors.Is(err, ErrUsage) {
			t.Errorf("error = %v, want ErrUsage", err)
		}
	})

	t.Run("wrong extension", func(t *testing.T) {
		t.Parallel()

		_, err := discoverInputs([]string{filepath.Join(dir, "notes.txt")}, "", ".html")
		if !errors.Is(err, ErrInvalidExtension) {
			t.Errorf("error = %v, want ErrInvalidExtension", err)
		}
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()

		_, err := discoverInputs([]string{filepath.Join(dir, "nope.md")}, "", ".html")
		if !errors.Is(err, os.ErrNotExist) || !errors.Is(err, ErrReadMarkdown) {
			t.Errorf("error = %v, want ErrReadMarkdown wrapping ErrNotExist", err)
		}
	})
}

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 8} {
		if err := validateWorkers(n); err != nil {
			t.Errorf("validateWorkers(%d) error = %v", n, err)
		}
	}
	for _, n := range []int{-1, 9} {
		if err := validateWorkers(n); !errors.Is(err, ErrInvalidWorkerCount) {
			t.Errorf("validateWorkers(%d) error = %v, want ErrInvalidWorkerCount", n, err)
		}
	}
}

func TestRunExport_HTML(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{
		"deck.md":  deckMarkdown,
		"guide.md": "# Guide\n\n## Setup\n\nText $$\na+b\n$$\n",
	})
	env := newTestEnv()

	code := run(context.Background(), []string{
		"export", filepath.Join(dir, "deck.md"), filepath.Join(dir, "guide.md"),
		"--mode", "preview", "--theme", "forest", "--title", "Talk",
	}, env.Environment)
	if code != ExitSuccess {
		t.Fatalf("run() = %d, stderr = %s", code, env.stderr.String())
	}

	html, err := os.ReadFile(filepath.Join(dir, "deck.html"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	for _, want := range []string{"<title>Talk</title>", `<pre class="mermaid">`, "math-inline"} {
		if !strings.Contains(string(html), want) {
			t.Errorf("deck.html missing %q", want)
		}
	}
	if !strings.Contains(string(html), `const liveURL = "";`) {
		t.Error("static export has a live endpoint")
	}
	if _, err := os.Stat(filepath.Join(dir, "guide.html")); err != nil {
		t.Errorf("guide.html not written: %v", err)
	}

	out := env.stdout.String()
	if !strings.Contains(out, "Created") || !strings.Contains(out, "2 succeeded, 0 failed") {
		t.Errorf("stdout = %q", out)
	}
}

func TestRunExport_Minify(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{"deck.md": deckMarkdown})
	plain := filepath.Join(dir, "plain.html")
	small := filepath.Join(dir, "small.html")

	for _, args := range [][]string{
		{"export", filepath.Join(dir, "deck.md"), "-o", plain, "-q"},
		{"export", filepath.Join(dir, "deck.md"), "-o", small, "-q", "--minify"},
	} {
		env := newTestEnv()
		if code := run(context.Background(), args, env.Environment); code != ExitSuccess {
			t.Fatalf("run(%v) = %d, stderr = %s", args, code, env.stderr.String())
		}
	}

	a, errA := os.Stat(plain)
	b, errB := os.Stat(small)
	if errA != nil || errB != nil {
		t.Fatalf("stat outputs: %v, %v", errA, errB)
	}
	if b.Size() >= a.Size() {
		t.Errorf("minified size %d >= plain size %d", b.Size(), a.Size())
	}
}

func TestRunExport_Errors(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{
		"deck.md":  deckMarkdown,
		"empty.md": "   \n",
		"bad.yaml": "theme: sepia\n",
	})
	deck := filepath.Join(dir, "deck.md")

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStderr string
	}{
		{"no input", []string{"export"}, ExitIO, "no input"},
		{"missing file", []string{"export", filepath.Join(dir, "nope.md")}, ExitIO, "failed to read"},
		{"empty document", []string{"export", filepath.Join(dir, "empty.md")}, ExitUsage, "hint:"},
		{"invalid format", []string{"export", deck, "-f", "docx"}, ExitUsage, "invalid export format"},
		{"invalid workers", []string{"export", deck, "-w", "-1"}, ExitUsage, "invalid worker count"},
		{"invalid timeout", []string{"export", deck, "-t", "soon"}, ExitUsage, "invalid duration"},
		{"invalid theme", []string{"export", deck, "--theme", "sepia"}, ExitUsage, "valid themes"},
		{"invalid config", []string{"export", deck, "-c", filepath.Join(dir, "bad.yaml")}, ExitUsage, "theme"},
		{"unknown flag", []string{"export", deck, "--nope"}, ExitUsage, "invalid usage"},
		{"help", []string{"export", "--help"}, ExitSuccess, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			code := run(context.Background(), tt.args, env.Environment)
			if code != tt.wantCode {
				t.Errorf("run() = %d, want %d (stderr = %s)", code, tt.wantCode, env.stderr.String())
			}
			if !strings.Contains(env.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want %q", env.stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestRunExport_CanceledContext(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{"deck.md": deckMarkdown})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := newTestEnv()
	code := run(ctx, []string{"export", filepath.Join(dir, "deck.md")}, env.Environment)
	if code == ExitSuccess {
		t.Error("run() succeeded with a canceled context")
	}
	if _, err := os.Stat(filepath.Join(dir, "deck.html")); !os.IsNotExist(err) {
		t.Error("output written despite cancellation")
	}
}
