package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-mdslides"
	"github.com/alnah/go-mdslides/internal/config"
	"github.com/alnah/go-mdslides/internal/live"
)

var servingURL = regexp.MustCompile(`Serving (http://\S+)`)

// startServe runs the serve command in the background and returns its URL.
func startServe(t *testing.T, env *testEnv, args ...string) (string, func() int) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, append([]string{"serve", "--addr", "127.0.0.1:0"}, args...), env.Environment)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if m := servingURL.FindStringSubmatch(env.stdout.String()); m != nil {
			stop := func() int {
				cancel()
				select {
				case code := <-done:
					return code
				case <-time.After(10 * time.Second):
					t.Fatal("serve did not stop")
					return -1
				}
			}
			return m[1], stop
		}
		select {
		case code := <-done:
			cancel()
			t.Fatalf("serve exited early with %d: %s", code, env.stderr.String())
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	t.Fatal("serve did not start")
	return "", nil
}

func get(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s = %d", url, resp.StatusCode)
	}
	return string(body)
}

func TestRunServe_FollowsFile(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{"deck.md": deckMarkdown})
	source := filepath.Join(dir, "deck.md")
	env := newTestEnv()

	url, stop := startServe(t, env, source, "--debounce", "20ms", "--open", "--mode", "preview")

	page := get(t, url+"/")
	if !strings.Contains(page, `<pre class="mermaid">`) {
		t.Errorf("page missing diagram:\n%s", page)
	}
	if !strings.Contains(page, `const liveURL = "/ws";`) {
		t.Error("page has no live endpoint")
	}
	if got := env.openedURLs(); len(got) != 1 || got[0] != url {
		t.Errorf("opened = %v, want [%s]", got, url)
	}

	// Edits on disk reach the page.
	time.Sleep(100 * time.Millisecond)
	updated := strings.Replace(deckMarkdown, "A-->B", "A-->Z", 1)
	if err := os.WriteFile(source, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(get(t, url+"/health"), `"session":"open"`) || !strings.Contains(get(t, url+"/"), "A-->Z") {
		if time.Now().After(deadline) {
			t.Fatal("edit on disk not rendered")
		}
		time.Sleep(20 * time.Millisecond)
	}

	if code := stop(); code != ExitSuccess {
		t.Errorf("run() = %d, want 0 (stderr = %s)", code, env.stderr.String())
	}
}

func TestRunServe_WaitingPage(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	url, stop := startServe(t, env)

	page := get(t, url+"/")
	if !strings.Contains(page, "/ws") {
		t.Errorf("waiting page has no live endpoint:\n%s", page)
	}
	if got := env.openedURLs(); len(got) != 0 {
		t.Errorf("browser opened without --open: %v", got)
	}

	if code := stop(); code != ExitSuccess {
		t.Errorf("run() = %d, want 0", code)
	}
}

func TestRunServe_PortInUse(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	env := newTestEnv()
	code := run(context.Background(), []string{"serve", "--addr", ln.Addr().String()}, env.Environment)
	if code != ExitIO {
		t.Errorf("run() = %d, want %d", code, ExitIO)
	}
	if !strings.Contains(env.stderr.String(), "hint:") {
		t.Errorf("stderr = %q, want port hint", env.stderr.String())
	}
}

func TestRunServe_Errors(t *testing.T) {
	t.Parallel()

	dir := setupTestDir(t, map[string]string{"notes.txt": "x", "a.md": "# A", "b.md": "# B"})

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"not markdown", []string{"serve", filepath.Join(dir, "notes.txt")}, ExitUsage},
		{"missing file", []string{"serve", filepath.Join(dir, "nope.md")}, ExitIO},
		{"two files", []string{"serve", filepath.Join(dir, "a.md"), filepath.Join(dir, "b.md")}, ExitUsage},
		{"invalid mode", []string{"serve", "--mode", "poster"}, ExitUsage},
		{"invalid debounce", []string{"serve", "--debounce", "soon"}, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			if code := run(context.Background(), tt.args, env.Environment); code != tt.wantCode {
				t.Errorf("run() = %d, want %d (stderr = %s)", code, tt.wantCode, env.stderr.String())
			}
		})
	}
}

func TestMergeServeFlags(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Server.Open = true
	mergeServeFlags(&serveFlags{
		render:   renderFlags{mode: "preview"},
		addr:     ":9000",
		debounce: "1s",
		open:     false,
		openSet:  true,
	}, cfg)

	if cfg.Mode != "preview" || cfg.Server.Addr != ":9000" || cfg.Debounce != "1s" || cfg.Server.Open {
		t.Errorf("cfg = %+v", cfg)
	}
}

// ---------------------------------------------------------------------------
// reloadConfig
// ---------------------------------------------------------------------------

type stubRenderer struct {
	mu     sync.Mutex
	inputs []mdslides.Input
}

func (r *stubRenderer) Render(_ context.Context, in mdslides.Input) (*mdslides.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, in)
	return &mdslides.Result{HTML: "page", Mode: in.Mode, Theme: in.Theme, Diagrams: []string{}}, nil
}

type stubSurface struct{}

func (stubSurface) Show(string) error        { return nil }
func (stubSurface) Post(live.Message) error { return nil }

func TestReloadConfig(t *testing.T) {
	t.Parallel()

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	newCtrl := func(t *testing.T) *live.Controller {
		t.Helper()
		ctrl := live.New(&stubRenderer{}, func() (live.Surface, error) { return stubSurface{}, nil })
		if err := ctrl.Open(context.Background(), "deck.md", "# Deck"); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(ctrl.Dispose)
		return ctrl
	}

	dir := setupTestDir(t, map[string]string{
		"good.yaml": "theme: forest\nmode: preview\n",
		"bad.yaml":  "theme: sepia\n",
	})

	t.Run("applies theme and mode", func(t *testing.T) {
		t.Parallel()

		ctrl := newCtrl(t)
		reloadConfig(context.Background(), ctrl, filepath.Join(dir, "good.yaml"), &serveFlags{}, discard)

		if ctrl.Theme() != mdslides.ThemeForest || ctrl.Mode() != mdslides.ModePreview {
			t.Errorf("theme = %q, mode = %q", ctrl.Theme(), ctrl.Mode())
		}
	})

	t.Run("flags keep precedence", func(t *testing.T) {
		t.Parallel()

		ctrl := newCtrl(t)
		f := &serveFlags{render: renderFlags{theme: "neutral"}}
		reloadConfig(context.Background(), ctrl, filepath.Join(dir, "good.yaml"), f, discard)

		if ctrl.Theme() != mdslides.ThemeNeutral {
			t.Errorf("theme = %q, want neutral from flags", ctrl.Theme())
		}
		if ctrl.Mode() != mdslides.ModePreview {
			t.Errorf("mode = %q, want preview from file", ctrl.Mode())
		}
	})

	t.Run("invalid file is ignored", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(slog.NewTextHandler(&buf, nil))
		ctrl := newCtrl(t)
		reloadConfig(context.Background(), ctrl, filepath.Join(dir, "bad.yaml"), &serveFlags{}, log)

		if ctrl.Theme() != mdslides.ThemeDefault {
			t.Errorf("theme = %q, want unchanged", ctrl.Theme())
		}
		if !strings.Contains(buf.String(), "config reload failed") {
			t.Errorf("log = %q", buf.String())
		}
	})
}

func TestListenError(t *testing.T) {
	t.Parallel()

	cause := errors.New("address already in use")
	err := error(&listenError{addr: ":1", err: cause})
	if !errors.Is(err, ErrListen) || !errors.Is(err, cause) {
		t.Error("listenError does not unwrap to ErrListen and its cause")
	}
	if err.Error() != cause.Error() {
		t.Errorf("Error() = %q", err.Error())
	}
}
