package mdslides

// Notes:
// - Tests rodConverter with a mock renderer (no browser)
// - Tests buildPDFOptions for both orientations

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Mock Implementations
// ---------------------------------------------------------------------------

type mockRenderer struct {
	Result     []byte
	Err        error
	CalledWith string
	CalledOpts *pdfOptions
	Content    string
	Closed     bool
}

func (m *mockRenderer) RenderFromFile(ctx context.Context, filePath string, opts *pdfOptions) ([]byte, error) {
	m.CalledWith = filePath
	m.CalledOpts = opts
	if data, err := os.ReadFile(filePath); err == nil {
		m.Content = string(data)
	}
	return m.Result, m.Err
}

func (m *mockRenderer) Close() error {
	m.Closed = true
	return nil
}

// ---------------------------------------------------------------------------
// TestRodConverter_ToPDF - PDF Conversion with Mock Renderer
// ---------------------------------------------------------------------------

func TestRodConverter_ToPDF(t *testing.T) {
	t.Parallel()

	t.Run("writes page to a temporary html file", func(t *testing.T) {
		t.Parallel()

		mock := &mockRenderer{Result: []byte("%PDF")}
		c := &rodConverter{renderer: mock}

		got, err := c.ToPDF(context.Background(), "<html>page</html>", &pdfOptions{Landscape: true})
		if err != nil {
			t.Fatalf("ToPDF() error = %v", err)
		}
		if string(got) != "%PDF" {
			t.Errorf("ToPDF() = %q, want %q", got, "%PDF")
		}
		if !strings.HasSuffix(mock.CalledWith, ".html") {
			t.Errorf("renderer called with %q, want .html file", mock.CalledWith)
		}
		if mock.Content != "<html>page</html>" {
			t.Errorf("temp file content = %q", mock.Content)
		}
		if _, err := os.Stat(mock.CalledWith); !os.IsNotExist(err) {
			t.Error("temporary file should be removed after rendering")
		}
		if mock.CalledOpts == nil || !mock.CalledOpts.Landscape {
			t.Error("options should be passed through")
		}
	})

	t.Run("renderer error", func(t *testing.T) {
		t.Parallel()

		c := &rodConverter{renderer: &mockRenderer{Err: ErrPageLoad}}
		if _, err := c.ToPDF(context.Background(), "<html></html>", nil); !errors.Is(err, ErrPageLoad) {
			t.Errorf("error = %v, want ErrPageLoad", err)
		}
	})

	t.Run("close", func(t *testing.T) {
		t.Parallel()

		mock := &mockRenderer{}
		c := &rodConverter{renderer: mock}
		if err := c.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
		if !mock.Closed {
			t.Error("Close() should close the renderer")
		}
	})
}

func TestRodRenderer_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newRodRenderer(DefaultExportTimeout)
	if _, err := r.RenderFromFile(ctx, "/nonexistent.html", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if r.browser != nil {
		t.Error("browser should not start for a cancelled context")
	}
}

// ---------------------------------------------------------------------------
// TestBuildPDFOptions - Page Layout
// ---------------------------------------------------------------------------

func TestBuildPDFOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		opts          *pdfOptions
		wantLandscape bool
		wantWidth     float64
		wantHeight    float64
	}{
		{"nil is portrait", nil, false, paperShortInches, paperLongInches},
		{"portrait", &pdfOptions{}, false, paperShortInches, paperLongInches},
		{"landscape", &pdfOptions{Landscape: true}, true, paperLongInches, paperShortInches},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := buildPDFOptions(tt.opts)
			if got.Landscape != tt.wantLandscape {
				t.Errorf("Landscape = %v, want %v", got.Landscape, tt.wantLandscape)
			}
			if *got.PaperWidth != tt.wantWidth || *got.PaperHeight != tt.wantHeight {
				t.Errorf("paper = %vx%v, want %vx%v", *got.PaperWidth, *got.PaperHeight, tt.wantWidth, tt.wantHeight)
			}
			if *got.MarginTop != marginInches || *got.MarginLeft != marginInches {
				t.Errorf("margins = %v/%v, want %v", *got.MarginTop, *got.MarginLeft, marginInches)
			}
			if !got.PrintBackground {
				t.Error("PrintBackground should be true for themed pages")
			}
		})
	}
}
