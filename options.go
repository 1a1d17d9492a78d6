package mdslides

import (
	"io"
	"log/slog"
)

// Option configures a Renderer.
type Option func(*Renderer)

// rendererConfig holds internal configuration for Renderer.
type rendererConfig struct {
	assetPath     string
	styleInput    string
	resolvedStyle string
	cacheSize     int
	ambient       AmbientFunc
}

// WithLogger sets the structured logger. The default discards all records.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithAssetPath sets a directory of custom styles and templates that take
// precedence over the embedded ones. See NewAssetLoader for the layout.
func WithAssetPath(path string) Option {
	return func(r *Renderer) {
		r.cfg.assetPath = path
	}
}

// WithAssetLoader sets a custom asset loader. Takes precedence over WithAssetPath.
func WithAssetLoader(loader AssetLoader) Option {
	return func(r *Renderer) {
		r.publicAssetLoader = loader
	}
}

// WithStyle adds a custom stylesheet after the built-in ones. The value is a
// style name resolved by the asset loader, a file path (contains / or \) or
// raw CSS (contains {).
func WithStyle(style string) Option {
	return func(r *Renderer) {
		r.cfg.styleInput = style
	}
}

// WithCacheSize sets how many converted documents are kept. Zero disables
// the cache. Panics if n < 0 (programmer error).
func WithCacheSize(n int) Option {
	if n < 0 {
		panic("mdslides: WithCacheSize size must not be negative")
	}
	return func(r *Renderer) {
		r.cfg.cacheSize = n
	}
}

// WithAmbient sets the ambient theme query used to resolve ThemeDefault.
// The default reads the environment (see EnvAmbient).
func WithAmbient(fn AmbientFunc) Option {
	return func(r *Renderer) {
		r.cfg.ambient = fn
	}
}

// discardLogger returns a logger that drops every record.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
