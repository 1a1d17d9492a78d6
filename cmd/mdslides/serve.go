package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alnah/go-mdslides"
	"github.com/alnah/go-mdslides/internal/config"
	"github.com/alnah/go-mdslides/internal/fileutil"
	"github.com/alnah/go-mdslides/internal/live"
	"github.com/alnah/go-mdslides/internal/server"
)

// ErrListen marks a listen address that cannot be bound.
var ErrListen = errors.New("cannot listen")

// listenError carries the address for the port-in-use hint.
type listenError struct {
	addr string
	err  error
}

func (e *listenError) Error() string   { return e.err.Error() }
func (e *listenError) Unwrap() []error { return []error{ErrListen, e.err} }

// runServe starts the live display server, optionally following a file.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseServeFlags(args)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsageOrHelp(err), err)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: serve takes at most one file, got %d", ErrUsage, len(positional))
	}

	log := newLogger(env.Stderr, f.common.quiet, f.common.verbose)
	warnUnknownEnvVars(env.Stderr)
	setMaxProcs(log)

	envCfg := loadEnvConfig()
	cfg, cfgPath, err := loadConfig(f.common.config, envCfg)
	if err != nil {
		return err
	}
	mergeServeFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	theme, mode, err := displaySettings(cfg)
	if err != nil {
		return err
	}

	var source, text string
	if len(positional) == 1 {
		if source, text, err = readSource(positional[0]); err != nil {
			return err
		}
	}

	renderer, err := newRenderer(cfg, log)
	if err != nil {
		return err
	}

	srv := server.New(renderer, log, server.Config{
		Addr:     cfg.Server.Addr,
		Theme:    theme,
		Mode:     mode,
		Debounce: cfg.DebounceDuration(),
	})
	ln, err := srv.Listen()
	if err != nil {
		return &listenError{addr: cfg.Server.Addr, err: err}
	}

	url := "http://" + ln.Addr().String()
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Serving %s\n", url)
	}

	ctrl := srv.Controller()
	if source != "" {
		// A failed first render is reported by the server; the page waits
		// for the next edit.
		if err := ctrl.Open(ctx, source, text); err != nil {
			log.Debug("initial render failed", "error", err)
		}
		if !f.noWatch {
			w := &server.Watcher{
				Source:   source,
				Config:   cfgPath,
				OnSource: func(path, text string) { ctrl.Changed(path, text) },
				OnConfig: func(path string) { reloadConfig(ctx, ctrl, path, f, log) },
				Log:      log,
			}
			go func() {
				if err := w.Run(ctx); err != nil {
					log.Warn("file watching stopped", "error", err)
				}
			}()
		}
	}

	if cfg.Server.Open && env.OpenBrowser != nil {
		env.OpenBrowser(url)
	}

	return srv.Serve(ctx, ln)
}

// mergeServeFlags merges serve flags into config. CLI values win.
func mergeServeFlags(f *serveFlags, cfg *config.Config) {
	mergeRenderFlags(f.render, cfg)
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.debounce != "" {
		cfg.Debounce = f.debounce
	}
	if f.openSet {
		cfg.Server.Open = f.open
	}
}

// readSource validates and reads the followed file. Returns its absolute
// path, which is the document id of the live session.
func readSource(path string) (string, string, error) {
	if !fileutil.IsMarkdown(path) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidExtension, filepath.Ext(path))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}
	data, err := os.ReadFile(abs) // #nosec G304 -- user-provided path
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}
	return abs, string(data), nil
}

// reloadConfig re-applies theme and mode after the config file changed.
// Flags and environment still take precedence over the file. Other keys
// need a restart.
func reloadConfig(ctx context.Context, ctrl *live.Controller, path string, f *serveFlags, log *slog.Logger) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		log.Warn("config reload failed", "path", path, "error", err)
		return
	}
	applyEnvConfig(loadEnvConfig(), cfg)
	mergeServeFlags(f, cfg)

	theme, mode, err := displaySettings(cfg)
	if err != nil {
		log.Warn("config reload failed", "path", path, "error", err)
		return
	}
	if theme != ctrl.Theme() {
		if err := ctrl.SetTheme(ctx, theme); err != nil {
			log.Warn("applying theme", "error", err)
		}
	}
	if mode != ctrl.Mode() {
		if err := ctrl.SetMode(ctx, mode); err != nil {
			log.Warn("applying mode", "error", err)
		}
	}
	log.Info("config reloaded", "path", path, "theme", theme, "mode", mode)
}

var _ server.Renderer = (*mdslides.Renderer)(nil)
