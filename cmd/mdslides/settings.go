package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/alnah/go-mdslides"
	"github.com/alnah/go-mdslides/internal/config"
)

// newLogger returns the CLI logger: info by default, debug with --verbose,
// errors only with --quiet.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig resolves configuration from the --config flag (or
// MDSLIDES_CONFIG), then applies environment overrides. Returns the resolved
// config file path, empty when none was given.
func loadConfig(flagConfig string, env *envConfig) (*config.Config, string, error) {
	name := flagConfig
	if name == "" {
		name = env.ConfigPath
	}

	cfg := config.DefaultConfig()
	path := ""
	if name != "" {
		var err error
		if path, err = config.ResolvePath(name); err != nil {
			return nil, "", fmt.Errorf("loading config: %w", err)
		}
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, "", fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(env, cfg)
	return cfg, path, nil
}

// mergeRenderFlags merges rendering flags into config. CLI values win.
func mergeRenderFlags(f renderFlags, cfg *config.Config) {
	if f.theme != "" {
		cfg.Theme = f.theme
	}
	if f.mode != "" {
		cfg.Mode = f.mode
	}
	if f.style != "" {
		cfg.Style = f.style
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
}

// displaySettings parses the theme and mode of cfg.
func displaySettings(cfg *config.Config) (mdslides.Theme, mdslides.Mode, error) {
	theme, err := mdslides.ParseTheme(cfg.Theme)
	if err != nil {
		return "", "", err
	}
	mode, err := mdslides.ParseMode(cfg.Mode)
	if err != nil {
		return "", "", err
	}
	return theme, mode, nil
}

// newRenderer builds the renderer described by cfg.
func newRenderer(cfg *config.Config, log *slog.Logger) (*mdslides.Renderer, error) {
	opts := []mdslides.Option{
		mdslides.WithLogger(log),
		mdslides.WithCacheSize(cfg.Cache.Size),
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, mdslides.WithAssetPath(cfg.Assets.BasePath))
	}
	if cfg.Style != "" {
		opts = append(opts, mdslides.WithStyle(cfg.Style))
	}

	r, err := mdslides.NewRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}
	return r, nil
}
