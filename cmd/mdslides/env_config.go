package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-mdslides/internal/config"
)

// envPrefix marks variables read by the CLI.
const envPrefix = "MDSLIDES_"

// envConfig holds configuration from environment variables (and .env,
// loaded into the environment at startup).
type envConfig struct {
	ConfigPath string        // MDSLIDES_CONFIG: config file name or path
	Theme      string        // MDSLIDES_THEME: diagram theme
	Mode       string        // MDSLIDES_MODE: slides or preview
	Addr       string        // MDSLIDES_ADDR: serve listen address
	Debounce   string        // MDSLIDES_DEBOUNCE: re-render delay
	Style      string        // MDSLIDES_STYLE: extra CSS
	AssetPath  string        // MDSLIDES_ASSET_PATH: custom asset directory
	Timeout    time.Duration // MDSLIDES_TIMEOUT: PDF snapshot timeout
	Workers    int           // MDSLIDES_WORKERS: parallel export workers
}

// knownEnvVars lists valid MDSLIDES_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDSLIDES_CONFIG":     true,
	"MDSLIDES_THEME":      true,
	"MDSLIDES_MODE":       true,
	"MDSLIDES_ADDR":       true,
	"MDSLIDES_DEBOUNCE":   true,
	"MDSLIDES_STYLE":      true,
	"MDSLIDES_ASSET_PATH": true,
	"MDSLIDES_TIMEOUT":    true,
	"MDSLIDES_WORKERS":    true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed timeouts and worker counts are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("MDSLIDES_CONFIG"),
		Theme:      os.Getenv("MDSLIDES_THEME"),
		Mode:       os.Getenv("MDSLIDES_MODE"),
		Addr:       os.Getenv("MDSLIDES_ADDR"),
		Debounce:   os.Getenv("MDSLIDES_DEBOUNCE"),
		Style:      os.Getenv("MDSLIDES_STYLE"),
		AssetPath:  os.Getenv("MDSLIDES_ASSET_PATH"),
	}

	if timeout := os.Getenv("MDSLIDES_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("MDSLIDES_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars writes a warning for each unrecognized MDSLIDES_*
// variable, catching typos like MDSLIDES_THEMES.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overrides config values with set environment variables.
// Priority: CLI flags > env vars > config file > defaults
// (CLI flags are applied afterwards by the commands).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Theme != "" {
		cfg.Theme = env.Theme
	}
	if env.Mode != "" {
		cfg.Mode = env.Mode
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.Debounce != "" {
		cfg.Debounce = env.Debounce
	}
	if env.Style != "" {
		cfg.Style = env.Style
	}
	if env.AssetPath != "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.Timeout > 0 {
		cfg.Export.Timeout = env.Timeout.String()
	}
}
