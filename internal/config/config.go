package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdslides/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxAddrLength     = 255  // host:port
	MaxPathLength     = 4096 // PATH_MAX on Linux
	MaxStyleLength    = 4096 // style name or path
	MaxDurationLength = 20   // "300ms", "1m30s"
)

// Value limits.
const (
	MaxDebounce      = 10 * time.Second
	MaxCacheSize     = 4096
	MaxExportTimeout = 10 * time.Minute
)

// Defaults applied by DefaultConfig.
const (
	DefaultTheme         = "default"
	DefaultMode          = "slides"
	DefaultDebounce      = "300ms"
	DefaultAddr          = "127.0.0.1:7331"
	DefaultCacheSize     = 64
	DefaultExportTimeout = "30s"
)

// Themes and Modes list the accepted values for the theme and mode keys.
var (
	Themes = []string{"default", "dark", "forest", "neutral"}
	Modes  = []string{"slides", "preview"}
)

// Config holds all configuration for rendering and serving documents.
type Config struct {
	Theme    string       `yaml:"theme"`    // default | dark | forest | neutral
	Mode     string       `yaml:"mode"`     // slides | preview
	Debounce string       `yaml:"debounce"` // Go duration, e.g. "300ms"
	Server   ServerConfig `yaml:"server"`
	Assets   AssetsConfig `yaml:"assets"`
	Style    string       `yaml:"style"` // Extra CSS: style name or file path
	Cache    CacheConfig  `yaml:"cache"`
	Export   ExportConfig `yaml:"export"`
}

// ServerConfig defines the local display server.
type ServerConfig struct {
	Addr string `yaml:"addr"` // host:port to listen on
	Open bool   `yaml:"open"` // Open the page in the default browser on start
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// CacheConfig defines the render cache.
type CacheConfig struct {
	Size int `yaml:"size"` // Entries kept; 0 disables caching
}

// ExportConfig defines static export options.
type ExportConfig struct {
	Minify  bool   `yaml:"minify"`
	Timeout string `yaml:"timeout"` // PDF snapshot timeout, Go duration
}

// Validate checks values and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if c.Theme != "" && !contains(Themes, c.Theme) {
		return fmt.Errorf("%w: theme %q (must be one of %s)", ErrInvalidValue, c.Theme, strings.Join(Themes, ", "))
	}
	if c.Mode != "" && !contains(Modes, c.Mode) {
		return fmt.Errorf("%w: mode %q (must be one of %s)", ErrInvalidValue, c.Mode, strings.Join(Modes, ", "))
	}

	if err := validateDuration("debounce", c.Debounce, 0, MaxDebounce); err != nil {
		return err
	}
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("style", c.Style, MaxStyleLength); err != nil {
		return err
	}

	if c.Cache.Size < 0 || c.Cache.Size > MaxCacheSize {
		return fmt.Errorf("%w: cache.size must be between 0 and %d, got %d", ErrInvalidValue, MaxCacheSize, c.Cache.Size)
	}

	if err := validateDuration("export.timeout", c.Export.Timeout, time.Second, MaxExportTimeout); err != nil {
		return err
	}

	return nil
}

// DebounceDuration returns the parsed debounce delay, or the default when unset.
// Call Validate first; an unparsable value also yields the default.
func (c *Config) DebounceDuration() time.Duration {
	return parseDurationOr(c.Debounce, DefaultDebounce)
}

// ExportTimeout returns the parsed export timeout, or the default when unset.
func (c *Config) ExportTimeout() time.Duration {
	return parseDurationOr(c.Export.Timeout, DefaultExportTimeout)
}

func parseDurationOr(value, fallback string) time.Duration {
	if value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	d, _ := time.ParseDuration(fallback)
	return d
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateDuration checks that a non-empty value parses as a Go duration
// within [lo, hi].
func validateDuration(fieldName, value string, lo, hi time.Duration) error {
	if value == "" {
		return nil
	}
	if err := validateFieldLength(fieldName, value, MaxDurationLength); err != nil {
		return err
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: %s %q is not a duration (e.g. 300ms, 2s)", ErrInvalidValue, fieldName, value)
	}
	if d < lo || d > hi {
		return fmt.Errorf("%w: %s must be between %v and %v, got %v", ErrInvalidValue, fieldName, lo, hi, d)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Theme:    DefaultTheme,
		Mode:     DefaultMode,
		Debounce: DefaultDebounce,
		Server:   ServerConfig{Addr: DefaultAddr},
		Assets:   AssetsConfig{BasePath: ""},
		Cache:    CacheConfig{Size: DefaultCacheSize},
		Export:   ExportConfig{Timeout: DefaultExportTimeout},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	configPath, err := ResolvePath(nameOrPath)
	if err != nil {
		return nil, err
	}
	return LoadFile(configPath)
}

// LoadFile loads and validates the config file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ResolvePath returns the file a config name or path refers to.
// The file watcher uses it to know which path to watch for reloads.
func ResolvePath(nameOrPath string) (string, error) {
	if nameOrPath == "" {
		return "", ErrEmptyConfigName
	}
	if isFilePath(nameOrPath) {
		return nameOrPath, nil
	}
	return resolveConfigPath(nameOrPath)
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-mdslides/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-mdslides", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", &SearchError{Name: name, Tried: triedPaths}
}

// SearchError reports a named config that was found in none of the
// searched locations. It matches ErrConfigNotFound.
type SearchError struct {
	Name  string
	Tried []string
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%v: %s: tried %s", ErrConfigNotFound, e.Name, strings.Join(e.Tried, ", "))
}

func (e *SearchError) Unwrap() error {
	return ErrConfigNotFound
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
