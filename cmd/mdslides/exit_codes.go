package main

import (
	"context"
	"errors"
	"os"

	"github.com/alnah/go-mdslides"
	"github.com/alnah/go-mdslides/internal/assets"
	"github.com/alnah/go-mdslides/internal/config"
	"github.com/alnah/go-mdslides/internal/hints"
)

// Exit codes for the mdslides CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, port in use
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, mdslides.ErrBrowserConnect) ||
		errors.Is(err, mdslides.ErrPageCreate) ||
		errors.Is(err, mdslides.ErrPageLoad) ||
		errors.Is(err, mdslides.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrListen) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, mdslides.ErrEmptyMarkdown) ||
		errors.Is(err, mdslides.ErrInvalidTheme) ||
		errors.Is(err, mdslides.ErrInvalidMode) ||
		errors.Is(err, mdslides.ErrStyleNotFound) ||
		errors.Is(err, mdslides.ErrTemplateNotFound) ||
		errors.Is(err, mdslides.ErrInvalidAssetPath) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrInvalidDuration) {
		return ExitUsage
	}

	return ExitGeneral
}

// builtinStyles are the names --style accepts besides files and inline CSS.
var builtinStyles = []string{
	assets.LightStyleName,
	assets.DarkStyleName,
	assets.SlidesStyleName,
	assets.PreviewStyleName,
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	var listenErr *listenError
	var searchErr *config.SearchError
	switch {
	case errors.As(err, &listenErr):
		return hints.ForPortInUse(listenErr.addr)
	case errors.Is(err, mdslides.ErrBrowserConnect):
		return hints.ForBrowserConnect(os.Getenv)
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.As(err, &searchErr):
		return hints.ForConfigNotFound(searchErr.Tried)
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, mdslides.ErrStyleNotFound):
		return hints.ForStyleNotFound(builtinStyles)
	case errors.Is(err, mdslides.ErrInvalidTheme):
		return hints.ForUnknownTheme(config.Themes)
	case errors.Is(err, mdslides.ErrInvalidMode):
		return hints.ForUnknownMode(config.Modes)
	case errors.Is(err, mdslides.ErrEmptyMarkdown):
		return hints.ForEmptyDocument()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
