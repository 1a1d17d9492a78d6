package mdslides

import (
	"errors"

	"github.com/alnah/go-mdslides/internal/assets"
	"github.com/alnah/go-mdslides/internal/pipeline"
)

// Built-in asset names.
const (
	// SlidesTemplate renders one diagram per slide.
	SlidesTemplate = assets.SlidesTemplateName

	// PreviewTemplate renders the full document with an outline.
	PreviewTemplate = assets.PreviewTemplateName

	// WaitingTemplate is shown by the live server before a document is opened.
	WaitingTemplate = assets.WaitingTemplateName
)

// AssetLoader defines the contract for loading CSS styles and page templates.
// Implementations may load from filesystem, embedded assets, a database, etc.
//
// The library provides NewAssetLoader() for filesystem-based loading with
// fallback to embedded defaults. Implement this interface for custom backends.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads a page template (html/template source) by name.
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)
}

// NewAssetLoader creates an AssetLoader for the given base path.
// If basePath is empty, returns a loader using only embedded assets.
// If basePath is set, custom assets take precedence with fallback to embedded.
//
// The basePath directory should contain:
//   - styles/{name}.css for CSS styles (light, dark, slides, preview)
//   - templates/{name}.html for page templates (slides, preview, waiting)
//
// Returns ErrInvalidAssetPath if basePath is set but not a valid, readable directory.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &assetLoaderAdapter{resolver: resolver}, nil
}

// assetLoaderAdapter wraps internal AssetResolver to return public errors.
type assetLoaderAdapter struct {
	resolver *assets.AssetResolver
}

func (a *assetLoaderAdapter) LoadStyle(name string) (string, error) {
	content, err := a.resolver.LoadStyle(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

func (a *assetLoaderAdapter) LoadTemplate(name string) (string, error) {
	content, err := a.resolver.LoadTemplate(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

// convertAssetError maps internal asset errors to public errors.
func convertAssetError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, assets.ErrStyleNotFound):
		return wrapError(ErrStyleNotFound, err)
	case errors.Is(err, assets.ErrTemplateNotFound):
		return wrapError(ErrTemplateNotFound, err)
	case errors.Is(err, assets.ErrInvalidBasePath):
		return wrapError(ErrInvalidAssetPath, err)
	case errors.Is(err, assets.ErrPathTraversal):
		return wrapError(ErrInvalidAssetPath, err)
	case errors.Is(err, assets.ErrInvalidAssetName):
		return wrapError(ErrStyleNotFound, err) // Invalid name means not found
	default:
		return err
	}
}

// wrapError creates a new error that wraps the original with a public sentinel.
// The resulting error preserves the original message via Error() and supports
// errors.Is() matching against the public sentinel via Unwrap().
func wrapError(sentinel, original error) error {
	return &wrappedAssetError{sentinel: sentinel, original: original}
}

type wrappedAssetError struct {
	sentinel error
	original error
}

func (e *wrappedAssetError) Error() string {
	return e.original.Error()
}

// Unwrap returns the public sentinel for errors.Is() matching.
// Internal errors are not exposed since they're in internal/ packages.
func (e *wrappedAssetError) Unwrap() error {
	return e.sentinel
}

// AssetResolver maps a relative image reference found in the document to
// the address the display can load it from. Resolution errors keep the
// original reference.
type AssetResolver interface {
	ResolveAsset(ref string) (string, error)
}

// AssetResolverFunc adapts a function to AssetResolver.
type AssetResolverFunc func(ref string) (string, error)

// ResolveAsset calls f(ref).
func (f AssetResolverFunc) ResolveAsset(ref string) (string, error) {
	return f(ref)
}

// FileAssets resolves references to file:// URLs under dir.
// Used for standalone exports opened from disk.
func FileAssets(dir string) AssetResolver {
	return pipeline.FileURLResolver{BaseDir: dir}
}

// ServedAssets resolves references to URLs under prefix, for a server that
// serves dir at that prefix. References escaping dir are rejected.
func ServedAssets(dir, prefix string) AssetResolver {
	return pipeline.PrefixResolver{BaseDir: dir, Prefix: prefix}
}
