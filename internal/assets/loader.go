package assets

import "errors"

// A lookup that misses wraps its family's not-found error; the resolver falls
// through to the next layer on those and stops on everything else.
var (
	ErrStyleNotFound    = errors.New("unknown style")
	ErrTemplateNotFound = errors.New("unknown page template")
)

// Failures that stop resolution at the layer that hit them.
var (
	ErrInvalidAssetName = errors.New("invalid asset name")
	ErrInvalidBasePath  = errors.New("asset directory unusable")
	ErrAssetRead        = errors.New("reading asset")
	ErrPathTraversal    = errors.New("asset resolves outside its directory")
)

// AssetLoader loads page styles and page templates by name.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads a page template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)
}

// kind describes where assets of one family live and how a miss is reported.
type kind struct {
	dir      string
	ext      string
	notFound error
}

var (
	styleKind    = kind{dir: "styles", ext: ".css", notFound: ErrStyleNotFound}
	templateKind = kind{dir: "templates", ext: ".html", notFound: ErrTemplateNotFound}
)

// path returns the slash-separated path of name relative to an asset root.
func (k kind) path(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	return k.dir + "/" + name + k.ext, nil
}
