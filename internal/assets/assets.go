package assets

// Built-in template names.
const (
	SlidesTemplateName  = "slides"
	PreviewTemplateName = "preview"
	WaitingTemplateName = "waiting"
)

// Built-in style names. Palette styles set the page colors; layout styles
// are specific to one page template.
const (
	LightStyleName   = "light"
	DarkStyleName    = "dark"
	SlidesStyleName  = "slides"
	PreviewStyleName = "preview"
)

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a CSS file by name using the default embedded loader.
// The name should not include the .css extension or path components.
// Returns ErrStyleNotFound if the style does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads a page template by name using the default embedded loader.
// Returns ErrTemplateNotFound if the template does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}
