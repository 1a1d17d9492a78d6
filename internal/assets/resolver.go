package assets

import "errors"

// AssetResolver layers a user asset directory over the embedded assets.
// A name missing from the directory falls through to the built-in one;
// any other error from the directory is returned as is.
type AssetResolver struct {
	layers []AssetLoader // searched in order, embedded last
}

// NewAssetResolver creates an AssetResolver. An empty customBasePath
// resolves from the embedded assets only.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	r := &AssetResolver{}
	if customBasePath != "" {
		custom, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		r.layers = append(r.layers, custom)
	}
	r.layers = append(r.layers, NewEmbeddedLoader())
	return r, nil
}

// LoadStyle resolves a style through the layers.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.resolve(func(l AssetLoader) (string, error) { return l.LoadStyle(name) })
}

// LoadTemplate resolves a page template through the layers.
func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.resolve(func(l AssetLoader) (string, error) { return l.LoadTemplate(name) })
}

func (r *AssetResolver) resolve(load func(AssetLoader) (string, error)) (string, error) {
	var err error
	for _, l := range r.layers {
		var content string
		if content, err = load(l); err == nil {
			return content, nil
		}
		if !isNotFoundError(err) {
			return "", err
		}
	}
	return "", err
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrTemplateNotFound)
}

// HasCustomLoader reports whether a user asset directory is layered in.
func (r *AssetResolver) HasCustomLoader() bool {
	return len(r.layers) > 1
}

var _ AssetLoader = (*AssetResolver)(nil)
