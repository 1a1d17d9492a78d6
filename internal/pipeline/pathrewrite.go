package pipeline

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Sentinel errors for asset resolution.
var (
	ErrAssetOutsideBase = errors.New("asset path escapes base directory")
	ErrAssetReference   = errors.New("invalid asset reference")
)

// AssetResolver maps an image reference found in the document to an address
// the display surface can load.
type AssetResolver interface {
	ResolveAsset(ref string) (string, error)
}

// AssetResolverFunc adapts a function to AssetResolver.
type AssetResolverFunc func(ref string) (string, error)

// ResolveAsset calls f(ref).
func (f AssetResolverFunc) ResolveAsset(ref string) (string, error) {
	return f(ref)
}

// RewriteAssetRefs passes every img[src] through resolver.
// Web URLs, protocol-relative URLs, data URIs and fragments pass through
// unchanged. A failing resolution keeps the original reference and is
// reported through onError when it is non-nil.
//
// The document is streamed through the tokenizer and every token that is not
// rewritten is copied byte for byte, so diagram sources and escaped text keep
// their exact form.
func RewriteAssetRefs(htmlContent string, resolver AssetResolver, onError func(ref string, err error)) string {
	if resolver == nil || !strings.Contains(htmlContent, "<img") {
		return htmlContent
	}

	z := html.NewTokenizer(strings.NewReader(htmlContent))
	var buf strings.Builder
	buf.Grow(len(htmlContent))

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return buf.String()
			}
			return htmlContent

		case html.StartTagToken, html.SelfClosingTagToken:
			// Raw is only valid until the next call on z.
			raw := string(z.Raw())
			tok := z.Token()
			if tok.DataAtom == atom.Img && rewriteImgSrc(&tok, resolver, onError) {
				buf.WriteString(tok.String())
				continue
			}
			buf.WriteString(raw)

		default:
			buf.Write(z.Raw())
		}
	}
}

// rewriteImgSrc resolves the src attribute of tok in place.
// Returns true when the attribute changed.
func rewriteImgSrc(tok *html.Token, resolver AssetResolver, onError func(string, error)) bool {
	for i, attr := range tok.Attr {
		if attr.Key != "src" || !isRelativePath(attr.Val) {
			continue
		}

		resolved, err := resolver.ResolveAsset(attr.Val)
		if err != nil {
			if onError != nil {
				onError(attr.Val, err)
			}
			return false
		}
		if resolved == attr.Val {
			return false
		}

		tok.Attr[i].Val = resolved
		return true
	}
	return false
}

// isRelativePath returns true if the reference needs resolving.
func isRelativePath(ref string) bool {
	if ref == "" {
		return false
	}

	// Skip URLs (http, https, file, data, protocol-relative)
	if strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "file://") ||
		strings.HasPrefix(ref, "data:") ||
		strings.HasPrefix(ref, "//") {
		return false
	}

	// Skip anchors
	return !strings.HasPrefix(ref, "#")
}

// FileURLResolver resolves references to file:// URLs under BaseDir.
// Used for standalone exports that are opened from disk.
type FileURLResolver struct {
	BaseDir string
}

// ResolveAsset implements AssetResolver.
func (r FileURLResolver) ResolveAsset(ref string) (string, error) {
	absPath, _, err := resolveUnder(r.BaseDir, ref)
	if err != nil {
		return "", err
	}
	return pathToFileURL(absPath), nil
}

// PrefixResolver resolves references to Prefix + the slash path relative to
// BaseDir. Used by the HTTP surface, which serves BaseDir under Prefix.
type PrefixResolver struct {
	BaseDir string
	Prefix  string
}

// ResolveAsset implements AssetResolver.
func (r PrefixResolver) ResolveAsset(ref string) (string, error) {
	_, rel, err := resolveUnder(r.BaseDir, ref)
	if err != nil {
		return "", err
	}
	u := url.URL{Path: path.Join("/", filepath.ToSlash(rel))}
	return strings.TrimSuffix(r.Prefix, "/") + u.EscapedPath(), nil
}

// resolveUnder resolves ref against baseDir and rejects anything outside it.
// Returns the absolute path and the path relative to baseDir.
func resolveUnder(baseDir, ref string) (absPath, rel string, err error) {
	if baseDir == "" {
		return "", "", fmt.Errorf("%w: no base directory for %q", ErrAssetReference, ref)
	}

	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Path == "" {
		return "", "", fmt.Errorf("%w: %q", ErrAssetReference, ref)
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", "", fmt.Errorf("resolving base directory: %w", err)
	}

	p := filepath.FromSlash(u.Path)
	if filepath.IsAbs(p) {
		absPath = filepath.Clean(p)
	} else {
		absPath = filepath.Join(absBase, p)
	}

	// Security: validate path is under baseDir (prevent traversal)
	if !isPathUnderDir(absPath, absBase) {
		return "", "", fmt.Errorf("%w: %q", ErrAssetOutsideBase, ref)
	}

	rel, err = filepath.Rel(absBase, absPath)
	if err != nil {
		return "", "", fmt.Errorf("%w: %q", ErrAssetOutsideBase, ref)
	}
	return absPath, rel, nil
}

// IsPathUnderDir reports whether absPath is dir or lies below it.
func IsPathUnderDir(absPath, dir string) bool {
	return isPathUnderDir(absPath, dir)
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	// Ensure dir ends with separator for correct prefix matching
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}

	// Path is under dir if it starts with dir/ or equals dir
	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
// Handles both Unix and Windows paths correctly.
func pathToFileURL(absPath string) string {
	// filepath.ToSlash handles Windows backslashes
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}
