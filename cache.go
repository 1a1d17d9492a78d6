package mdslides

import (
	"crypto/sha256"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of converted documents kept by a Renderer.
const DefaultCacheSize = 64

// converted holds the theme- and mode-independent output of the text stages
// (extract, convert, anchor, restore, outline). Entries are shared between
// renders and must not be mutated.
type converted struct {
	body       string
	outline    string
	diagrams   []string
	headings   []Heading
	unresolved []int
}

// renderCache maps a content hash to its converted form.
// A nil *renderCache is a valid, always-missing cache.
type renderCache struct {
	entries *lru.Cache[[sha256.Size]byte, *converted]
}

// newRenderCache returns a cache holding size entries, or nil if size <= 0.
func newRenderCache(size int) *renderCache {
	if size <= 0 {
		return nil
	}
	entries, err := lru.New[[sha256.Size]byte, *converted](size)
	if err != nil {
		// Only returned for a non-positive size.
		return nil
	}
	return &renderCache{entries: entries}
}

func cacheKey(markdown string) [sha256.Size]byte {
	return sha256.Sum256([]byte(markdown))
}

func (c *renderCache) get(key [sha256.Size]byte) (*converted, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(key)
}

func (c *renderCache) add(key [sha256.Size]byte, v *converted) {
	if c == nil {
		return
	}
	c.entries.Add(key, v)
}

func (c *renderCache) len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
