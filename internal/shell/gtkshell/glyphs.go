package gtkshell

import (
	"fmt"
	"log"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"
	"github.com/hashicorp/golang-lru/v2"

	"github.com/chess10kp/tuck/internal/shell"
)

// GlyphNames maps glyphs to icon theme names. An empty name means the glyph
// is drawn as text.
type GlyphNames struct {
	Expand    string
	Collapse  string
	Separator string
}

// fallbackText is shown when a glyph has no icon or the icon fails to load.
var fallbackText = map[shell.Glyph]string{
	shell.GlyphExpand:    "»",
	shell.GlyphCollapse:  "«",
	shell.GlyphSeparator: "│",
}

type loadFunc func(name string, size int) (*gdk.Pixbuf, error)

// GlyphCache keeps themed glyph pixbufs. Only the main loop touches it.
type GlyphCache struct {
	cache *lru.Cache[string, *gdk.Pixbuf]
	names GlyphNames
	load  loadFunc

	hits   int
	misses int
}

// NewGlyphCache loads from the default icon theme. Call after gtk.Init.
func NewGlyphCache(size int, names GlyphNames) (*GlyphCache, error) {
	theme, err := gtk.IconThemeGetDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to get default icon theme: %w", err)
	}
	return newGlyphCache(size, names, func(name string, px int) (*gdk.Pixbuf, error) {
		if !theme.HasIcon(name) {
			return nil, fmt.Errorf("icon '%s' not found in theme", name)
		}
		return theme.LoadIcon(name, px, gtk.ICON_LOOKUP_USE_BUILTIN)
	})
}

func newGlyphCache(size int, names GlyphNames, load loadFunc) (*GlyphCache, error) {
	if size <= 0 {
		size = 16
	}
	cache, err := lru.New[string, *gdk.Pixbuf](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create glyph cache: %w", err)
	}
	return &GlyphCache{cache: cache, names: names, load: load}, nil
}

func (c *GlyphCache) iconName(g shell.Glyph) string {
	switch g {
	case shell.GlyphExpand:
		return c.names.Expand
	case shell.GlyphCollapse:
		return c.names.Collapse
	case shell.GlyphSeparator:
		return c.names.Separator
	}
	return ""
}

// Lookup returns a pixbuf for g at size px, or the text to draw instead.
func (c *GlyphCache) Lookup(g shell.Glyph, size int) (*gdk.Pixbuf, string) {
	name := c.iconName(g)
	if name == "" {
		return nil, fallbackText[g]
	}

	key := fmt.Sprintf("%s@%d", name, size)
	if pixbuf, ok := c.cache.Get(key); ok {
		c.hits++
		return pixbuf, ""
	}
	c.misses++

	pixbuf, err := c.load(name, size)
	if err != nil || pixbuf == nil {
		log.Printf("[SHELL] Glyph %s (%s) unavailable, using text: %v", g, name, err)
		return nil, fallbackText[g]
	}

	c.cache.Add(key, pixbuf)
	return pixbuf, ""
}

// Stats returns cache hits and misses.
func (c *GlyphCache) Stats() (hits, misses int) {
	return c.hits, c.misses
}
