// Package shell describes the status-bar surface tuck drives: a host that
// hands out items, and items whose extent and glyph can be changed.
package shell

// Extent is the width of an item in pixels. Negative values are sizing modes
// rather than widths.
type Extent int

const (
	// VariableExtent lets the item take its natural width.
	VariableExtent Extent = -1
	// SquareExtent sizes the item to the bar height.
	SquareExtent Extent = -2
	// DefaultHiddenExtent is wide enough to push everything to its left off
	// any single display.
	DefaultHiddenExtent Extent = 10000
)

// Glyph is the picture an item shows.
type Glyph int

const (
	GlyphNone Glyph = iota
	GlyphSeparator
	// GlyphCollapse invites the user to hide icons (shown while expanded).
	GlyphCollapse
	// GlyphExpand invites the user to reveal icons (shown while collapsed).
	GlyphExpand
)

func (g Glyph) String() string {
	switch g {
	case GlyphSeparator:
		return "separator"
	case GlyphCollapse:
		return "collapse"
	case GlyphExpand:
		return "expand"
	default:
		return "none"
	}
}

// MenuEntry is one row of a context menu. An entry with an empty Label is
// rendered as a separator line.
type MenuEntry struct {
	Label  string
	Action func()
}

// ItemSpec describes an item to create. Click handlers run on the host's
// main loop.
type ItemSpec struct {
	Name string
	// Autosave, when set, asks the host to remember this item's position
	// under PositionKey(Autosave) and restore it on the next creation.
	Autosave    string
	Extent      Extent
	Glyph       Glyph
	Tooltip     string
	Disabled    bool
	OnPrimary   func()
	OnSecondary func()
}

// Item is a live status-bar slot.
type Item interface {
	Name() string
	Extent() Extent
	SetExtent(Extent)
	Glyph() Glyph
	SetGlyph(Glyph)
	// PopupMenu shows entries anchored to the item.
	PopupMenu(entries []MenuEntry)
}

// Host creates and removes items.
type Host interface {
	CreateItem(spec ItemSpec) (Item, error)
	RemoveItem(item Item) error
}

// KeyHandler receives key presses delivered to the host's own surface. It
// returns true to consume the event.
type KeyHandler func(modifiers []string, key string) bool

// KeySource is implemented by hosts that can deliver local key presses.
type KeySource interface {
	SetKeyHandler(h KeyHandler)
}

const positionKeyPrefix = "position."

// PositionKey is the store key under which a host remembers the position of
// the item autosaved as name.
func PositionKey(name string) string {
	return positionKeyPrefix + name
}
