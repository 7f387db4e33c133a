// Package shelltest provides an in-memory shell.Host for tests.
package shelltest

import (
	"errors"
	"fmt"

	"github.com/chess10kp/tuck/internal/shell"
	"github.com/chess10kp/tuck/internal/store"
)

var (
	ErrCreateRefused = errors.New("shelltest: item creation refused")
	ErrStaleItem     = errors.New("shelltest: item is not registered with the host")
)

// Item is a fake status-bar item.
type Item struct {
	spec    shell.ItemSpec
	extent  shell.Extent
	glyph   shell.Glyph
	removed bool
	corrupt bool
	host    *Host

	// Menu holds the entries of the last PopupMenu call.
	Menu []shell.MenuEntry
}

func (i *Item) Name() string          { return i.spec.Name }
func (i *Item) Extent() shell.Extent  { return i.extent }
func (i *Item) Glyph() shell.Glyph    { return i.glyph }
func (i *Item) Spec() shell.ItemSpec  { return i.spec }
func (i *Item) Removed() bool         { return i.removed }
func (i *Item) SetGlyph(g shell.Glyph) { i.glyph = g }

func (i *Item) SetExtent(e shell.Extent) {
	if i.corrupt {
		return
	}
	i.extent = e
}

func (i *Item) PopupMenu(entries []shell.MenuEntry) {
	i.Menu = entries
	i.host.MenuPopups++
}

// Corrupt makes the item ignore extent changes and makes the host refuse to
// remove it, the way a handle the shell has lost track of behaves.
func (i *Item) Corrupt() { i.corrupt = true }

// Click runs the primary click handler.
func (i *Item) Click() {
	if i.spec.OnPrimary != nil {
		i.spec.OnPrimary()
	}
}

// SecondaryClick runs the secondary click handler.
func (i *Item) SecondaryClick() {
	if i.spec.OnSecondary != nil {
		i.spec.OnSecondary()
	}
}

// Host is a fake shell.Host. When Store is set it remembers autosaved item
// positions the way a real host does.
type Host struct {
	Store store.Store

	// FailCreate makes CreateItem fail while set.
	FailCreate bool

	Items      []*Item
	Created    int
	Removed    int
	MenuPopups int

	keyHandler shell.KeyHandler
	next       int
}

// NewHost returns a fake host backed by st (which may be nil).
func NewHost(st store.Store) *Host {
	return &Host{Store: st}
}

func (h *Host) CreateItem(spec shell.ItemSpec) (shell.Item, error) {
	if h.FailCreate {
		return nil, fmt.Errorf("%w: %s", ErrCreateRefused, spec.Name)
	}

	item := &Item{spec: spec, extent: spec.Extent, glyph: spec.Glyph, host: h}
	h.Items = append(h.Items, item)
	h.Created++

	if spec.Autosave != "" && h.Store != nil {
		key := shell.PositionKey(spec.Autosave)
		if !h.Store.Has(key) {
			store.SetInt(h.Store, key, h.next)
		}
	}
	h.next++

	return item, nil
}

func (h *Host) RemoveItem(it shell.Item) error {
	item, ok := it.(*Item)
	if !ok || item.corrupt || item.removed {
		return ErrStaleItem
	}
	item.removed = true
	h.Removed++
	for i, live := range h.Items {
		if live == item {
			h.Items = append(h.Items[:i], h.Items[i+1:]...)
			break
		}
	}
	return nil
}

// Item returns the most recently created live item called name.
func (h *Host) Item(name string) *Item {
	for i := len(h.Items) - 1; i >= 0; i-- {
		if h.Items[i].spec.Name == name {
			return h.Items[i]
		}
	}
	return nil
}

func (h *Host) SetKeyHandler(fn shell.KeyHandler) { h.keyHandler = fn }

// PressKey delivers a key press as the host's own surface would and reports
// whether the handler consumed it.
func (h *Host) PressKey(modifiers []string, key string) bool {
	if h.keyHandler == nil {
		return false
	}
	return h.keyHandler(modifiers, key)
}
