// Package gtkshell is the shell.Host tuck runs on: a GTK layer-shell strip
// anchored to the top-right corner of the output. Items are packed from the
// right edge inwards, so the first item created sits rightmost.
package gtkshell

import (
	"errors"
	"fmt"
	"log"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"

	"github.com/chess10kp/tuck/internal/layer"
	"github.com/chess10kp/tuck/internal/shell"
	"github.com/chess10kp/tuck/internal/store"
)

var ErrUnknownItem = errors.New("item does not belong to this host")

// Dispatcher posts work onto the GTK main loop.
type Dispatcher struct{}

func (Dispatcher) Post(fn func()) {
	glib.IdleAdd(func() {
		fn()
	})
}

type Options struct {
	AppName string
	Height  int
	// Margin is the gap to the top and right output edges.
	Margin  int
	Glyphs  *GlyphCache
	// Store, when set, backs item position memory.
	Store store.Store
}

type Host struct {
	opts   Options
	window *gtk.Window
	box    *gtk.Box

	items      []*item
	keyHandler shell.KeyHandler
}

// NewHost builds the bar window. gtk.Init must have run.
func NewHost(opts Options) (*Host, error) {
	if opts.Height <= 0 {
		opts.Height = 24
	}

	window, err := gtk.WindowNew(gtk.WINDOW_TOPLEVEL)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	box, err := gtk.BoxNew(gtk.ORIENTATION_HORIZONTAL, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	window.Add(box)
	window.SetTitle(opts.AppName)
	window.SetName("tuck-bar")
	window.SetSizeRequest(-1, opts.Height)

	if layer.IsSupported() {
		layer.InitForWindow(window)
		layer.SetNamespace(window, opts.AppName)
		layer.SetLayer(window, layer.LayerOverlay)
		layer.SetAnchor(window, layer.EdgeTop, true)
		layer.SetAnchor(window, layer.EdgeRight, true)
		layer.SetMargin(window, layer.EdgeTop, opts.Margin)
		layer.SetMargin(window, layer.EdgeRight, opts.Margin)
		layer.SetExclusiveZone(window, -1)
		layer.SetKeyboardMode(window, layer.KeyboardModeOnDemand)
	} else {
		log.Printf("[SHELL] Compositor has no layer-shell support, using a plain window")
		window.SetDecorated(false)
		window.SetKeepAbove(true)
	}

	h := &Host{opts: opts, window: window, box: box}

	window.Connect("key-press-event", h.onKeyPress)

	return h, nil
}

func (h *Host) CreateItem(spec shell.ItemSpec) (shell.Item, error) {
	it, err := newItem(h, spec)
	if err != nil {
		return nil, err
	}

	h.box.PackEnd(it.event, false, false, 0)

	slot := len(h.items)
	if spec.Autosave != "" {
		slot = h.restoreSlot(spec.Autosave, slot)
		h.box.ReorderChild(it.event, slot)
	}

	h.items = append(h.items, it)
	it.event.ShowAll()
	h.shrinkToFit()

	log.Printf("[SHELL] Created %s at slot %d", spec.Name, slot)
	return it, nil
}

func (h *Host) RemoveItem(target shell.Item) error {
	it, ok := target.(*item)
	if !ok || it.host != h {
		return ErrUnknownItem
	}

	for i, live := range h.items {
		if live != it {
			continue
		}
		h.items = append(h.items[:i], h.items[i+1:]...)
		h.box.Remove(it.event)
		it.event.Destroy()
		if it.menu != nil {
			it.menu.Destroy()
			it.menu = nil
		}
		h.shrinkToFit()
		log.Printf("[SHELL] Removed %s", it.spec.Name)
		return nil
	}
	return fmt.Errorf("%w: %s already removed", ErrUnknownItem, it.spec.Name)
}

func (h *Host) SetKeyHandler(fn shell.KeyHandler) {
	h.keyHandler = fn
}

// Run shows the bar and blocks in the GTK main loop until Quit.
func (h *Host) Run() {
	h.window.ShowAll()
	gtk.Main()
}

func (h *Host) Quit() {
	gtk.MainQuit()
}

// restoreSlot returns the remembered slot for autosave, recording fallback
// when there is none.
func (h *Host) restoreSlot(autosave string, fallback int) int {
	if h.opts.Store == nil {
		return fallback
	}
	slot, err := rememberSlot(h.opts.Store, autosave, fallback, len(h.items))
	if err != nil {
		log.Printf("[SHELL] Position memory for %s: %v", autosave, err)
	}
	return slot
}

// rememberSlot reads the slot stored for autosave, clamped to [0, max]. A
// missing or unreadable slot stores and returns fallback.
func rememberSlot(st store.Store, autosave string, fallback, max int) (int, error) {
	key := shell.PositionKey(autosave)

	slot, err := store.Int(st, key, fallback)
	if err == nil && slot >= 0 && slot <= max {
		return slot, nil
	}
	if err == nil {
		err = fmt.Errorf("slot %d out of range [0, %d]", slot, max)
	} else if errors.Is(err, store.ErrNotFound) {
		err = nil
	}

	if werr := store.SetInt(st, key, fallback); werr != nil {
		return fallback, werr
	}
	return fallback, err
}

// shrinkToFit lets the surface give back width after an item narrows.
func (h *Host) shrinkToFit() {
	h.window.Resize(1, h.opts.Height)
}

func (h *Host) onKeyPress(_ *gtk.Window, ev *gdk.Event) bool {
	if h.keyHandler == nil {
		return false
	}
	key := gdk.EventKeyNewFromEvent(ev)
	if key == nil {
		return false
	}
	return h.keyHandler(modifierNames(gdk.ModifierType(key.State())), gdk.KeyvalName(key.KeyVal()))
}

// modifierNames renders a GDK modifier mask in sway's vocabulary.
func modifierNames(state gdk.ModifierType) []string {
	var mods []string
	if state&gdk.MOD4_MASK != 0 || state&gdk.SUPER_MASK != 0 {
		mods = append(mods, "Mod4")
	}
	if state&gdk.CONTROL_MASK != 0 {
		mods = append(mods, "Ctrl")
	}
	if state&gdk.MOD1_MASK != 0 {
		mods = append(mods, "Mod1")
	}
	if state&gdk.SHIFT_MASK != 0 {
		mods = append(mods, "Shift")
	}
	return mods
}
