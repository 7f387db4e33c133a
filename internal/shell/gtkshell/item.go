package gtkshell

import (
	"fmt"
	"log"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"

	"github.com/chess10kp/tuck/internal/shell"
)

type item struct {
	host *Host
	spec shell.ItemSpec

	event *gtk.EventBox
	image *gtk.Image
	label *gtk.Label
	menu  *gtk.Menu

	extent shell.Extent
	glyph  shell.Glyph

	// lastPress is only set while a click handler runs; GDK events do not
	// outlive their signal emission.
	lastPress *gdk.Event
}

func newItem(h *Host, spec shell.ItemSpec) (*item, error) {
	event, err := gtk.EventBoxNew()
	if err != nil {
		return nil, fmt.Errorf("failed to create event box for %s: %w", spec.Name, err)
	}
	inner, err := gtk.BoxNew(gtk.ORIENTATION_HORIZONTAL, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create box for %s: %w", spec.Name, err)
	}
	image, err := gtk.ImageNew()
	if err != nil {
		return nil, fmt.Errorf("failed to create image for %s: %w", spec.Name, err)
	}
	label, err := gtk.LabelNew("")
	if err != nil {
		return nil, fmt.Errorf("failed to create label for %s: %w", spec.Name, err)
	}

	inner.PackEnd(image, false, false, 0)
	inner.PackEnd(label, false, false, 0)
	event.Add(inner)
	event.SetName("tuck-" + spec.Name)

	if ctx, err := event.GetStyleContext(); err == nil {
		ctx.AddClass("tuck-item")
		ctx.AddClass(spec.Name)
	}

	if spec.Tooltip != "" {
		event.SetTooltipText(spec.Tooltip)
	}

	it := &item{
		host:  h,
		spec:  spec,
		event: event,
		image: image,
		label: label,
	}

	if !spec.Disabled {
		event.Connect("button-release-event", it.onRelease)
	}

	it.SetExtent(spec.Extent)
	it.SetGlyph(spec.Glyph)
	return it, nil
}

func (it *item) Name() string         { return it.spec.Name }
func (it *item) Extent() shell.Extent { return it.extent }
func (it *item) Glyph() shell.Glyph   { return it.glyph }

func (it *item) SetExtent(e shell.Extent) {
	it.extent = e

	height := it.host.opts.Height
	switch {
	case e == shell.SquareExtent:
		it.event.SetSizeRequest(height, height)
	case e > 0:
		it.event.SetSizeRequest(int(e), height)
	default:
		it.event.SetSizeRequest(-1, height)
	}
	it.host.shrinkToFit()
}

func (it *item) SetGlyph(g shell.Glyph) {
	it.glyph = g

	var (
		pixbuf *gdk.Pixbuf
		text   = fallbackText[g]
	)
	if it.host.opts.Glyphs != nil {
		pixbuf, text = it.host.opts.Glyphs.Lookup(g, it.host.opts.Height*2/3)
	}

	if pixbuf != nil {
		it.image.SetFromPixbuf(pixbuf)
		it.image.Show()
		it.label.SetText("")
		it.label.Hide()
		return
	}
	it.image.Clear()
	it.image.Hide()
	it.label.SetText(text)
	it.label.Show()
}

func (it *item) PopupMenu(entries []shell.MenuEntry) {
	menu, err := gtk.MenuNew()
	if err != nil {
		log.Printf("[SHELL] Failed to create menu: %v", err)
		return
	}

	for _, entry := range entries {
		if entry.Label == "" {
			sep, err := gtk.SeparatorMenuItemNew()
			if err != nil {
				continue
			}
			menu.Append(sep)
			continue
		}

		mi, err := gtk.MenuItemNewWithLabel(entry.Label)
		if err != nil {
			log.Printf("[SHELL] Failed to create menu item %q: %v", entry.Label, err)
			continue
		}
		action := entry.Action
		mi.Connect("activate", func() {
			if action != nil {
				action()
			}
		})
		menu.Append(mi)
	}

	if it.menu != nil {
		it.menu.Destroy()
	}
	it.menu = menu

	menu.ShowAll()
	if it.lastPress == nil {
		log.Printf("[SHELL] Menu for %s requested outside a click, not shown", it.spec.Name)
		return
	}
	menu.PopupAtPointer(it.lastPress)
}

func (it *item) onRelease(_ *gtk.EventBox, ev *gdk.Event) bool {
	btn := gdk.EventButtonNewFromEvent(ev)
	if btn == nil {
		return false
	}

	switch btn.Button() {
	case gdk.BUTTON_PRIMARY:
		if it.spec.OnPrimary != nil {
			it.spec.OnPrimary()
		}
		return true
	case gdk.BUTTON_SECONDARY:
		it.lastPress = ev
		if it.spec.OnSecondary != nil {
			it.spec.OnSecondary()
		}
		it.lastPress = nil
		return true
	}
	return false
}
