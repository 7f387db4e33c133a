package layer

/*
#cgo pkg-config: gtk-layer-shell-0
#include <stdlib.h>
#include <gtk-layer-shell.h>
*/
import "C"
import (
	"unsafe"

	"github.com/gotk3/gotk3/gtk"
)

func native(w *gtk.Window) *C.GtkWindow {
	return (*C.GtkWindow)(unsafe.Pointer(w.GObject))
}

// IsSupported reports whether the compositor speaks wlr-layer-shell.
func IsSupported() bool {
	return C.gtk_layer_is_supported() != 0
}

// InitForWindow turns a window into a layer surface. Must be called before
// the window is realized.
func InitForWindow(w *gtk.Window) {
	C.gtk_layer_init_for_window(native(w))
}

func SetNamespace(w *gtk.Window, namespace string) {
	cs := C.CString(namespace)
	defer C.free(unsafe.Pointer(cs))
	C.gtk_layer_set_namespace(native(w), cs)
}

func SetLayer(w *gtk.Window, layer Layer) {
	C.gtk_layer_set_layer(native(w), C.GtkLayerShellLayer(layer))
}

func SetAnchor(w *gtk.Window, edge Edge, anchorTo bool) {
	var anchor C.gboolean
	if anchorTo {
		anchor = 1
	}
	C.gtk_layer_set_anchor(native(w), C.GtkLayerShellEdge(edge), anchor)
}

// SetExclusiveZone reserves space for the surface. -1 lets it overlap
// other exclusive surfaces, which is what a bar overlay wants.
func SetExclusiveZone(w *gtk.Window, zone int) {
	C.gtk_layer_set_exclusive_zone(native(w), C.int(zone))
}

// SetMargin sets the gap between the surface and an anchored edge.
func SetMargin(w *gtk.Window, edge Edge, margin int) {
	C.gtk_layer_set_margin(native(w), C.GtkLayerShellEdge(edge), C.int(margin))
}

func SetKeyboardMode(w *gtk.Window, mode KeyboardMode) {
	C.gtk_layer_set_keyboard_mode(native(w), C.GtkLayerShellKeyboardMode(mode))
}

type Layer int

const (
	LayerBackground Layer = 0
	LayerBottom     Layer = 1
	LayerTop        Layer = 2
	LayerOverlay    Layer = 3
)

type Edge int

const (
	EdgeLeft   Edge = 0
	EdgeRight  Edge = 1
	EdgeTop    Edge = 2
	EdgeBottom Edge = 3
)

type KeyboardMode int

const (
	KeyboardModeNone      KeyboardMode = 0
	KeyboardModeExclusive KeyboardMode = 1
	KeyboardModeOnDemand  KeyboardMode = 2
)
