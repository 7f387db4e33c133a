package gtkshell

import (
	"log"
	"os"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"
)

const defaultStyles = `
#tuck-bar {
    background-color: #0e1419;
}

.tuck-item {
    color: #ebdbb2;
    font-family: "Iosevka", monospace;
    font-size: 14px;
    font-weight: bold;
    padding: 0 4px;
}

.tuck-item.chevron:hover {
    background-color: #313244;
}

.tuck-item.separator {
    color: #504945;
    background-color: #0e1419;
}
`

// SetupStyles installs the built-in stylesheet, then cssPath on top of it
// when that file exists.
func SetupStyles(cssPath string) {
	screen, err := gdk.ScreenGetDefault()
	if err != nil || screen == nil {
		log.Printf("[SHELL] Failed to get default screen: %v", err)
		return
	}

	provider, err := gtk.CssProviderNew()
	if err != nil {
		log.Printf("[SHELL] Failed to create CSS provider: %v", err)
		return
	}
	if err := provider.LoadFromData(defaultStyles); err != nil {
		log.Printf("[SHELL] Failed to load default styles: %v", err)
		return
	}
	gtk.AddProviderForScreen(screen, provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)

	if cssPath == "" {
		return
	}
	data, err := os.ReadFile(cssPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[SHELL] Failed to read %s: %v", cssPath, err)
		}
		return
	}
	custom, err := gtk.CssProviderNew()
	if err != nil {
		return
	}
	if err := custom.LoadFromData(string(data)); err != nil {
		log.Printf("[SHELL] Failed to load %s: %v", cssPath, err)
		return
	}
	gtk.AddProviderForScreen(screen, custom, gtk.STYLE_PROVIDER_PRIORITY_USER)
}
