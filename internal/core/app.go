package core

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gotk3/gotk3/gtk"

	"github.com/chess10kp/tuck/internal/config"
	"github.com/chess10kp/tuck/internal/console"
	"github.com/chess10kp/tuck/internal/ipc"
	"github.com/chess10kp/tuck/internal/mainloop"
	"github.com/chess10kp/tuck/internal/notification"
	"github.com/chess10kp/tuck/internal/shell"
	"github.com/chess10kp/tuck/internal/shell/gtkshell"
	"github.com/chess10kp/tuck/internal/shortcut"
	"github.com/chess10kp/tuck/internal/store"
	"github.com/chess10kp/tuck/internal/visibility"
)

// App is main application
type App struct {
	config  *config.Config
	sigChan chan os.Signal
	running bool

	dispatcher mainloop.Dispatcher
	lock       *ProcessLock
	store      store.Store
	host       *gtkshell.Host
	controller *visibility.Controller
	router     *shortcut.Router
	ipc        *ipc.Server
	notifier   *notification.Notifier

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates a new application
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		config:     cfg,
		sigChan:    make(chan os.Signal, 1),
		dispatcher: gtkshell.Dispatcher{},
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Run takes the instance lock, builds the bar and blocks in the GTK main
// loop until Quit.
func (a *App) Run() error {
	lock, err := AcquireProcessLock(a.config.PidFile)
	if err != nil {
		return err
	}
	a.lock = lock
	defer func() {
		if err := a.lock.Release(); err != nil {
			log.Printf("[LOCK] Failed to release %s: %v", a.config.PidFile, err)
		}
	}()

	st, err := store.Open(a.config.StateDir)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	a.store = st

	log.Println("Tuck starting...")

	gtk.Init(nil)
	gtkshell.SetupStyles(a.config.StylePath)

	defer func() {
		if a.notifier != nil {
			a.notifier.Close()
		}
	}()
	if err := a.initialize(); err != nil {
		return err
	}

	a.running = true
	signal.Notify(a.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig, ok := <-a.sigChan
		if !ok {
			return
		}
		log.Printf("Received signal: %v", sig)
		a.dispatcher.Post(a.Quit)
	}()

	a.host.Run()

	signal.Stop(a.sigChan)
	close(a.sigChan)
	console.Stopped()
	return nil
}

// initialize builds every component. Only a bar that cannot be created is
// fatal; shortcuts, the control socket and notifications degrade.
func (a *App) initialize() error {
	log.Println("Initializing components...")

	bar := a.config.Bar
	glyphs, err := gtkshell.NewGlyphCache(bar.IconCacheSize, gtkshell.GlyphNames{
		Expand:    bar.ExpandIcon,
		Collapse:  bar.CollapseIcon,
		Separator: bar.SeparatorIcon,
	})
	if err != nil {
		log.Printf("[SHELL] Failed to create glyph cache, using text glyphs: %v", err)
		glyphs = nil
	}

	host, err := gtkshell.NewHost(gtkshell.Options{
		AppName: a.config.AppName,
		Height:  bar.Height,
		Margin:  bar.Margin,
		Glyphs:  glyphs,
		Store:   a.store,
	})
	if err != nil {
		return fmt.Errorf("failed to create bar: %w", err)
	}
	a.host = host

	if n, err := notification.NewNotifier(a.config.AppName, "view-conceal-symbolic"); err != nil {
		log.Printf("[NOTIFY] Notifications unavailable: %v", err)
	} else {
		a.notifier = n
	}

	a.controller = visibility.NewController(host, a.store, a.dispatcher, visibility.Options{
		HiddenExtent:      shell.Extent(bar.HiddenExtent),
		SeparatorAutosave: bar.SeparatorAutosave,
		Tooltip:           bar.ChevronTooltip,
		OnQuit:            a.Quit,
		OnChange:          reportChange,
	})
	if err := a.controller.Start(); err != nil {
		return fmt.Errorf("failed to create status items: %w", err)
	}

	shortcuts := a.startShortcuts()

	server := ipc.NewServer(a.config.SocketPath, a.dispatcher, &commands{
		ctrl:  a.controller,
		reset: a.EmergencyReset,
		quit:  func() { a.dispatcher.Post(a.Quit) },
	})
	if err := server.Start(); err != nil {
		log.Printf("[IPC] Failed to start control socket: %v", err)
	} else {
		a.ipc = server
	}

	toggle, reset := a.chordNames()
	console.Banner(toggle, reset, shortcuts)

	log.Println("Initialization complete")
	return nil
}

// startShortcuts installs the chord router and reports whether global
// chords are live.
func (a *App) startShortcuts() bool {
	sc := a.config.Shortcuts
	if !sc.Enabled {
		log.Printf("[SHORTCUT] Disabled in config")
		return false
	}

	router, err := shortcut.NewRouter(a, a.dispatcher, shortcut.NewSwaySource(), shortcut.Options{
		Toggle:        sc.Toggle,
		ResetModifier: sc.ResetModifier,
		Report:        a.reportShortcutsDisabled,
	})
	if err != nil {
		log.Printf("[SHORTCUT] Invalid chords: %v", err)
		console.ShortcutsDisabled(err)
		return false
	}
	a.router = router

	return router.Start(a.ctx, a.host) == shortcut.StatusActive
}

func (a *App) chordNames() (toggle, reset string) {
	if a.router == nil {
		return "", ""
	}
	chords := a.router.Chords()
	return chords[shortcut.ActionToggle].String(), chords[shortcut.ActionReset].String()
}

func (a *App) reportShortcutsDisabled(err error) {
	console.ShortcutsDisabled(err)
	a.notify("Keyboard shortcuts disabled", err.Error(), notification.UrgencyNormal)
}

// Toggle flips icon visibility. It is the router's toggle action.
func (a *App) Toggle() {
	a.controller.Toggle()
}

// EmergencyReset recreates the status items and tells the user how it went.
func (a *App) EmergencyReset() error {
	console.Success("Emergency reset triggered, recreating status items")

	if err := a.controller.EmergencyReset(); err != nil {
		console.Failure("Emergency reset failed: %v", err)
		a.notify("Emergency reset failed", err.Error(), notification.UrgencyCritical)
		return err
	}

	console.Success("Emergency reset complete, status items recreated")
	a.notify("Emergency reset complete", "Status items recreated and all icons visible", notification.UrgencyLow)
	return nil
}

func (a *App) notify(summary, body string, urgency notification.Urgency) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.Notify(summary, body, urgency); err != nil {
		log.Printf("[NOTIFY] %v", err)
	}
}

// Quit gracefully quits the application. It must run on the main loop. The
// status items are left in place so the compositor keeps their slots.
func (a *App) Quit() {
	if !a.running {
		return
	}
	a.running = false

	log.Println("Shutting down...")

	if a.router != nil {
		a.router.Stop()
	}

	if a.ipc != nil {
		if err := a.ipc.Stop(); err != nil {
			log.Printf("[IPC] Failed to stop control socket: %v", err)
		}
	}

	if a.controller != nil {
		a.controller.Detach()
	}

	a.cancel()
	a.host.Quit()
}

func reportChange(s visibility.State) {
	if s == visibility.Collapsed {
		console.Success("Icons hidden")
		return
	}
	console.Success("Icons visible")
}
