// Package visibility owns the collapsed/expanded state of the status bar and
// the two items that implement it: a separator whose width hides everything
// to its left, and a chevron button that toggles it.
//
// Every exported method must run on the main loop. Nothing here locks.
package visibility

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/chess10kp/tuck/internal/autohide"
	"github.com/chess10kp/tuck/internal/mainloop"
	"github.com/chess10kp/tuck/internal/shell"
	"github.com/chess10kp/tuck/internal/store"
)

// ErrHandleCreation wraps failures to create a status-bar item.
var ErrHandleCreation = errors.New("failed to create status bar item")

const (
	SeparatorName = "separator"
	ChevronName   = "chevron"

	DefaultSeparatorAutosave = "tuck.separator"
	DefaultChevronAutosave   = "tuck.chevron"
)

// Options tunes a Controller. Zero values select the defaults.
type Options struct {
	HiddenExtent      shell.Extent
	SeparatorAutosave string
	// ChevronAutosave is never handed to the host, so the chevron cannot be
	// dragged, but its position key is still cleared by EmergencyReset.
	ChevronAutosave string
	Tooltip         string
	Clock           autohide.Clock

	// OnQuit backs the "Quit" menu entry.
	OnQuit func()
	// OnChange is called after every state transition.
	OnChange func(State)
}

type Controller struct {
	host     shell.Host
	store    store.Store
	opts     Options
	autoHide *autohide.Scheduler

	separator shell.Item
	chevron   shell.Item
	collapsed bool
}

// NewController wires a controller to its host and store. The auto-hide
// timer posts onto d, which must be the loop the controller runs on.
func NewController(host shell.Host, st store.Store, d mainloop.Dispatcher, opts Options) *Controller {
	if opts.HiddenExtent <= 0 {
		opts.HiddenExtent = shell.DefaultHiddenExtent
	}
	if opts.SeparatorAutosave == "" {
		opts.SeparatorAutosave = DefaultSeparatorAutosave
	}
	if opts.ChevronAutosave == "" {
		opts.ChevronAutosave = DefaultChevronAutosave
	}
	if opts.Tooltip == "" {
		opts.Tooltip = "Left click: toggle | Right click: menu"
	}

	c := &Controller{
		host:  host,
		store: st,
		opts:  opts,
	}
	c.autoHide = autohide.NewScheduler(d, opts.Clock, c.Collapse)
	return c
}

// Start creates both items, seeds first-run defaults and restores the
// persisted state. A creation failure is returned wrapped in
// ErrHandleCreation and leaves the controller unusable until EmergencyReset.
func (c *Controller) Start() error {
	if err := c.createItems(); err != nil {
		return err
	}

	if seeded, err := SeedDefaults(c.store); err != nil {
		log.Printf("[VISIBILITY] Failed to seed defaults: %v", err)
	} else if seeded {
		log.Printf("[VISIBILITY] First run, auto-hide defaults written")
	}

	collapsed, err := store.Bool(c.store, KeyCollapsed, false)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("[VISIBILITY] Failed to read %s: %v", KeyCollapsed, err)
	}

	if collapsed {
		c.Collapse()
		return nil
	}

	c.collapsed = false
	c.persistState()
	if policy := c.Policy(); policy.Enabled {
		c.autoHide.Start(policy.Delay())
	}
	return nil
}

// Collapse hides every icon to the left of the separator. Idempotent.
func (c *Controller) Collapse() {
	if c.separator != nil {
		c.separator.SetExtent(c.opts.HiddenExtent)
	}
	c.collapsed = true
	c.persistState()

	if c.chevron != nil {
		c.chevron.SetGlyph(shell.GlyphExpand)
	}
	c.autoHide.Cancel()

	log.Printf("[VISIBILITY] Icons hidden")
	c.changed()
}

// Expand restores the separator to its natural width and, when auto-hide is
// enabled, schedules the next collapse.
func (c *Controller) Expand() {
	if c.separator != nil {
		c.separator.SetExtent(shell.VariableExtent)
	}
	c.collapsed = false
	c.persistState()

	if c.chevron != nil {
		c.chevron.SetGlyph(shell.GlyphCollapse)
	}

	if policy := c.Policy(); policy.Enabled {
		c.autoHide.Start(policy.Delay())
	}

	log.Printf("[VISIBILITY] Icons visible")
	c.changed()
}

// Toggle expands when collapsed and collapses otherwise.
func (c *Controller) Toggle() {
	if c.collapsed {
		c.Expand()
	} else {
		c.Collapse()
	}
}

// EmergencyReset throws both items away without looking at them, forgets
// their remembered positions, forces the expanded state and creates fresh
// items. It is the way out when the shell has put icons somewhere the user
// cannot reach.
func (c *Controller) EmergencyReset() error {
	log.Printf("[VISIBILITY] Emergency reset triggered, recreating status items")

	c.autoHide.Cancel()

	for _, item := range []shell.Item{c.separator, c.chevron} {
		if item == nil {
			continue
		}
		if err := c.host.RemoveItem(item); err != nil {
			log.Printf("[VISIBILITY] Ignoring failure to remove %s: %v", item.Name(), err)
		}
	}
	c.separator = nil
	c.chevron = nil

	for _, key := range c.PositionKeys() {
		if err := c.store.Erase(key); err != nil {
			log.Printf("[VISIBILITY] Failed to clear %s: %v", key, err)
		}
	}

	c.collapsed = false
	c.persistState()

	if err := c.createItems(); err != nil {
		c.changed()
		return err
	}

	log.Printf("[VISIBILITY] Emergency reset complete")
	c.changed()
	return nil
}

// ToggleAutoHide flips the persisted auto-hide flag. Enabling it while
// expanded starts the timer. Disabling it leaves a running timer alone; it
// only stops future expansions from scheduling one.
func (c *Controller) ToggleAutoHide() {
	policy := c.Policy()
	policy.Enabled = !policy.Enabled

	if err := store.SetBool(c.store, KeyAutoHideEnabled, policy.Enabled); err != nil {
		log.Printf("[VISIBILITY] Failed to persist %s: %v", KeyAutoHideEnabled, err)
	}

	log.Printf("[VISIBILITY] Auto-hide enabled: %v", policy.Enabled)

	if policy.Enabled && !c.collapsed {
		c.autoHide.Start(policy.Delay())
	}
}

// SetAutoHideDelay persists a new delay. It takes effect the next time the
// timer is started.
func (c *Controller) SetAutoHideDelay(seconds float64) error {
	if seconds <= 0 {
		return fmt.Errorf("invalid auto-hide delay: %v (must be > 0)", seconds)
	}
	return store.SetFloat(c.store, KeyAutoHideDelay, seconds)
}

// Detach prepares for process exit. The items are deliberately left
// registered so the shell keeps their positions for the next run.
func (c *Controller) Detach() {
	c.autoHide.Cancel()
	log.Printf("[VISIBILITY] Detached, status items left in place")
}

// State returns the in-memory state.
func (c *Controller) State() State {
	if c.collapsed {
		return Collapsed
	}
	return Expanded
}

// Policy re-reads the auto-hide policy from the store.
func (c *Controller) Policy() AutoHidePolicy {
	return LoadPolicy(c.store)
}

// AutoHidePending reports whether an automatic collapse is scheduled.
func (c *Controller) AutoHidePending() bool {
	return c.autoHide.Pending()
}

// AutoHideRemaining is how long until the pending automatic collapse. Zero
// when none is scheduled.
func (c *Controller) AutoHideRemaining() time.Duration {
	return c.autoHide.Remaining()
}

// PositionKeys are the store keys EmergencyReset clears.
func (c *Controller) PositionKeys() []string {
	return []string{
		shell.PositionKey(c.opts.SeparatorAutosave),
		shell.PositionKey(c.opts.ChevronAutosave),
	}
}

// MenuEntries builds the chevron's context menu for the current policy.
func (c *Controller) MenuEntries() []shell.MenuEntry {
	label := "Enable Auto Hide"
	if c.Policy().Enabled {
		label = "Disable Auto Hide"
	}

	quit := c.opts.OnQuit
	if quit == nil {
		quit = func() {}
	}

	return []shell.MenuEntry{
		{Label: label, Action: c.ToggleAutoHide},
		{},
		{Label: "Quit", Action: quit},
	}
}

func (c *Controller) showMenu() {
	if c.chevron == nil {
		return
	}
	c.chevron.PopupMenu(c.MenuEntries())
}

// createItems builds the chevron first so it sits at the trailing edge, then
// the separator next to it.
func (c *Controller) createItems() error {
	glyph := shell.GlyphCollapse
	extent := shell.VariableExtent
	if c.collapsed {
		glyph = shell.GlyphExpand
		extent = c.opts.HiddenExtent
	}

	chevron, err := c.host.CreateItem(shell.ItemSpec{
		Name:        ChevronName,
		Extent:      shell.SquareExtent,
		Glyph:       glyph,
		Tooltip:     c.opts.Tooltip,
		OnPrimary:   c.Toggle,
		OnSecondary: c.showMenu,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrHandleCreation, ChevronName, err)
	}
	c.chevron = chevron

	separator, err := c.host.CreateItem(shell.ItemSpec{
		Name:     SeparatorName,
		Autosave: c.opts.SeparatorAutosave,
		Extent:   extent,
		Glyph:    shell.GlyphSeparator,
		Disabled: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrHandleCreation, SeparatorName, err)
	}
	c.separator = separator

	log.Printf("[VISIBILITY] Status items created")
	return nil
}

func (c *Controller) persistState() {
	if err := store.SetBool(c.store, KeyCollapsed, c.collapsed); err != nil {
		log.Printf("[VISIBILITY] Failed to persist %s: %v", KeyCollapsed, err)
	}
}

func (c *Controller) changed() {
	if c.opts.OnChange != nil {
		c.opts.OnChange(c.State())
	}
}
