package visibility

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/chess10kp/tuck/internal/autohide"
	"github.com/chess10kp/tuck/internal/mainloop"
	"github.com/chess10kp/tuck/internal/shell"
	"github.com/chess10kp/tuck/internal/shell/shelltest"
	"github.com/chess10kp/tuck/internal/store"
)

type manualTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type manualClock struct {
	now    time.Time
	timers []*manualTimer
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) AfterFunc(d time.Duration, f func()) autohide.Timer {
	t := &manualTimer{delay: d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

// elapse fires the most recent timer if it is still live.
func (c *manualClock) elapse() bool {
	if len(c.timers) == 0 {
		return false
	}
	t := c.timers[len(c.timers)-1]
	if t.stopped {
		return false
	}
	t.fn()
	return true
}

func (c *manualClock) live() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

var inline = mainloop.DispatcherFunc(func(fn func()) { fn() })

type fixture struct {
	host  *shelltest.Host
	store *store.Memory
	clock *manualClock
	ctrl  *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemory()
	host := shelltest.NewHost(st)
	clock := &manualClock{}
	ctrl := NewController(host, st, inline, Options{Clock: clock})
	return &fixture{host: host, store: st, clock: clock, ctrl: ctrl}
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	if err := f.ctrl.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
}

func (f *fixture) persistedCollapsed(t *testing.T) bool {
	t.Helper()
	v, err := store.Bool(f.store, KeyCollapsed, false)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", KeyCollapsed, err)
	}
	return v
}

func (f *fixture) separator() *shelltest.Item { return f.host.Item(SeparatorName) }
func (f *fixture) chevron() *shelltest.Item   { return f.host.Item(ChevronName) }

func TestStart_FirstRunDefaults(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	enabled, err := store.Bool(f.store, KeyAutoHideEnabled, false)
	if err != nil || !enabled {
		t.Errorf("Expected %s=true after first run, got %v (%v)", KeyAutoHideEnabled, enabled, err)
	}
	delay, err := store.Float(f.store, KeyAutoHideDelay, 0)
	if err != nil || delay != 5.0 {
		t.Errorf("Expected %s=5.0 after first run, got %v (%v)", KeyAutoHideDelay, delay, err)
	}

	if f.ctrl.State() != Expanded {
		t.Errorf("Expected Expanded on first run, got %v", f.ctrl.State())
	}
	if f.persistedCollapsed(t) {
		t.Error("Expected persisted state to be expanded")
	}
	if !f.ctrl.AutoHidePending() {
		t.Error("Expected auto-hide to be scheduled on an expanded start")
	}
}

func TestStart_CreatesChevronBeforeSeparator(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	if len(f.host.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(f.host.Items))
	}
	if f.host.Items[0].Name() != ChevronName || f.host.Items[1].Name() != SeparatorName {
		t.Errorf("Unexpected creation order: %s, %s", f.host.Items[0].Name(), f.host.Items[1].Name())
	}

	chev := f.chevron().Spec()
	if chev.Extent != shell.SquareExtent {
		t.Errorf("Expected square chevron, got %d", chev.Extent)
	}
	if chev.Autosave != "" {
		t.Errorf("Expected chevron without autosave, got %q", chev.Autosave)
	}

	sep := f.separator().Spec()
	if sep.Autosave != DefaultSeparatorAutosave {
		t.Errorf("Expected separator autosave %q, got %q", DefaultSeparatorAutosave, sep.Autosave)
	}
	if !sep.Disabled {
		t.Error("Expected separator to be non-interactive")
	}
}

func TestStart_RestoresCollapsed(t *testing.T) {
	f := newFixture(t)
	store.SetBool(f.store, KeyCollapsed, true)
	f.start(t)

	if f.ctrl.State() != Collapsed {
		t.Fatalf("Expected Collapsed, got %v", f.ctrl.State())
	}
	if f.separator().Extent() != shell.DefaultHiddenExtent {
		t.Errorf("Expected hidden extent, got %d", f.separator().Extent())
	}
	if f.chevron().Glyph() != shell.GlyphExpand {
		t.Errorf("Expected expand glyph, got %v", f.chevron().Glyph())
	}
	if f.ctrl.AutoHidePending() {
		t.Error("Expected no auto-hide while collapsed")
	}
}

func TestStart_KeepsExistingPolicy(t *testing.T) {
	f := newFixture(t)
	store.SetBool(f.store, KeyAutoHideEnabled, false)
	store.SetFloat(f.store, KeyAutoHideDelay, 12)
	f.start(t)

	p := f.ctrl.Policy()
	if p.Enabled || p.DelaySeconds != 12 {
		t.Errorf("Expected stored policy to survive start, got %+v", p)
	}
	if f.ctrl.AutoHidePending() {
		t.Error("Expected no auto-hide with the policy disabled")
	}
}

func TestStart_HandleCreationFailure(t *testing.T) {
	f := newFixture(t)
	f.host.FailCreate = true

	err := f.ctrl.Start()
	if !errors.Is(err, ErrHandleCreation) {
		t.Fatalf("Expected ErrHandleCreation, got %v", err)
	}
}

func TestCollapse_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.ctrl.Collapse()
	firstExtent := f.separator().Extent()
	f.ctrl.Collapse()

	if f.separator().Extent() != firstExtent || firstExtent != shell.DefaultHiddenExtent {
		t.Errorf("Expected hidden extent after repeated collapse, got %d", f.separator().Extent())
	}
	if !f.persistedCollapsed(t) {
		t.Error("Expected persisted flag true")
	}
	if f.ctrl.State() != Collapsed {
		t.Errorf("Expected Collapsed, got %v", f.ctrl.State())
	}
}

func TestExpand_RoundTrip(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	original := f.separator().Extent()

	f.ctrl.Collapse()
	f.ctrl.Expand()

	if f.separator().Extent() != original || original != shell.VariableExtent {
		t.Errorf("Expected extent restored to %d, got %d", original, f.separator().Extent())
	}
	if f.persistedCollapsed(t) {
		t.Error("Expected persisted flag false")
	}
	if f.chevron().Glyph() != shell.GlyphCollapse {
		t.Errorf("Expected collapse glyph, got %v", f.chevron().Glyph())
	}
}

func TestToggle_Parity(t *testing.T) {
	for n := 0; n <= 7; n++ {
		f := newFixture(t)
		f.start(t)

		for i := 0; i < n; i++ {
			f.ctrl.Toggle()
		}

		want := Expanded
		if n%2 == 1 {
			want = Collapsed
		}
		if got := f.ctrl.State(); got != want {
			t.Errorf("After %d toggles: expected %v, got %v", n, want, got)
		}
		if f.persistedCollapsed(t) != (want == Collapsed) {
			t.Errorf("After %d toggles: persisted flag out of sync", n)
		}
	}
}

func TestChevronClickToggles(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.chevron().Click()
	if f.ctrl.State() != Collapsed {
		t.Errorf("Expected click to collapse, got %v", f.ctrl.State())
	}
	f.chevron().Click()
	if f.ctrl.State() != Expanded {
		t.Errorf("Expected second click to expand, got %v", f.ctrl.State())
	}
}

func TestAutoHide_CollapsesAfterDelay(t *testing.T) {
	f := newFixture(t)
	if err := store.SetFloat(f.store, KeyAutoHideDelay, 2.5); err != nil {
		t.Fatalf("SetFloat failed: %v", err)
	}
	f.start(t)
	f.ctrl.Collapse()
	f.ctrl.Expand()

	last := f.clock.timers[len(f.clock.timers)-1]
	if last.delay != 2500*time.Millisecond {
		t.Errorf("Expected 2.5s delay, got %v", last.delay)
	}

	if !f.clock.elapse() {
		t.Fatal("Expected a live timer")
	}
	if f.ctrl.State() != Collapsed {
		t.Errorf("Expected auto-hide to collapse, got %v", f.ctrl.State())
	}
	if !f.persistedCollapsed(t) {
		t.Error("Expected auto-hide collapse to be persisted")
	}
	if f.ctrl.AutoHidePending() {
		t.Error("Expected timer consumed after firing")
	}
}

func TestAutoHide_ManualToggleCancels(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	pending := f.clock.timers[len(f.clock.timers)-1]

	f.ctrl.Toggle() // collapse
	if !pending.stopped {
		t.Error("Expected manual collapse to stop the pending timer")
	}
	// A callback that lost the race with Stop must still be ignored.
	pending.fn()
	f.ctrl.Toggle() // expand, schedules a fresh timer

	if f.ctrl.State() != Expanded {
		t.Errorf("Expected stale timer to be ignored, got %v", f.ctrl.State())
	}
	if f.clock.live() != 1 {
		t.Errorf("Expected exactly one live timer, got %d", f.clock.live())
	}
}

func TestAutoHide_DisabledPreventsScheduling(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.ctrl.Collapse()

	f.ctrl.ToggleAutoHide()
	if f.ctrl.Policy().Enabled {
		t.Fatal("Expected auto-hide disabled")
	}

	before := len(f.clock.timers)
	f.ctrl.Expand()
	f.ctrl.Collapse()
	f.ctrl.Expand()
	if len(f.clock.timers) != before {
		t.Errorf("Expected no timers while disabled, got %d new", len(f.clock.timers)-before)
	}

	f.ctrl.ToggleAutoHide()
	if !f.ctrl.AutoHidePending() {
		t.Error("Expected re-enabling while expanded to start the timer")
	}
}

func TestToggleAutoHide_DisableKeepsRunningTimer(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	if !f.ctrl.AutoHidePending() {
		t.Fatal("Expected timer after start")
	}

	f.ctrl.ToggleAutoHide()
	if !f.ctrl.AutoHidePending() {
		t.Error("Expected disabling not to cancel the running timer")
	}
	f.clock.elapse()
	if f.ctrl.State() != Collapsed {
		t.Errorf("Expected the earlier timer to still collapse, got %v", f.ctrl.State())
	}
}

func TestToggleAutoHide_EnableWhileCollapsed(t *testing.T) {
	f := newFixture(t)
	store.SetBool(f.store, KeyAutoHideEnabled, false)
	f.start(t)
	f.ctrl.Collapse()

	f.ctrl.ToggleAutoHide()
	if f.ctrl.AutoHidePending() {
		t.Error("Expected no timer when enabling while collapsed")
	}
}

func TestEmergencyReset_FromEveryState(t *testing.T) {
	cases := []struct {
		name    string
		prepare func(f *fixture)
	}{
		{"expanded", func(f *fixture) {}},
		{"collapsed", func(f *fixture) { f.ctrl.Collapse() }},
		{"corrupted", func(f *fixture) {
			f.ctrl.Collapse()
			f.separator().Corrupt()
			f.chevron().Corrupt()
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.start(t)
			tc.prepare(f)

			oldSep := f.separator()
			store.SetInt(f.store, shell.PositionKey(DefaultChevronAutosave), 99)

			if err := f.ctrl.EmergencyReset(); err != nil {
				t.Fatalf("EmergencyReset failed: %v", err)
			}

			if f.ctrl.State() != Expanded {
				t.Errorf("Expected Expanded, got %v", f.ctrl.State())
			}
			if f.persistedCollapsed(t) {
				t.Error("Expected persisted flag false")
			}
			if f.separator() == oldSep {
				t.Error("Expected a fresh separator")
			}
			if f.separator().Extent() != shell.VariableExtent {
				t.Errorf("Expected natural extent, got %d", f.separator().Extent())
			}
			if f.chevron().Glyph() != shell.GlyphCollapse {
				t.Errorf("Expected collapse glyph, got %v", f.chevron().Glyph())
			}
			if f.store.Has(shell.PositionKey(DefaultChevronAutosave)) {
				t.Error("Expected chevron position key cleared")
			}
		})
	}
}

func TestEmergencyReset_ClearsPositionBeforeRecreate(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	key := shell.PositionKey(DefaultSeparatorAutosave)
	store.SetInt(f.store, key, -4000)

	if err := f.ctrl.EmergencyReset(); err != nil {
		t.Fatalf("EmergencyReset failed: %v", err)
	}

	// The fake host only records a position when none exists, so a stale
	// value surviving here means the key was never erased.
	pos, err := store.Int(f.store, key, 0)
	if err != nil {
		t.Fatalf("Expected recreated separator to record a position: %v", err)
	}
	if pos == -4000 {
		t.Error("Expected the stale separator position to be cleared")
	}
}

func TestEmergencyReset_CancelsPendingTimer(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	pending := f.clock.timers[len(f.clock.timers)-1]

	if err := f.ctrl.EmergencyReset(); err != nil {
		t.Fatalf("EmergencyReset failed: %v", err)
	}
	if !pending.stopped {
		t.Error("Expected reset to stop the pending timer")
	}
	pending.fn()
	if f.ctrl.State() != Expanded {
		t.Errorf("Expected stale timer to be ignored after reset, got %v", f.ctrl.State())
	}
}

func TestEmergencyReset_RecoversFromFailedStart(t *testing.T) {
	f := newFixture(t)
	f.host.FailCreate = true
	if err := f.ctrl.Start(); err == nil {
		t.Fatal("Expected Start to fail")
	}

	f.host.FailCreate = false
	if err := f.ctrl.EmergencyReset(); err != nil {
		t.Fatalf("Expected reset to recover, got %v", err)
	}
	if f.separator() == nil || f.chevron() == nil {
		t.Fatal("Expected both items after recovery")
	}
	if f.ctrl.State() != Expanded {
		t.Errorf("Expected Expanded, got %v", f.ctrl.State())
	}
}

func TestEmergencyReset_CreationFailure(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.host.FailCreate = true

	err := f.ctrl.EmergencyReset()
	if !errors.Is(err, ErrHandleCreation) {
		t.Fatalf("Expected ErrHandleCreation, got %v", err)
	}
	if f.ctrl.State() != Expanded {
		t.Errorf("Expected Expanded even when recreation fails, got %v", f.ctrl.State())
	}
	// Operations stay total without items.
	f.ctrl.Toggle()
	f.ctrl.Toggle()
}

func TestContextMenu(t *testing.T) {
	quit := 0
	st := store.NewMemory()
	host := shelltest.NewHost(st)
	ctrl := NewController(host, st, inline, Options{
		Clock:  &manualClock{},
		OnQuit: func() { quit++ },
	})
	if err := ctrl.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	chev := host.Item(ChevronName)
	chev.SecondaryClick()
	if host.MenuPopups != 1 {
		t.Fatalf("Expected one popup, got %d", host.MenuPopups)
	}
	if len(chev.Menu) != 3 {
		t.Fatalf("Expected 3 menu entries, got %d", len(chev.Menu))
	}
	if chev.Menu[0].Label != "Disable Auto Hide" {
		t.Errorf("Expected 'Disable Auto Hide', got %q", chev.Menu[0].Label)
	}
	if chev.Menu[1].Label != "" {
		t.Errorf("Expected separator line, got %q", chev.Menu[1].Label)
	}

	chev.Menu[0].Action()
	if ctrl.Policy().Enabled {
		t.Error("Expected menu action to disable auto-hide")
	}

	chev.SecondaryClick()
	if chev.Menu[0].Label != "Enable Auto Hide" {
		t.Errorf("Expected 'Enable Auto Hide', got %q", chev.Menu[0].Label)
	}

	chev.Menu[2].Action()
	if quit != 1 {
		t.Errorf("Expected quit to run once, got %d", quit)
	}
}

func TestOnChangeObservesTransitions(t *testing.T) {
	var seen []State
	st := store.NewMemory()
	ctrl := NewController(shelltest.NewHost(st), st, inline, Options{
		Clock:    &manualClock{},
		OnChange: func(s State) { seen = append(seen, s) },
	})
	if err := ctrl.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ctrl.Toggle()
	ctrl.Toggle()

	if len(seen) != 2 || seen[0] != Collapsed || seen[1] != Expanded {
		t.Errorf("Unexpected transitions: %v", seen)
	}
}

func TestSetAutoHideDelay(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	if err := f.ctrl.SetAutoHideDelay(0); err == nil {
		t.Error("Expected zero delay to be rejected")
	}
	if err := f.ctrl.SetAutoHideDelay(1.5); err != nil {
		t.Fatalf("SetAutoHideDelay failed: %v", err)
	}

	f.ctrl.Collapse()
	f.ctrl.Expand()
	last := f.clock.timers[len(f.clock.timers)-1]
	if last.delay != 1500*time.Millisecond {
		t.Errorf("Expected 1.5s delay, got %v", last.delay)
	}
}

func TestDetachLeavesItems(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.ctrl.Detach()

	if f.host.Removed != 0 {
		t.Errorf("Expected no items removed on detach, got %d", f.host.Removed)
	}
	if f.ctrl.AutoHidePending() {
		t.Error("Expected detach to cancel auto-hide")
	}
}

func TestAutoHide_RemainingFollowsClock(t *testing.T) {
	f := newFixture(t)
	f.clock.now = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	f.start(t)

	if got := f.ctrl.AutoHideRemaining(); got != 5*time.Second {
		t.Errorf("Expected 5s remaining after start, got %v", got)
	}

	f.clock.now = f.clock.now.Add(1500 * time.Millisecond)
	if got := f.ctrl.AutoHideRemaining(); got != 3500*time.Millisecond {
		t.Errorf("Expected 3.5s remaining, got %v", got)
	}

	f.ctrl.Collapse()
	if got := f.ctrl.AutoHideRemaining(); got != 0 {
		t.Errorf("Expected nothing remaining once collapsed, got %v", got)
	}
}

func TestEmergencyReset_LogsTriggerOnce(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	if err := f.ctrl.EmergencyReset(); err != nil {
		t.Fatalf("EmergencyReset failed: %v", err)
	}
	if got := strings.Count(buf.String(), "Emergency reset triggered"); got != 1 {
		t.Errorf("Expected the trigger to be logged once, got %d in %q", got, buf.String())
	}
}
