// Package shortcut routes keyboard chords to the visibility controller. A
// chord is recognised twice: locally, when the bar's own surface has focus,
// and globally through the compositor.
package shortcut

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/chess10kp/tuck/internal/mainloop"
	"github.com/chess10kp/tuck/internal/shell"
)

// ErrPermissionDenied means global key observation is unavailable.
var ErrPermissionDenied = errors.New("global shortcut observation unavailable")

const (
	DefaultToggleChord   = "Mod4+Ctrl+m"
	DefaultResetModifier = ModAlt
)

// Action is what a chord asks for.
type Action int

const (
	ActionToggle Action = iota
	ActionReset
)

func (a Action) String() string {
	switch a {
	case ActionToggle:
		return "toggle"
	case ActionReset:
		return "reset"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Target receives routed actions. *visibility.Controller satisfies it.
type Target interface {
	Toggle()
	EmergencyReset() error
}

// GlobalSource observes chords system-wide. Listen returns an error wrapping
// ErrPermissionDenied when observation is not possible. deliver may be
// called from any goroutine.
type GlobalSource interface {
	Listen(ctx context.Context, chords map[Action]Chord, deliver func(Action)) error
	Close() error
}

// Status is the router's lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusActive
	StatusDisabled
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusDisabled:
		return "disabled"
	case StatusStopped:
		return "stopped"
	default:
		return "idle"
	}
}

// Options configures a Router.
type Options struct {
	// Toggle is the primary chord. Empty selects DefaultToggleChord.
	Toggle string
	// ResetModifier is added to Toggle to form the reset chord.
	ResetModifier string
	// Report is told once when the router degrades to disabled.
	Report func(error)
}

// Router dispatches chords to a Target on the main loop. Duplicate delivery
// of one physical press (local and global) is not collapsed: the target sees
// both.
type Router struct {
	target     Target
	dispatcher mainloop.Dispatcher
	global     GlobalSource
	report     func(error)

	toggle Chord
	reset  Chord

	status   Status
	reported bool
	cancel   context.CancelFunc
}

// NewRouter validates the chords and returns an idle router. global may be
// nil, in which case Start degrades to disabled.
func NewRouter(target Target, d mainloop.Dispatcher, global GlobalSource, opts Options) (*Router, error) {
	if opts.Toggle == "" {
		opts.Toggle = DefaultToggleChord
	}
	if opts.ResetModifier == "" {
		opts.ResetModifier = DefaultResetModifier
	}

	toggle, err := ParseChord(opts.Toggle)
	if err != nil {
		return nil, err
	}
	resetMod, ok := NormalizeModifier(opts.ResetModifier)
	if !ok {
		return nil, fmt.Errorf("invalid reset modifier: %q", opts.ResetModifier)
	}
	for _, m := range toggle.Modifiers {
		if m == resetMod {
			return nil, fmt.Errorf("reset modifier %s is already part of %s", resetMod, toggle)
		}
	}

	return &Router{
		target:     target,
		dispatcher: d,
		global:     global,
		report:     opts.Report,
		toggle:     toggle,
		reset:      toggle.With(resetMod),
		status:     StatusIdle,
	}, nil
}

// Chords returns the configured chords.
func (r *Router) Chords() map[Action]Chord {
	return map[Action]Chord{
		ActionToggle: r.toggle,
		ActionReset:  r.reset,
	}
}

// Start registers the global listener and, when ks is non-nil, the local
// one. If the global listener cannot be installed the router is disabled
// and the condition is reported once. Mouse toggling keeps working either
// way. Call on the main loop.
func (r *Router) Start(ctx context.Context, ks shell.KeySource) Status {
	if r.status != StatusIdle {
		return r.status
	}

	if r.global == nil {
		r.disable(fmt.Errorf("%w: no global shortcut source", ErrPermissionDenied))
		return r.status
	}

	ctx, cancel := context.WithCancel(ctx)
	if err := r.global.Listen(ctx, r.Chords(), r.deliverGlobal); err != nil {
		cancel()
		r.disable(err)
		return r.status
	}
	r.cancel = cancel

	if ks != nil {
		ks.SetKeyHandler(r.HandleLocal)
	}

	r.status = StatusActive
	log.Printf("[SHORTCUT] Listening for %s (toggle) and %s (reset)", r.toggle, r.reset)
	return r.status
}

// HandleLocal is the local key handler. It runs on the main loop and
// consumes the press when it matches a chord.
func (r *Router) HandleLocal(modifiers []string, key string) bool {
	if r.status != StatusActive {
		return false
	}
	action, ok := r.match(modifiers, key)
	if !ok {
		return false
	}
	r.dispatch(action, "local")
	return true
}

// Stop unregisters the global listener. Presses already queued on the loop
// are dropped. Call on the main loop.
func (r *Router) Stop() {
	if r.status != StatusActive {
		r.status = StatusStopped
		return
	}
	r.status = StatusStopped

	if err := r.global.Close(); err != nil {
		log.Printf("[SHORTCUT] Failed to unregister global shortcuts: %v", err)
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	log.Printf("[SHORTCUT] Global shortcuts unregistered")
}

// Status reports the lifecycle state.
func (r *Router) Status() Status {
	return r.status
}

func (r *Router) deliverGlobal(action Action) {
	r.dispatcher.Post(func() {
		if r.status != StatusActive {
			return
		}
		r.dispatch(action, "global")
	})
}

func (r *Router) dispatch(action Action, via string) {
	log.Printf("[SHORTCUT] %s (%s)", action, via)
	switch action {
	case ActionToggle:
		r.target.Toggle()
	case ActionReset:
		if err := r.target.EmergencyReset(); err != nil {
			log.Printf("[SHORTCUT] Emergency reset failed: %v", err)
		}
	}
}

func (r *Router) match(modifiers []string, key string) (Action, bool) {
	if r.reset.Match(modifiers, key) {
		return ActionReset, true
	}
	if r.toggle.Match(modifiers, key) {
		return ActionToggle, true
	}
	return 0, false
}

func (r *Router) disable(err error) {
	r.status = StatusDisabled
	if r.reported {
		return
	}
	r.reported = true

	log.Printf("[SHORTCUT] Shortcuts disabled: %v", err)
	if r.report != nil {
		r.report(err)
	}
}
