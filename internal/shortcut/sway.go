package shortcut

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/joshuarubin/go-sway"
)

// commandPrefix marks the no-op commands tuck binds chords to. Sway reports
// the bound command back in every binding event.
const commandPrefix = "nop tuck:"

// SwaySource observes chords through sway's IPC: each chord is bound to a
// no-op command and binding events are matched back to actions.
type SwaySource struct {
	connect   func(ctx context.Context) (sway.Client, error)
	subscribe func(ctx context.Context, h sway.EventHandler) error

	client sway.Client
	chords map[Action]Chord
	cancel context.CancelFunc
}

// NewSwaySource returns a source that connects to the sway instance named
// by $SWAYSOCK.
func NewSwaySource() *SwaySource {
	return &SwaySource{
		connect: func(ctx context.Context) (sway.Client, error) {
			return sway.New(ctx)
		},
		subscribe: func(ctx context.Context, h sway.EventHandler) error {
			return sway.Subscribe(ctx, h, sway.EventTypeBinding)
		},
	}
}

func (s *SwaySource) Listen(ctx context.Context, chords map[Action]Chord, deliver func(Action)) error {
	ctx, cancel := context.WithCancel(ctx)

	client, err := s.connect(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("%w: connect to sway: %v", ErrPermissionDenied, err)
	}

	for action, chord := range chords {
		cmd := fmt.Sprintf("bindsym --no-repeat %s %s%s", chord, commandPrefix, action)
		if err := run(ctx, client, cmd); err != nil {
			s.unbind(context.Background(), client, chords)
			cancel()
			return fmt.Errorf("%w: bind %s: %v", ErrPermissionDenied, chord, err)
		}
	}

	s.client = client
	s.chords = chords
	s.cancel = cancel

	handler := &bindingHandler{chords: chords, deliver: deliver}
	go func() {
		err := s.subscribe(ctx, handler)
		if err != nil && ctx.Err() == nil {
			log.Printf("[SHORTCUT] Sway subscription ended: %v", err)
		}
	}()

	log.Printf("[SHORTCUT] Bound %d chords through sway", len(chords))
	return nil
}

// Close removes the bindings and ends the subscription.
func (s *SwaySource) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.unbind(context.Background(), s.client, s.chords)
	s.cancel()
	s.client = nil
	return err
}

func (s *SwaySource) unbind(ctx context.Context, client sway.Client, chords map[Action]Chord) error {
	var firstErr error
	for _, chord := range chords {
		if err := run(ctx, client, "unbindsym --no-repeat "+chord.String()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func run(ctx context.Context, client sway.Client, cmd string) error {
	replies, err := client.RunCommand(ctx, cmd)
	if err != nil {
		return err
	}
	for _, r := range replies {
		if !r.Success {
			return fmt.Errorf("sway rejected %q: %s", cmd, r.Error)
		}
	}
	return nil
}

// bindingHandler only implements the binding callback. The subscription is
// for binding events alone so the embedded handler is never reached.
type bindingHandler struct {
	sway.EventHandler

	chords  map[Action]Chord
	deliver func(Action)
}

func (h *bindingHandler) Binding(_ context.Context, ev sway.BindingEvent) {
	if ev.Change != "run" {
		return
	}
	if action, ok := actionFor(h.chords, ev.Binding); ok {
		h.deliver(action)
	}
}

// actionFor maps a sway binding back to an action, by bound command first
// and by chord when the command is not ours.
func actionFor(chords map[Action]Chord, b sway.Binding) (Action, bool) {
	if strings.HasPrefix(b.Command, commandPrefix) {
		name := strings.TrimPrefix(b.Command, commandPrefix)
		for action := range chords {
			if action.String() == name {
				return action, true
			}
		}
		return 0, false
	}

	if b.Symbol == nil {
		return 0, false
	}
	if c, ok := chords[ActionReset]; ok && c.Match(b.EventStateMask, *b.Symbol) {
		return ActionReset, true
	}
	if c, ok := chords[ActionToggle]; ok && c.Match(b.EventStateMask, *b.Symbol) {
		return ActionToggle, true
	}
	return 0, false
}
