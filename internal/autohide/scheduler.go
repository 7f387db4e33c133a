package autohide

import (
	"log"
	"time"

	"github.com/chess10kp/tuck/internal/mainloop"
)

// Timer is a pending single-shot callback.
type Timer interface {
	Stop() bool
}

// Clock schedules single-shot callbacks. The callback runs on a goroutine
// owned by the clock, never on the main loop.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock is the wall clock.
var RealClock Clock = realClock{}

// Scheduler is a single-shot, restartable idle timer. All methods must be
// called on the dispatcher's context; the fire callback is delivered there
// too, so a firing timer can never interleave with a manual toggle.
type Scheduler struct {
	dispatcher mainloop.Dispatcher
	clock      Clock
	fire       func()

	timer      Timer
	generation uint64
	deadline   time.Time
}

// NewScheduler returns a scheduler that calls fire when a started timer
// elapses without being cancelled or restarted.
func NewScheduler(d mainloop.Dispatcher, clock Clock, fire func()) *Scheduler {
	if clock == nil {
		clock = RealClock
	}
	return &Scheduler{
		dispatcher: d,
		clock:      clock,
		fire:       fire,
	}
}

// Start cancels any pending timer and schedules a new one.
func (s *Scheduler) Start(delay time.Duration) {
	s.Cancel()

	gen := s.generation
	s.deadline = s.clock.Now().Add(delay)
	s.timer = s.clock.AfterFunc(delay, func() {
		s.dispatcher.Post(func() { s.elapsed(gen) })
	})

	log.Printf("[AUTOHIDE] Timer started (%v)", delay)
}

// Cancel drops the pending timer. A no-op when nothing is scheduled.
func (s *Scheduler) Cancel() {
	// Bumping the generation also invalidates a callback that already left
	// the clock and is queued on the dispatcher.
	s.generation++
	if s.timer == nil {
		return
	}
	s.timer.Stop()
	s.timer = nil
	log.Printf("[AUTOHIDE] Timer cancelled")
}

// Pending reports whether a timer is live.
func (s *Scheduler) Pending() bool {
	return s.timer != nil
}

// Deadline is when the live timer is due. Zero when nothing is pending.
func (s *Scheduler) Deadline() time.Time {
	if s.timer == nil {
		return time.Time{}
	}
	return s.deadline
}

// Remaining is how long until the live timer is due, never negative. Zero
// when nothing is pending.
func (s *Scheduler) Remaining() time.Duration {
	if s.timer == nil {
		return 0
	}
	if left := s.deadline.Sub(s.clock.Now()); left > 0 {
		return left
	}
	return 0
}

func (s *Scheduler) elapsed(gen uint64) {
	if gen != s.generation || s.timer == nil {
		return
	}
	s.timer = nil
	s.generation++

	log.Printf("[AUTOHIDE] Timer fired")
	if s.fire != nil {
		s.fire()
	}
}
