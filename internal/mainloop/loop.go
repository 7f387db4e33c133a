// Package mainloop provides the single serialized context every state
// mutation in tuck runs on. In production that context is the GTK main loop;
// Loop is a channel-backed equivalent used headless and in tests.
package mainloop

import (
	"context"
	"errors"
	"log"
	"sync"
)

// Dispatcher queues work onto the serialized context. Post never blocks the
// caller on the work itself and may be called from any goroutine.
type Dispatcher interface {
	Post(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

// Post calls f(fn).
func (f DispatcherFunc) Post(fn func()) { f(fn) }

var ErrLoopStopped = errors.New("main loop stopped")

// Loop runs posted functions one at a time, in order, on the goroutine that
// called Run.
type Loop struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// New creates a loop with room for size pending callbacks before Post blocks.
func New(size int) *Loop {
	if size <= 0 {
		size = 64
	}
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Post enqueues fn. After Quit it is dropped.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}

	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Run executes callbacks until ctx is cancelled or Quit is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return ErrLoopStopped
		case fn := <-l.queue:
			l.call(fn)
		}
	}
}

// Quit stops Run. Safe to call more than once and from inside a callback.
func (l *Loop) Quit() {
	l.once.Do(func() { close(l.done) })
}

func (l *Loop) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[MAINLOOP] Recovered from panic in callback: %v", r)
		}
	}()
	fn()
}
