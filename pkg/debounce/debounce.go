// Package debounce mirrors a rapidly changing value once it has stopped changing
// for a quiescence period.
package debounce

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Option configures a Value.
type Option func(*settings)

type settings struct {
	clock clockwork.Clock
}

// WithClock sets the clock driving the timers. Tests pass a fake clock.
func WithClock(clock clockwork.Clock) Option {
	return func(s *settings) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// Value holds the debounced view of a source value.
// At most one timer is pending at any time.
type Value[T comparable] struct {
	mu         sync.Mutex
	clock      clockwork.Clock
	current    T
	pending    clockwork.Timer
	generation uint64
	observed   bool
	lastValue  T
	lastDelay  time.Duration
	closed     bool
	listeners  []func(T)
}

// New creates a Value that reports initial until the first settled update.
func New[T comparable](initial T, opts ...Option) *Value[T] {
	s := settings{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&s)
	}

	return &Value[T]{
		clock:   s.clock,
		current: initial,
	}
}

// Observe feeds the latest source value and returns the current debounced value.
// When value or delay differ from the previous call, the pending timer is replaced
// by a new one of length delay capturing value. Repeating the same pair keeps the
// running timer. A zero delay still settles asynchronously.
func (v *Value[T]) Observe(value T, delay time.Duration) T {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return v.current
	}

	if !v.observed || value != v.lastValue || delay != v.lastDelay {
		v.observed = true
		v.lastValue = value
		v.lastDelay = delay
		v.schedule(value, delay)
	}

	return v.current
}

// Get returns the current debounced value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Pending reports whether a timer is waiting to settle.
func (v *Value[T]) Pending() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pending != nil
}

// OnSettle registers fn to run after each settled update, outside the lock.
func (v *Value[T]) OnSettle(fn func(T)) {
	if fn == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listeners = append(v.listeners, fn)
}

// Close cancels the pending timer. No update happens afterwards.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.closed = true
	v.generation++
	v.stopPending()
}

// schedule must be called with mu held.
func (v *Value[T]) schedule(value T, delay time.Duration) {
	v.stopPending()
	v.generation++
	generation := v.generation

	v.pending = v.clock.AfterFunc(delay, func() {
		v.settle(generation, value)
	})
}

func (v *Value[T]) stopPending() {
	if v.pending != nil {
		v.pending.Stop()
		v.pending = nil
	}
}

func (v *Value[T]) settle(generation uint64, value T) {
	v.mu.Lock()
	if v.closed || generation != v.generation {
		v.mu.Unlock()
		return
	}

	v.current = value
	v.pending = nil
	listeners := make([]func(T), len(v.listeners))
	copy(listeners, v.listeners)
	v.mu.Unlock()

	for _, listener := range listeners {
		listener(value)
	}
}
