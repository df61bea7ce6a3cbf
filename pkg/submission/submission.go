// Package submission tracks the lifecycle of a user-triggered asynchronous
// operation: Idle, Submitting, then Success or Failed until the next Submit or Reset.
package submission

import (
	"context"
	"sync"

	"github.com/JailtonJunior94/aeon-kit/pkg/apperrors"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability"
	"github.com/JailtonJunior94/aeon-kit/pkg/observability/noop"
)

// SubmitFunc is the wrapped operation.
type SubmitFunc[TIn, TOut any] func(ctx context.Context, input TIn) (TOut, error)

// State is a snapshot of the machine.
// Submitting implies !IsSuccess and Err == nil; IsSuccess implies Err == nil.
type State[T any] struct {
	IsSubmitting bool
	IsSuccess    bool
	Err          error
	Data         T
}

// Idle reports whether the state is the initial one.
func (s State[T]) Idle() bool {
	return !s.IsSubmitting && !s.IsSuccess && s.Err == nil
}

// Failed reports whether the last submission failed.
func (s State[T]) Failed() bool {
	return !s.IsSubmitting && s.Err != nil
}

// Result is delivered by SubmitAsync once the operation resolves.
type Result[T any] struct {
	Data T
	OK   bool
}

// Options configures the lifecycle callbacks. All fields are optional.
// OnChange calls never overlap and arrive in the order the transitions happened,
// possibly on the goroutine of a concurrent Submit or Reset.
type Options[T any] struct {
	OnSuccess func(data T)
	OnError   func(err error)
	OnChange  func(state State[T])
	Logger    observability.Logger
}

// Machine is safe for concurrent use. Every Submit and Reset starts a new
// generation; only the latest generation writes state or fires callbacks.
type Machine[TIn, TOut any] struct {
	mu         sync.Mutex
	fn         SubmitFunc[TIn, TOut]
	opts       Options[TOut]
	logger     observability.Logger
	state      State[TOut]
	generation uint64

	// transitions waiting for OnChange, drained by one goroutine at a time
	changes  []State[TOut]
	draining bool
}

// New creates a machine in the Idle state.
func New[TIn, TOut any](fn SubmitFunc[TIn, TOut], opts Options[TOut]) *Machine[TIn, TOut] {
	logger := opts.Logger
	if logger == nil {
		logger = noop.NewLogger()
	}

	return &Machine[TIn, TOut]{
		fn:     fn,
		opts:   opts,
		logger: logger,
	}
}

// Submit enters Submitting, runs the operation and resolves to Success or Failed.
// It returns the result and true on success, the zero value and false on failure;
// the error itself is kept in State.
func (m *Machine[TIn, TOut]) Submit(ctx context.Context, input TIn) (TOut, bool) {
	generation := m.begin(ctx)
	return m.resolve(ctx, generation, input)
}

// SubmitAsync enters Submitting before returning and resolves on its own goroutine.
// The channel receives exactly one Result and is then closed.
func (m *Machine[TIn, TOut]) SubmitAsync(ctx context.Context, input TIn) <-chan Result[TOut] {
	generation := m.begin(ctx)

	results := make(chan Result[TOut], 1)
	go func() {
		defer close(results)
		data, ok := m.resolve(ctx, generation, input)
		results <- Result[TOut]{Data: data, OK: ok}
	}()

	return results
}

// Reset returns to Idle from any state. Calling it repeatedly has no further effect.
func (m *Machine[TIn, TOut]) Reset() {
	m.mu.Lock()
	m.generation++
	wasIdle := m.state.Idle()
	m.state = State[TOut]{}
	if !wasIdle {
		m.recordLocked(m.state)
	}
	m.mu.Unlock()

	m.notify()
}

// State returns a snapshot of the current state.
func (m *Machine[TIn, TOut]) State() State[TOut] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine[TIn, TOut]) begin(ctx context.Context) uint64 {
	m.mu.Lock()
	m.generation++
	generation := m.generation
	m.state = State[TOut]{IsSubmitting: true}
	m.recordLocked(m.state)
	m.mu.Unlock()

	m.logger.Debug(ctx, "Starting form submission")
	m.notify()
	return generation
}

func (m *Machine[TIn, TOut]) resolve(ctx context.Context, generation uint64, input TIn) (TOut, bool) {
	data, err := m.run(ctx, input)
	if err != nil {
		var zero TOut
		if m.commit(generation, State[TOut]{Err: err}) {
			m.logger.Error(ctx, "Form submission failed", observability.Error(err))
			if m.opts.OnError != nil {
				m.opts.OnError(err)
			}
		}
		return zero, false
	}

	if m.commit(generation, State[TOut]{IsSuccess: true, Data: data}) {
		m.logger.Info(ctx, "Form submission successful")
		if m.opts.OnSuccess != nil {
			m.opts.OnSuccess(data)
		}
	}
	return data, true
}

func (m *Machine[TIn, TOut]) run(ctx context.Context, input TIn) (data TOut, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			var zero TOut
			data = zero
			err = apperrors.Normalize(recovered)
		}
	}()
	return m.fn(ctx, input)
}

// commit writes state only when generation is still the latest.
func (m *Machine[TIn, TOut]) commit(generation uint64, state State[TOut]) bool {
	m.mu.Lock()
	if generation != m.generation {
		m.mu.Unlock()
		return false
	}
	m.state = state
	m.recordLocked(state)
	m.mu.Unlock()

	m.notify()
	return true
}

// recordLocked queues a transition for OnChange. mu must be held.
func (m *Machine[TIn, TOut]) recordLocked(state State[TOut]) {
	if m.opts.OnChange != nil {
		m.changes = append(m.changes, state)
	}
}

// notify delivers queued transitions unless another goroutine is already doing so.
// Callbacks run outside mu, so OnChange may call back into the machine.
func (m *Machine[TIn, TOut]) notify() {
	m.mu.Lock()
	if m.draining {
		m.mu.Unlock()
		return
	}
	m.draining = true
	for len(m.changes) > 0 {
		state := m.changes[0]
		m.changes = m.changes[1:]
		m.mu.Unlock()
		m.opts.OnChange(state)
		m.mu.Lock()
	}
	m.draining = false
	m.mu.Unlock()
}
