// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cadence

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrRunnerStarted is returned by Runner.Start to indicate that the
	// Runner has already been started.
	ErrRunnerStarted = errors.New("the runner has been started")

	// ErrRunnerShutdown is returned by Runner.Shutdown to indicate that the
	// Runner has not yet been started or has already been shutdown.
	ErrRunnerShutdown = errors.New("the runner has been shutdown")
)

// TickEvent describes one fired tick of a Runner's Timer.
type TickEvent[T Unit] struct {
	// Frames is the total number of ticks fired since the Timer was last
	// started or reset, including the tick that produced this event.
	Frames T

	// Ticks is the absolute Source time observed at this tick. Dependent
	// timers can use this value to stay on the same time base without
	// resampling the Source.
	Ticks T

	// Elapsed is the total time tracked since the Timer was last started
	// or reset.
	Elapsed T
}

// TickListener is a sink for TickEvents.
type TickListener[T Unit] interface {
	// OnTick receives a TickEvent. This method is invoked from the
	// Runner's loop goroutine. A slow listener delays subsequent polls;
	// the Timer's error accumulator absorbs that delay, dropping ticks
	// if the listener chronically cannot keep up.
	OnTick(TickEvent[T])
}

// TickListeners is an aggregate TickListener.
type TickListeners[T Unit] []TickListener[T]

// OnTick dispatches the given event to each listener in this aggregate.
func (tls TickListeners[T]) OnTick(e TickEvent[T]) {
	for _, l := range tls {
		l.OnTick(e)
	}
}

// Waiter is a factory closure for a wait channel and the associated
// stop function. A Runner creates one waiter per loop iteration to idle
// until the next tick is approximately due.
type Waiter func(time.Duration) (<-chan time.Time, func() bool)

// defaultWaiter is the default Waiter closure, backed by the runtime
// timer heap.
func defaultWaiter(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

// Runner drives a Timer on a background goroutine: it polls Update,
// dispatches a TickEvent to its listeners each time a tick fires, and
// idles between polls for the duration reported by WaitTime.
//
// The caller retains responsibility for the Timer's lifecycle: start
// the Timer with its interval, then Start the Runner. While a Runner is
// started, its loop goroutine is the sole owner of the Timer; callers
// must not invoke any Timer method until the Runner has been shutdown.
type Runner[T Unit] struct {
	timer *Timer[T]

	// unit is the wall duration of one timer unit, used to convert
	// WaitTime results into waits.
	unit time.Duration

	// waiter is the strategy for idling between polls. If unset,
	// defaultWaiter is used.
	waiter Waiter

	listeners TickListeners[T]

	// lock guards the lifecycle transitions.
	lock sync.Mutex

	// cancel is the cancellation function used to stop the loop goroutine.
	cancel context.CancelFunc

	// done is closed when the loop goroutine exits. Shutdown waits on
	// it so that Timer ownership transfers back to the caller cleanly.
	done chan struct{}
}

// RunnerOption is a configurable option for tailoring a Runner.
type RunnerOption[T Unit] interface {
	apply(*Runner[T]) error
}

type runnerOptionFunc[T Unit] func(*Runner[T]) error

func (f runnerOptionFunc[T]) apply(r *Runner[T]) error { return f(r) }

// WithListeners registers listeners that receive a TickEvent each time
// the Runner's Timer fires. The set of listeners is fixed after
// construction.
func WithListeners[T Unit](ls ...TickListener[T]) RunnerOption[T] {
	return runnerOptionFunc[T](func(r *Runner[T]) error {
		r.listeners = append(r.listeners, ls...)
		return nil
	})
}

// WithWaiter replaces the strategy a Runner uses to idle between
// polls. Tests and simulations can supply a controllable Waiter.
//
// If this option isn't used or is set to nil, defaultWaiter is used.
func WithWaiter[T Unit](w Waiter) RunnerOption[T] {
	return runnerOptionFunc[T](func(r *Runner[T]) error {
		if w == nil {
			w = defaultWaiter
		}

		r.waiter = w
		return nil
	})
}

// NewRunner constructs a Runner that drives the given Timer. The unit
// parameter is the wall duration of one timer unit, e.g.
// time.Microsecond for a Timer fed by a Micros Source. The returned
// Runner is not running until Start is called.
//
// A nil Timer or a nonpositive unit is a contract violation and causes
// a panic.
func NewRunner[T Unit](timer *Timer[T], unit time.Duration, opts ...RunnerOption[T]) (*Runner[T], error) {
	if timer == nil {
		panic("cadence: a Runner requires a non-nil Timer")
	}

	if unit <= 0 {
		panic("cadence: a Runner requires a positive unit duration")
	}

	r := &Runner[T]{
		timer:  timer,
		unit:   unit,
		waiter: defaultWaiter,
	}

	for _, o := range opts {
		if err := o.apply(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// loop polls the Timer until ctx is canceled.
func (r *Runner[T]) loop(ctx context.Context) {
	for {
		if r.timer.Update() {
			r.listeners.OnTick(TickEvent[T]{
				Frames:  r.timer.Frames(),
				Ticks:   r.timer.Ticks(),
				Elapsed: r.timer.Elapsed(),
			})
		}

		d := time.Duration(r.timer.WaitTime()) * r.unit
		if d < r.unit {
			// Never busy-wait, even when the next tick is overdue or the
			// Timer is stopped. One unit is the finest gap the Timer can
			// observe, and the error accumulator absorbs the oversleep.
			d = r.unit
		}

		waitCh, stop := r.waiter(d)
		select {
		case <-ctx.Done():
			stop()
			return

		case <-waitCh:
		}
	}
}

// Start launches the background goroutine that drives the Timer.
//
// This method is idempotent. If this Runner has already been started,
// this method does nothing and returns ErrRunnerStarted.
func (r *Runner[T]) Start() error {
	defer r.lock.Unlock()
	r.lock.Lock()

	if r.cancel != nil {
		return ErrRunnerStarted
	}

	var rootCtx context.Context
	rootCtx, r.cancel = context.WithCancel(context.Background())
	r.done = make(chan struct{})
	go func(done chan<- struct{}) {
		defer close(done)
		r.loop(rootCtx)
	}(r.done)

	return nil
}

// Shutdown stops the loop goroutine. The Timer and its state are
// preserved, and ownership of the Timer returns to the caller.
//
// This method is idempotent. If this Runner is not running, this method
// does nothing and returns ErrRunnerShutdown.
func (r *Runner[T]) Shutdown() error {
	defer r.lock.Unlock()
	r.lock.Lock()

	if r.cancel == nil {
		return ErrRunnerShutdown
	}

	r.cancel()
	r.cancel = nil

	// wait for the loop to exit so the Timer has a single owner again
	<-r.done
	r.done = nil
	return nil
}
