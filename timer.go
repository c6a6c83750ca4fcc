// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package cadence provides a drift-correcting interval timer for
// frame-based and tick-based loops.
package cadence

// Unit describes the integer types usable as a timer's time unit.
// A Unit value is an opaque, totally-ordered tick count in whatever
// unit a Source chooses, e.g. microseconds or platform ticks.
type Unit interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Source produces the current time as a tick count in some unit T.
// Outside of a single wrap event, which a Timer tolerates by discarding
// its current window, repeated samples must be non-decreasing.
//
// A Source must be callable arbitrarily often with bounded latency.
// It is not required to be safe for concurrent use; a Timer samples its
// Source only from the single goroutine driving it.
type Source[T Unit] func() T

// Timer fires logical ticks at a fixed interval measured against an
// injected Source, compensating for scheduling error: the gap between
// when a tick should have fired and when it was actually observed.
//
// A Timer is polled, not channel-driven. A driving loop repeatedly
// calls Update, performs one tick of work whenever Update returns true,
// and may idle on WaitTime between polls. Update fires at most one tick
// per call; under severe starvation ticks are dropped, not queued.
//
// A Timer holds no internal synchronization. A single logical owner
// must drive all mutating calls.
type Timer[T Unit] struct {
	source Source[T]

	// interval is the target duration between ticks. Zero when stopped.
	interval T

	// t0 is the time at which the current interval window began.
	// t1 is the time observed at the most recent tick or reset.
	t0 T
	t1 T

	// terr accumulates scheduling error: how much previous ticks
	// overshot their deadlines. Never negative after an Update.
	terr T

	// tstart anchors Elapsed; set by Start and Reset.
	tstart T

	// frames counts ticks fired since the last Start or Reset.
	frames T

	started bool
	paused  bool
}

// NewTimer constructs a Timer that measures time against the given
// Source. The Timer samples the Source immediately to establish its
// initial reference point; it is not started until Start is called.
//
// A nil Source is a contract violation and causes a panic.
func NewTimer[T Unit](source Source[T]) *Timer[T] {
	if source == nil {
		panic("cadence: a Timer requires a non-nil Source")
	}

	t := &Timer[T]{
		source: source,
	}

	t.Reset()
	return t
}

// Start begins firing ticks every interval units. All timing state is
// re-anchored to the current Source sample, the frame count is zeroed,
// and the Timer is unpaused.
//
// Start has no error conditions and is idempotent: calling it on a
// running Timer simply re-anchors it.
func (t *Timer[T]) Start(interval T) {
	t.interval = interval

	t.Reset()
	t.Resume()

	t.started = true
}

// Stop halts the Timer. The interval is forgotten, and Update returns
// false until Start is called again. The frame count and timing history
// are preserved until the next Start or Reset.
func (t *Timer[T]) Stop() {
	var zero T
	t.interval = zero

	t.started = false
}

// Started reports whether the Timer is running.
func (t *Timer[T]) Started() bool {
	return t.started
}

// Pause suspends the Timer. No time is resampled; the Timer simply
// stops observing until Resume is called.
func (t *Timer[T]) Pause() {
	t.paused = true
}

// Resume unpauses the Timer. The window reference points are shifted
// forward to the current Source sample, preserving the duration that
// had accumulated between them before the pause, so that time spent
// paused is not donated to the consumer as instantly-elapsed interval.
//
// If the Timer is not paused, Resume does nothing.
func (t *Timer[T]) Resume() {
	if !t.paused {
		return
	}

	dt := t.t1 - t.t0
	tnow := t.source()

	t.t0 = tnow
	t.t1 = tnow + dt

	t.paused = false
}

// Paused reports whether the Timer is paused.
func (t *Timer[T]) Paused() bool {
	return t.paused
}

// Update polls the Timer. It returns true exactly when a tick fires on
// this call. Call it once per driving-loop iteration.
//
// Update samples the Source at most once. It fires at most one tick per
// call even if several intervals have elapsed; a starved consumer drops
// ticks rather than accumulating a catch-up burst.
func (t *Timer[T]) Update() bool {
	if !t.started || t.paused {
		return false
	}

	tnow := t.source()

	if tnow < t.t0 {
		// The source wrapped. Discard the current window and re-anchor
		// rather than computing a nonsensical negative duration.
		t.t0 = tnow
		t.t1 = tnow
		t.tstart = tnow

		return false
	}

	// If more error has accumulated than a whole interval, the consumer
	// cannot keep up. Drain the accumulator and fire one make-up tick.
	// Forgiving at most one tick per call keeps the accumulator bounded
	// under chronic overshoot.
	if t.interval < t.terr {
		var zero T
		t.terr = zero

		t.t0 = t.t1
		t.t1 = tnow
		t.frames++

		return true
	}

	if tnow-t.t0 >= t.interval-t.terr {
		// The interval has elapsed, net of the error already owed.
		// Only overshoot beyond what has already been forgiven
		// carries into the accumulator.
		if tnow-t.t0 > t.interval+t.terr {
			t.terr = (tnow - t.t0) - (t.interval + t.terr)
		} else {
			var zero T
			t.terr = zero
		}

		t.t1 = tnow
		t.t0 = t.t1
		t.frames++

		return true
	}

	return false
}

// Elapsed returns the total time tracked since the last Start or Reset,
// as of the most recent sample taken by Update or Reset. Elapsed does
// not resample the Source.
func (t *Timer[T]) Elapsed() T {
	return t.t1 - t.tstart
}

// Ticks returns the absolute Source time observed at the most recent
// tick or reset.
//
// Dependent timers can use this value to derive relative time without
// resampling the Source themselves, keeping multiple consumers on one
// coherent time base.
func (t *Timer[T]) Ticks() T {
	return t.t1
}

// Frames returns the number of ticks that have fired since the last
// Start or Reset.
func (t *Timer[T]) Frames() T {
	return t.frames
}

// WaitTime returns the remaining time until the next tick is due, or
// zero if the next deadline has already passed. This is the only query
// that resamples the Source; it exists so a consumer can idle
// efficiently between polls.
//
// Because WaitTime samples the Source independently of Update, a caller
// alternating the two may observe slightly different instants a few
// instructions apart. That jitter is an accepted approximation. For an
// unsigned T, the deadline sum can wrap near the top of the unit's
// range, in which case WaitTime reports zero and the next Update
// re-anchors the window.
func (t *Timer[T]) WaitTime() T {
	tnow := t.source()

	if tnow > t.t0+t.terr+t.interval {
		var zero T
		return zero
	}

	return (t.t0 + t.terr + t.interval) - tnow
}

// Reset re-anchors all timing state to the current Source sample and
// zeroes the frame count and error accumulator. The interval and the
// started and paused flags are unchanged.
func (t *Timer[T]) Reset() {
	t.t0 = t.source()
	t.t1 = t.t0
	t.tstart = t.t0

	var zero T
	t.terr = zero
	t.frames = zero
}
