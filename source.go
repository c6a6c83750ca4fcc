// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cadence

import (
	"github.com/xmidt-org/chronon"
)

const (
	// MicrosPerSecond is the number of Micros units in one second.
	MicrosPerSecond int64 = 1_000_000

	// MillisPerSecond is the number of Millis units in one second.
	MillisPerSecond int64 = 1_000
)

// Micros returns a Source that samples the given clock as a microsecond
// tick count. If c is nil, the system clock is used.
//
// A wall-clock Source is only as monotonic as the clock behind it. A
// Timer tolerates a backward jump by discarding its current window.
func Micros(c chronon.Clock) Source[int64] {
	if c == nil {
		c = chronon.SystemClock()
	}

	return func() int64 {
		return c.Now().UnixMicro()
	}
}

// Millis returns a Source that samples the given clock as a millisecond
// tick count, the granularity typical of windowing-library tick
// counters. If c is nil, the system clock is used.
func Millis(c chronon.Clock) Source[int64] {
	if c == nil {
		c = chronon.SystemClock()
	}

	return func() int64 {
		return c.Now().UnixMilli()
	}
}

// FramesOf returns a Source that reads the frame count of a reference
// Timer. A Timer fed by this Source measures time in ticks of the
// reference rather than resampling the OS, which keeps a group of
// timers on one coherent time base.
//
// The returned Source only reads the reference; the reference's owner
// must still drive its Update calls, on the same goroutine as any Timer
// built over this Source.
//
// A nil reference is a contract violation and causes a panic.
func FramesOf[T Unit](reference *Timer[T]) Source[T] {
	if reference == nil {
		panic("cadence: FramesOf requires a non-nil reference Timer")
	}

	return reference.Frames
}
