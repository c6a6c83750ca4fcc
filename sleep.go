// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cadence

import (
	"time"

	"github.com/xmidt-org/chronon"
)

// Sleeper blocks the calling goroutine for approximately a requested
// number of timer units. It is the idle strategy a driving loop can use
// between polls, typically fed by Timer.WaitTime.
//
// A Sleeper routinely oversleeps. It makes no attempt to compensate;
// the Timer's error accumulator deducts the overshoot from the next
// interval.
type Sleeper[T Unit] struct {
	clock chronon.Clock
	unit  time.Duration
}

// NewSleeper constructs a Sleeper. The unit parameter is the wall
// duration of one timer unit, e.g. time.Microsecond for a Timer fed by
// a Micros Source. If c is nil, the system clock is used.
//
// A nonpositive unit is a contract violation and causes a panic.
func NewSleeper[T Unit](c chronon.Clock, unit time.Duration) Sleeper[T] {
	if unit <= 0 {
		panic("cadence: a Sleeper requires a positive unit duration")
	}

	if c == nil {
		c = chronon.SystemClock()
	}

	return Sleeper[T]{
		clock: c,
		unit:  unit,
	}
}

// Sleep blocks for approximately d units. A wait that ends before its
// deadline, e.g. an interrupted sleep, is resumed with the remaining
// duration rather than restarted. A zero request returns immediately.
func (s Sleeper[T]) Sleep(d T) {
	if d <= 0 {
		return
	}

	deadline := s.clock.Now().Add(time.Duration(d) * s.unit)
	for {
		remaining := deadline.Sub(s.clock.Now())
		if remaining <= 0 {
			return
		}

		s.clock.Sleep(remaining)
	}
}
