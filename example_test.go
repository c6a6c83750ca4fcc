// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cadence_test

import (
	"fmt"
	"time"

	"github.com/xmidt-org/cadence"
)

// Example drives a timer through a polling loop with a synthetic
// source that advances 40000 units per sample. The tick times show the
// error correction at work: a late tick shortens the next interval.
func Example() {
	var now int64
	source := func() int64 {
		now += 40000
		return now
	}

	timer := cadence.NewTimer[int64](source)
	timer.Start(100000)

	for timer.Frames() < 3 {
		if timer.Update() {
			fmt.Printf("frame %d at %d\n", timer.Frames(), timer.Ticks())
		}
	}

	// Output:
	// frame 1 at 200000
	// frame 2 at 280000
	// frame 3 at 400000
}

// ExampleSleeper shows the shape of a wall-clock driving loop: poll the
// timer, do a tick of work when it fires, then idle until the next tick
// is approximately due.
func ExampleSleeper() {
	timer := cadence.NewTimer(cadence.Micros(nil))
	sleeper := cadence.NewSleeper[int64](nil, time.Microsecond)

	timer.Start(cadence.MicrosPerSecond / 100)

	for timer.Frames() < 3 {
		if timer.Update() {
			// one logical tick of work
		}

		sleeper.Sleep(timer.WaitTime())
	}

	fmt.Println(timer.Frames())
	// Output:
	// 3
}
