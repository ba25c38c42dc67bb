// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

// Package timer is an example of a lifted component: a display of a ticking
// counter.
package timer

import (
	"fmt"
	"time"

	"github.com/joamaki/observe/observe"
	"github.com/joamaki/observe/stream"
	"github.com/joamaki/observe/view"
)

// Tick is emitted by Ticking.
type Tick struct {
	// Value counts the ticks, starting from 0.
	Value int

	// Interval is the time since the previous tick. Zero for the first
	// tick.
	Interval time.Duration
}

// Ticking returns an observable that emits Tick{Value: 0} immediately and
// then Value 1, 2, ... every 'interval'. It never completes.
func Ticking(interval time.Duration) stream.Observable[Tick] {
	ticks := stream.Map(
		stream.TimeInterval(stream.Interval(interval)),
		func(t stream.Timed[int]) Tick {
			return Tick{Value: t.Value, Interval: t.Interval}
		})
	seeded := stream.StartWith(ticks, Tick{Value: -1})
	return stream.Map(seeded, func(t Tick) Tick {
		t.Value++
		return t
	})
}

// Props are the props of Timer.
type Props struct {
	Value int
}

// MapEmitToProps keeps only the value of a tick.
func MapEmitToProps(t Tick) Props {
	return Props{Value: t.Value}
}

// Timer displays a counter value.
var Timer = view.Func("Timer", func(p Props) view.Node {
	return view.Tag("p", view.Text(fmt.Sprintf("Timer: %d", p.Value)))
})

// Lifted is Timer lifted to observe a stream of ticks.
var Lifted = observe.Lift(MapEmitToProps)(Timer)
