// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

// Package observe lifts presentation components into stateful components
// that subscribe to an observable and re-render with each emitted value.
//
// The lifted component owns exactly one subscription at a time. It is
// subscribed when attached, re-subscribed when its observable input is
// replaced by a different instance, and unsubscribed when detached. Values
// and errors are written to the component's state on the host loop, and a
// value from a subscription that has been replaced or closed is never
// applied.
package observe

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/joamaki/observe/stream"
)

// ErrNotObservable is the error put in state when subscribing to a nil
// observable.
var ErrNotObservable = errors.New("observe: not an observable")

// State is the emission state of a lifted component.
type State[P any] struct {
	// EmitProps is the latest mapped value.
	EmitProps P

	// Err is the error the observable failed with, if any.
	Err error
}

// Target is what Subscribe writes emissions to.
type Target[P any] interface {
	// Dispatch runs 'fn' on the loop that owns the target's state.
	Dispatch(fn func()) bool

	// SetState mutates the state and requests a re-render. Only called
	// from the loop.
	SetState(update func(*State[P]))

	Logger() *zap.Logger
}

// Subscribe subscribes 'target' to 'src': each value is written to
// State.EmitProps and an error to State.Err. Writes are dispatched to the
// target's loop and dropped once the returned subscription is closed, so
// Unsubscribe must be called from that loop for the cut-off to be exact.
//
// A nil 'src' is reported and results in ErrNotObservable in state.
func Subscribe[P any](target Target[P], src stream.Observable[P]) *stream.Subscription {
	if src == nil {
		target.Logger().Error("Subscribe called without an observable",
			zap.Any("observable", src))
		src = stream.Error[P](ErrNotObservable)
	}

	// current is nil until stream.Subscribe returns. A write dispatched
	// before that cannot belong to a closed subscription.
	var current atomic.Pointer[stream.Subscription]
	apply := func(update func(*State[P])) {
		target.Dispatch(func() {
			if sub := current.Load(); sub != nil && sub.Closed() {
				return
			}
			target.SetState(update)
		})
	}
	sub := stream.Subscribe(
		context.Background(),
		src,
		func(props P) {
			apply(func(s *State[P]) { s.EmitProps = props })
		},
		func(err error) {
			apply(func(s *State[P]) { s.Err = err })
		})
	current.Store(sub)
	return sub
}
