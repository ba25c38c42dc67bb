// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

// Package stream provides the push-based observables that view components
// subscribe to.
package stream

import (
	"context"
	"reflect"
)

type Observable[T any] interface {
	// Observe starts observing a stream of T's.
	// 'next' is called on each element sequentially. If it returns an error the stream closes
	// and this error is returned by Observe().
	// When 'ctx' is cancelled the stream closes and ctx.Err() is returned.
	//
	// Implementations of Observe() must maintain the following invariants:
	// - Observe blocks until the stream and any upstreams are closed.
	// - 'next' is called sequentially from the goroutine that called Observe().
	// - if 'next' returns an error it must not be called again and the same error
	//   must be returned by Observe().
	Observe(ctx context.Context, next func(T) error) error
}

// funcObservable is the observable returned by New. It is always handled
// through a pointer so that two observables compare equal only if they are
// the same instance.
type funcObservable[T any] struct {
	observe func(context.Context, func(T) error) error
}

func (f *funcObservable[T]) Observe(ctx context.Context, next func(T) error) error {
	return f.observe(ctx, next)
}

// New wraps a function that implements Observe. Every call returns a new
// observable instance, distinct from all others under Same.
func New[T any](observe func(ctx context.Context, next func(T) error) error) Observable[T] {
	return &funcObservable[T]{observe}
}

// Same reports whether 'a' and 'b' are the same observable instance.
// Observables whose dynamic type is not comparable (e.g. a plain func type)
// are never the same as anything, including themselves.
func Same[T any](a, b Observable[T]) (same bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	// A comparable struct may still hold a non-comparable value in an
	// interface field, in which case == panics.
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
