// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package stream

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// Map applies a function onto an observable.
func Map[A, B any](src Observable[A], apply func(A) B) Observable[B] {
	return New(
		func(ctx context.Context, next func(B) error) error {
			return src.Observe(
				ctx,
				func(a A) error { return next(apply(a)) })
		})
}

// Concat takes one or more observable of the same type and emits the items from each of
// them in order.
func Concat[T any](srcs ...Observable[T]) Observable[T] {
	return New(
		func(ctx context.Context, next func(T) error) error {
			for _, src := range srcs {
				err := src.Observe(
					ctx,
					next)
				if err != nil {
					return err
				}
			}
			return nil
		})
}

// StartWith emits 'items' before the items of 'src'.
func StartWith[T any](src Observable[T], items ...T) Observable[T] {
	return Concat(FromSlice(items), src)
}

// Timed is an item annotated with the time elapsed since the previous item.
type Timed[T any] struct {
	Value    T
	Interval time.Duration
}

// TimeInterval annotates each item with the time elapsed since the previous
// item. For the first item the interval is measured from when observing started.
func TimeInterval[T any](src Observable[T]) Observable[Timed[T]] {
	return New(
		func(ctx context.Context, next func(Timed[T]) error) error {
			last := time.Now()
			return src.Observe(
				ctx,
				func(item T) error {
					now := time.Now()
					elapsed := now.Sub(last)
					last = now
					return next(Timed[T]{Value: item, Interval: elapsed})
				})
		})
}

// Throttle limits the rate at which items are emitted.
func Throttle[T any](src Observable[T], ratePerSecond float64, burst int) Observable[T] {
	return New(
		func(ctx context.Context, next func(T) error) error {
			limiter := rate.NewLimiter(rate.Limit(ratePerSecond), burst)
			return src.Observe(
				ctx,
				func(item T) error {
					if err := limiter.Wait(ctx); err != nil {
						return err
					}
					return next(item)
				})
		})
}

// Take takes 'n' items from the source 'src'.
// The context given to source observable is cancelled once 'n' items have
// been emitted and the resulting cancelled error is ignored.
func Take[T any](n int, src Observable[T]) Observable[T] {
	return New(
		func(ctx context.Context, next func(T) error) error {
			if n <= 0 {
				return nil
			}
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			remaining := n
			err := src.Observe(ctx,
				func(item T) error {
					if remaining == 0 {
						return nil
					}
					if err := next(item); err != nil {
						return err
					}
					remaining--
					if remaining == 0 {
						cancel()
					}
					return nil
				})

			if remaining == 0 && errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
}
