// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package stream

import (
	"context"
	"errors"
)

//
// Sinks: operators that run an observable and send the output somewhere.
//

// ToSlice converts an Observable into a slice.
func ToSlice[T any](ctx context.Context, src Observable[T]) (items []T, err error) {
	items = make([]T, 0)
	err = src.Observe(
		ctx,
		func(item T) error {
			items = append(items, item)
			return nil
		})
	return
}

// First returns the first item from 'src' observable and then closes it.
func First[T any](ctx context.Context, src Observable[T]) (item T, err error) {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	found := false
	err = src.Observe(subCtx,
		func(x T) error {
			if !found {
				item = x
				found = true
				cancel()
			}
			return nil
		})
	if found && errors.Is(err, context.Canceled) && ctx.Err() == nil {
		err = nil
	}
	return
}
