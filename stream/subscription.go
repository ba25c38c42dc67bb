// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package stream

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// errUnsubscribed is returned from 'next' to stop the upstream once the
// subscription has been closed.
var errUnsubscribed = errors.New("unsubscribed")

// Subscription is a handle to an observable being observed in the
// background by Subscribe.
type Subscription struct {
	cancel context.CancelFunc
	once   sync.Once
	closed atomic.Bool
	done   chan struct{}

	// err is the error Observe() returned. Only read after 'done' is closed.
	err error
}

// Subscribe starts observing 'src' on a new goroutine. 'onNext' is called for
// each item and 'onError' once if the stream fails. 'onError' is not called
// for a stream that completes normally or that was stopped by cancelling 'ctx'
// or by Unsubscribe().
//
// The callbacks are called sequentially from the observing goroutine. An item
// that was already being handed to 'onNext' when Unsubscribe() was called may
// still be delivered; callers that need a hard cut-off check Closed() from the
// goroutine that calls Unsubscribe().
func Subscribe[T any](ctx context.Context, src Observable[T], onNext func(T), onError func(error)) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		defer cancel()
		err := src.Observe(
			ctx,
			func(item T) error {
				if s.closed.Load() {
					return errUnsubscribed
				}
				onNext(item)
				return nil
			})
		s.err = err
		if err == nil || errors.Is(err, errUnsubscribed) || ctx.Err() != nil || s.closed.Load() {
			return
		}
		onError(err)
	}()
	return s
}

// Unsubscribe stops the subscription. It is safe to call more than once and
// from any goroutine. It does not wait for the observing goroutine to exit,
// see Done().
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.closed.Store(true)
		s.cancel()
	})
}

// Closed reports whether Unsubscribe has been called.
func (s *Subscription) Closed() bool {
	return s.closed.Load()
}

// Done returns a channel that is closed when the observing goroutine has
// exited, either because the stream completed or failed, or because the
// subscription was closed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that terminated the stream. It blocks until Done()
// is closed. A subscription stopped by Unsubscribe reports nil.
func (s *Subscription) Err() error {
	<-s.done
	if s.closed.Load() {
		return nil
	}
	return s.err
}
