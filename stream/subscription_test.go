// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects the callbacks of a subscription.
type recorder[T any] struct {
	mu    sync.Mutex
	items []T
	errs  []error
}

func (r *recorder[T]) onNext(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
}

func (r *recorder[T]) onError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder[T]) snapshot() ([]T, []error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.items...), append([]error(nil), r.errs...)
}

func TestSubscribe(t *testing.T) {
	// 1. items are delivered in order, completion is silent
	{
		var r recorder[int]
		sub := Subscribe(context.Background(), FromSlice([]int{1, 2, 3}), r.onNext, r.onError)
		<-sub.Done()
		items, errs := r.snapshot()
		assert.Equal(t, []int{1, 2, 3}, items, "case 1")
		assert.Empty(t, errs, "case 1")
		assert.NoError(t, sub.Err(), "case 1")
	}

	// 2. errors are delivered once
	{
		var r recorder[int]
		errBoom := errors.New("boom")
		sub := Subscribe(context.Background(), StartWith(Error[int](errBoom), 1), r.onNext, r.onError)
		<-sub.Done()
		items, errs := r.snapshot()
		assert.Equal(t, []int{1}, items, "case 2")
		assert.Equal(t, []error{errBoom}, errs, "case 2")
		assert.ErrorIs(t, sub.Err(), errBoom, "case 2")
	}

	// 3. parent context cancellation is not an error
	{
		var r recorder[int]
		ctx, cancel := context.WithCancel(context.Background())
		sub := Subscribe(ctx, Stuck[int](), r.onNext, r.onError)
		cancel()
		<-sub.Done()
		_, errs := r.snapshot()
		assert.Empty(t, errs, "case 3")
		assert.False(t, sub.Closed(), "case 3")
	}
}

func TestUnsubscribe(t *testing.T) {
	var r recorder[int]
	subject := NewSubject[int](1)
	sub := Subscribe(context.Background(), subject, r.onNext, r.onError)

	require.Eventually(t, func() bool { return subject.Observers() == 1 }, time.Second, time.Millisecond)
	subject.Emit(1)
	require.Eventually(t, func() bool {
		items, _ := r.snapshot()
		return len(items) == 1
	}, time.Second, time.Millisecond)

	sub.Unsubscribe()
	assert.True(t, sub.Closed())

	// Calling it again is harmless.
	sub.Unsubscribe()

	<-sub.Done()
	assert.NoError(t, sub.Err())
	assert.Equal(t, 0, subject.Observers())

	// Nothing is delivered after the subscription has ended.
	subject.Emit(2)
	subject.Fail(errors.New("late"))
	items, errs := r.snapshot()
	assert.Equal(t, []int{1}, items)
	assert.Empty(t, errs)
}

func TestSubject(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 1. items emitted before Fail are delivered before the error
	{
		subject := NewSubject[int](4)
		var (
			items []int
			err   error
			done  = make(chan struct{})
		)
		go func() {
			items, err = ToSlice(ctx, subject)
			close(done)
		}()
		require.Eventually(t, func() bool { return subject.Observers() == 1 }, time.Second, time.Millisecond)
		errBoom := errors.New("boom")
		subject.Emit(1)
		subject.Emit(2)
		subject.Fail(errBoom)
		<-done
		assert.ErrorIs(t, err, errBoom, "case 1")
		assert.Equal(t, []int{1, 2}, items, "case 1")
	}

	// 2. observing a completed subject completes immediately
	{
		subject := NewSubject[int](1)
		subject.Complete()
		items, err := ToSlice(ctx, subject)
		assert.NoError(t, err, "case 2")
		assert.Empty(t, items, "case 2")
	}

	// 3. emitting without observers does not block
	{
		subject := NewSubject[int](1)
		subject.Emit(1)
		subject.Emit(2)
		assert.Equal(t, 0, subject.Observers(), "case 3")
	}
}
