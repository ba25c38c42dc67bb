// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkCancelled(t *testing.T, what string, src Observable[int]) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := ToSlice(ctx, src)
	require.ErrorIs(t, err, context.Canceled, what)
	assert.Empty(t, result, what)
}

func TestSame(t *testing.T) {
	a := Just(1)
	b := Just(1)

	assert.True(t, Same(a, a), "same instance")
	assert.False(t, Same(a, b), "equal contents, different instances")
	assert.True(t, Same[int](nil, nil), "both nil")
	assert.False(t, Same(a, nil), "one nil")

	var sub Observable[int] = NewSubject[int](1)
	assert.True(t, Same(sub, sub), "subject pointer")
}

type countObservable int

func (c countObservable) Observe(ctx context.Context, next func(int) error) error {
	return next(int(c))
}

type funcTyped func(context.Context, func(int) error) error

func (f funcTyped) Observe(ctx context.Context, next func(int) error) error {
	return f(ctx, next)
}

func TestSameNonPointer(t *testing.T) {
	// 1. comparable value types compare by value
	assert.True(t, Same[int](countObservable(3), countObservable(3)))
	assert.False(t, Same[int](countObservable(3), countObservable(4)))

	// 2. func types are never the same, and comparing them does not panic
	f := funcTyped(func(ctx context.Context, next func(int) error) error { return nil })
	assert.False(t, Same[int](f, f))
}

func TestMap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	double := func(x int) int { return x * 2 }

	// 1. mapping a non-empty source
	{
		result, err := ToSlice(ctx, Map(FromSlice([]int{0, 1, 2, 3, 4}), double))
		require.NoError(t, err, "case 1")
		assert.Equal(t, []int{0, 2, 4, 6, 8}, result, "case 1")
	}

	// 2. mapping an empty source
	{
		result, err := ToSlice(ctx, Map(Empty[int](), double))
		require.NoError(t, err, "case 2")
		assert.Equal(t, []int{}, result, "case 2")
	}

	// 3. cancelled context
	checkCancelled(t, "case 3", Map(FromSlice([]int{1, 2, 3}), double))
}

func TestConcatStartWith(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. successful case
	res1, err := ToSlice(ctx, Concat(Just(1), Just(2), Just(3)))
	require.NoError(t, err, "case 1")
	assert.Equal(t, []int{1, 2, 3}, res1, "case 1")

	// 2. cancelled concat
	checkCancelled(t, "case 2", Concat(Just(1), Stuck[int]()))

	// 3. empty concat
	res3, err := ToSlice(ctx, Concat[int]())
	require.NoError(t, err, "case 3")
	assert.Equal(t, []int{}, res3, "case 3")

	// 4. StartWith emits the seed before a source that never emits
	first, err := First(ctx, StartWith(Stuck[int](), 7))
	require.NoError(t, err, "case 4")
	assert.Equal(t, 7, first, "case 4")

	// 5. error after the seed items
	errBoom := errors.New("boom")
	res5, err := ToSlice(ctx, StartWith(Error[int](errBoom), 1, 2))
	require.ErrorIs(t, err, errBoom, "case 5")
	assert.Equal(t, []int{1, 2}, res5, "case 5")
}

func TestIntervalTimeInterval(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	interval := 10 * time.Millisecond
	items, err := ToSlice(ctx, Take(3, TimeInterval(Interval(interval))))
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, item := range items {
		assert.Equal(t, i, item.Value)
		assert.GreaterOrEqual(t, item.Interval, interval/2, "item %d interval", i)
	}
}

func TestThrottle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	waitMillis := 50
	go func() {
		time.Sleep(time.Duration(waitMillis) * time.Millisecond)
		cancel()
	}()

	ratePerSecond := 200.0
	values, err := ToSlice(ctx, Throttle(Interval(time.Microsecond), ratePerSecond, 1))
	require.ErrorIs(t, err, context.Canceled)

	// 50ms at 200/s is ~10 items. Allow for scheduling jitter.
	assert.LessOrEqual(t, len(values), 20)
	assert.GreaterOrEqual(t, len(values), 1)
}

func TestTake(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. take from a longer source
	res1, err := ToSlice(ctx, Take(2, FromSlice([]int{1, 2, 3})))
	require.NoError(t, err, "case 1")
	assert.Equal(t, []int{1, 2}, res1, "case 1")

	// 2. take all items from a source that never completes
	res2, err := ToSlice(ctx, Take(2, Concat(FromSlice([]int{1, 2}), Stuck[int]())))
	require.NoError(t, err, "case 2")
	assert.Equal(t, []int{1, 2}, res2, "case 2")

	// 3. take zero
	res3, err := ToSlice(ctx, Take(0, Stuck[int]()))
	require.NoError(t, err, "case 3")
	assert.Equal(t, []int{}, res3, "case 3")
}

func TestFirst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. first of many
	x, err := First(ctx, FromSlice([]int{3, 4}))
	require.NoError(t, err, "case 1")
	assert.Equal(t, 3, x, "case 1")

	// 2. first of a source that never completes
	x, err = First(ctx, StartWith(Stuck[int](), 5))
	require.NoError(t, err, "case 2")
	assert.Equal(t, 5, x, "case 2")

	// 3. cancelled
	ctx2, cancel2 := context.WithCancel(context.Background())
	cancel2()
	_, err = First(ctx2, Stuck[int]())
	require.ErrorIs(t, err, context.Canceled, "case 3")
}
