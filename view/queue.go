// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package view

import (
	"container/list"
	"sync"
)

// coalescingQueue combines a queue and a map to implement a FIFO queue
// that only keeps the latest value (by key) pushed to it. A pushed key that
// is already queued keeps its place in the queue.
type coalescingQueue[K comparable, V any] struct {
	sync.Mutex

	// fullCond is used to wait for slots to free up when pushing items
	fullCond *sync.Cond

	// nonEmptyCond is used to wait for items when popping
	nonEmptyCond *sync.Cond

	// bufSize bounds the number of queued keys. Zero or less means unbounded.
	bufSize int
	values  map[K]V
	queue   *list.List
	closed  bool
}

func newCoalescingQueue[K comparable, V any](bufSize int) *coalescingQueue[K, V] {
	q := &coalescingQueue[K, V]{
		bufSize: bufSize,
		values:  make(map[K]V),
		queue:   list.New(),
	}
	q.fullCond = sync.NewCond(q)
	q.nonEmptyCond = sync.NewCond(q)
	return q
}

// Close wakes up all waiters. Items already queued can still be popped.
func (q *coalescingQueue[K, V]) Close() {
	q.Lock()
	q.closed = true
	q.nonEmptyCond.Broadcast()
	q.fullCond.Broadcast()
	q.Unlock()
}

func (q *coalescingQueue[K, V]) full() bool {
	return q.bufSize > 0 && len(q.values) >= q.bufSize
}

// Push queues 'v' under 'k' and reports whether it was accepted. Pushing to
// a closed queue is a no-op.
func (q *coalescingQueue[K, V]) Push(k K, v V) bool {
	q.Lock()
	defer q.Unlock()

	if q.closed {
		return false
	}

	if _, ok := q.values[k]; ok {
		q.values[k] = v
		return true
	}

	for !q.closed && q.full() {
		q.fullCond.Wait()
	}
	if q.closed {
		return false
	}
	q.queue.PushBack(k)
	q.values[k] = v
	q.nonEmptyCond.Signal()
	return true
}

// Pop blocks until an item is available. 'ok' is false once the queue is
// closed and drained.
func (q *coalescingQueue[K, V]) Pop() (key K, item V, ok bool) {
	q.Lock()
	defer q.Unlock()

	for !q.closed && q.queue.Front() == nil {
		q.nonEmptyCond.Wait()
	}

	if q.queue.Front() == nil {
		return
	}

	ok = true
	key = q.queue.Remove(q.queue.Front()).(K)
	item = q.values[key]
	delete(q.values, key)

	q.fullCond.Signal()

	return
}

// Len returns the number of queued items.
func (q *coalescingQueue[K, V]) Len() int {
	q.Lock()
	defer q.Unlock()
	return q.queue.Len()
}
