// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package stream

import (
	"context"
	"sync"
)

// Subject is a hot observable fed by Emit. Observers only see the items
// emitted while they are observing. Fail and Complete terminate all current
// and future observers.
type Subject[T any] struct {
	mu        sync.Mutex
	bufSize   int
	nextID    int
	observers map[int]*subjectObserver[T]
	err       error
	done      chan struct{}
	doneOnce  sync.Once
}

type subjectObserver[T any] struct {
	items chan T
	stop  chan struct{}
}

// NewSubject creates a subject. 'bufSize' is the number of items buffered per
// observer before Emit blocks.
func NewSubject[T any](bufSize int) *Subject[T] {
	if bufSize < 1 {
		bufSize = 1
	}
	return &Subject[T]{
		bufSize:   bufSize,
		observers: make(map[int]*subjectObserver[T]),
		done:      make(chan struct{}),
	}
}

// Emit sends 'item' to all current observers. Items emitted from the same
// goroutine are seen by each observer in order.
func (s *Subject[T]) Emit(item T) {
	s.mu.Lock()
	observers := make([]*subjectObserver[T], 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.mu.Unlock()

	for _, o := range observers {
		select {
		case o.items <- item:
		case <-o.stop:
		}
	}
}

// Fail terminates the subject with 'err'. Observers first receive the items
// already emitted to them.
func (s *Subject[T]) Fail(err error) {
	s.doneOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
	})
}

// Complete terminates the subject without an error.
func (s *Subject[T]) Complete() {
	s.Fail(nil)
}

// Observers returns the number of observers currently observing.
func (s *Subject[T]) Observers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

func (s *Subject[T]) Observe(ctx context.Context, next func(T) error) error {
	o := &subjectObserver[T]{
		items: make(chan T, s.bufSize),
		stop:  make(chan struct{}),
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = o
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
		close(o.stop)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case item := <-o.items:
			if err := next(item); err != nil {
				return err
			}

		case <-s.done:
			// Deliver what was emitted before termination.
			for {
				select {
				case item := <-o.items:
					if err := next(item); err != nil {
						return err
					}
				default:
					s.mu.Lock()
					err := s.err
					s.mu.Unlock()
					return err
				}
			}
		}
	}
}
