// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package view

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrUnmounted is returned when operating on an unmounted component.
var ErrUnmounted = errors.New("view: component unmounted")

// Mounted drives a stateful component on a loop: it owns the component's
// inputs and re-renders it when the component invalidates itself.
type Mounted[I any] struct {
	loop      *Loop
	log       *zap.Logger
	component Stateful[I]
	onRender  func(Node)

	// Only accessed from the loop.
	inputs  I
	mounted bool
	renders int

	// tree is the latest expanded render, readable from any goroutine.
	mu   sync.Mutex
	tree Node
}

// MountOption configures a mounted component.
type MountOption func(*mountOptions)

type mountOptions struct {
	onRender func(Node)
	log      *zap.Logger
}

// OnRender sets a function that is called on the loop with the expanded tree
// after each render.
func OnRender(fn func(Node)) MountOption {
	return func(o *mountOptions) { o.onRender = fn }
}

// WithMountLogger sets the logger of the mounted component.
func WithMountLogger(log *zap.Logger) MountOption {
	return func(o *mountOptions) { o.log = log }
}

const (
	mountPending int32 = iota
	mountStarted
	mountAbandoned
)

// Mount binds 'c' to the loop, attaches it with 'inputs' and renders it
// once. It blocks until the first render has happened. If 'ctx' is done
// before the mount task has started, the task is abandoned and the
// component is never attached.
func Mount[I any](ctx context.Context, loop *Loop, c Stateful[I], inputs I, opts ...MountOption) (*Mounted[I], error) {
	o := mountOptions{log: loop.log}
	for _, opt := range opts {
		opt(&o)
	}
	m := &Mounted[I]{
		loop:      loop,
		log:       o.log,
		component: c,
		onRender:  o.onRender,
	}
	if loop.OnLoop() {
		m.attach(inputs)
		return m, nil
	}

	var state atomic.Int32
	done := make(chan struct{})
	if !loop.Post(func() {
		defer close(done)
		if !state.CompareAndSwap(mountPending, mountStarted) {
			return
		}
		m.attach(inputs)
	}) {
		return nil, ErrLoopStopped
	}
	select {
	case <-done:
	case <-ctx.Done():
		if state.CompareAndSwap(mountPending, mountAbandoned) {
			return nil, ctx.Err()
		}
		// Already running on the loop.
		<-done
	}
	return m, nil
}

func (m *Mounted[I]) attach(inputs I) {
	m.inputs = inputs
	m.mounted = true
	m.loop.attach(m, m.detach)
	m.component.Bind(m)
	m.component.OnAttach(inputs)
	m.render()
}

func (m *Mounted[I]) detach() {
	if !m.mounted {
		return
	}
	m.mounted = false
	m.loop.release(m)
	m.component.OnDetach()
	m.log.Debug("Component unmounted", zap.Int("renders", m.renders))
}

// Dispatch implements Handle.
func (m *Mounted[I]) Dispatch(fn func()) bool {
	return m.loop.Post(fn)
}

// Invalidate implements Handle.
func (m *Mounted[I]) Invalidate() {
	m.loop.schedule(m, m.render)
}

// OnLoop implements Handle.
func (m *Mounted[I]) OnLoop() bool {
	return m.loop.OnLoop()
}

func (m *Mounted[I]) render() {
	if !m.mounted {
		return
	}
	tree := Expand(m.component.Render())
	m.renders++
	m.mu.Lock()
	m.tree = tree
	m.mu.Unlock()
	if m.onRender != nil {
		m.onRender(tree)
	}
}

// Update replaces the inputs of the component and re-renders it.
func (m *Mounted[I]) Update(ctx context.Context, next I) error {
	var err error
	doErr := m.loop.Do(ctx, func() {
		if !m.mounted {
			err = ErrUnmounted
			return
		}
		prev := m.inputs
		m.inputs = next
		m.component.OnInputsChanged(prev, next)
		m.render()
	})
	if doErr != nil {
		return doErr
	}
	return err
}

// Unmount detaches the component. Pending renders are dropped. Unmounting
// twice is a no-op. Once the loop has stopped, ErrLoopStopped is returned;
// the loop has detached the component by then.
func (m *Mounted[I]) Unmount(ctx context.Context) error {
	return m.loop.Do(ctx, m.detach)
}

// Shallow returns the component's current render without expanding the
// element nodes in it.
func (m *Mounted[I]) Shallow(ctx context.Context) (Node, error) {
	var (
		n   Node
		err error
	)
	doErr := m.loop.Do(ctx, func() {
		if !m.mounted {
			err = ErrUnmounted
			return
		}
		n = m.component.Render()
	})
	if doErr != nil {
		return nil, doErr
	}
	return n, err
}

// Tree returns the latest expanded render.
func (m *Mounted[I]) Tree() Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tree
}
