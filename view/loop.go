// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package view

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"sync/atomic"

	"github.com/petermattis/goid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrLoopStopped is returned when work is submitted to a loop that is no
// longer running.
var ErrLoopStopped = errors.New("view: loop stopped")

type taskKey struct {
	// seq identifies a one-off task. Zero for coalesced tasks.
	seq uint64

	// owner identifies a coalesced task, e.g. the render of a mounted
	// component.
	owner any
}

type task struct {
	fn      func()
	limited bool
}

// Loop is a single-goroutine event loop. Every lifecycle callback and state
// mutation of mounted components runs on it, so component state needs no
// locking.
type Loop struct {
	log     *zap.Logger
	queue   *coalescingQueue[taskKey, task]
	seq     atomic.Uint64
	gid     atomic.Int64
	limiter *rate.Limiter
	running atomic.Bool

	// attached holds the detach functions of the mounted components,
	// keyed by owner. Only accessed from the loop.
	attached  map[any]attachment
	attachSeq uint64
}

type attachment struct {
	seq    uint64
	detach func()
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLogger sets the logger of the loop.
func WithLogger(log *zap.Logger) LoopOption {
	return func(l *Loop) { l.log = log }
}

// WithRenderLimit limits how often coalesced tasks (renders) run. Other
// tasks are not limited. A burst below one is raised to one.
func WithRenderLimit(perSecond float64, burst int) LoopOption {
	return func(l *Loop) {
		burst = max(burst, 1)
		l.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewLoop creates a loop. It does nothing until Run is called.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		log:      zap.NewNop(),
		queue:    newCoalescingQueue[taskKey, task](0),
		attached: map[any]attachment{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run processes tasks on the calling goroutine until 'ctx' is cancelled.
// Tasks queued before cancellation are still run. Components still mounted
// after that are detached, most recently mounted first. Run can only be
// called once.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return errors.New("view: loop already running")
	}
	l.gid.Store(goid.Get())
	defer l.gid.Store(0)

	stop := context.AfterFunc(ctx, l.queue.Close)
	defer stop()

	l.log.Debug("Event loop started")
	for {
		key, t, ok := l.queue.Pop()
		if !ok {
			break
		}
		if t.limited && l.limiter != nil {
			// Waiting on a cancelled context returns immediately; the
			// remaining tasks still run.
			_ = l.limiter.Wait(ctx)
		}
		l.run(key, t.fn)
	}
	l.detachAll()
	l.log.Debug("Event loop stopped")
	return ctx.Err()
}

func (l *Loop) run(key taskKey, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("Task panicked",
				zap.Any("panic", r),
				zap.Uint64("seq", key.seq),
				zap.String("owner", fmt.Sprintf("%T", key.owner)),
				zap.ByteString("stack", debug.Stack()))
		}
	}()
	fn()
}

// attach registers the detach function of a mounted component. Must be
// called on the loop.
func (l *Loop) attach(owner any, detach func()) {
	l.attachSeq++
	l.attached[owner] = attachment{seq: l.attachSeq, detach: detach}
}

// release forgets the component registered under 'owner'. Must be called
// on the loop.
func (l *Loop) release(owner any) {
	delete(l.attached, owner)
}

func (l *Loop) detachAll() {
	if len(l.attached) == 0 {
		return
	}
	remaining := make([]attachment, 0, len(l.attached))
	for _, a := range l.attached {
		remaining = append(remaining, a)
	}
	slices.SortFunc(remaining, func(a, b attachment) int {
		return cmp.Compare(b.seq, a.seq)
	})
	l.log.Debug("Detaching components left mounted", zap.Int("count", len(remaining)))
	for _, a := range remaining {
		l.run(taskKey{}, a.detach)
	}
	clear(l.attached)
}

// Post queues 'fn' to run on the loop. Tasks run in the order they were
// posted. Returns false if the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	return l.queue.Push(taskKey{seq: l.seq.Add(1)}, task{fn: fn})
}

// schedule queues 'fn' under 'owner'. If a task for 'owner' is already
// queued it is replaced by 'fn' but keeps its place.
func (l *Loop) schedule(owner any, fn func()) bool {
	return l.queue.Push(taskKey{owner: owner}, task{fn: fn, limited: true})
}

// Do runs 'fn' on the loop and waits for it to finish. If called from the
// loop itself 'fn' runs immediately.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	if l.OnLoop() {
		fn()
		return nil
	}
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrLoopStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnLoop reports whether the caller is running on the loop goroutine.
func (l *Loop) OnLoop() bool {
	gid := l.gid.Load()
	return gid != 0 && gid == goid.Get()
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	return l.queue.Len()
}
