// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package observe

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joamaki/observe/stream"
	"github.com/joamaki/observe/view"
)

// Inputs are the inputs of a lifted component.
type Inputs[T any] struct {
	Observable stream.Observable[T]
}

// Option configures a Factory.
type Option func(*options)

type options struct {
	name string
	log  *zap.Logger
}

// WithName overrides the component name used in logs. Defaults to the name
// of the wrapped component.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger used by the lifted components.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// Factory creates lifted components for one presentation component.
type Factory[T, P any] struct {
	name           string
	log            *zap.Logger
	mapEmitToProps func(T) P
	component      view.Component[P]
}

// Lift returns a decorator that wraps a presentation component so that it
// is rendered with mapEmitToProps applied to the values of an observable.
// The wrapped component does not need to know about the observable.
//
//	lifted := observe.Lift(toProps)(Dumper).New()
//	m, err := view.Mount(ctx, loop, lifted, observe.Inputs[Tick]{Observable: ticks})
func Lift[T, P any](mapEmitToProps func(T) P, opts ...Option) func(view.Component[P]) *Factory[T, P] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return func(c view.Component[P]) *Factory[T, P] {
		name := o.name
		if name == "" {
			name = "Lifted(" + c.Name() + ")"
		}
		log := o.log
		if log == nil {
			log = zap.NewNop()
		}
		return &Factory[T, P]{
			name:           name,
			log:            log.With(zap.String("component", name)),
			mapEmitToProps: mapEmitToProps,
			component:      c,
		}
	}
}

// Name returns the name of the lifted component.
func (f *Factory[T, P]) Name() string {
	return f.name
}

// New creates a lifted component instance in its initial state: zero props,
// no error and no subscription.
func (f *Factory[T, P]) New() *Lifted[T, P] {
	id := uuid.New()
	return &Lifted[T, P]{
		factory: f,
		id:      id,
		log:     f.log.With(zap.Stringer("instance", id)),
	}
}

// Lifted is a stateful component that renders the wrapped component with the
// latest mapped value of its observable input.
type Lifted[T, P any] struct {
	factory *Factory[T, P]
	id      uuid.UUID
	log     *zap.Logger
	host    view.Handle

	state        State[P]
	subscription *stream.Subscription
}

var _ view.Stateful[Inputs[int]] = &Lifted[int, int]{}
var _ Target[int] = &Lifted[int, int]{}

// ID returns the unique id of this instance.
func (l *Lifted[T, P]) ID() uuid.UUID {
	return l.id
}

// Bind implements view.Stateful.
func (l *Lifted[T, P]) Bind(h view.Handle) {
	l.host = h
}

// OnAttach implements view.Stateful.
func (l *Lifted[T, P]) OnAttach(in Inputs[T]) {
	l.subscription = Subscribe[P](l, l.mapped(in.Observable))
	l.log.Debug("Subscribed")
}

// OnInputsChanged implements view.Stateful. The subscription is replaced
// only if the observable is a different instance.
func (l *Lifted[T, P]) OnInputsChanged(prev, next Inputs[T]) {
	if stream.Same(prev.Observable, next.Observable) {
		return
	}
	l.unsubscribe()
	if l.state.Err != nil {
		l.log.Debug("Clearing error of replaced observable", zap.Error(l.state.Err))
		l.SetState(func(s *State[P]) { s.Err = nil })
	}
	l.subscription = Subscribe[P](l, l.mapped(next.Observable))
	l.log.Debug("Resubscribed to new observable")
}

// OnDetach implements view.Stateful.
func (l *Lifted[T, P]) OnDetach() {
	l.unsubscribe()
	l.log.Debug("Unsubscribed")
}

func (l *Lifted[T, P]) unsubscribe() {
	if l.subscription != nil {
		l.subscription.Unsubscribe()
		l.subscription = nil
	}
}

func (l *Lifted[T, P]) mapped(src stream.Observable[T]) stream.Observable[P] {
	if src == nil {
		return nil
	}
	return stream.Map(src, l.factory.mapEmitToProps)
}

// Render implements view.Stateful. A failed observable renders as
// <b>error</b>, otherwise the wrapped component is rendered with the latest
// props.
func (l *Lifted[T, P]) Render() view.Node {
	if err := l.state.Err; err != nil {
		return view.Tag("b", view.Text(err.Error()))
	}
	return view.Elem(l.factory.component, l.state.EmitProps)
}

// Dispatch implements Target.
func (l *Lifted[T, P]) Dispatch(fn func()) bool {
	if l.host == nil {
		l.log.Error("Dispatch on unbound component")
		return false
	}
	return l.host.Dispatch(fn)
}

// SetState implements Target.
func (l *Lifted[T, P]) SetState(update func(*State[P])) {
	if l.host != nil && !l.host.OnLoop() {
		l.log.Error("SetState called outside of the event loop")
	}
	hadErr := l.state.Err != nil
	update(&l.state)
	if !hadErr && l.state.Err != nil {
		l.log.Warn("Observable failed", zap.Error(l.state.Err))
	}
	if l.host != nil {
		l.host.Invalidate()
	}
}

// Logger implements Target.
func (l *Lifted[T, P]) Logger() *zap.Logger {
	return l.log
}

// State returns the current emission state. Only call from the loop.
func (l *Lifted[T, P]) State() State[P] {
	return l.state
}

// Subscription returns the current subscription, or nil if there is none.
// Only call from the loop.
func (l *Lifted[T, P]) Subscription() *stream.Subscription {
	return l.subscription
}
