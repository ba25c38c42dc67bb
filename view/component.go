// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

package view

// Component is a pure presentation component: it renders props into a node
// tree and holds no state of its own.
type Component[P any] interface {
	Name() string
	Render(props P) Node
}

type funcComponent[P any] struct {
	name   string
	render func(P) Node
}

func (c funcComponent[P]) Name() string        { return c.name }
func (c funcComponent[P]) Render(props P) Node { return c.render(props) }

// Func creates a component from a render function.
func Func[P any](name string, render func(P) Node) Component[P] {
	return funcComponent[P]{name, render}
}

// Handle is the host side of a mounted stateful component.
type Handle interface {
	// Dispatch runs 'fn' on the event loop. Returns false if the loop has
	// stopped and 'fn' will never run.
	Dispatch(fn func()) bool

	// Invalidate requests a re-render. Requests are coalesced until the
	// render has happened.
	Invalidate()

	// OnLoop reports whether the caller is running on the event loop.
	OnLoop() bool
}

// Stateful is a component with local state and lifecycle callbacks. All
// methods are called from the event loop.
type Stateful[I any] interface {
	// Bind is called once before OnAttach with the handle of the host.
	Bind(h Handle)

	// OnAttach is called after the component has been mounted with its
	// initial inputs.
	OnAttach(inputs I)

	// OnInputsChanged is called when the host replaces the inputs.
	OnInputsChanged(prev, next I)

	// OnDetach is called once when the component is permanently removed.
	OnDetach()

	// Render returns the current shallow render of the component.
	Render() Node
}
