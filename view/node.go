// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

// Package view is a minimal rendering host: a tree of nodes produced by
// components, and an event loop that drives stateful components through
// their lifecycle.
package view

import (
	"fmt"
	"html"
	"reflect"
	"strings"
)

// Node is an element of a rendered tree: a TextNode, a TagNode or an
// ElementNode.
type Node interface {
	isNode()
}

// TextNode is literal text.
type TextNode string

// TagNode is a named container, e.g. <p>...</p>.
type TagNode struct {
	Name     string
	Children []Node
}

// ElementNode is an unexpanded component instance: the component's name and
// the props it will be rendered with. Shallow renders stop at element nodes,
// Expand renders them.
type ElementNode struct {
	Type  string
	Props any

	render func() Node
}

func (TextNode) isNode()    {}
func (TagNode) isNode()     {}
func (ElementNode) isNode() {}

// Text creates a text node.
func Text(s string) Node {
	return TextNode(s)
}

// Tag creates a tag node with the given children.
func Tag(name string, children ...Node) Node {
	return TagNode{Name: name, Children: children}
}

// Elem creates an element node for rendering 'c' with 'props'.
func Elem[P any](c Component[P], props P) Node {
	return ElementNode{
		Type:   c.Name(),
		Props:  props,
		render: func() Node { return c.Render(props) },
	}
}

// Expand renders all element nodes in 'n' recursively, producing a tree of
// only text and tag nodes.
func Expand(n Node) Node {
	switch n := n.(type) {
	case ElementNode:
		if n.render == nil {
			return nil
		}
		return Expand(n.render())
	case TagNode:
		children := make([]Node, 0, len(n.Children))
		for _, c := range n.Children {
			if c = Expand(c); c != nil {
				children = append(children, c)
			}
		}
		return TagNode{Name: n.Name, Children: children}
	default:
		return n
	}
}

// Contains reports whether 'n' or any of its descendants is an element node
// of component type 'typ' with props deeply equal to 'props'. Element nodes
// are not expanded.
func Contains(n Node, typ string, props any) bool {
	switch n := n.(type) {
	case ElementNode:
		return n.Type == typ && reflect.DeepEqual(n.Props, props)
	case TagNode:
		for _, c := range n.Children {
			if Contains(c, typ, props) {
				return true
			}
		}
	}
	return false
}

// Format renders 'n' as markup. Element nodes that were not expanded are
// shown as <Type {props}/>.
func Format(n Node) string {
	var b strings.Builder
	format(&b, n)
	return b.String()
}

func format(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case nil:
	case TextNode:
		b.WriteString(html.EscapeString(string(n)))
	case TagNode:
		fmt.Fprintf(b, "<%s>", n.Name)
		for _, c := range n.Children {
			format(b, c)
		}
		fmt.Fprintf(b, "</%s>", n.Name)
	case ElementNode:
		fmt.Fprintf(b, "<%s %+v/>", n.Type, n.Props)
	}
}
