package syntax

import (
	"errors"
	"fmt"
)

// ErrMalformedTree is returned when a definition node lacks a usable line span.
var ErrMalformedTree = errors.New("malformed tree")

// Span is a 1-based inclusive line range.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Lines returns the number of physical lines covered by the span.
func (s Span) Lines() int {
	return s.End - s.Start + 1
}

// Node is a normalized syntax tree node.
//
// Fields:
//
//	Kind: normalized kind; unknown front-end node types map to KindOther.
//	Type: the raw front-end node type, kept for diagnostics.
//	Name: bound identifier for definitions, names, parameters and imports.
//	Module: imported module for ImportFrom and WildcardImport nodes.
//	Span: line span; required for definition kinds, optional otherwise.
//	Ctx: load or store, meaningful for Name nodes.
//	Operands: operand count of a flattened BoolOp.
//	Children: ordered child nodes.
type Node struct {
	Kind     Kind    `json:"kind"`
	Type     string  `json:"type,omitempty"`
	Name     string  `json:"name,omitempty"`
	Module   string  `json:"module,omitempty"`
	Span     *Span   `json:"span,omitempty"`
	Ctx      Ctx     `json:"ctx,omitempty"`
	Operands int     `json:"operands,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Children returns the ordered children of node. A nil node has no children.
func Children(node *Node) []*Node {
	if node == nil {
		return nil
	}

	return node.Children
}

// KindOf returns the kind of node, or KindOther for nil.
func KindOf(node *Node) Kind {
	if node == nil || node.Kind >= kindCount {
		return KindOther
	}

	return node.Kind
}

// SpanOf returns the inclusive line span of node. It fails with ErrMalformedTree
// when the span is absent or inverted.
func SpanOf(node *Node) (start, end int, err error) {
	if node == nil || node.Span == nil {
		return 0, 0, fmt.Errorf("%w: %s has no span", ErrMalformedTree, describe(node))
	}

	if node.Span.Start < 1 || node.Span.End < node.Span.Start {
		return 0, 0, fmt.Errorf("%w: %s has invalid span %d-%d",
			ErrMalformedTree, describe(node), node.Span.Start, node.Span.End)
	}

	return node.Span.Start, node.Span.End, nil
}

// BoundName returns the identifier bound by node, if any.
func BoundName(node *Node) (string, bool) {
	if node == nil || node.Name == "" {
		return "", false
	}

	return node.Name, true
}

// Body returns the block child of a definition, or nil when there is none.
func Body(node *Node) *Node {
	for _, child := range Children(node) {
		if KindOf(child) == KindBlock {
			return child
		}
	}

	return nil
}

// Walk visits node and its descendants in pre-order. When visit returns false the
// children of that node are skipped.
func Walk(node *Node, visit func(*Node) bool) {
	if node == nil {
		return
	}

	stack := []*Node{node}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !visit(current) {
			continue
		}

		children := current.Children
		for i := len(children) - 1; i >= 0; i-- {
			if children[i] != nil {
				stack = append(stack, children[i])
			}
		}
	}
}

// Collect returns every node of the given kind in pre-order.
func Collect(root *Node, kind Kind) []*Node {
	matches := []*Node{}

	Walk(root, func(n *Node) bool {
		if n.Kind == kind {
			matches = append(matches, n)
		}

		return true
	})

	return matches
}

func describe(node *Node) string {
	if node == nil {
		return "nil node"
	}

	if node.Name != "" {
		return fmt.Sprintf("%s %q", KindOf(node), node.Name)
	}

	return KindOf(node).String()
}
