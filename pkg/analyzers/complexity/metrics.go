// Package complexity computes per-function structural metrics: cyclomatic
// complexity, physical length and maximum nesting depth.
package complexity

import (
	"github.com/Sumatoshi-tech/cyclocalc/pkg/syntax"
)

// Baseline cyclomatic complexity of a function with a single path.
const baseComplexity = 1

// Metrics holds the structural metrics of one function.
type Metrics struct {
	CC   int `json:"cc"   yaml:"cc"`
	LEN  int `json:"len"  yaml:"len"`
	NEST int `json:"nest" yaml:"nest"`
}

// decisionKinds are the nodes that add one independent path each.
var decisionKinds = map[syntax.Kind]bool{
	syntax.KindIf:              true,
	syntax.KindElif:            true,
	syntax.KindFor:             true,
	syntax.KindWhile:           true,
	syntax.KindExcept:          true,
	syntax.KindWith:            true,
	syntax.KindTernary:         true,
	syntax.KindComprehensionIf: true,
}

// IsDecision reports whether kind adds a path to cyclomatic complexity.
func IsDecision(kind syntax.Kind) bool {
	return decisionKinds[kind]
}

// nestingKinds are the compound statements whose sub-body is one level deeper.
// Expressions never nest; elif and except clauses sit at the depth of the if or
// try that owns them.
var nestingKinds = map[syntax.Kind]bool{
	syntax.KindIf:    true,
	syntax.KindFor:   true,
	syntax.KindWhile: true,
	syntax.KindWith:  true,
	syntax.KindTry:   true,
}

// IsNesting reports whether kind opens a nested control block.
func IsNesting(kind syntax.Kind) bool {
	return nestingKinds[kind]
}

// Compute returns the metrics of a function node. It fails with
// syntax.ErrMalformedTree when the definition has no usable span.
func Compute(fn *syntax.Node) (Metrics, error) {
	start, end, err := syntax.SpanOf(fn)
	if err != nil {
		return Metrics{}, err
	}

	return Metrics{
		CC:   Cyclomatic(fn),
		LEN:  end - start + 1,
		NEST: Nesting(fn),
	}, nil
}

// Cyclomatic returns 1 plus one per decision node plus (k-1) per boolean operator
// with k operands. Nested function and class definitions are not descended into.
func Cyclomatic(fn *syntax.Node) int {
	cc := baseComplexity

	for _, child := range syntax.Children(fn) {
		syntax.Walk(child, func(n *syntax.Node) bool {
			kind := syntax.KindOf(n)
			if kind.IsScope() {
				return false
			}

			if IsDecision(kind) {
				cc++
			}

			if kind == syntax.KindBoolOp && n.Operands > 1 {
				cc += n.Operands - 1
			}

			return true
		})
	}

	return cc
}

// Nesting returns the maximum control-block depth reached inside fn.
func Nesting(fn *syntax.Node) int {
	return nestingFrom(fn, 0)
}

func nestingFrom(n *syntax.Node, depth int) int {
	deepest := depth

	for _, child := range syntax.Children(n) {
		kind := syntax.KindOf(child)
		if kind.IsScope() {
			continue
		}

		next := depth
		if IsNesting(kind) {
			next++
		}

		deepest = max(deepest, nestingFrom(child, next))
	}

	return deepest
}
