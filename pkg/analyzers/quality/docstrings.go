package quality

import (
	"github.com/Sumatoshi-tech/cyclocalc/pkg/syntax"
)

// DocstringCoverage returns the share of definitions whose first body statement
// is a bare string literal. The module counts as one definition.
func DocstringCoverage(root *syntax.Node) float64 {
	if root == nil {
		return 0
	}

	total, documented := 1, 0
	if hasDocstring(syntax.Children(root)) {
		documented++
	}

	syntax.Walk(root, func(n *syntax.Node) bool {
		kind := syntax.KindOf(n)
		if kind != syntax.KindFunction && kind != syntax.KindClass {
			return true
		}

		total++

		if hasDocstring(syntax.Children(syntax.Body(n))) {
			documented++
		}

		return true
	})

	return ratio(documented, total)
}

func hasDocstring(statements []*syntax.Node) bool {
	if len(statements) == 0 {
		return false
	}

	first := statements[0]
	if syntax.KindOf(first) != syntax.KindExprStmt {
		return false
	}

	children := syntax.Children(first)

	return len(children) == 1 && syntax.KindOf(children[0]) == syntax.KindStringLiteral
}
