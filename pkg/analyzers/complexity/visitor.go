package complexity

import (
	"strings"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/syntax"
)

const anonymousFunctionName = "<anonymous>"

// Function is a function or method definition found in a module.
type Function struct {
	QualifiedName string
	Name          string
	Node          *syntax.Node
}

// FunctionMetrics pairs a function with its computed metrics.
type FunctionMetrics struct {
	Function
	Metrics
	Line int
}

// Diagnostic records a function whose metrics were skipped.
type Diagnostic struct {
	QualifiedName string
	Err           error
}

// Result is the output of Extract for one module.
type Result struct {
	Functions   []FunctionMetrics
	Diagnostics []Diagnostic
}

// Visitor discovers definitions and tracks the enclosing scope so every function
// gets a dotted qualified name such as Outer.method.inner.
type Visitor struct {
	scopes    []string
	functions []Function
}

// NewVisitor creates a new Visitor.
func NewVisitor() *Visitor {
	return &Visitor{}
}

// OnEnter is called when entering a node during traversal.
func (v *Visitor) OnEnter(n *syntax.Node) {
	switch syntax.KindOf(n) {
	case syntax.KindFunction:
		name, ok := syntax.BoundName(n)
		if !ok {
			name = anonymousFunctionName
		}

		v.functions = append(v.functions, Function{
			QualifiedName: v.qualify(name),
			Name:          name,
			Node:          n,
		})
		v.scopes = append(v.scopes, name)
	case syntax.KindClass:
		name, ok := syntax.BoundName(n)
		if !ok {
			name = anonymousFunctionName
		}

		v.scopes = append(v.scopes, name)
	default:
	}
}

// OnExit is called when leaving a node during traversal.
func (v *Visitor) OnExit(n *syntax.Node) {
	if syntax.KindOf(n).IsScope() && len(v.scopes) > 0 {
		v.scopes = v.scopes[:len(v.scopes)-1]
	}
}

// Functions returns the discovered functions in source order.
func (v *Visitor) Functions() []Function {
	return v.functions
}

func (v *Visitor) qualify(name string) string {
	if len(v.scopes) == 0 {
		return name
	}

	return strings.Join(v.scopes, ".") + "." + name
}

// NodeVisitor receives enter and exit callbacks during Traverse.
type NodeVisitor interface {
	OnEnter(n *syntax.Node)
	OnExit(n *syntax.Node)
}

// Traverse drives visitor over the tree rooted at root in depth-first order.
func Traverse(root *syntax.Node, visitor NodeVisitor) {
	if root == nil {
		return
	}

	visitor.OnEnter(root)

	for _, child := range root.Children {
		Traverse(child, visitor)
	}

	visitor.OnExit(root)
}

// Discover returns every function definition under root, including methods and
// nested functions, in source order.
func Discover(root *syntax.Node) []Function {
	v := NewVisitor()
	Traverse(root, v)

	return v.Functions()
}

// Extract discovers and measures every function under root. A function without a
// usable span is reported as a diagnostic; the others are still measured.
func Extract(root *syntax.Node) Result {
	var result Result

	for _, fn := range Discover(root) {
		metrics, err := Compute(fn.Node)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{QualifiedName: fn.QualifiedName, Err: err})

			continue
		}

		result.Functions = append(result.Functions, FunctionMetrics{
			Function: fn,
			Metrics:  metrics,
			Line:     fn.Node.Span.Start,
		})
	}

	return result
}
