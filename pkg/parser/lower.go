package parser

import (
	"slices"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/syntax"
)

// Tree-sitter Python node types that map one-to-one onto a normalized kind.
var directKinds = map[string]syntax.Kind{
	"block":                    syntax.KindBlock,
	"if_statement":             syntax.KindIf,
	"elif_clause":              syntax.KindElif,
	"else_clause":              syntax.KindElse,
	"for_statement":            syntax.KindFor,
	"while_statement":          syntax.KindWhile,
	"try_statement":            syntax.KindTry,
	"except_clause":            syntax.KindExcept,
	"except_group_clause":      syntax.KindExcept,
	"with_statement":           syntax.KindWith,
	"conditional_expression":   syntax.KindTernary,
	"list_comprehension":       syntax.KindComprehension,
	"set_comprehension":        syntax.KindComprehension,
	"dictionary_comprehension": syntax.KindComprehension,
	"generator_expression":     syntax.KindComprehension,
	"if_clause":                syntax.KindComprehensionIf,
	"expression_statement":     syntax.KindExprStmt,
	"decorator":                syntax.KindDecorator,
	"lambda":                   syntax.KindLambda,
}

// Node types whose identifiers are binding targets when they appear on the
// left-hand side of an assignment.
var targetContainers = map[string]bool{
	"pattern_list":             true,
	"tuple_pattern":            true,
	"list_pattern":             true,
	"list_splat_pattern":       true,
	"tuple":                    true,
	"list":                     true,
	"parenthesized_expression": true,
	"expression_list":          true,
	"as_pattern_target":        true,
}

type lowerer struct {
	src []byte
}

func (l *lowerer) text(n sitter.Node) string {
	start, end := int(n.StartByte()), int(n.EndByte())
	if start < 0 || end > len(l.src) || start > end {
		return ""
	}

	return string(l.src[start:end])
}

func (l *lowerer) span(n sitter.Node) *syntax.Span {
	start := n.StartPoint()
	end := n.EndPoint()

	endLine := int(end.Row) + 1
	// A node ending at column 0 stops before the newline of the previous row.
	if end.Column == 0 && end.Row > start.Row {
		endLine--
	}

	return &syntax.Span{Start: int(start.Row) + 1, End: endLine}
}

// lower converts a tree-sitter node into a normalized node. ctx is the expression
// context applied to bare identifiers reached from this node.
func (l *lowerer) lower(n sitter.Node, ctx syntax.Ctx) *syntax.Node {
	typ := n.Type()

	switch typ {
	case "comment":
		return nil
	case "identifier":
		return &syntax.Node{Kind: syntax.KindName, Type: typ, Name: l.text(n), Ctx: ctx}
	case "function_definition":
		return l.lowerFunction(n)
	case "class_definition":
		return l.lowerClass(n)
	case "decorated_definition":
		return l.lowerDecorated(n)
	case "boolean_operator":
		return l.lowerBoolOp(n)
	case "attribute":
		return l.lowerAttribute(n)
	case "keyword_argument":
		return l.generic(n, typ, l.field(n, "value", syntax.CtxLoad))
	case "import_statement":
		return l.lowerImport(n)
	case "import_from_statement":
		return l.lowerImportFrom(n)
	case "future_import_statement", "global_statement", "nonlocal_statement":
		return &syntax.Node{Kind: syntax.KindOther, Type: typ}
	case "assignment", "augmented_assignment":
		return l.lowerAssignment(n)
	case "named_expression":
		return l.generic(n, typ, l.target(n.ChildByFieldName("name")), l.field(n, "value", syntax.CtxLoad))
	case "for_statement", "for_in_clause":
		return l.lowerFor(n)
	case "as_pattern":
		return l.lowerAsPattern(n)
	case "except_clause", "except_group_clause":
		return l.lowerExcept(n)
	case "string", "concatenated_string":
		return l.lowerString(n)
	case "parameters", "lambda_parameters":
		return l.generic(n, typ, l.lowerParameters(n)...)
	}

	if ctx == syntax.CtxStore && targetContainers[typ] {
		return l.generic(n, typ, l.namedChildren(n, syntax.CtxStore)...)
	}

	kind, ok := directKinds[typ]
	if !ok {
		kind = syntax.KindOther
	}

	out := &syntax.Node{Kind: kind, Type: typ, Children: l.namedChildren(n, syntax.CtxLoad)}
	if kind == syntax.KindBlock {
		out.Span = l.span(n)
	}

	return out
}

func (l *lowerer) generic(n sitter.Node, typ string, children ...*syntax.Node) *syntax.Node {
	kind, ok := directKinds[typ]
	if !ok {
		kind = syntax.KindOther
	}

	return &syntax.Node{Kind: kind, Type: n.Type(), Children: compact(children)}
}

func (l *lowerer) namedChildren(n sitter.Node, ctx syntax.Ctx) []*syntax.Node {
	out := make([]*syntax.Node, 0, n.NamedChildCount())

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if child.IsNull() {
			continue
		}

		if lowered := l.lower(child, ctx); lowered != nil {
			out = append(out, lowered)
		}
	}

	return out
}

func (l *lowerer) field(n sitter.Node, name string, ctx syntax.Ctx) *syntax.Node {
	child := n.ChildByFieldName(name)
	if child.IsNull() {
		return nil
	}

	return l.lower(child, ctx)
}

// target lowers an assignment target. Identifiers and destructuring patterns
// bind; attribute and subscript targets still read their base object.
func (l *lowerer) target(n sitter.Node) *syntax.Node {
	if n.IsNull() {
		return nil
	}

	return l.lower(n, syntax.CtxStore)
}

func (l *lowerer) lowerFunction(n sitter.Node) *syntax.Node {
	fn := &syntax.Node{
		Kind: syntax.KindFunction,
		Type: n.Type(),
		Name: l.text(n.ChildByFieldName("name")),
		Span: l.span(n),
	}

	if params := n.ChildByFieldName("parameters"); !params.IsNull() {
		fn.Children = append(fn.Children, l.lowerParameters(params)...)
	}

	fn.Children = append(fn.Children,
		l.field(n, "return_type", syntax.CtxLoad),
		l.field(n, "body", syntax.CtxLoad),
	)
	fn.Children = compact(fn.Children)

	return fn
}

func (l *lowerer) lowerClass(n sitter.Node) *syntax.Node {
	return &syntax.Node{
		Kind: syntax.KindClass,
		Type: n.Type(),
		Name: l.text(n.ChildByFieldName("name")),
		Span: l.span(n),
		Children: compact([]*syntax.Node{
			l.field(n, "type_parameters", syntax.CtxLoad),
			l.field(n, "superclasses", syntax.CtxLoad),
			l.field(n, "body", syntax.CtxLoad),
		}),
	}
}

// lowerDecorated returns the inner definition with its decorators attached as
// leading children, so decorator references stay inside the definition.
func (l *lowerer) lowerDecorated(n sitter.Node) *syntax.Node {
	def := l.field(n, "definition", syntax.CtxLoad)

	var decorators []*syntax.Node

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if child.Type() == "decorator" {
			decorators = append(decorators, l.lower(child, syntax.CtxLoad))
		}
	}

	if def == nil {
		return &syntax.Node{Kind: syntax.KindOther, Type: n.Type(), Children: compact(decorators)}
	}

	def.Children = append(compact(decorators), def.Children...)

	return def
}

// lowerBoolOp flattens chains of the same operator, so `a and b and c` becomes a
// single node with three operands.
func (l *lowerer) lowerBoolOp(n sitter.Node) *syntax.Node {
	op := l.operator(n)
	out := &syntax.Node{Kind: syntax.KindBoolOp, Type: n.Type()}

	var collect func(sitter.Node)

	collect = func(cur sitter.Node) {
		for _, side := range []string{"left", "right"} {
			operand := cur.ChildByFieldName(side)
			if operand.IsNull() {
				continue
			}

			if operand.Type() == "boolean_operator" && l.operator(operand) == op {
				collect(operand)

				continue
			}

			out.Operands++

			if lowered := l.lower(operand, syntax.CtxLoad); lowered != nil {
				out.Children = append(out.Children, lowered)
			}
		}
	}

	collect(n)

	return out
}

func (l *lowerer) operator(n sitter.Node) string {
	if op := n.ChildByFieldName("operator"); !op.IsNull() {
		return op.Type()
	}

	return ""
}

// lowerAttribute keeps only the object expression; the attribute name itself is
// not a reference.
func (l *lowerer) lowerAttribute(n sitter.Node) *syntax.Node {
	return &syntax.Node{
		Kind:     syntax.KindAttribute,
		Type:     n.Type(),
		Name:     l.text(n.ChildByFieldName("attribute")),
		Children: compact([]*syntax.Node{l.field(n, "object", syntax.CtxLoad)}),
	}
}

func (l *lowerer) lowerAssignment(n sitter.Node) *syntax.Node {
	return &syntax.Node{
		Kind: syntax.KindAssign,
		Type: n.Type(),
		Children: compact([]*syntax.Node{
			l.target(n.ChildByFieldName("left")),
			l.field(n, "type", syntax.CtxLoad),
			l.field(n, "right", syntax.CtxLoad),
		}),
	}
}

func (l *lowerer) lowerFor(n sitter.Node) *syntax.Node {
	kind := syntax.KindOther
	if n.Type() == "for_statement" {
		kind = syntax.KindFor
	}

	return &syntax.Node{
		Kind: kind,
		Type: n.Type(),
		Children: compact([]*syntax.Node{
			l.target(n.ChildByFieldName("left")),
			l.field(n, "right", syntax.CtxLoad),
			l.field(n, "body", syntax.CtxLoad),
			l.field(n, "alternative", syntax.CtxLoad),
		}),
	}
}

// lowerAsPattern handles `with x as y` and `except E as e`: the value is read and
// the alias is bound.
func (l *lowerer) lowerAsPattern(n sitter.Node) *syntax.Node {
	out := &syntax.Node{Kind: syntax.KindOther, Type: n.Type()}

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)

		ctx := syntax.CtxLoad
		if child.Type() == "as_pattern_target" || (idx > 0 && child.Type() == "identifier") {
			ctx = syntax.CtxStore
		}

		if lowered := l.lower(child, ctx); lowered != nil {
			out.Children = append(out.Children, lowered)
		}
	}

	return out
}

// lowerExcept records the identifier following an `as` keyword as the handler's
// name; older grammars emit it as a bare sibling instead of an as_pattern.
func (l *lowerer) lowerExcept(n sitter.Node) *syntax.Node {
	out := &syntax.Node{Kind: syntax.KindExcept, Type: n.Type()}
	afterAs := false

	for idx := range n.ChildCount() {
		child := n.Child(idx)
		if child.IsNull() {
			continue
		}

		if !child.IsNamed() {
			afterAs = child.Type() == "as"

			continue
		}

		ctx := syntax.CtxLoad
		if afterAs {
			ctx = syntax.CtxStore
		}

		afterAs = false

		if lowered := l.lower(child, ctx); lowered != nil {
			out.Children = append(out.Children, lowered)
		}
	}

	out.Name, out.Children = exceptAlias(out.Children)

	return out
}

// exceptAlias detaches the name bound by `except E as name` and returns it with
// the remaining children. The alias names the handler; it is not a variable.
func exceptAlias(children []*syntax.Node) (string, []*syntax.Node) {
	for idx, child := range children {
		if child == nil {
			continue
		}

		if child.Kind == syntax.KindName && child.Ctx == syntax.CtxStore {
			return child.Name, slices.Delete(children, idx, idx+1)
		}

		if child.Type == "as_pattern" || child.Type == "as_pattern_target" {
			if name, rest := exceptAlias(child.Children); name != "" {
				child.Children = rest

				return name, children
			}
		}
	}

	return "", children
}

// lowerString marks plain, non-empty str literals. Formatted strings keep their
// interpolations as ordinary expressions and bytes literals are inert.
func (l *lowerer) lowerString(n sitter.Node) *syntax.Node {
	if n.Type() == "concatenated_string" {
		parts := l.namedChildren(n, syntax.CtxLoad)
		for _, part := range parts {
			if part.Kind != syntax.KindStringLiteral {
				return &syntax.Node{Kind: syntax.KindOther, Type: n.Type(), Children: parts}
			}
		}

		return &syntax.Node{Kind: syntax.KindStringLiteral, Type: n.Type()}
	}

	raw := l.text(n)
	prefix := strings.ToLower(raw[:strings.IndexAny(raw+"'", `'"`)])

	if strings.ContainsAny(prefix, "fbt") {
		return &syntax.Node{Kind: syntax.KindOther, Type: n.Type(), Children: l.namedChildren(n, syntax.CtxLoad)}
	}

	if strings.TrimSpace(strings.Trim(raw[len(prefix):], `'"`)) == "" {
		return &syntax.Node{Kind: syntax.KindOther, Type: n.Type()}
	}

	return &syntax.Node{Kind: syntax.KindStringLiteral, Type: n.Type()}
}

// lowerParameters emits one Parameter node per declared name. Defaults and
// annotations are kept as children of the parameter.
func (l *lowerer) lowerParameters(n sitter.Node) []*syntax.Node {
	var out []*syntax.Node

	for idx := range n.NamedChildCount() {
		if param := l.lowerParameter(n.NamedChild(idx)); param != nil {
			out = append(out, param)
		}
	}

	return out
}

func (l *lowerer) lowerParameter(n sitter.Node) *syntax.Node {
	param := &syntax.Node{Kind: syntax.KindParameter, Type: n.Type()}

	switch n.Type() {
	case "identifier":
		param.Name = l.text(n)
	case "list_splat_pattern", "dictionary_splat_pattern":
		param.Name = l.firstIdentifier(n)
	case "default_parameter", "typed_default_parameter":
		param.Name = l.firstIdentifier(n.ChildByFieldName("name"))
		param.Children = compact([]*syntax.Node{
			l.field(n, "type", syntax.CtxLoad),
			l.field(n, "value", syntax.CtxLoad),
		})
	case "typed_parameter":
		for idx := range n.NamedChildCount() {
			child := n.NamedChild(idx)
			if child.Type() != "type" {
				param.Name = l.firstIdentifier(child)

				break
			}
		}

		param.Children = compact([]*syntax.Node{l.field(n, "type", syntax.CtxLoad)})
	default:
		// Separators such as `*` and `/`.
		return nil
	}

	if param.Name == "" {
		return nil
	}

	return param
}

func (l *lowerer) firstIdentifier(n sitter.Node) string {
	if n.IsNull() {
		return ""
	}

	if n.Type() == "identifier" {
		return l.text(n)
	}

	for idx := range n.NamedChildCount() {
		if name := l.firstIdentifier(n.NamedChild(idx)); name != "" {
			return name
		}
	}

	return ""
}

// lowerImport emits one Import node per bound name: the alias when present,
// otherwise the first component of the dotted module path.
func (l *lowerer) lowerImport(n sitter.Node) *syntax.Node {
	out := &syntax.Node{Kind: syntax.KindOther, Type: n.Type(), Span: l.span(n)}

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)

		module, alias := l.importName(child)
		if module == "" {
			continue
		}

		bound := alias
		if bound == "" {
			bound, _, _ = strings.Cut(module, ".")
		}

		out.Children = append(out.Children, &syntax.Node{
			Kind:   syntax.KindImport,
			Type:   child.Type(),
			Name:   bound,
			Module: module,
			Span:   l.span(child),
		})
	}

	return out
}

func (l *lowerer) lowerImportFrom(n sitter.Node) *syntax.Node {
	out := &syntax.Node{Kind: syntax.KindOther, Type: n.Type(), Span: l.span(n)}
	moduleNode := n.ChildByFieldName("module_name")
	module := l.text(moduleNode)

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if sameNode(child, moduleNode) {
			continue
		}

		if child.Type() == "wildcard_import" {
			out.Children = append(out.Children, &syntax.Node{
				Kind:   syntax.KindWildcardImport,
				Type:   child.Type(),
				Module: module,
				Span:   l.span(child),
			})

			continue
		}

		name, alias := l.importName(child)
		if name == "" {
			continue
		}

		bound := alias
		if bound == "" {
			bound = name
		}

		out.Children = append(out.Children, &syntax.Node{
			Kind:   syntax.KindImportFrom,
			Type:   child.Type(),
			Name:   bound,
			Module: module,
			Span:   l.span(child),
		})
	}

	return out
}

func (l *lowerer) importName(n sitter.Node) (name, alias string) {
	switch n.Type() {
	case "dotted_name", "identifier":
		return l.text(n), ""
	case "aliased_import":
		return l.text(n.ChildByFieldName("name")), l.text(n.ChildByFieldName("alias"))
	}

	return "", ""
}

func sameNode(a, b sitter.Node) bool {
	if a.IsNull() || b.IsNull() {
		return false
	}

	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func compact(nodes []*syntax.Node) []*syntax.Node {
	out := nodes[:0]

	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}

	if len(out) == 0 {
		return nil
	}

	return out
}
