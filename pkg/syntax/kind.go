// Package syntax provides the normalized syntax tree consumed by the metric
// extractors: a closed set of node kinds, line spans, bound names and a
// pre-order walker.
package syntax

import (
	"fmt"
)

// Kind is the normalized node kind. Kinds not listed here collapse into KindOther,
// which every extractor treats as structurally inert.
type Kind uint8

// Node kinds.
const (
	KindOther Kind = iota
	KindModule
	KindClass
	KindFunction
	KindLambda
	KindBlock
	KindIf
	KindElif
	KindElse
	KindFor
	KindWhile
	KindTry
	KindExcept
	KindWith
	KindTernary
	KindComprehension
	KindComprehensionIf
	KindBoolOp
	KindImport
	KindImportFrom
	KindWildcardImport
	KindName
	KindAttribute
	KindDecorator
	KindParameter
	KindExprStmt
	KindStringLiteral
	KindAssign

	kindCount
)

var kindNames = [kindCount]string{
	KindOther:           "Other",
	KindModule:          "Module",
	KindClass:           "Class",
	KindFunction:        "Function",
	KindLambda:          "Lambda",
	KindBlock:           "Block",
	KindIf:              "If",
	KindElif:            "Elif",
	KindElse:            "Else",
	KindFor:             "For",
	KindWhile:           "While",
	KindTry:             "Try",
	KindExcept:          "Except",
	KindWith:            "With",
	KindTernary:         "Ternary",
	KindComprehension:   "Comprehension",
	KindComprehensionIf: "ComprehensionIf",
	KindBoolOp:          "BoolOp",
	KindImport:          "Import",
	KindImportFrom:      "ImportFrom",
	KindWildcardImport:  "WildcardImport",
	KindName:            "Name",
	KindAttribute:       "Attribute",
	KindDecorator:       "Decorator",
	KindParameter:       "Parameter",
	KindExprStmt:        "ExprStmt",
	KindStringLiteral:   "StringLiteral",
	KindAssign:          "Assign",
}

var kindByName = func() map[string]Kind {
	out := make(map[string]Kind, kindCount)

	for k := range kindCount {
		out[kindNames[k]] = k
	}

	return out
}()

// String returns the kind name.
func (k Kind) String() string {
	if k >= kindCount {
		return kindNames[KindOther]
	}

	return kindNames[k]
}

// ParseKind maps a kind name to a Kind. Unknown names yield KindOther.
func ParseKind(name string) Kind {
	if k, ok := kindByName[name]; ok {
		return k
	}

	return KindOther
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unrecognized kinds decode
// as KindOther so trees from newer front ends still load.
func (k *Kind) UnmarshalText(text []byte) error {
	*k = ParseKind(string(text))

	return nil
}

// IsDefinition reports whether nodes of this kind carry a definition span.
func (k Kind) IsDefinition() bool {
	return k == KindModule || k == KindClass || k == KindFunction
}

// IsScope reports whether nodes of this kind open an independent metric scope.
// Function metrics never descend into a nested scope.
func (k Kind) IsScope() bool {
	return k == KindClass || k == KindFunction
}

// Ctx is the expression context of a name.
type Ctx uint8

// Expression contexts.
const (
	CtxLoad Ctx = iota
	CtxStore
)

// String returns the context name.
func (c Ctx) String() string {
	if c == CtxStore {
		return "store"
	}

	return "load"
}

// MarshalText implements encoding.TextMarshaler.
func (c Ctx) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Ctx) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "load":
		*c = CtxLoad
	case "store":
		*c = CtxStore
	default:
		return fmt.Errorf("%w: unknown ctx %q", ErrMalformedTree, text)
	}

	return nil
}
