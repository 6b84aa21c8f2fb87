// Package parser turns Python source into the normalized syntax tree using the
// tree-sitter Python grammar.
package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alexaandru/go-sitter-forest/python"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/syntax"
)

// Sentinel errors for parser operations.
var (
	// ErrParse is returned when the source contains syntax errors.
	ErrParse = errors.New("parse error")

	errNoRootNode = errors.New("parser: no root node")
	errPoolType   = errors.New("parser: pool returned unexpected type")
)

// Extensions lists the file extensions handled by the parser.
var Extensions = []string{".py", ".pyi"}

// Supports reports whether path has a Python extension.
func Supports(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))

	for _, candidate := range Extensions {
		if ext == candidate {
			return true
		}
	}

	return false
}

// Parser parses Python source. It is safe for concurrent use; each call borrows a
// tree-sitter parser from an internal pool.
type Parser struct {
	language *sitter.Language
	pool     sync.Pool
}

// New creates a Parser for the Python grammar.
func New() *Parser {
	lang := sitter.NewLanguage(python.GetLanguage())

	p := &Parser{language: lang}
	p.pool = sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(lang)

			return tsParser
		},
	}

	return p
}

// Parse parses content and returns the normalized module node. The module span
// covers every physical line of the file.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*syntax.Node, error) {
	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer p.pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	if root.HasError() {
		line := firstErrorLine(root)

		return nil, fmt.Errorf("%w: %s: invalid syntax near line %d", ErrParse, path, line)
	}

	l := &lowerer{src: content}
	module := l.lower(root, syntax.CtxLoad)
	module.Kind = syntax.KindModule
	module.Span = &syntax.Span{Start: 1, End: max(1, CountLines(content))}

	return module, nil
}

// CountLines returns the number of physical lines in content, counting a final
// line without a trailing newline.
func CountLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}

	n := bytes.Count(content, []byte{'\n'})
	if content[len(content)-1] != '\n' {
		n++
	}

	return n
}

func firstErrorLine(root sitter.Node) int {
	stack := []sitter.Node{root}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current.IsError() || current.IsMissing() {
			return int(current.StartPoint().Row) + 1
		}

		for idx := current.ChildCount(); idx > 0; idx-- {
			child := current.Child(idx - 1)
			if !child.IsNull() && child.HasError() {
				stack = append(stack, child)
			}
		}
	}

	return int(root.StartPoint().Row) + 1
}
