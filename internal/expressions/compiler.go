// Package expressions compiles output column expressions such as
// "2.0*ra + dra" with github.com/expr-lang/expr.
//
// Expressions are parsed once, when a catalog is registered. Identifiers
// name raw columns or earlier output columns of the same catalog.
package expressions

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/ports/driven"
)

// Ensure Compiler implements the interface.
var _ driven.ExpressionCompiler = (*Compiler)(nil)

// Compiler compiles expressions and caches them by source text, so catalogs
// sharing an expression share the compiled program.
type Compiler struct {
	mu    sync.Mutex
	cache map[string]*Expression
}

// NewCompiler creates a compiler.
func NewCompiler() *Compiler {
	return &Compiler{cache: make(map[string]*Expression)}
}

// Compile parses and compiles source.
func (c *Compiler) Compile(source string) (driven.Expression, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.cache[source]; ok {
		return e, nil
	}

	tree, err := parser.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: expression %q: %v", domain.ErrInvalidInput, source, err)
	}

	program, err := expr.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: expression %q: %v", domain.ErrInvalidInput, source, err)
	}

	e := &Expression{
		source:      source,
		program:     program,
		identifiers: identifiers(&tree.Node),
	}
	c.cache[source] = e
	return e, nil
}

// Expression is a compiled expression.
type Expression struct {
	source      string
	program     *vm.Program
	identifiers []string
}

// Identifiers returns the column names the expression reads.
func (e *Expression) Identifiers() []string {
	return append([]string(nil), e.identifiers...)
}

// Eval runs the expression against env.
func (e *Expression) Eval(env map[string]any) (any, error) {
	return expr.Run(e.program, env)
}

// String returns the source text.
func (e *Expression) String() string {
	return e.source
}

// collector gathers identifiers, skipping function names and let bindings.
type collector struct {
	names   []string
	seen    map[string]struct{}
	exclude map[string]struct{}
}

func (c *collector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if _, ok := c.seen[n.Value]; !ok {
			c.seen[n.Value] = struct{}{}
			c.names = append(c.names, n.Value)
		}
	case *ast.CallNode:
		if callee, ok := n.Callee.(*ast.IdentifierNode); ok {
			c.exclude[callee.Value] = struct{}{}
		}
	case *ast.VariableDeclaratorNode:
		c.exclude[n.Name] = struct{}{}
	}
}

func identifiers(root *ast.Node) []string {
	c := &collector{
		seen:    make(map[string]struct{}),
		exclude: make(map[string]struct{}),
	}
	ast.Walk(root, c)

	out := make([]string, 0, len(c.names))
	for _, name := range c.names {
		if _, skip := c.exclude[name]; !skip {
			out = append(out, name)
		}
	}
	return out
}
