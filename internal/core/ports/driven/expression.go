package driven

// Expression is a compiled output column expression.
type Expression interface {
	// Identifiers lists the column names the expression reads, in order of
	// first use.
	Identifiers() []string

	// Eval evaluates the expression. env maps column names to values and
	// must not be modified.
	Eval(env map[string]any) (any, error)
}

// ExpressionCompiler compiles expression source text.
type ExpressionCompiler interface {
	Compile(source string) (Expression, error)
}
