package parser

// Package parser turns arithmetic expression source text into an expression
// tree.
//
// # Architecture
//
// The parser consists of two components:
//   - Lexer: tokenizes the input into a lazy, restartable stream of tokens
//   - Parser: builds the expression tree by precedence climbing
//
// # Grammar
//
//	expr   := term (('+' | '-') term)*
//	term   := unary (('*' | '/' | '%') unary)*
//	unary  := ('-' | '+') unary | factor
//	factor := NUMBER | '(' expr ')'
//
// All binary operators are left-associative.
//
// # Example
//
//	expr, err := parser.Parse("(2 + 3) * 4")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(expr.Root()) // (* (+ 2 3) 4)

import (
	"github.com/sandrolain/gocalc/pkg/types"
)

// DefaultMaxDepth is the default limit on expression nesting.
const DefaultMaxDepth = 1000

// Parse parses an arithmetic expression and returns the compiled Expression.
//
// Lexical failures are returned as *types.Error of kind LexError, syntax
// failures as kind ParseError. Both carry the byte position, line and column
// of the offending token.
func Parse(query string) (*types.Expression, error) {
	p := NewParser(query)
	return p.Parse()
}

// Compile is Parse with options.
func Compile(query string, opts ...CompileOption) (*types.Expression, error) {
	p := NewParser(query, opts...)
	return p.Parse()
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits how deeply parentheses and prefix operators may nest.
	// Values <= 0 select DefaultMaxDepth.
	MaxDepth int
}

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}
