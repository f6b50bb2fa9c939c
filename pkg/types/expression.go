// Package types defines the core types shared by the gocalc packages.
//
// This package contains type definitions for:
//   - Expression: compiled arithmetic expressions
//   - Node: expression tree nodes
//   - Value: numeric results tagged as integer or float
//   - Error: structured errors with codes and source positions
package types

// Expression represents a compiled arithmetic expression.
//
// An Expression can be evaluated any number of times by passing it to
// [evaluator.Evaluator.Eval]. It is read-only and safe for concurrent use by
// multiple goroutines.
type Expression struct {
	root   *Node
	source string
	arena  *NodeArena // keeps arena-allocated nodes reachable
}

// NewExpression creates a new Expression from a tree.
func NewExpression(root *Node, source string) *Expression {
	return &Expression{
		root:   root,
		source: source,
	}
}

// NewExpressionWithArena creates an Expression whose nodes live in arena.
func NewExpressionWithArena(root *Node, source string, arena *NodeArena) *Expression {
	return &Expression{
		root:   root,
		source: source,
		arena:  arena,
	}
}

// Root returns the root node of the expression tree.
func (e *Expression) Root() *Node {
	return e.root
}

// Source returns the original source text of the expression.
func (e *Expression) Source() string {
	return e.source
}

// String returns the source text.
func (e *Expression) String() string {
	return e.source
}
