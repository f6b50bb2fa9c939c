// Package gocalc evaluates arithmetic expressions.
//
// Expressions are made of integer and decimal literals, the operators
// + - * / % with the usual precedence and left associativity, prefix signs
// and parentheses nested to any depth:
//
//	v, err := gocalc.Evaluate("((10 + 5) * (10 - 5)) / 2")
//	// v is the integer 37
//
//	v, err = gocalc.Evaluate("3.14 + 2")
//	// v is the float 5.14
//
// Integer operands stay integers; a float on either side of an operator
// promotes the result to float. Failures are *types.Error values whose kind is
// one of LexError, ParseError, DivisionByZero or TypeError:
//
//	_, err = gocalc.Evaluate("10 / 0")
//	errors.Is(err, types.ErrDivisionByZero) // true
//
// # Compile once, evaluate many times
//
//	expr, err := gocalc.Compile("(2 + 3) * 4")
//	v, err := evaluator.New().Eval(ctx, expr)
//
// # More Information
//
//   - Parser: github.com/sandrolain/gocalc/pkg/parser
//   - Evaluator: github.com/sandrolain/gocalc/pkg/evaluator
//   - Types: github.com/sandrolain/gocalc/pkg/types
package gocalc

import (
	"context"
	"fmt"

	"github.com/sandrolain/gocalc/pkg/evaluator"
	"github.com/sandrolain/gocalc/pkg/parser"
	"github.com/sandrolain/gocalc/pkg/types"
)

// Version returns the current version of gocalc.
func Version() string {
	return "v0.1.0"
}

// defaultEvaluator serves the package-level helpers. It has no cache, so
// repeated calls do not retain memory.
var defaultEvaluator = evaluator.New()

// Compile compiles an expression for repeated evaluation.
func Compile(expression string, opts ...parser.CompileOption) (*types.Expression, error) {
	return parser.Compile(expression, opts...)
}

// MustCompile is like Compile but panics if the expression cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(expression string) *types.Expression {
	expr, err := Compile(expression)
	if err != nil {
		panic(fmt.Sprintf("gocalc: Compile(%q): %v", expression, err))
	}
	return expr
}

// Evaluate parses and evaluates expression.
func Evaluate(expression string) (types.Value, error) {
	return EvaluateWithContext(context.Background(), expression)
}

// EvaluateWithContext is Evaluate with a caller-supplied context. An already
// cancelled context fails the call before evaluation starts.
func EvaluateWithContext(ctx context.Context, expression string, opts ...evaluator.EvalOption) (types.Value, error) {
	ev := defaultEvaluator
	if len(opts) > 0 {
		ev = evaluator.New(opts...)
	}
	return ev.EvalString(ctx, expression)
}
