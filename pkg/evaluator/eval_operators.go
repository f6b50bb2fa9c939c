package evaluator

import (
	"fmt"

	"github.com/sandrolain/gocalc/pkg/types"
)

// applyBinary computes l op r. Integer arithmetic wraps on overflow.
func applyBinary(n *types.Node, l, r types.Value) (types.Value, error) {
	if l.IsInt() && r.IsInt() {
		return intOp(n, l.Int, r.Int)
	}
	return floatOp(n, l, r)
}

func intOp(n *types.Node, l, r int64) (types.Value, error) {
	switch n.Op {
	case '+':
		return types.Int(l + r), nil
	case '-':
		return types.Int(l - r), nil
	case '*':
		return types.Int(l * r), nil
	case '/':
		if r == 0 {
			return types.Value{}, divisionByZero(n)
		}
		// Go's / truncates toward zero; MinInt64 / -1 yields MinInt64.
		return types.Int(l / r), nil
	case '%':
		if r == 0 {
			return types.Value{}, divisionByZero(n)
		}
		return types.Int(l % r), nil
	default:
		return types.Value{}, unknownOperator(n)
	}
}

func floatOp(n *types.Node, lv, rv types.Value) (types.Value, error) {
	l, r := lv.Float64(), rv.Float64()
	switch n.Op {
	case '+':
		return types.Float(l + r), nil
	case '-':
		return types.Float(l - r), nil
	case '*':
		return types.Float(l * r), nil
	case '/':
		if r == 0 {
			return types.Value{}, divisionByZero(n)
		}
		return types.Float(l / r), nil
	case '%':
		return types.Value{}, types.NewError(types.ErrInvalidOperand,
			fmt.Sprintf("operator %% requires integer operands, got %s %% %s", lv.Kind, rv.Kind), n.Position).
			WithToken("%")
	default:
		return types.Value{}, unknownOperator(n)
	}
}

// applyUnary computes a prefix sign. Negating MinInt64 wraps to itself.
func applyUnary(n *types.Node, v types.Value) (types.Value, error) {
	switch n.Op {
	case '+':
		return v, nil
	case '-':
		if v.IsInt() {
			return types.Int(-v.Int), nil
		}
		return types.Float(-v.Float), nil
	default:
		return types.Value{}, unknownOperator(n)
	}
}

func divisionByZero(n *types.Node) error {
	return types.NewError(types.ErrDivideByZero,
		fmt.Sprintf("division by zero in operator %c", n.Op), n.Position).
		WithToken(string(n.Op))
}

func unknownOperator(n *types.Node) error {
	return types.NewError(types.ErrInvalidNode,
		fmt.Sprintf("unknown operator %q", n.Op), n.Position)
}
