package evaluator

import (
	"fmt"

	"github.com/sandrolain/gocalc/pkg/types"
)

// frame is a pending node on the evaluation stack. expanded is set once the
// node's children have been scheduled.
type frame struct {
	node     *types.Node
	expanded bool
}

// evalTree evaluates the tree rooted at root in post-order using explicit
// stacks, so tree height is bounded by memory rather than goroutine stack.
// Left operands are evaluated before right operands, so the leftmost failing
// operation is the one reported.
func (e *Evaluator) evalTree(root *types.Node) (types.Value, error) {
	stack := make([]frame, 1, 32)
	stack[0] = frame{node: root}
	values := make([]types.Value, 0, 16)

	for len(stack) > 0 {
		top := len(stack) - 1
		n := stack[top].node

		switch n.Type {
		case types.NodeLiteral:
			stack = stack[:top]
			values = append(values, n.Value)

		case types.NodeUnary:
			if n.LHS == nil {
				return types.Value{}, invalidNode(n, "unary node without operand")
			}
			if !stack[top].expanded {
				stack[top].expanded = true
				stack = append(stack, frame{node: n.LHS})
				continue
			}
			stack = stack[:top]
			last := len(values) - 1
			v, err := applyUnary(n, values[last])
			if err != nil {
				return types.Value{}, err
			}
			values[last] = v

		case types.NodeBinary:
			if n.LHS == nil || n.RHS == nil {
				return types.Value{}, invalidNode(n, "binary node without two operands")
			}
			if !stack[top].expanded {
				stack[top].expanded = true
				stack = append(stack, frame{node: n.RHS}, frame{node: n.LHS})
				continue
			}
			stack = stack[:top]
			last := len(values) - 1
			v, err := applyBinary(n, values[last-1], values[last])
			if err != nil {
				return types.Value{}, err
			}
			values = values[:last]
			values[last-1] = v

		default:
			return types.Value{}, invalidNode(n, fmt.Sprintf("unknown node type %s", n.Type))
		}
	}

	if len(values) != 1 {
		return types.Value{}, types.NewError(types.ErrInvalidNode, "malformed expression tree", root.Position)
	}
	return values[0], nil
}

func invalidNode(n *types.Node, message string) error {
	return types.NewError(types.ErrInvalidNode, message, n.Position)
}
