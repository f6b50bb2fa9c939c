package types

import (
	"strconv"
	"strings"
)

// NodeType identifies the type of an expression tree node.
type NodeType uint8

// Expression tree node types.
const (
	NodeLiteral NodeType = iota + 1 // numeric literal (leaf)
	NodeBinary                      // +, -, *, /, %
	NodeUnary                       // prefix - or +
)

// String returns the name of the node type.
func (t NodeType) String() string {
	switch t {
	case NodeLiteral:
		return "literal"
	case NodeBinary:
		return "binary"
	case NodeUnary:
		return "unary"
	default:
		return "(unknown)"
	}
}

// Node is a node of the expression tree.
//
// Literal nodes carry their value and have no children. Binary nodes always
// have both LHS and RHS set; unary nodes only LHS. A tree is never mutated
// after the parser returns it.
type Node struct {
	Type     NodeType
	Op       byte  // operator character for binary and unary nodes
	Value    Value // literal value
	Position int   // byte offset of the node in the source

	LHS *Node // left operand, or the operand of a unary node
	RHS *Node // right operand
}

// NewLiteral creates a literal node.
func NewLiteral(v Value, position int) *Node {
	return &Node{Type: NodeLiteral, Value: v, Position: position}
}

// NewBinary creates a binary operator node.
func NewBinary(op byte, lhs, rhs *Node, position int) *Node {
	return &Node{Type: NodeBinary, Op: op, LHS: lhs, RHS: rhs, Position: position}
}

// NewUnary creates a prefix operator node.
func NewUnary(op byte, operand *Node, position int) *Node {
	return &Node{Type: NodeUnary, Op: op, LHS: operand, Position: position}
}

// String renders the tree in fully parenthesised prefix form,
// e.g. "(+ 2 (* 3 4))".
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	if n == nil {
		sb.WriteString("<nil>")
		return
	}
	switch n.Type {
	case NodeLiteral:
		sb.WriteString(n.Value.String())
	case NodeUnary:
		sb.WriteByte('(')
		sb.WriteByte(n.Op)
		sb.WriteByte(' ')
		n.LHS.write(sb)
		sb.WriteByte(')')
	case NodeBinary:
		sb.WriteByte('(')
		sb.WriteByte(n.Op)
		sb.WriteByte(' ')
		n.LHS.write(sb)
		sb.WriteByte(' ')
		n.RHS.write(sb)
		sb.WriteByte(')')
	default:
		sb.WriteString("<" + strconv.Itoa(int(n.Type)) + ">")
	}
}

// arenaChunkSize is the number of Node values pre-allocated per arena chunk.
const arenaChunkSize = 64

// NodeArena is a bump-pointer allocator for Node values.
//
// Nodes are handed out from fixed-size chunks so that a typical expression
// costs a single allocation. The arena must stay reachable for as long as
// any node it returned is; attaching it to the [Expression] does that.
//
// NodeArena is not safe for concurrent use. Each parser owns its own arena.
type NodeArena struct {
	chunks [][]Node
	pos    int // next free index in the last chunk
}

// NewNodeArena allocates an arena with one initial chunk.
func NewNodeArena() *NodeArena {
	return &NodeArena{
		chunks: [][]Node{make([]Node, arenaChunkSize)},
	}
}

// Alloc returns a pointer to a zero Node inside the arena with Type and
// Position set.
func (a *NodeArena) Alloc(nodeType NodeType, position int) *Node {
	if a.pos >= arenaChunkSize {
		a.chunks = append(a.chunks, make([]Node, arenaChunkSize))
		a.pos = 0
	}
	n := &a.chunks[len(a.chunks)-1][a.pos]
	a.pos++
	n.Type = nodeType
	n.Position = position
	return n
}

// Len returns the number of nodes allocated so far.
func (a *NodeArena) Len() int {
	return (len(a.chunks)-1)*arenaChunkSize + a.pos
}
