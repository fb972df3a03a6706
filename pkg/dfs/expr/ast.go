package expr

import (
	"strconv"
	"strings"
)

// Node is a node of a parsed expression.
// Nodes are immutable and may be shared between evaluations.
type Node interface {
	// Pos returns the byte offset of the node in its source.
	Pos() int

	// String renders the node back to a fully parenthesized expression.
	String() string

	node()
}

// Literal is a constant value written in the source.
type Literal struct {
	Value Value
	At    int
}

// Identifier is a bare name such as ctx or MAX_INT.
type Identifier struct {
	Name string
	At   int
}

// MemberAccess reads Field from the object produced by Base.
type MemberAccess struct {
	Base  Node
	Field string
	At    int
}

// ArrayLiteral is array(a, b, ...).
type ArrayLiteral struct {
	Elements []Node
	At       int
}

// Range is start..end, start inclusive and end exclusive.
type Range struct {
	Start Node
	End   Node
	At    int
}

// UnaryOp is a prefix operator: "-" or "!".
type UnaryOp struct {
	Op      string
	Operand Node
	At      int
}

// BinaryOp is an infix arithmetic, comparison or logical operator.
type BinaryOp struct {
	Op    string
	Left  Node
	Right Node
	At    int
}

// Call invokes a registered function by name.
type Call struct {
	Name string
	Args []Node
	At   int
}

func (n *Literal) Pos() int      { return n.At }
func (n *Identifier) Pos() int   { return n.At }
func (n *MemberAccess) Pos() int { return n.At }
func (n *ArrayLiteral) Pos() int { return n.At }
func (n *Range) Pos() int        { return n.At }
func (n *UnaryOp) Pos() int      { return n.At }
func (n *BinaryOp) Pos() int     { return n.At }
func (n *Call) Pos() int         { return n.At }

func (*Literal) node()      {}
func (*Identifier) node()   {}
func (*MemberAccess) node() {}
func (*ArrayLiteral) node() {}
func (*Range) node()        {}
func (*UnaryOp) node()      {}
func (*BinaryOp) node()     {}
func (*Call) node()         {}

func (n *Literal) String() string {
	switch n.Value.Kind() {
	case KindString:
		s, _ := n.Value.AsString()
		if strings.Contains(s, `"`) {
			return "'" + s + "'"
		}
		return `"` + s + `"`
	case KindFloat:
		f, _ := n.Value.AsFloat()
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	default:
		return n.Value.String()
	}
}

func (n *Identifier) String() string { return n.Name }

func (n *MemberAccess) String() string { return n.Base.String() + "." + n.Field }

func (n *ArrayLiteral) String() string {
	return "array(" + joinNodes(n.Elements) + ")"
}

func (n *Range) String() string {
	return "(" + n.Start.String() + ".." + n.End.String() + ")"
}

func (n *UnaryOp) String() string { return "(" + n.Op + n.Operand.String() + ")" }

func (n *BinaryOp) String() string {
	return "(" + n.Left.String() + " " + n.Op + " " + n.Right.String() + ")"
}

func (n *Call) String() string { return n.Name + "(" + joinNodes(n.Args) + ")" }

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}

// Walk calls fn for n and every descendant in depth-first order.
// Returning false from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case *MemberAccess:
		Walk(n.Base, fn)
	case *ArrayLiteral:
		for _, e := range n.Elements {
			Walk(e, fn)
		}
	case *Range:
		Walk(n.Start, fn)
		Walk(n.End, fn)
	case *UnaryOp:
		Walk(n.Operand, fn)
	case *BinaryOp:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Call:
		for _, a := range n.Args {
			Walk(a, fn)
		}
	}
}
