package ast

import (
	"fmt"

	"calc/engine/lexer"
)

type VisitorValue interface {
	VisitNumber(n int32) int32
	VisitUnary(op lexer.OperatorType, child Node) int32
	VisitBinary(left Node, op lexer.OperatorType, right Node) int32
}

type VisitorString interface {
	VisitNumber(n int32) string
	VisitUnary(op lexer.OperatorType, child Node) string
	VisitBinary(left Node, op lexer.OperatorType, right Node) string
}

// Node is one of Number, Unary or Binary. Every node exclusively owns its
// children, so a parsed expression is always a finite tree.
type Node interface {
	AcceptValue(v VisitorValue) int32
	AcceptString(v VisitorString) string
	Equals(Node) bool
}

var _ Node = Number{}
var _ Node = Unary{}
var _ Node = Binary{}

type Number struct {
	Value int32
}

func (n Number) AcceptValue(v VisitorValue) int32 {
	return v.VisitNumber(n.Value)
}

func (n Number) AcceptString(v VisitorString) string {
	return v.VisitNumber(n.Value)
}

func (n Number) Equals(other Node) bool {
	switch o := other.(type) {
	case Number:
		return n.Value == o.Value
	default:
		return false
	}
}

// Unary is a prefix operator applied to a single child. The parser only ever
// builds it with lexer.Sub.
type Unary struct {
	Op    lexer.OperatorType
	Child Node
}

func (u Unary) AcceptValue(v VisitorValue) int32 {
	return v.VisitUnary(u.Op, u.Child)
}

func (u Unary) AcceptString(v VisitorString) string {
	return v.VisitUnary(u.Op, u.Child)
}

func (u Unary) Equals(other Node) bool {
	switch o := other.(type) {
	case Unary:
		return u.Op == o.Op && u.Child.Equals(o.Child)
	default:
		return false
	}
}

type Binary struct {
	Left  Node
	Op    lexer.OperatorType
	Right Node
}

func (b Binary) AcceptValue(v VisitorValue) int32 {
	return v.VisitBinary(b.Left, b.Op, b.Right)
}

func (b Binary) AcceptString(v VisitorString) string {
	return v.VisitBinary(b.Left, b.Op, b.Right)
}

func (b Binary) Equals(other Node) bool {
	switch o := other.(type) {
	case Binary:
		return b.Op == o.Op && b.Left.Equals(o.Left) && b.Right.Equals(o.Right)
	default:
		return false
	}
}

func MakeNumber(n int32) Number {
	return Number{Value: n}
}

func MakeNeg(child Node) Unary {
	return Unary{Op: lexer.Sub, Child: child}
}

func MakeBinary(left Node, op lexer.OperatorType, right Node) Binary {
	return Binary{Left: left, Op: op, Right: right}
}

// Depth returns the number of nodes on the longest root to leaf path.
func Depth(node Node) int {
	switch n := node.(type) {
	case Number:
		return 1
	case Unary:
		return 1 + Depth(n.Child)
	case Binary:
		l, r := Depth(n.Left), Depth(n.Right)
		if l > r {
			return 1 + l
		}
		return 1 + r
	}
	panic(fmt.Sprintf("unexpected node type: %T", node))
}
