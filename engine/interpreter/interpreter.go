package interpreter

import (
	"calc/engine/ast"
	"calc/engine/lexer"
)

// Interpreter reduces a tree to an int32. It holds no state, so a single
// value may be shared freely.
type Interpreter struct{}

var _ ast.VisitorValue = Interpreter{}

// Eval evaluates the tree rooted at node. It never fails: division by zero
// evaluates to 0 and every other operation wraps around on overflow.
func Eval(node ast.Node) int32 {
	return node.AcceptValue(Interpreter{})
}

func (i Interpreter) VisitNumber(n int32) int32 {
	return n
}

func (i Interpreter) VisitUnary(op lexer.OperatorType, child ast.Node) int32 {
	val := child.AcceptValue(i)
	switch op {
	case lexer.Sub:
		return -val
	default:
		// unary plus, and anything the parser never builds, is identity
		return val
	}
}

func (i Interpreter) VisitBinary(left ast.Node, op lexer.OperatorType, right ast.Node) int32 {
	l := left.AcceptValue(i)
	r := right.AcceptValue(i)
	return route(l, op, r)
}
