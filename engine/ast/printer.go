package ast

import (
	"fmt"
	"strconv"

	"calc/engine/lexer"
)

// Printer renders a tree fully parenthesized. Output for trees built by the
// parser or by Unmarshal re-parses to the same shape. Hand built trees holding
// a negative Number or a unary operator other than minus print text the
// parser rejects or reads differently.
type Printer struct{}

var _ VisitorString = Printer{}

func (p Printer) VisitNumber(n int32) string {
	return strconv.FormatInt(int64(n), 10)
}

func (p Printer) VisitUnary(op lexer.OperatorType, child Node) string {
	return fmt.Sprintf("(%s%s)", op, child.AcceptString(p))
}

func (p Printer) VisitBinary(left Node, op lexer.OperatorType, right Node) string {
	return fmt.Sprintf("(%s %s %s)", left.AcceptString(p), op, right.AcceptString(p))
}

func Print(node Node) string {
	return node.AcceptString(Printer{})
}
