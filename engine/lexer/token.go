package lexer

import (
	"fmt"
	"strconv"
)

type Kind uint8

const (
	Number Kind = iota + 1
	Operator
	Bracket
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Operator:
		return "operator"
	case Bracket:
		return "bracket"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

type OperatorType uint8

const (
	Plus OperatorType = iota + 1
	Sub
	Mul
	Div
)

func (o OperatorType) String() string {
	switch o {
	case Plus:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// ParseOperator is the inverse of OperatorType.String.
func ParseOperator(s string) (OperatorType, error) {
	switch s {
	case "+":
		return Plus, nil
	case "-":
		return Sub, nil
	case "*":
		return Mul, nil
	case "/":
		return Div, nil
	}
	return 0, fmt.Errorf("unknown operator: '%s'", s)
}

type BracketType uint8

const (
	Left BracketType = iota + 1
	Right
)

func (b BracketType) String() string {
	if b == Left {
		return "("
	}
	return ")"
}

// Token is a single lexical unit. Only the field matching Kind is meaningful.
// Offset is the byte offset of the token's first character in the source.
type Token struct {
	Kind   Kind
	Value  int32
	Op     OperatorType
	Side   BracketType
	Offset int
}

func MakeNumber(n int32) Token {
	return Token{Kind: Number, Value: n}
}

func MakeOperator(op OperatorType) Token {
	return Token{Kind: Operator, Op: op}
}

func MakeBracket(side BracketType) Token {
	return Token{Kind: Bracket, Side: side}
}

func (t Token) String() string {
	switch t.Kind {
	case Number:
		return strconv.FormatInt(int64(t.Value), 10)
	case Operator:
		return t.Op.String()
	case Bracket:
		return t.Side.String()
	default:
		return t.Kind.String()
	}
}

// Equal compares kind and payload, ignoring Offset.
func (t Token) Equal(other Token) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case Number:
		return t.Value == other.Value
	case Operator:
		return t.Op == other.Op
	case Bracket:
		return t.Side == other.Side
	}
	return true
}

// IsOperator returns true if the token is an operator of one of the given types.
func (t Token) IsOperator(ops ...OperatorType) bool {
	if t.Kind != Operator {
		return false
	}
	for _, op := range ops {
		if t.Op == op {
			return true
		}
	}
	return false
}

func (t Token) IsBracket(side BracketType) bool {
	return t.Kind == Bracket && t.Side == side
}
