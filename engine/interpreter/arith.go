package interpreter

import (
	"fmt"
	"math"

	"calc/engine/lexer"
)

func route(l int32, op lexer.OperatorType, r int32) int32 {
	switch op {
	case lexer.Plus:
		return l + r
	case lexer.Sub:
		return l - r
	case lexer.Mul:
		return l * r
	case lexer.Div:
		return div(l, r)
	}
	panic(fmt.Sprintf("unexpected binary operator: %v", op))
}

// div truncates toward zero. The two quotients that do not exist in int32,
// x/0 and MinInt32/-1, are 0.
func div(l, r int32) int32 {
	if r == 0 || (l == math.MinInt32 && r == -1) {
		return 0
	}
	return l / r
}
