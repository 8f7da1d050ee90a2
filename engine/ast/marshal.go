package ast

import (
	"encoding/json"
	"fmt"
	"math"

	"calc/engine/lexer"

	"github.com/buger/jsonparser"
)

const (
	typeNumber = "number"
	typeUnary  = "unary"
	typeBinary = "binary"
)

type jsonNode struct {
	Type  string    `json:"type"`
	Value *int32    `json:"value,omitempty"`
	Op    string    `json:"op,omitempty"`
	Child *jsonNode `json:"child,omitempty"`
	Left  *jsonNode `json:"left,omitempty"`
	Right *jsonNode `json:"right,omitempty"`
}

func toJSONNode(node Node) (*jsonNode, error) {
	switch n := node.(type) {
	case Number:
		v := n.Value
		return &jsonNode{Type: typeNumber, Value: &v}, nil
	case Unary:
		child, err := toJSONNode(n.Child)
		if err != nil {
			return nil, err
		}
		return &jsonNode{Type: typeUnary, Op: n.Op.String(), Child: child}, nil
	case Binary:
		left, err := toJSONNode(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := toJSONNode(n.Right)
		if err != nil {
			return nil, err
		}
		return &jsonNode{Type: typeBinary, Op: n.Op.String(), Left: left, Right: right}, nil
	default:
		return nil, fmt.Errorf("unexpected node type: %T", node)
	}
}

// Marshal encodes the tree as nested, type tagged JSON objects.
func Marshal(node Node) ([]byte, error) {
	jn, err := toJSONNode(node)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jn)
}

// Unmarshal decodes a tree written by Marshal. It accepts only shapes the
// parser can produce.
func Unmarshal(data []byte) (Node, error) {
	typ, err := jsonparser.GetString(data, "type")
	if err != nil {
		return nil, fmt.Errorf("invalid ast node, missing type: %w", err)
	}
	switch typ {
	case typeNumber:
		v, err := jsonparser.GetInt(data, "value")
		if err != nil {
			return nil, fmt.Errorf("invalid number node: %w", err)
		}
		// literals are never negative, negation is a unary node
		if v < 0 || v > math.MaxInt32 {
			return nil, fmt.Errorf("number node out of range: %d", v)
		}
		return Number{Value: int32(v)}, nil
	case typeUnary:
		op, err := getOp(data)
		if err != nil {
			return nil, err
		}
		if op != lexer.Sub {
			return nil, fmt.Errorf("invalid unary operator: '%s'", op)
		}
		child, err := getChild(data, "child")
		if err != nil {
			return nil, err
		}
		return Unary{Op: op, Child: child}, nil
	case typeBinary:
		op, err := getOp(data)
		if err != nil {
			return nil, err
		}
		left, err := getChild(data, "left")
		if err != nil {
			return nil, err
		}
		right, err := getChild(data, "right")
		if err != nil {
			return nil, err
		}
		return Binary{Left: left, Op: op, Right: right}, nil
	default:
		return nil, fmt.Errorf("unknown ast node type: '%s'", typ)
	}
}

func getOp(data []byte) (lexer.OperatorType, error) {
	s, err := jsonparser.GetString(data, "op")
	if err != nil {
		return 0, fmt.Errorf("invalid ast node, missing op: %w", err)
	}
	return lexer.ParseOperator(s)
}

func getChild(data []byte, key string) (Node, error) {
	vdata, vtype, _, err := jsonparser.Get(data, key)
	if err != nil {
		return nil, fmt.Errorf("invalid ast node, missing %s: %w", key, err)
	}
	if vtype != jsonparser.Object {
		return nil, fmt.Errorf("invalid ast node, %s is a %s, expected object", key, vtype)
	}
	return Unmarshal(vdata)
}
