package compiler

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// rawNode is the JSON interchange form of one tree node. Field names
// follow the usual Python ast dump so a front end can emit them directly.
type rawNode struct {
	Kind      string            `json:"kind"`
	Lineno    int               `json:"lineno"`
	ColOffset int               `json:"col_offset"`
	Body      []json.RawMessage `json:"body"`
	Orelse    []json.RawMessage `json:"orelse"`
	Targets   []json.RawMessage `json:"targets"`
	Target    json.RawMessage   `json:"target"`
	Value     json.RawMessage   `json:"value"`
	Test      json.RawMessage   `json:"test"`
	Func      json.RawMessage   `json:"func"`
	Args      []json.RawMessage `json:"args"`
	Left      json.RawMessage   `json:"left"`
	Right     json.RawMessage   `json:"right"`
	Elts      []json.RawMessage `json:"elts"`
	Op        string            `json:"op"`
	Attr      string            `json:"attr"`
	Name      string            `json:"name"`
	ID        string            `json:"id"`
	Names     []string          `json:"names"`
	N         *int              `json:"n"`
	S         *string           `json:"s"`
}

// operatorSymbols normalises Python ast operator class names.
var operatorSymbols = map[string]string{
	"Add":   "+",
	"Sub":   "-",
	"Mult":  "*",
	"Div":   "/",
	"Mod":   "%",
	"Eq":    "==",
	"NotEq": "!=",
	"Lt":    "<",
	"Gt":    ">",
}

func symbol(op string) string {
	if s, ok := operatorSymbols[op]; ok {
		return s
	}
	return op
}

// DecodeModule reads a program tree in JSON interchange form.
func DecodeModule(r io.Reader) (*Module, error) {
	var raw rawNode
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode module")
	}
	if raw.Kind != "Module" {
		return nil, errors.Errorf("decode module: root is %q, want \"Module\"", raw.Kind)
	}
	body, err := decodeList(raw.Body)
	if err != nil {
		return nil, err
	}
	return &Module{Body: body}, nil
}

func decodeList(raws []json.RawMessage) ([]Node, error) {
	nodes := make([]Node, 0, len(raws))
	for _, r := range raws {
		n, err := decodeNode(r)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func decodeNode(data json.RawMessage) (Node, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, errors.New("decode: missing node")
	}
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	pos := Pos{}
	if raw.Lineno > 0 {
		pos = Pos{Line: raw.Lineno, Col: raw.ColOffset + 1}
	}

	// firstErr keeps the first failure from the child decodes below.
	var firstErr error
	child := func(d json.RawMessage) Node {
		n, err := decodeNode(d)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return n
	}
	children := func(ds []json.RawMessage) []Node {
		ns, err := decodeList(ds)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return ns
	}

	var n Node
	switch raw.Kind {
	case "Expr":
		return decodeNode(raw.Value)
	case "Import", "ImportFrom":
		n = &Import{Pos: pos, Names: raw.Names}
	case "If":
		n = &If{Pos: pos, Test: child(raw.Test), Body: children(raw.Body), Else: children(raw.Orelse)}
	case "Compare":
		n = &Compare{Pos: pos, Op: symbol(raw.Op), Left: child(raw.Left), Right: child(raw.Right)}
	case "Assign":
		n = &Assign{Pos: pos, Targets: children(raw.Targets), Value: child(raw.Value)}
	case "AugAssign":
		n = &AugAssign{Pos: pos, Op: symbol(raw.Op), Target: child(raw.Target), Value: child(raw.Value)}
	case "Attribute":
		n = &Attribute{Pos: pos, Value: child(raw.Value), Attr: raw.Attr}
	case "FunctionDef":
		n = &FunctionDef{Pos: pos, Name: raw.Name, Body: children(raw.Body)}
	case "Call":
		n = &Call{Pos: pos, Func: child(raw.Func), Args: children(raw.Args)}
	case "BinOp":
		n = &BinOp{Pos: pos, Op: symbol(raw.Op), Left: child(raw.Left), Right: child(raw.Right)}
	case "Num", "Int":
		if raw.N == nil {
			return nil, errors.Errorf("decode %s at %s: missing \"n\"", raw.Kind, pos)
		}
		n = &Int{Pos: pos, Value: *raw.N}
	case "Str":
		if raw.S == nil {
			return nil, errors.Errorf("decode Str at %s: missing \"s\"", pos)
		}
		n = &Str{Pos: pos, Value: *raw.S}
	case "Name":
		n = &Name{Pos: pos, ID: raw.ID}
	case "List":
		n = &List{Pos: pos, Elts: children(raw.Elts)}
	default:
		return nil, errors.Errorf("decode at %s: unknown node kind %q", pos, raw.Kind)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return n, nil
}
