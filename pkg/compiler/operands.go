package compiler

import (
	"fmt"
	"strings"

	"nescart/pkg/hw"
)

type operandKind int

const (
	opInt    operandKind = iota // folded integer constant
	opSymbol                    // operator of an augmented assignment
	opObject                    // hardware object reference
	opAttr                      // attribute name
)

func (k operandKind) String() string {
	switch k {
	case opInt:
		return "integer"
	case opSymbol:
		return "operator"
	case opObject:
		return "hardware object"
	case opAttr:
		return "attribute"
	}
	return fmt.Sprintf("operandKind(%d)", int(k))
}

// operand is one entry of the traversal stack a statement builds from its
// subtrees. Each statement starts from an empty stack.
type operand struct {
	kind  operandKind
	value int
	text  string
	obj   hw.Object
}

func (o operand) String() string {
	switch o.kind {
	case opInt:
		return fmt.Sprintf("%d", o.value)
	case opObject:
		return o.obj.String()
	}
	return o.text
}

func describe(stack []operand) string {
	parts := make([]string, len(stack))
	for i, o := range stack {
		parts[i] = fmt.Sprintf("%s %s", o.kind, o)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// operands flattens an expression into stack entries in evaluation order.
// Component calls met on the way are compiled as they are reached.
func (v *visitor) operands(n Node) ([]operand, error) {
	switch n := n.(type) {
	case *Int, *BinOp:
		val, err := fold(n)
		if err != nil {
			return nil, err
		}
		return []operand{{kind: opInt, value: val}}, nil

	case *Name:
		obj, ok := hw.Lookup(n.ID)
		if !ok {
			return nil, unsupported(n, "%s does not name a hardware object", n.ID)
		}
		return []operand{{kind: opObject, obj: obj}}, nil

	case *Attribute:
		base, err := v.operands(n.Value)
		if err != nil {
			return nil, err
		}
		return append(base, operand{kind: opAttr, text: n.Attr}), nil

	case *Call:
		inv, err := v.call(n)
		if err != nil {
			return nil, err
		}
		if inv.Object == nil {
			return nil, nil
		}
		return []operand{{kind: opObject, obj: *inv.Object}}, nil

	case nil:
		return nil, unsupported(nil, "missing expression")
	}
	return nil, unsupported(n, "not usable as an operand")
}

func isConstant(n Node) bool {
	switch n.(type) {
	case *Int, *BinOp:
		return true
	}
	return false
}

// fold evaluates a constant expression: an integer literal or a sum of
// constant expressions.
func fold(n Node) (int, error) {
	switch n := n.(type) {
	case *Int:
		return n.Value, nil
	case *BinOp:
		if n.Op != "+" {
			return 0, unsupported(n, "operator %s", n.Op)
		}
		if !isConstant(n.Left) || !isConstant(n.Right) {
			return 0, unsupported(n, "only literal operands can be added")
		}
		left, err := fold(n.Left)
		if err != nil {
			return 0, err
		}
		right, err := fold(n.Right)
		if err != nil {
			return 0, err
		}
		return left + right, nil
	case nil:
		return 0, invalid(nil, "missing integer constant")
	}
	return 0, invalid(n, "expected an integer constant, got %s", nodeKind(n))
}

func foldByte(n Node) (byte, error) {
	val, err := fold(n)
	if err != nil {
		return 0, err
	}
	if val < 0 || val > 0xFF {
		return 0, invalid(n, "%d does not fit in a byte", val)
	}
	return byte(val), nil
}

// matchStore accepts exactly one integer operand: the value of hw.attr = value.
func matchStore(n Node, stack []operand) (int, error) {
	if len(stack) != 1 {
		return 0, unsupported(n, "store needs exactly one integer operand, got %s", describe(stack))
	}
	if stack[0].kind != opInt {
		return 0, invalid(n, "store value is a %s, want an integer", stack[0].kind)
	}
	if v := stack[0].value; v < 0 || v > 0xFF {
		return 0, invalid(n, "store value %d does not fit in a byte", v)
	}
	return stack[0].value, nil
}

// augAdd is a matched (integer, "+", hardware object, attribute) stack.
type augAdd struct {
	imm  int
	obj  hw.Object
	attr string
}

var augAddShape = [4]operandKind{opInt, opSymbol, opObject, opAttr}

func matchAugAdd(n Node, stack []operand) (augAdd, error) {
	if len(stack) != len(augAddShape) {
		return augAdd{}, unsupported(n, "want (integer, operator, hardware object, attribute), got %s", describe(stack))
	}
	for i, want := range augAddShape {
		if stack[i].kind != want {
			return augAdd{}, invalid(n, "operand %d is a %s, want %s", i, stack[i].kind, want)
		}
	}
	if stack[1].text != "+" {
		return augAdd{}, unsupported(n, "operator %s=", stack[1].text)
	}
	if v := stack[0].value; v < 0 || v > 0xFF {
		return augAdd{}, invalid(n, "increment %d does not fit in a byte", v)
	}
	return augAdd{imm: stack[0].value, obj: stack[2].obj, attr: stack[3].text}, nil
}

// matchAttributePath accepts (hardware object, attribute).
func matchAttributePath(n Node, stack []operand) (hw.Object, string, error) {
	if len(stack) != 2 {
		return hw.Object{}, "", unsupported(n, "want (hardware object, attribute), got %s", describe(stack))
	}
	if stack[0].kind != opObject || stack[1].kind != opAttr {
		return hw.Object{}, "", invalid(n, "attribute path %s", describe(stack))
	}
	return stack[0].obj, stack[1].text, nil
}
