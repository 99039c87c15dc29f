package compiler

import (
	"fmt"
	"strings"
)

// Pos is a best-effort source position. The zero value means unknown.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) Position() Pos { return p }

func (p Pos) String() string {
	if p.Line == 0 {
		return "?"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Node is implemented by every program tree node.
type Node interface {
	node()
	Position() Pos
	String() string
}

// Module is the root of a program tree.
type Module struct {
	Body []Node
}

func (m *Module) String() string { return fmt.Sprintf("Module(%s)", joinNodes(m.Body)) }

// Import is ignored by the compiler.
//
//	from nes.bitbag import *
type Import struct {
	Pos
	Names []string
}

func (*Import) node()            {}
func (i *Import) String() string { return fmt.Sprintf("Import(%s)", strings.Join(i.Names, ", ")) }

// If is only accepted as the module entry guard.
//
//	if __name__ == "__main__":
type If struct {
	Pos
	Test Node
	Body []Node
	Else []Node
}

func (*If) node() {}
func (i *If) String() string {
	return fmt.Sprintf("If(%s, %s)", i.Test, joinNodes(i.Body))
}

// Compare is a binary comparison: Left Op Right.
type Compare struct {
	Pos
	Op    string
	Left  Node
	Right Node
}

func (*Compare) node()            {}
func (c *Compare) String() string { return fmt.Sprintf("(%s %s %s)", c.Left, c.Op, c.Right) }

// Assign is Targets[0] = Value. Only one target is supported.
//
//	ppu.ctrl = 0x80
//	^^^^^^^^   ^^^^
//	Target     Value
type Assign struct {
	Pos
	Targets []Node
	Value   Node
}

func (*Assign) node() {}
func (a *Assign) String() string {
	return fmt.Sprintf("Assign(%s = %s)", joinNodes(a.Targets), a.Value)
}

// AugAssign is Target Op= Value.
//
//	get_sprite(0).x += 1
type AugAssign struct {
	Pos
	Op     string
	Target Node
	Value  Node
}

func (*AugAssign) node() {}
func (a *AugAssign) String() string {
	return fmt.Sprintf("AugAssign(%s %s= %s)", a.Target, a.Op, a.Value)
}

// Attribute is Value.Attr.
type Attribute struct {
	Pos
	Value Node
	Attr  string
}

func (*Attribute) node()            {}
func (a *Attribute) String() string { return fmt.Sprintf("%s.%s", a.Value, a.Attr) }

// FunctionDef is a top-level def. Parameters are not supported.
type FunctionDef struct {
	Pos
	Name string
	Body []Node
}

func (*FunctionDef) node() {}
func (f *FunctionDef) String() string {
	return fmt.Sprintf("FunctionDef(%s, %s)", f.Name, joinNodes(f.Body))
}

// Call is Func(Args...).
type Call struct {
	Pos
	Func Node
	Args []Node
}

func (*Call) node()            {}
func (c *Call) String() string { return fmt.Sprintf("%s(%s)", c.Func, joinNodes(c.Args)) }

// BinOp is Left Op Right.
type BinOp struct {
	Pos
	Op    string
	Left  Node
	Right Node
}

func (*BinOp) node()            {}
func (b *BinOp) String() string { return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right) }

// Int is an integer literal.
type Int struct {
	Pos
	Value int
}

func (*Int) node()            {}
func (i *Int) String() string { return fmt.Sprintf("%d", i.Value) }

// Str is a string literal.
type Str struct {
	Pos
	Value string
}

func (*Str) node()            {}
func (s *Str) String() string { return fmt.Sprintf("%q", s.Value) }

// Name is a reference to an identifier.
type Name struct {
	Pos
	ID string
}

func (*Name) node()            {}
func (n *Name) String() string { return n.ID }

// List is a list literal.
type List struct {
	Pos
	Elts []Node
}

func (*List) node()            {}
func (l *List) String() string { return fmt.Sprintf("[%s]", joinNodes(l.Elts)) }

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}

// nodeKind names the kind of n for diagnostics.
func nodeKind(n Node) string {
	switch n.(type) {
	case *Import:
		return "Import"
	case *If:
		return "If"
	case *Compare:
		return "Compare"
	case *Assign:
		return "Assign"
	case *AugAssign:
		return "AugAssign"
	case *Attribute:
		return "Attribute"
	case *FunctionDef:
		return "FunctionDef"
	case *Call:
		return "Call"
	case *BinOp:
		return "BinOp"
	case *Int:
		return "Int"
	case *Str:
		return "Str"
	case *Name:
		return "Name"
	case *List:
		return "List"
	case nil:
		return "nil"
	}
	return fmt.Sprintf("%T", n)
}
