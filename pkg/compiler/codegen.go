package compiler

import (
	"fmt"
	"regexp"
	"strconv"

	"nescart/pkg/bitbag"
	"nescart/pkg/cart"
	"nescart/pkg/hw"
)

// reservationHelper is the call that reserves zero-page bytes: x = rs(1).
const reservationHelper = "rs"

var joypadHandler = regexp.MustCompile(`^joypad([12])_(a|b|select|start|up|down|left|right)$`)

const resetPreamble = "" +
	"  SEI          ; disable IRQs\n" +
	"  CLD          ; disable decimal mode\n" +
	"  LDX #$40\n" +
	"  STX $4017    ; disable APU frame IRQ\n" +
	"  LDX #$FF\n" +
	"  TXS          ; set up stack\n" +
	"  INX          ; now X = 0\n" +
	"  STX $2000    ; disable NMI\n" +
	"  STX $2001    ; disable rendering\n" +
	"  STX $4010    ; disable DMC IRQs\n"

// visitor walks one program tree and emits into rom. A visitor lives for
// exactly one compile.
type visitor struct {
	rom    *cart.Cartridge
	inFunc bool
}

func (v *visitor) visitModule(m *Module) error {
	for _, stmt := range m.Body {
		if err := v.visitStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (v *visitor) visitStmt(n Node) error {
	switch n := n.(type) {
	case *Import:
		return nil
	case *If:
		return v.visitIf(n)
	case *FunctionDef:
		return v.visitFunctionDef(n)
	case *Assign:
		return v.visitAssign(n)
	case *AugAssign:
		return v.visitAugAssign(n)
	case *Call:
		_, err := v.call(n)
		return err
	case nil:
		return unsupported(nil, "missing statement")
	}
	return unsupported(n, "not a statement")
}

// visitIf accepts only `if __name__ == "__main__":`, whose body never
// runs on the console.
func (v *visitor) visitIf(n *If) error {
	if isMainGuard(n.Test) {
		return nil
	}
	return unsupported(n, "conditionals are not compiled")
}

func isMainGuard(test Node) bool {
	cmp, ok := test.(*Compare)
	if !ok || cmp.Op != "==" {
		return false
	}
	isName := func(n Node) bool {
		name, ok := n.(*Name)
		return ok && name.ID == "__name__"
	}
	isMain := func(n Node) bool {
		s, ok := n.(*Str)
		return ok && s.Value == "__main__"
	}
	return (isName(cmp.Left) && isMain(cmp.Right)) || (isMain(cmp.Left) && isName(cmp.Right))
}

func (v *visitor) visitFunctionDef(n *FunctionDef) error {
	if v.inFunc {
		return unsupported(n, "nested function %s", n.Name)
	}
	if v.rom.HasSection(n.Name) {
		return unsupported(n, "function %s defined twice", n.Name)
	}

	switch {
	case n.Name == cart.SectionReset:
		v.rom.HasReset = true
		v.rom.SetActiveSection(n.Name)
		v.rom.Append(resetPreamble)

	case n.Name == cart.SectionNMI:
		v.rom.HasNMI = true
		v.rom.SetActiveSection(n.Name)

	default:
		m := joypadHandler.FindStringSubmatch(n.Name)
		if m == nil {
			return unsupported(n, "function %s is not an entry point or joypad handler", n.Name)
		}
		port, _ := strconv.Atoi(m[1])
		jp, err := v.joypad(port)
		if err != nil {
			return invalidWrap(n, err, "joypad %d", port)
		}
		if err := jp.Bind(m[2]); err != nil {
			return invalidWrap(n, err, "handler %s", n.Name)
		}
		v.rom.HasNMI = true
		v.rom.SetActiveSection(n.Name)
	}

	v.inFunc = true
	defer func() {
		v.inFunc = false
		v.rom.SetActiveSection(cart.SectionProg)
	}()
	for _, stmt := range n.Body {
		if err := v.visitStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

// joypad returns the poller for port, registering it on first use.
func (v *visitor) joypad(port int) (*bitbag.Joypad, error) {
	if p, ok := v.rom.Poller(port); ok {
		jp, ok := p.(*bitbag.Joypad)
		if !ok {
			return nil, fmt.Errorf("port %d is bound to %T", port, p)
		}
		return jp, nil
	}
	jp, err := bitbag.NewJoypad(v.rom, port)
	if err != nil {
		return nil, err
	}
	if err := v.rom.AddPoller(jp); err != nil {
		return nil, err
	}
	return jp, nil
}

func (v *visitor) visitAssign(n *Assign) error {
	if len(n.Targets) != 1 {
		return newError(MultipleAssignmentTargets, n, nil, "%d targets", len(n.Targets))
	}
	target := n.Targets[0]

	switch value := n.Value.(type) {
	case *Call:
		if name, ok := calleeName(value); ok && name == reservationHelper {
			return v.reserve(target, value)
		}
	case *List:
		return v.table(target, value)
	}

	if attr, ok := target.(*Attribute); ok {
		return v.store(n, attr)
	}
	return unsupported(n, "assignment to %s", nodeKind(target))
}

// variableName returns the name a storage pattern binds.
func variableName(target Node) (string, error) {
	name, ok := target.(*Name)
	if !ok {
		return "", invalid(target, "storage must be bound to a plain name")
	}
	if _, isHW := hw.Lookup(name.ID); isHW {
		return "", invalid(target, "%s names a hardware object", name.ID)
	}
	if cart.IsReservedLabel(name.ID) || bitbag.IsGeneratedLabel(name.ID) {
		return "", invalid(target, "%s collides with a generated label", name.ID)
	}
	return name.ID, nil
}

// reserve handles name = rs(count).
func (v *visitor) reserve(target Node, call *Call) error {
	name, err := variableName(target)
	if err != nil {
		return err
	}
	if len(call.Args) != 1 {
		return invalid(call, "%s takes one byte count, got %d arguments", reservationHelper, len(call.Args))
	}
	count, err := fold(call.Args[0])
	if err != nil {
		return err
	}
	if count <= 0 {
		return invalid(call.Args[0], "byte count must be positive, got %d", count)
	}
	v.rom.SetVariable(name, cart.ScalarReservation{Count: count})
	return nil
}

// table handles name = [v0, v1, ...].
func (v *visitor) table(target Node, list *List) error {
	name, err := variableName(target)
	if err != nil {
		return err
	}
	values := make([]byte, 0, len(list.Elts))
	for _, elt := range list.Elts {
		b, err := foldByte(elt)
		if err != nil {
			return err
		}
		values = append(values, b)
	}
	v.rom.SetVariable(name, cart.StaticTable{Values: values})
	return nil
}

// store handles hw.attr = value.
func (v *visitor) store(n *Assign, target *Attribute) error {
	stack, err := v.operands(n.Value)
	if err != nil {
		return err
	}
	imm, err := matchStore(n, stack)
	if err != nil {
		return err
	}
	addr, err := v.address(target)
	if err != nil {
		return err
	}
	v.rom.Append(fmt.Sprintf("  LDA #%d\n", imm))
	v.rom.Append(fmt.Sprintf("  STA $%04X\n", addr))
	return nil
}

// visitAugAssign handles hw.attr += value.
func (v *visitor) visitAugAssign(n *AugAssign) error {
	stack, err := v.operands(n.Value)
	if err != nil {
		return err
	}
	stack = append(stack, operand{kind: opSymbol, text: n.Op})
	target, err := v.operands(n.Target)
	if err != nil {
		return err
	}
	stack = append(stack, target...)

	m, err := matchAugAdd(n, stack)
	if err != nil {
		return err
	}
	addr, err := m.obj.Address(m.attr)
	if err != nil {
		return invalidWrap(n.Target, err, "augmented assignment target")
	}
	v.rom.Append(fmt.Sprintf("  LDA $%04X\n", addr))
	v.rom.Append("  CLC\n")
	v.rom.Append(fmt.Sprintf("  ADC #%d\n", m.imm))
	v.rom.Append(fmt.Sprintf("  STA $%04X\n", addr))
	return nil
}

// address resolves an attribute path such as ppu.ctrl to its address.
func (v *visitor) address(target *Attribute) (uint16, error) {
	stack, err := v.operands(target)
	if err != nil {
		return 0, err
	}
	obj, attr, err := matchAttributePath(target, stack)
	if err != nil {
		return 0, err
	}
	addr, err := obj.Address(attr)
	if err != nil {
		return 0, invalidWrap(target, err, "store target")
	}
	return addr, nil
}

func calleeName(call *Call) (string, bool) {
	name, ok := call.Func.(*Name)
	if !ok {
		return "", false
	}
	return name.ID, true
}

// call compiles a component call. The first call to a name registers the
// component; every call appends its invocation fragment.
func (v *visitor) call(n *Call) (cart.Invocation, error) {
	name, ok := calleeName(n)
	if !ok {
		return cart.Invocation{}, unsupported(n, "call through %s", nodeKind(n.Func))
	}
	if name == reservationHelper {
		return cart.Invocation{}, unsupported(n, "%s() is only valid as an assignment value", reservationHelper)
	}

	comp, ok := v.rom.Component(name)
	if !ok {
		factory, known := bitbag.Lookup(name)
		if !known {
			return cart.Invocation{}, unsupported(n, "unknown call target %s", name)
		}
		comp = factory(v.rom)
		if err := v.rom.RegisterComponent(name, comp); err != nil {
			return cart.Invocation{}, invalidWrap(n, err, "%s", name)
		}
	}

	args := make([]cart.Arg, 0, len(n.Args))
	for _, a := range n.Args {
		if ref, ok := a.(*Name); ok {
			args = append(args, cart.Arg{Name: ref.ID})
			continue
		}
		val, err := fold(a)
		if err != nil {
			return cart.Invocation{}, err
		}
		args = append(args, cart.Arg{Value: val})
	}

	inv, err := comp.Invoke(args)
	if err != nil {
		return cart.Invocation{}, invalidWrap(n, err, "%s", name)
	}
	v.rom.Append(inv.Code)
	return inv, nil
}
