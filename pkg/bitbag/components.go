package bitbag

import (
	"errors"
	"fmt"
	"strings"

	"nescart/pkg/cart"
	"nescart/pkg/hw"
)

// ErrArguments reports a component call with the wrong arguments.
var ErrArguments = errors.New("bad component arguments")

// counter tracks use of a component.
type counter struct {
	calls int
}

func (c *counter) Used() bool { return c.calls > 0 }

func noArgs(name string, args []cart.Arg) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: %s takes no arguments, got %d", ErrArguments, name, len(args))
	}
	return nil
}

// WaitVBlank spins until the PPU reports vertical blank.
type WaitVBlank struct {
	counter
}

func (*WaitVBlank) Procedure() string {
	return "" +
		"WaitVBlank:\n" +
		"  BIT $2002\n" +
		"  BPL WaitVBlank\n" +
		"  RTS\n"
}

func (w *WaitVBlank) Invoke(args []cart.Arg) (cart.Invocation, error) {
	if err := noArgs("wait_vblank", args); err != nil {
		return cart.Invocation{}, err
	}
	w.calls++
	return cart.Invocation{Code: "  JSR WaitVBlank\n"}, nil
}

// ClearMem zeroes work RAM and parks every sprite below the screen.
type ClearMem struct {
	counter
}

func (*ClearMem) Procedure() string {
	var sb strings.Builder
	sb.WriteString("ClearMem:\n")
	sb.WriteString("  LDA #$00\n")
	sb.WriteString("  LDX #$00\n")
	sb.WriteString("ClearMemLoop:\n")
	for _, page := range []int{0x00, 0x01, 0x03, 0x04, 0x05, 0x06, 0x07} {
		fmt.Fprintf(&sb, "  STA $%04X,x\n", page<<8)
	}
	sb.WriteString("  LDA #$FE\n")
	fmt.Fprintf(&sb, "  STA $%04X,x    ; sprites off screen\n", hw.OAMPage)
	sb.WriteString("  LDA #$00\n")
	sb.WriteString("  INX\n")
	sb.WriteString("  BNE ClearMemLoop\n")
	sb.WriteString("  RTS\n")
	return sb.String()
}

func (m *ClearMem) Invoke(args []cart.Arg) (cart.Invocation, error) {
	if err := noArgs("clearmem", args); err != nil {
		return cart.Invocation{}, err
	}
	m.calls++
	return cart.Invocation{Code: "  JSR ClearMem\n"}, nil
}

// Sprite hands out references to OAM entries: get_sprite(n).x = 10.
type Sprite struct {
	counter
}

func (*Sprite) Procedure() string { return "" }

func (s *Sprite) Invoke(args []cart.Arg) (cart.Invocation, error) {
	if len(args) != 1 || args[0].IsName() {
		return cart.Invocation{}, fmt.Errorf("%w: get_sprite takes one integer index", ErrArguments)
	}
	obj, err := hw.NewSprite(args[0].Value)
	if err != nil {
		return cart.Invocation{}, err
	}
	s.calls++
	return cart.Invocation{Object: &obj}, nil
}

// maxPalette is the size of PPU palette RAM.
const maxPalette = 32

// LoadPalette copies a static table into palette RAM at $3F00.
type LoadPalette struct {
	counter
	rom *cart.Cartridge
}

func (*LoadPalette) Procedure() string { return "" }

func (p *LoadPalette) Invoke(args []cart.Arg) (cart.Invocation, error) {
	if len(args) != 1 || !args[0].IsName() {
		return cart.Invocation{}, fmt.Errorf("%w: load_palette takes one table name", ErrArguments)
	}
	name := args[0].Name
	s, ok := p.rom.Variable(name)
	if !ok {
		return cart.Invocation{}, fmt.Errorf("%w: load_palette: undefined table %q", ErrArguments, name)
	}
	table, ok := s.(cart.StaticTable)
	if !ok {
		return cart.Invocation{}, fmt.Errorf("%w: load_palette: %q is not a table", ErrArguments, name)
	}
	if len(table.Values) == 0 || len(table.Values) > maxPalette {
		return cart.Invocation{}, fmt.Errorf("%w: load_palette: %q has %d entries (want 1..%d)",
			ErrArguments, name, len(table.Values), maxPalette)
	}

	loop := fmt.Sprintf("LoadPalette%dLoop", p.calls)
	p.calls++

	var sb strings.Builder
	sb.WriteString("  LDA $2002\n")
	sb.WriteString("  LDA #$3F\n")
	sb.WriteString("  STA $2006\n")
	sb.WriteString("  LDA #$00\n")
	sb.WriteString("  STA $2006\n")
	sb.WriteString("  LDX #$00\n")
	sb.WriteString(loop + ":\n")
	fmt.Fprintf(&sb, "  LDA %s,x\n", name)
	sb.WriteString("  STA $2007\n")
	sb.WriteString("  INX\n")
	fmt.Fprintf(&sb, "  CPX #$%02X\n", len(table.Values))
	fmt.Fprintf(&sb, "  BNE %s\n", loop)
	return cart.Invocation{Code: sb.String()}, nil
}
