// Package hw maps hardware objects and their attribute names to the
// memory-mapped addresses the generated code reads and writes.
package hw

import (
	"errors"
	"fmt"
)

// Kind identifies a family of hardware registers.
type Kind int

const (
	PPU    Kind = iota // picture processing unit, $2000-$2007
	APU                // audio and I/O registers, $4000-$4017
	Sprite             // one 4-byte entry of the OAM shadow page at $0200
)

func (k Kind) String() string {
	switch k {
	case PPU:
		return "ppu"
	case APU:
		return "apu"
	case Sprite:
		return "sprite"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// SpriteCount is the number of entries in the OAM shadow page.
const SpriteCount = 64

// OAMPage is the base of the OAM shadow copied to the PPU by DMA each frame.
const OAMPage = 0x0200

var (
	ErrUnknownObject    = errors.New("unknown hardware object")
	ErrUnknownAttribute = errors.New("unknown hardware attribute")
	ErrSpriteIndex      = errors.New("sprite index out of range")
)

var ppuRegisters = map[string]uint16{
	"ctrl":     0x2000,
	"mask":     0x2001,
	"status":   0x2002,
	"oam_addr": 0x2003,
	"oam_data": 0x2004,
	"scroll":   0x2005,
	"addr":     0x2006,
	"data":     0x2007,
}

var apuRegisters = map[string]uint16{
	"pulse1_vol":    0x4000,
	"pulse1_sweep":  0x4001,
	"pulse1_lo":     0x4002,
	"pulse1_hi":     0x4003,
	"pulse2_vol":    0x4004,
	"pulse2_sweep":  0x4005,
	"pulse2_lo":     0x4006,
	"pulse2_hi":     0x4007,
	"triangle_ctrl": 0x4008,
	"triangle_lo":   0x400A,
	"triangle_hi":   0x400B,
	"noise_vol":     0x400C,
	"noise_lo":      0x400E,
	"noise_hi":      0x400F,
	"dmc_freq":      0x4010,
	"dmc_raw":       0x4011,
	"dmc_start":     0x4012,
	"dmc_len":       0x4013,
	"oam_dma":       0x4014,
	"status":        0x4015,
	"frame_counter": 0x4017,
}

// Byte offsets inside one OAM entry.
var spriteFields = map[string]uint16{
	"y":      0,
	"tile":   1,
	"attrib": 2,
	"x":      3,
}

// Object is a hardware object reference produced while compiling, either a
// named register block or an indexed sprite.
type Object struct {
	Kind  Kind
	Index int
}

func (o Object) String() string {
	if o.Kind == Sprite {
		return fmt.Sprintf("sprite(%d)", o.Index)
	}
	return o.Kind.String()
}

// Lookup returns the register block bound to a global name.
func Lookup(name string) (Object, bool) {
	switch name {
	case "ppu":
		return Object{Kind: PPU}, true
	case "apu":
		return Object{Kind: APU}, true
	}
	return Object{}, false
}

// NewSprite returns the OAM entry with the given index.
func NewSprite(index int) (Object, error) {
	if index < 0 || index >= SpriteCount {
		return Object{}, fmt.Errorf("%w: %d (want 0..%d)", ErrSpriteIndex, index, SpriteCount-1)
	}
	return Object{Kind: Sprite, Index: index}, nil
}

// Address resolves attr on o to an absolute address.
func (o Object) Address(attr string) (uint16, error) {
	var (
		addr uint16
		ok   bool
	)
	switch o.Kind {
	case PPU:
		addr, ok = ppuRegisters[attr]
	case APU:
		addr, ok = apuRegisters[attr]
	case Sprite:
		if o.Index < 0 || o.Index >= SpriteCount {
			return 0, fmt.Errorf("%w: %d", ErrSpriteIndex, o.Index)
		}
		var off uint16
		off, ok = spriteFields[attr]
		addr = OAMPage + uint16(o.Index)*4 + off
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownObject, o.Kind)
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s.%s", ErrUnknownAttribute, o, attr)
	}
	return addr, nil
}
