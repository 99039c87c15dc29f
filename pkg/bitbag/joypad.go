package bitbag

import (
	"fmt"
	"strings"

	"nescart/pkg/cart"
)

// Buttons in the order the controller shift register reports them.
var Buttons = []string{"a", "b", "select", "start", "up", "down", "left", "right"}

// joypadPorts maps a controller number to its data register.
var joypadPorts = map[int]string{
	1: "$4016",
	2: "$4017",
}

// Joypad polls one controller port from the NMI handler and runs the
// handler section bound to each pressed button.
type Joypad struct {
	rom     *cart.Cartridge
	port    int
	handled map[string]bool
}

func NewJoypad(rom *cart.Cartridge, port int) (*Joypad, error) {
	if _, ok := joypadPorts[port]; !ok {
		return nil, fmt.Errorf("joypad port %d: want 1 or 2", port)
	}
	return &Joypad{
		rom:     rom,
		port:    port,
		handled: make(map[string]bool),
	}, nil
}

func (j *Joypad) Port() int { return j.port }

// Used reports whether any button on this port has a handler.
func (j *Joypad) Used() bool { return len(j.handled) > 0 }

// HandlerSection is the section name of the handler for button.
func (j *Joypad) HandlerSection(button string) string {
	return fmt.Sprintf("joypad%d_%s", j.port, button)
}

// Bind records that button has a handler section.
func (j *Joypad) Bind(button string) error {
	for _, b := range Buttons {
		if b == button {
			j.handled[button] = true
			return nil
		}
	}
	return fmt.Errorf("joypad %d: unknown button %q", j.port, button)
}

// Polling strobes the controller and reads all eight buttons, inlining
// the handler section of every bound button.
func (j *Joypad) Polling() string {
	if !j.Used() {
		return ""
	}
	reg := joypadPorts[j.port]

	var sb strings.Builder
	fmt.Fprintf(&sb, "  ; joypad %d\n", j.port)
	sb.WriteString("  LDA #$01\n")
	sb.WriteString("  STA $4016\n")
	sb.WriteString("  LDA #$00\n")
	sb.WriteString("  STA $4016\n")
	for _, button := range Buttons {
		fmt.Fprintf(&sb, "  LDA %s    ; %s\n", reg, button)
		if !j.handled[button] {
			continue
		}
		end := fmt.Sprintf("Joypad%d%sEnd", j.port, strings.ToUpper(button[:1])+button[1:])
		sb.WriteString("  AND #%00000001\n")
		fmt.Fprintf(&sb, "  BEQ %s\n", end)
		if body, ok := j.rom.Section(j.HandlerSection(button)); ok {
			sb.WriteString(body)
		}
		sb.WriteString(end + ":\n")
	}
	return sb.String()
}
