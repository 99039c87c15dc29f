// Package cart models the ROM image a program compiles into: named code
// sections, the variable table, registered hardware components and the
// iNES header. Finalize composes the complete assembly listing.
package cart

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Section names with a fixed role in the listing.
const (
	SectionProg  = "prog" // top-level statements, unlabeled
	SectionReset = "reset"
	SectionNMI   = "nmi"
)

// CHRBankSize is the size of one 8 KiB pattern table bank.
const CHRBankSize = 0x2000

var (
	ErrCHRSize = errors.New("invalid CHR data size")
	ErrHeader  = errors.New("invalid iNES header")
)

// Header holds the iNES header directives.
type Header struct {
	PRG       int // .inesprg: 16 KiB program banks
	CHR       int // .ineschr: 8 KiB pattern banks
	Mapper    int // .inesmap
	Mirroring int // .inesmir: 0 horizontal, 1 vertical
}

// DefaultHeader is NROM-128 with one CHR bank and vertical mirroring.
func DefaultHeader() Header {
	return Header{PRG: 1, CHR: 1, Mapper: 0, Mirroring: 1}
}

// Validate rejects headers the bank layout cannot place.
func (h Header) Validate() error {
	if h.PRG < 1 {
		return fmt.Errorf("%w: need at least one PRG bank, got %d", ErrHeader, h.PRG)
	}
	if h.CHR < 0 {
		return fmt.Errorf("%w: negative CHR bank count %d", ErrHeader, h.CHR)
	}
	return nil
}

// NESASM counts banks in 8 KiB units, PRG first. Code goes in the last
// PRG bank but one ($C000), tables and vectors in the last ($E000), and
// pattern data follows the PRG banks.

// ProgramBank is the 8 KiB bank mapped at $C000.
func (h Header) ProgramBank() int { return 2*h.PRG - 2 }

// DataBank is the 8 KiB bank mapped at $E000, ending in the vectors.
func (h Header) DataBank() int { return 2*h.PRG - 1 }

// CHRBank is the first pattern table bank.
func (h Header) CHRBank() int { return 2 * h.PRG }

type section struct {
	label string
	body  strings.Builder
}

func (s *section) text() string {
	if s.label == "" {
		return s.body.String()
	}
	return s.label + ":\n" + s.body.String()
}

// Cartridge accumulates everything emitted during one compile. It is not
// safe for concurrent use and is never shared between compiles.
type Cartridge struct {
	Header Header

	// HasReset and HasNMI record that the program defined an entry point
	// for the reset and interrupt vectors.
	HasReset bool
	HasNMI   bool

	sections map[string]*section
	active   string

	vars     map[string]Storage
	varOrder []string

	components     map[string]Component
	componentOrder []string

	pollers map[int]Poller

	chr []byte
}

// New returns an empty cartridge with the prog section active.
func New() *Cartridge {
	c := &Cartridge{
		Header:     DefaultHeader(),
		sections:   make(map[string]*section),
		vars:       make(map[string]Storage),
		components: make(map[string]Component),
		pollers:    make(map[int]Poller),
	}
	c.sections[SectionProg] = &section{}
	c.active = SectionProg
	return c
}

// sectionLabel is the assembler label for a section name.
func sectionLabel(name string) string {
	return strings.ToUpper(name)
}

// Append adds fragment to the active section.
func (c *Cartridge) Append(fragment string) {
	if fragment == "" {
		return
	}
	c.sections[c.active].body.WriteString(fragment)
}

// SetActiveSection switches the target of Append. A section's label is
// written the first time it becomes active.
func (c *Cartridge) SetActiveSection(name string) {
	if _, ok := c.sections[name]; !ok {
		s := &section{}
		if name != SectionProg {
			s.label = sectionLabel(name)
		}
		c.sections[name] = s
	}
	c.active = name
}

// ActiveSection returns the name of the section Append writes to.
func (c *Cartridge) ActiveSection() string {
	return c.active
}

// Section returns the text of a section including its label line.
func (c *Cartridge) Section(name string) (string, bool) {
	s, ok := c.sections[name]
	if !ok {
		return "", false
	}
	return s.text(), true
}

// HasSection reports whether a section has been created.
func (c *Cartridge) HasSection(name string) bool {
	_, ok := c.sections[name]
	return ok
}

func (c *Cartridge) sectionBody(name string) string {
	s, ok := c.sections[name]
	if !ok {
		return ""
	}
	return s.body.String()
}

// SetVariable binds a storage descriptor to name. Rebinding keeps the
// variable's original position.
func (c *Cartridge) SetVariable(name string, s Storage) {
	if _, ok := c.vars[name]; !ok {
		c.varOrder = append(c.varOrder, name)
	}
	c.vars[name] = s
}

// Variable returns the storage bound to name.
func (c *Cartridge) Variable(name string) (Storage, bool) {
	s, ok := c.vars[name]
	return s, ok
}

// Variables returns variable names in first-assignment order.
func (c *Cartridge) Variables() []string {
	out := make([]string, len(c.varOrder))
	copy(out, c.varOrder)
	return out
}

// Component returns the component registered under a call-target name.
func (c *Cartridge) Component(name string) (Component, bool) {
	comp, ok := c.components[name]
	return comp, ok
}

// RegisterComponent records comp under name. Registration order decides
// where its procedure lands in the program bank.
func (c *Cartridge) RegisterComponent(name string, comp Component) error {
	if _, ok := c.components[name]; ok {
		return fmt.Errorf("component %q already registered", name)
	}
	c.components[name] = comp
	c.componentOrder = append(c.componentOrder, name)
	return nil
}

// Poller returns the input poller bound to port.
func (c *Cartridge) Poller(port int) (Poller, bool) {
	p, ok := c.pollers[port]
	return p, ok
}

// AddPoller binds p to its port.
func (c *Cartridge) AddPoller(p Poller) error {
	if _, ok := c.pollers[p.Port()]; ok {
		return fmt.Errorf("poller for port %d already registered", p.Port())
	}
	c.pollers[p.Port()] = p
	return nil
}

func (c *Cartridge) sortedPorts() []int {
	ports := make([]int, 0, len(c.pollers))
	for port := range c.pollers {
		ports = append(ports, port)
	}
	sort.Ints(ports)
	return ports
}

// SetCHR sets the pattern table data placed in the CHR bank.
func (c *Cartridge) SetCHR(data []byte) error {
	if len(data)%16 != 0 {
		return fmt.Errorf("%w: %d bytes is not a whole number of tiles", ErrCHRSize, len(data))
	}
	if limit := c.Header.CHR * CHRBankSize; len(data) > limit {
		return fmt.Errorf("%w: %d bytes exceeds %d CHR bank(s)", ErrCHRSize, len(data), c.Header.CHR)
	}
	c.chr = append([]byte(nil), data...)
	return nil
}

// HasProgram reports whether the program bank has any content.
func (c *Cartridge) HasProgram() bool {
	return len(c.componentOrder) > 0 ||
		c.sectionBody(SectionProg) != "" ||
		c.HasSection(SectionReset)
}

// HasDataBank reports whether any static table was declared.
func (c *Cartridge) HasDataBank() bool {
	for _, name := range c.varOrder {
		if _, ok := c.vars[name].(StaticTable); ok {
			return true
		}
	}
	return false
}

// HasInput reports whether any input poller is in use.
func (c *Cartridge) HasInput() bool {
	for _, p := range c.pollers {
		if p.Used() {
			return true
		}
	}
	return false
}
