package cart

import (
	"fmt"
	"strings"
)

// Bank origins: the program bank at $C000, the data bank at $E000 ending in
// the vector table, pattern tables at $0000 of each CHR bank.
const (
	ProgramOrigin = 0xC000
	DataOrigin    = 0xE000
	VectorOrigin  = 0xFFFA
)

const oamDMAPreamble = "" +
	"  LDA #$00\n" +
	"  STA $2003    ; OAM address\n" +
	"  LDA #$02\n" +
	"  STA $4014    ; OAM DMA from $0200\n"

const idleLabel = "Forever"

const idleLoop = "" +
	"Forever:\n" +
	"  JMP Forever\n"

// IsReservedLabel reports whether name is a label Finalize emits itself,
// or a register name the assembler reads as an addressing mode.
func IsReservedLabel(name string) bool {
	switch strings.ToUpper(name) {
	case "A", "X", "Y":
		return true
	}
	return name == idleLabel || name == sectionLabel(SectionReset) || name == sectionLabel(SectionNMI)
}

// Finalize composes the listing. It does not modify the cartridge, so
// repeated calls return identical output.
func (c *Cartridge) Finalize() string {
	var sb strings.Builder
	sb.WriteString(c.headerBlock())
	sb.WriteString(c.reservationBlock())
	sb.WriteString(c.programBlock())
	sb.WriteString(c.interruptBlock())
	data := c.dataBlock()
	sb.WriteString(data)
	sb.WriteString(c.vectorBlock(data != ""))
	sb.WriteString(c.chrBlock())
	return sb.String()
}

func (c *Cartridge) headerBlock() string {
	h := c.Header
	return fmt.Sprintf(".inesprg %d\n.ineschr %d\n.inesmap %d\n.inesmir %d\n\n",
		h.PRG, h.CHR, h.Mapper, h.Mirroring)
}

func (c *Cartridge) reservationBlock() string {
	var sb strings.Builder
	for _, name := range c.varOrder {
		if r, ok := c.vars[name].(ScalarReservation); ok {
			fmt.Fprintf(&sb, "%s .rs %d\n", name, r.Count)
		}
	}
	if sb.Len() == 0 {
		return ""
	}
	return "  .rsset $0000\n" + sb.String() + "\n"
}

func (c *Cartridge) programBlock() string {
	var sb strings.Builder
	for _, name := range c.componentOrder {
		if proc := c.components[name].Procedure(); proc != "" {
			sb.WriteString(proc)
			sb.WriteString("\n")
		}
	}
	sb.WriteString(c.sectionBody(SectionProg))
	if reset, ok := c.Section(SectionReset); ok {
		sb.WriteString(reset)
		sb.WriteString(idleLoop)
	}
	if sb.Len() == 0 {
		return ""
	}
	return fmt.Sprintf("  .bank %d\n  .org $%04X\n\n", c.Header.ProgramBank(), ProgramOrigin) + sb.String() + "\n"
}

// emitsInterrupt reports whether the listing carries an NMI handler.
func (c *Cartridge) emitsInterrupt() bool {
	return c.HasInput() || c.HasSection(SectionNMI)
}

func (c *Cartridge) interruptBlock() string {
	if !c.emitsInterrupt() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(sectionLabel(SectionNMI) + ":\n")
	sb.WriteString(oamDMAPreamble)
	sb.WriteString(c.sectionBody(SectionNMI))
	for _, port := range c.sortedPorts() {
		sb.WriteString(c.pollers[port].Polling())
	}
	sb.WriteString("  RTI\n\n")
	return sb.String()
}

func (c *Cartridge) dataBlock() string {
	var sb strings.Builder
	for _, name := range c.varOrder {
		if t, ok := c.vars[name].(StaticTable); ok {
			sb.WriteString(name + ":\n")
			sb.WriteString(dbLines(t.Values))
		}
	}
	if sb.Len() == 0 {
		return ""
	}
	return fmt.Sprintf("  .bank %d\n  .org $%04X\n\n", c.Header.DataBank(), DataOrigin) + sb.String() + "\n"
}

func (c *Cartridge) vectorBlock(inDataBank bool) string {
	var sb strings.Builder
	if !inDataBank {
		fmt.Fprintf(&sb, "  .bank %d\n", c.Header.DataBank())
	}
	fmt.Fprintf(&sb, "  .org $%04X\n", VectorOrigin)
	if c.HasNMI && c.emitsInterrupt() {
		sb.WriteString("  .dw " + sectionLabel(SectionNMI) + "\n")
	} else {
		sb.WriteString("  .dw 0\n")
	}
	if c.HasReset && c.HasSection(SectionReset) {
		sb.WriteString("  .dw " + sectionLabel(SectionReset) + "\n")
	} else {
		sb.WriteString("  .dw 0\n")
	}
	sb.WriteString("  .dw 0\n\n")
	return sb.String()
}

func (c *Cartridge) chrBlock() string {
	if len(c.chr) == 0 {
		return ""
	}
	var sb strings.Builder
	bank := c.Header.CHRBank()
	for start := 0; start < len(c.chr); start += CHRBankSize {
		end := min(start+CHRBankSize, len(c.chr))
		fmt.Fprintf(&sb, "  .bank %d\n  .org $0000\n", bank)
		sb.WriteString(dbLines(c.chr[start:end]))
		sb.WriteString("\n")
		bank++
	}
	return sb.String()
}
