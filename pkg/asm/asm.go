// Package asm checks generated NESASM listings before they are handed to
// the assembler: labels must be unique and defined, mnemonics must be
// 6502 instructions, and no bank may overflow its 8 KiB window.
package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// BankSize is the size of one NESASM bank.
const BankSize = 0x2000

var mnemonics = map[string]bool{
	"ADC": true, "AND": true, "ASL": true, "BCC": true, "BCS": true, "BEQ": true,
	"BIT": true, "BMI": true, "BNE": true, "BPL": true, "BRK": true, "BVC": true,
	"BVS": true, "CLC": true, "CLD": true, "CLI": true, "CLV": true, "CMP": true,
	"CPX": true, "CPY": true, "DEC": true, "DEX": true, "DEY": true, "EOR": true,
	"INC": true, "INX": true, "INY": true, "JMP": true, "JSR": true, "LDA": true,
	"LDX": true, "LDY": true, "LSR": true, "NOP": true, "ORA": true, "PHA": true,
	"PHP": true, "PLA": true, "PLP": true, "ROL": true, "ROR": true, "RTI": true,
	"RTS": true, "SBC": true, "SEC": true, "SED": true, "SEI": true, "STA": true,
	"STX": true, "STY": true, "TAX": true, "TAY": true, "TSX": true, "TXA": true,
	"TXS": true, "TYA": true,
}

var branches = map[string]bool{
	"BCC": true, "BCS": true, "BEQ": true, "BMI": true,
	"BNE": true, "BPL": true, "BVC": true, "BVS": true,
}

// Symbol is a label or a zero-page reservation.
type Symbol struct {
	Name     string
	Bank     int
	Address  uint32
	Line     int
	Reserved bool // defined with .rs
}

// Listing is what Check learned about a valid listing.
type Listing struct {
	Symbols map[string]Symbol
	// BankUsage is the highest offset used in each bank.
	BankUsage map[int]int
}

type Checker struct {
	symbols map[string]Symbol
	usage   map[int]int
}

type parsedLine struct {
	lineNo    int
	labels    []string
	mnemonic  string
	operand   string
	reserveAs string // NAME in "NAME .rs N"
}

func NewChecker() *Checker {
	return &Checker{
		symbols: make(map[string]Symbol),
		usage:   make(map[int]int),
	}
}

// Check validates a listing.
func Check(code string) (*Listing, error) {
	return NewChecker().Check(code)
}

func (c *Checker) Check(code string) (*Listing, error) {
	lines := strings.Split(code, "\n")
	parsed := make([]parsedLine, 0, len(lines))
	for i, raw := range lines {
		p, err := parseLine(raw, i+1)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, p)
	}

	if err := c.pass1(parsed); err != nil {
		return nil, err
	}
	if err := c.pass2(parsed); err != nil {
		return nil, err
	}
	return &Listing{Symbols: c.symbols, BankUsage: c.usage}, nil
}

// pass1 assigns addresses to labels and reservations.
func (c *Checker) pass1(lines []parsedLine) error {
	var (
		bank     = -1
		base     uint32
		address  uint32
		rsOffset uint32
		bases    = make(map[int]uint32)
	)

	define := func(name string, sym Symbol) error {
		if prev, exists := c.symbols[name]; exists {
			return fmt.Errorf("duplicate label '%s' on line %d (first defined on line %d)", name, sym.Line, prev.Line)
		}
		c.symbols[name] = sym
		return nil
	}

	for _, p := range lines {
		for _, lbl := range p.labels {
			if bank < 0 {
				return fmt.Errorf("label '%s' on line %d is outside any bank", lbl, p.lineNo)
			}
			if err := define(lbl, Symbol{Name: lbl, Bank: bank, Address: address, Line: p.lineNo}); err != nil {
				return err
			}
		}

		if p.reserveAs != "" {
			n, err := parseNumber(p.operand)
			if err != nil {
				return fmt.Errorf("invalid .rs size on line %d: %s", p.lineNo, p.operand)
			}
			if err := define(p.reserveAs, Symbol{Name: p.reserveAs, Address: rsOffset, Line: p.lineNo, Reserved: true}); err != nil {
				return err
			}
			rsOffset += n
			continue
		}

		if p.mnemonic == "" {
			continue
		}

		var size uint32
		switch p.mnemonic {
		case ".INESPRG", ".INESCHR", ".INESMAP", ".INESMIR":
			if _, err := parseNumber(p.operand); err != nil {
				return fmt.Errorf("%s expects a number on line %d", strings.ToLower(p.mnemonic), p.lineNo)
			}
			continue

		case ".RSSET":
			n, err := parseNumber(p.operand)
			if err != nil {
				return fmt.Errorf("invalid .rsset value on line %d: %s", p.lineNo, p.operand)
			}
			rsOffset = n
			continue

		case ".BANK":
			n, err := parseNumber(p.operand)
			if err != nil {
				return fmt.Errorf("invalid .bank value on line %d: %s", p.lineNo, p.operand)
			}
			bank = int(n)
			base, address = bases[bank], bases[bank]
			continue

		case ".ORG":
			if bank < 0 {
				return fmt.Errorf(".org outside any bank on line %d", p.lineNo)
			}
			target, err := parseNumber(p.operand)
			if err != nil || target > 0xFFFF {
				return fmt.Errorf("invalid .org value on line %d: %s", p.lineNo, p.operand)
			}
			if _, seen := c.usage[bank]; !seen {
				base = target &^ (BankSize - 1)
				bases[bank] = base
				c.usage[bank] = 0
			}
			if target < base || target > base+BankSize {
				return fmt.Errorf(".org $%04X on line %d is outside bank %d", target, p.lineNo, bank)
			}
			address = target
			continue

		case ".DB":
			size = uint32(len(splitOperands(p.operand)))
		case ".DW":
			size = 2 * uint32(len(splitOperands(p.operand)))
		case ".INCBIN":
			// size known only to the assembler
			continue

		default:
			length, err := c.instructionLength(p)
			if err != nil {
				return err
			}
			size = length
		}

		if bank < 0 {
			return fmt.Errorf("code outside any bank on line %d", p.lineNo)
		}
		if _, seen := c.usage[bank]; !seen {
			return fmt.Errorf("code before .org in bank %d on line %d", bank, p.lineNo)
		}
		address += size
		if address > base+BankSize {
			return fmt.Errorf("bank %d overflows near line %d", bank, p.lineNo)
		}
		if used := int(address - base); used > c.usage[bank] {
			c.usage[bank] = used
		}
	}
	return nil
}

// pass2 checks every symbolic operand resolves.
func (c *Checker) pass2(lines []parsedLine) error {
	for _, p := range lines {
		if p.mnemonic == "" || p.reserveAs != "" {
			continue
		}
		var refs []string
		switch p.mnemonic {
		case ".DB", ".DW":
			refs = splitOperands(p.operand)
		case ".INESPRG", ".INESCHR", ".INESMAP", ".INESMIR", ".RSSET", ".BANK", ".ORG", ".INCBIN":
			continue
		default:
			if p.operand != "" && !strings.EqualFold(p.operand, "A") {
				refs = []string{operandValue(p.operand)}
			}
		}
		for _, ref := range refs {
			if _, err := parseNumber(ref); err == nil {
				continue
			}
			if !isIdentifier(ref) {
				return fmt.Errorf("invalid operand '%s' on line %d", ref, p.lineNo)
			}
			if _, ok := c.symbols[ref]; !ok {
				return fmt.Errorf("undefined label '%s' on line %d", ref, p.lineNo)
			}
		}
	}
	return nil
}

// instructionLength returns the encoded size of a 6502 instruction.
func (c *Checker) instructionLength(p parsedLine) (uint32, error) {
	if !mnemonics[p.mnemonic] {
		return 0, fmt.Errorf("unknown instruction on line %d: %s", p.lineNo, p.mnemonic)
	}
	op := p.operand
	switch {
	case op == "" || strings.EqualFold(op, "A"):
		return 1, nil
	case strings.HasPrefix(op, "#"):
		return 2, nil
	case branches[p.mnemonic]:
		return 2, nil
	case p.mnemonic == "JMP" || p.mnemonic == "JSR":
		return 3, nil
	case strings.HasPrefix(op, "["), strings.HasPrefix(op, "("):
		// indirect indexed: zero-page pointer
		return 2, nil
	}

	value := operandValue(op)
	if n, err := parseNumber(value); err == nil {
		if n <= 0xFF && len(strings.TrimLeft(value, "$")) <= 2 {
			return 2, nil
		}
		return 3, nil
	}
	if sym, ok := c.symbols[value]; ok && sym.Reserved && sym.Address <= 0xFF {
		return 2, nil
	}
	return 3, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}
		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}
		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}
		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	fields := strings.Fields(line)
	if len(fields) >= 2 && strings.EqualFold(fields[1], ".rs") {
		if !isIdentifier(fields[0]) {
			return p, fmt.Errorf("invalid reservation name '%s' on line %d", fields[0], lineNo)
		}
		if len(fields) != 3 {
			return p, fmt.Errorf(".rs expects one size on line %d", lineNo)
		}
		p.reserveAs = fields[0]
		p.mnemonic = ".RS"
		p.operand = fields[2]
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	p.operand = strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	if strings.HasPrefix(p.mnemonic, ".") {
		switch p.mnemonic {
		case ".INESPRG", ".INESCHR", ".INESMAP", ".INESMIR", ".RSSET", ".BANK", ".ORG":
			if p.operand == "" || strings.ContainsAny(p.operand, " \t,") {
				return p, fmt.Errorf("%s expects exactly one operand on line %d", strings.ToLower(p.mnemonic), lineNo)
			}
		case ".DB", ".DW", ".INCBIN":
			if p.operand == "" {
				return p, fmt.Errorf("%s expects operands on line %d", strings.ToLower(p.mnemonic), lineNo)
			}
		default:
			return p, fmt.Errorf("unknown directive on line %d: %s", lineNo, fields[0])
		}
	}
	return p, nil
}

func stripComments(line string) string {
	if semicolon := strings.IndexByte(line, ';'); semicolon >= 0 {
		return line[:semicolon]
	}
	return line
}

func splitOperands(operand string) []string {
	parts := strings.Split(operand, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// operandValue strips addressing-mode decoration: #imm, (zp),y, abs,x.
func operandValue(op string) string {
	op = strings.TrimPrefix(op, "#")
	op = strings.Trim(op, "()[]")
	if comma := strings.IndexByte(op, ','); comma >= 0 {
		op = op[:comma]
	}
	return strings.Trim(strings.TrimSpace(op), "()[]")
}

// parseNumber accepts $hex, %binary and decimal.
func parseNumber(token string) (uint32, error) {
	var (
		v   uint64
		err error
	)
	switch {
	case strings.HasPrefix(token, "$"):
		v, err = strconv.ParseUint(token[1:], 16, 32)
	case strings.HasPrefix(token, "%"):
		v, err = strconv.ParseUint(token[1:], 2, 32)
	default:
		v, err = strconv.ParseUint(token, 10, 32)
	}
	return uint32(v), err
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}
