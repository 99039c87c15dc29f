package asm

import (
	"strings"
	"testing"
)

const validListing = `.inesprg 1
.ineschr 1
.inesmap 0
.inesmir 1

  .rsset $0000
mario_x .rs 1
lives .rs 2

  .bank 0
  .org $C000

WaitVBlank:
  BIT $2002
  BPL WaitVBlank
  RTS

RESET:
  SEI
  LDA #%00000001
  STA mario_x
  LDX #$00
Loop:
  LDA palette,x
  STA $3F00,x
  INX
  CPX #$04
  BNE Loop
  ASL A
Forever:
  JMP Forever

NMI:
  RTI

  .bank 1
  .org $E000

palette:
  .db $0F,$30,$16,$27

  .org $FFFA
  .dw NMI
  .dw RESET
  .dw 0
`

func TestCheck_Valid(t *testing.T) {
	listing, err := Check(validListing)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	tests := []struct {
		name     string
		bank     int
		address  uint32
		reserved bool
	}{
		{"mario_x", 0, 0x0000, true},
		{"lives", 0, 0x0001, true},
		{"WaitVBlank", 0, 0xC000, false},
		{"RESET", 0, 0xC006, false},
		{"palette", 1, 0xE000, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sym, ok := listing.Symbols[tc.name]
			if !ok {
				t.Fatalf("symbol %s not found", tc.name)
			}
			if sym.Bank != tc.bank || sym.Address != tc.address || sym.Reserved != tc.reserved {
				t.Errorf("symbol %s = %+v; want bank %d address $%04X reserved %v", tc.name, sym, tc.bank, tc.address, tc.reserved)
			}
		})
	}

	if got := listing.BankUsage[1]; got != BankSize {
		t.Errorf("bank 1 usage = %d; want %d", got, BankSize)
	}
}

func TestCheck_InstructionSizes(t *testing.T) {
	code := "  .bank 0\n  .org $C000\n" +
		"  LDA #1\n" + // 2
		"  STA $10\n" + // 2
		"  STA $0200,x\n" + // 3
		"  LDA ($10),y\n" + // 2
		"  JMP End\n" + // 3
		"  TAX\n" + // 1
		"End:\n"
	listing, err := Check(code)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if got := listing.Symbols["End"].Address; got != 0xC00D {
		t.Errorf("End = $%04X; want $C00D", got)
	}
}

func TestCheck_Errors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{
			name: "duplicate label",
			code: "  .bank 0\n  .org $C000\nA1:\n  NOP\nA1:\n  NOP\n",
			want: "duplicate label 'A1'",
		},
		{
			name: "undefined label",
			code: "  .bank 0\n  .org $C000\n  JSR Missing\n",
			want: "undefined label 'Missing'",
		},
		{
			name: "unknown instruction",
			code: "  .bank 0\n  .org $C000\n  HLT\n",
			want: "unknown instruction",
		},
		{
			name: "unknown directive",
			code: "  .bank 0\n  .segment \"CODE\"\n",
			want: "unknown directive",
		},
		{
			name: "label outside bank",
			code: "Start:\n  NOP\n",
			want: "outside any bank",
		},
		{
			name: "code before org",
			code: "  .bank 0\n  NOP\n",
			want: "before .org",
		},
		{
			name: "org outside bank window",
			code: "  .bank 0\n  .org $C000\n  .org $8000\n",
			want: "outside bank 0",
		},
		{
			name: "undefined data reference",
			code: "  .bank 1\n  .org $FFFA\n  .dw NMI\n",
			want: "undefined label 'NMI'",
		},
		{
			name: "bad rs size",
			code: "  .rsset $0000\nx .rs many\n",
			want: "invalid .rs size",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Check(tc.code)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %q; want it to contain %q", err, tc.want)
			}
		})
	}
}

func TestCheck_BankOverflow(t *testing.T) {
	var b strings.Builder
	b.WriteString("  .bank 1\n  .org $E000\n")
	for i := 0; i < BankSize/16+1; i++ {
		b.WriteString("  .db $00,$00,$00,$00,$00,$00,$00,$00,$00,$00,$00,$00,$00,$00,$00,$00\n")
	}
	_, err := Check(b.String())
	if err == nil || !strings.Contains(err.Error(), "overflows") {
		t.Errorf("expected overflow error, got %v", err)
	}
}

func TestHelperFunctions(t *testing.T) {
	idents := []struct {
		input string
		want  bool
	}{
		{"abc", true},
		{"_abc", true},
		{"Joypad1AEnd", true},
		{"1abc", false},
		{"", false},
		{"ab-c", false},
	}
	for _, tc := range idents {
		if got := isIdentifier(tc.input); got != tc.want {
			t.Errorf("isIdentifier(%q) = %v; want %v", tc.input, got, tc.want)
		}
	}

	numbers := []struct {
		input string
		want  uint32
		ok    bool
	}{
		{"$FFFA", 0xFFFA, true},
		{"$0f", 0x0F, true},
		{"%00000001", 1, true},
		{"255", 255, true},
		{"$", 0, false},
		{"palette", 0, false},
	}
	for _, tc := range numbers {
		got, err := parseNumber(tc.input)
		if (err == nil) != tc.ok || (tc.ok && got != tc.want) {
			t.Errorf("parseNumber(%q) = %d, %v; want %d, ok=%v", tc.input, got, err, tc.want, tc.ok)
		}
	}

	values := map[string]string{
		"#$01":    "$01",
		"$0200,x": "$0200",
		"(ptr),y": "ptr",
		"(ptr,x)": "ptr",
		"palette": "palette",
	}
	for in, want := range values {
		if got := operandValue(in); got != want {
			t.Errorf("operandValue(%q) = %q; want %q", in, got, want)
		}
	}
}
