package compiler

import (
	"errors"
	"strings"
	"testing"

	"nescart/pkg/asm"
	"nescart/pkg/cart"
)

func TestGenerate_ResetStore(t *testing.T) {
	code, err := Generate(module(def("reset", assign(attr(name("ppu"), "ctrl"), num(5)))))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	want := ".inesprg 1\n.ineschr 1\n.inesmap 0\n.inesmir 1\n\n" +
		"  .bank 0\n  .org $C000\n\n" +
		"RESET:\n" + resetPreamble +
		"  LDA #5\n  STA $2000\n" +
		"Forever:\n  JMP Forever\n\n" +
		"  .bank 1\n  .org $FFFA\n  .dw 0\n  .dw RESET\n  .dw 0\n\n"
	if code != want {
		t.Errorf("Generate() =\n%s\nwant:\n%s", code, want)
	}

	if _, err := asm.Check(code); err != nil {
		t.Errorf("listing does not check: %v", err)
	}
}

func TestGenerate_NoEntryPoints(t *testing.T) {
	code, err := Generate(module(
		&Import{Names: []string{"nes"}},
		assign(name("score"), call("rs", num(1))),
	))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	assertContains(t, code, ".inesprg 1\n")
	assertContains(t, code, "score .rs 1\n")
	assertNotContains(t, code, ".bank 0")
	assertNotContains(t, code, "NMI:")
	assertNotContains(t, code, ".org $E000")
	assertContains(t, code, "  .org $FFFA\n  .dw 0\n  .dw 0\n  .dw 0\n")
}

func TestGenerate_DataTable(t *testing.T) {
	elts := make([]Node, 17)
	for i := range elts {
		elts[i] = num(0xF0 + i%16)
	}
	code, err := Generate(module(assign(name("sprites"), list(elts...))))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	assertContains(t, code, "sprites:\n"+
		"  .db $F0,$F1,$F2,$F3,$F4,$F5,$F6,$F7,$F8,$F9,$FA,$FB,$FC,$FD,$FE,$FF\n"+
		"  .db $F0\n")
}

func TestGenerate_FullProgram(t *testing.T) {
	mod := module(
		&Import{Names: []string{"nes.bitbag"}},
		assign(name("palette"), list(num(0x0F), num(0x30), num(0x16), num(0x27))),
		assign(name("mario_x"), call("rs", num(1))),
		def("reset",
			call("wait_vblank"),
			call("clearmem"),
			call("wait_vblank"),
			call("load_palette", name("palette")),
			assign(attr(call("get_sprite", num(0)), "y"), num(0x80)),
			assign(attr(name("ppu"), "ctrl"), num(0x80)),
			assign(attr(name("ppu"), "mask"), num(0x10)),
		),
		def("joypad1_left", augAssign(attr(call("get_sprite", num(0)), "x"), "+", num(0xFF))),
		def("joypad1_right", augAssign(attr(call("get_sprite", num(0)), "x"), "+", num(1))),
		&If{Test: &Compare{Op: "==", Left: name("__name__"), Right: str("__main__")}},
	)

	code, err := Generate(mod)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	order := []string{
		".inesprg 1",
		"  .rsset $0000\nmario_x .rs 1\n",
		"  .bank 0\n  .org $C000\n",
		"WaitVBlank:",
		"ClearMem:",
		"RESET:",
		"  JSR WaitVBlank\n  JSR ClearMem\n  JSR WaitVBlank\n",
		"  LDA #128\n  STA $0200\n",
		"  LDA #128\n  STA $2000\n",
		"NMI:",
		"JOYPAD1_LEFT:",
		"JOYPAD1_RIGHT:",
		"  RTI\n",
		"  .bank 1\n  .org $E000\n",
		"palette:\n  .db $0F,$30,$16,$27\n",
		"  .org $FFFA\n  .dw NMI\n  .dw RESET\n  .dw 0\n",
	}
	last := -1
	for _, want := range order {
		idx := strings.Index(code, want)
		if idx < 0 {
			t.Fatalf("missing %q in:\n%s", want, code)
		}
		if idx < last {
			t.Errorf("%q out of order in:\n%s", want, code)
		}
		last = idx
	}

	if _, err := asm.Check(code); err != nil {
		t.Errorf("listing does not check: %v\n%s", err, code)
	}
}

func TestGenerate_Options(t *testing.T) {
	tile := make([]byte, 16)
	tile[0] = 0x3C
	code, err := Generate(module(def("reset")),
		WithHeader(cart.Header{PRG: 1, CHR: 1, Mapper: 0, Mirroring: 0}),
		WithCHR(tile),
	)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	assertContains(t, code, ".inesmir 0\n")
	assertContains(t, code, "  .bank 2\n  .org $0000\n  .db $3C,")

	_, err = Generate(module(), WithCHR(make([]byte, 3)))
	if err == nil {
		t.Error("expected error for partial CHR tile")
	}
}

func TestGenerate_Repeatable(t *testing.T) {
	mod := module(
		assign(name("t"), list(num(1), num(2))),
		def("reset", call("wait_vblank")),
		def("joypad2_start", assign(attr(name("ppu"), "mask"), num(0))),
	)

	first, err := Generate(mod)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	second, err := Generate(mod)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if first != second {
		t.Errorf("compiling the same tree twice gave different listings:\n%s\n---\n%s", first, second)
	}
}

func TestBuild_NoPartialResult(t *testing.T) {
	rom, err := Build(module(
		def("reset", call("wait_vblank")),
		def("update"),
	))
	if err == nil {
		t.Fatal("expected error")
	}
	if rom != nil {
		t.Error("Build must not return a cartridge on error")
	}

	if _, err := Build(nil); err == nil {
		t.Error("expected error for nil module")
	}
}

func TestGenerate_LabelCollision(t *testing.T) {
	mod := module(
		assign(name("Forever"), list(num(1))),
		def("reset", assign(attr(name("ppu"), "ctrl"), num(0))),
	)
	_, err := Generate(mod)
	assertKind(t, err, ErrInvalidOperand)

	// same table under a free name assembles cleanly
	mod.Body[0] = assign(name("forever_table"), list(num(1)))
	code, err := Generate(mod)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := asm.Check(code); err != nil {
		t.Errorf("listing does not check: %v", err)
	}
}

func TestGenerate_BankLayout(t *testing.T) {
	chr := make([]byte, 2*cart.CHRBankSize)
	chr[cart.CHRBankSize] = 0xAA

	tests := []struct {
		name   string
		header cart.Header
		want   []string
	}{
		{
			name:   "NROM-128 two CHR banks",
			header: cart.Header{PRG: 1, CHR: 2, Mapper: 0, Mirroring: 1},
			want: []string{
				"  .bank 0\n  .org $C000\n",
				"  .bank 1\n  .org $E000\n",
				"  .bank 2\n  .org $0000\n",
				"  .bank 3\n  .org $0000\n  .db $AA,",
			},
		},
		{
			name:   "NROM-256",
			header: cart.Header{PRG: 2, CHR: 2, Mapper: 0, Mirroring: 1},
			want: []string{
				"  .bank 2\n  .org $C000\n",
				"  .bank 3\n  .org $E000\n",
				"  .org $FFFA\n",
				"  .bank 4\n  .org $0000\n",
				"  .bank 5\n  .org $0000\n  .db $AA,",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, err := Generate(module(
				assign(name("palette"), list(num(0x0F))),
				def("reset", call("wait_vblank")),
			), WithHeader(tc.header), WithCHR(chr))
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			last := -1
			for _, want := range tc.want {
				idx := strings.Index(code, want)
				if idx < 0 {
					t.Fatalf("missing %q in:\n%s", want, code)
				}
				if idx < last {
					t.Errorf("%q out of order", want)
				}
				last = idx
			}
			if _, err := asm.Check(code); err != nil {
				t.Errorf("listing does not check: %v", err)
			}
		})
	}
}

func TestBuild_InvalidHeader(t *testing.T) {
	for _, h := range []cart.Header{{PRG: 0, CHR: 1}, {PRG: 1, CHR: -1}} {
		_, err := Build(module(def("reset")), WithHeader(h))
		if !errors.Is(err, cart.ErrHeader) {
			t.Errorf("header %+v: expected ErrHeader, got %v", h, err)
		}
	}
}
