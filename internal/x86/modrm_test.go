package x86

import "testing"

func TestModRMTruthTable(t *testing.T) {
	for b := 0; b < 256; b++ {
		m := newModRM(byte(b), REX{})
		mod, reg, rm := byte(b>>6), byte(b>>3&7), byte(b&7)

		if m.Mod != mod || m.Reg != reg || m.RM != rm {
			t.Fatalf("%#02x: fields (%d,%d,%d), want (%d,%d,%d)", b, m.Mod, m.Reg, m.RM, mod, reg, rm)
		}
		if got, want := m.RegDirect, mod == 3; got != want {
			t.Errorf("%#02x: RegDirect = %v, want %v", b, got, want)
		}
		if got, want := m.HasSIB, mod != 3 && rm == 4; got != want {
			t.Errorf("%#02x: HasSIB = %v, want %v", b, got, want)
		}
		if got, want := m.HasDisp8, mod == 1 && !m.HasSIB; got != want {
			t.Errorf("%#02x: HasDisp8 = %v, want %v", b, got, want)
		}
		if got, want := m.HasDisp32, (mod == 2 && !m.HasSIB) || (mod == 0 && rm == 5); got != want {
			t.Errorf("%#02x: HasDisp32 = %v, want %v", b, got, want)
		}
	}
}

func TestModRMRexExtension(t *testing.T) {
	for b := 0; b < 256; b++ {
		for rexBits := 0; rexBits < 16; rexBits++ {
			rex := parseREX(0x40 | byte(rexBits))
			m := newModRM(byte(b), rex)

			wantReg := m.Reg
			if rex.R {
				wantReg |= 8
			}
			wantRM := m.RM
			if rex.B {
				wantRM |= 8
			}
			if m.RegExt != wantReg || m.RMExt != wantRM {
				t.Fatalf("%#02x rex=%+v: ext (%d,%d), want (%d,%d)",
					b, rex, m.RegExt, m.RMExt, wantReg, wantRM)
			}
		}
	}
}

func TestParseREX(t *testing.T) {
	tests := []struct {
		b    byte
		want REX
	}{
		{0x40, REX{}},
		{0x41, REX{B: true}},
		{0x42, REX{X: true}},
		{0x44, REX{R: true}},
		{0x48, REX{W: true}},
		{0x4F, REX{W: true, R: true, X: true, B: true}},
	}
	for _, tt := range tests {
		if got := parseREX(tt.b); got != tt.want {
			t.Errorf("parseREX(%#02x) = %+v, want %+v", tt.b, got, tt.want)
		}
		if !isREX(tt.b) {
			t.Errorf("isREX(%#02x) = false", tt.b)
		}
	}
	for _, b := range []byte{0x00, 0x3F, 0x50, 0x66, 0x90} {
		if isREX(b) {
			t.Errorf("isREX(%#02x) = true", b)
		}
	}
}

func TestMemAddrRendering(t *testing.T) {
	tests := []struct {
		name string
		a    memAddr
		want string
	}{
		{"base only", memAddr{base: "rax"}, "[rax]"},
		{"base disp after", memAddr{base: "rax", disp: "1"}, "[rax + 1]"},
		{"base disp32 after", memAddr{base: "rax", disp: "0x00000100"}, "[rax + 0x00000100]"},
		{"bare disp", memAddr{disp: "0x00080000", bare: true}, "0x00080000"},
		{"sib full", memAddr{base: "rax", index: "rcx", scale: 1, dispFirst: true}, "[rax + rcx * 1]"},
		{"sib disp leads", memAddr{base: "rax", index: "rcx", scale: 1, disp: "1", dispFirst: true}, "[1 + rax + rcx * 1]"},
		{"sib no base", memAddr{index: "rax", scale: 4, disp: "0x00000010", dispFirst: true}, "[0x00000010 + rax * 4]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
