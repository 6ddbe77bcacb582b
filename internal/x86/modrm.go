package x86

import "strings"

// REX is the decomposed 64-bit-mode prefix byte. W widens operands to 64
// bits; R, X and B extend the ModRM.reg, SIB.index and ModRM.rm/SIB.base
// selectors to 4 bits.
type REX struct {
	W, R, X, B bool
}

// isREX reports whether b is a REX byte (high nibble 0x4).
func isREX(b byte) bool { return b>>4 == 0x4 }

func parseREX(b byte) REX {
	return REX{
		W: b&0x8 != 0,
		R: b&0x4 != 0,
		X: b&0x2 != 0,
		B: b&0x1 != 0,
	}
}

// ModRM is the decoded addressing-mode byte with its derived classification.
type ModRM struct {
	Mod byte // 2 bits
	Reg byte // 3 bits
	RM  byte // 3 bits

	RegExt byte // Reg | REX.R<<3
	RMExt  byte // RM | REX.B<<3, meaningful when RM names a register

	RegDirect bool // mod=11
	HasSIB    bool // mod≠11 ∧ rm=100
	HasDisp8  bool // mod=01 without SIB
	HasDisp32 bool // mod=10 without SIB, or mod=00 ∧ rm=101
}

// modRMReg extracts the reg field without decoding the rest, used to
// disambiguate /digit opcodes before the byte is consumed.
func modRMReg(b byte) byte { return b >> 3 & 0x7 }

func newModRM(b byte, rex REX) ModRM {
	m := ModRM{
		Mod: b >> 6 & 0x3,
		Reg: b >> 3 & 0x7,
		RM:  b & 0x7,
	}
	m.RegExt = m.Reg
	if rex.R {
		m.RegExt |= 0x8
	}
	m.RMExt = m.RM
	if rex.B {
		m.RMExt |= 0x8
	}

	m.RegDirect = m.Mod == 0x3
	m.HasSIB = m.Mod != 0x3 && m.RM == 0x4
	m.HasDisp8 = m.Mod == 0x1 && !m.HasSIB
	m.HasDisp32 = (m.Mod == 0x2 && !m.HasSIB) || (m.Mod == 0x0 && m.RM == 0x5)
	return m
}

// addr builds the effective address for the non-SIB forms. disp8 and disp32
// are the pre-rendered displacement texts.
func (m ModRM) addr(disp8, disp32 string) memAddr {
	switch {
	case m.Mod == 0x0 && m.RM == 0x5:
		// encoded RIP-relative; rendered as the raw displacement
		return memAddr{disp: disp32, bare: true}
	case m.Mod == 0x1:
		return memAddr{base: registers64[m.RMExt], disp: disp8}
	case m.Mod == 0x2:
		return memAddr{base: registers64[m.RMExt], disp: disp32}
	default:
		return memAddr{base: registers64[m.RMExt]}
	}
}

// memAddr is the {disp, base, index, scale} model behind every memory
// operand; a single renderer guarantees the exact spacing and ordering of
// the listing format.
type memAddr struct {
	disp  string
	base  string
	index string
	scale int

	dispFirst bool // SIB forms put the displacement before the base
	bare      bool // displacement-only forms render without brackets
}

func (a memAddr) String() string {
	if a.bare {
		return a.disp
	}
	var terms []string
	if a.dispFirst && a.disp != "" {
		terms = append(terms, a.disp)
	}
	if a.base != "" {
		terms = append(terms, a.base)
	}
	if !a.dispFirst && a.disp != "" {
		terms = append(terms, a.disp)
	}
	if a.index != "" {
		terms = append(terms, a.index+" * "+scaleNames[a.scale])
	}
	return "[" + strings.Join(terms, " + ") + "]"
}

var scaleNames = map[int]string{1: "1", 2: "2", 4: "4", 8: "8"}
