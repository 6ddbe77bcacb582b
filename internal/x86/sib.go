package x86

// SIB is the decoded scale/index/base byte.
type SIB struct {
	Scale byte // 2 bits, factor 1/2/4/8
	Index byte // 3 bits
	Base  byte // 3 bits

	IndexExt byte // Index | REX.X<<3
	BaseExt  byte // Base | REX.B<<3

	NoIndex bool // index=100 without REX.X: no index term
	NoBase  bool // base=101 ∧ mod=00: disp32 follows instead of a base

	HasDisp8  bool // mod=01 carry-over from ModR/M
	HasDisp32 bool // mod=10 carry-over, or the no-base form
}

var scaleFactors = [4]int{1, 2, 4, 8}

func newSIB(b byte, mod byte, rex REX) SIB {
	s := SIB{
		Scale: b >> 6 & 0x3,
		Index: b >> 3 & 0x7,
		Base:  b & 0x7,
	}
	s.IndexExt = s.Index
	if rex.X {
		s.IndexExt |= 0x8
	}
	s.BaseExt = s.Base
	if rex.B {
		s.BaseExt |= 0x8
	}

	s.NoIndex = s.Index == 0x4 && !rex.X
	s.NoBase = s.Base == 0x5 && mod == 0x0
	s.HasDisp8 = mod == 0x1
	s.HasDisp32 = mod == 0x2 || s.NoBase
	return s
}

func (s SIB) factor() int { return scaleFactors[s.Scale] }

// addr builds the effective address for the SIB forms. The displacement,
// when present, leads the bracketed expression.
func (s SIB) addr(disp8, disp32 string) memAddr {
	a := memAddr{dispFirst: true, scale: s.factor()}
	if !s.NoIndex {
		a.index = registers64[s.IndexExt]
	}
	switch {
	case s.NoBase:
		a.disp = disp32
		if s.NoIndex {
			a.bare = true
		}
	case s.HasDisp8:
		a.base = registers64[s.BaseExt]
		a.disp = disp8
	case s.HasDisp32:
		a.base = registers64[s.BaseExt]
		a.disp = disp32
	default:
		a.base = registers64[s.BaseExt]
	}
	return a
}
