// Package elfx opens ELF binaries and exposes the pieces the disassembly
// driver needs: the text section bytes, virtual-address mapping, and the
// symbols that live in text.
package elfx

import (
	"debug/elf"
	"fmt"
	"os"
	"sort"
	"strings"
	"syscall"
)

type Image struct {
	Path   string
	File   *elf.File
	All    []byte
	Loads  []Seg
	Text   Section
	Rodata Section
	Syms   []Sym
	f      *os.File
}

type Seg struct {
	Vaddr, Off, Filesz uint64
	Flags              elf.ProgFlag
}

type Section struct {
	Name          string
	VA, Off, Size uint64
}

// Sym is a defined symbol, dynamic or static.
type Sym struct {
	Name string
	Addr uint64
}

func Open(path string) (*Image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open elf: %w", err)
	}
	if f.Machine != elf.EM_X86_64 {
		f.Close()
		return nil, fmt.Errorf("unsupported machine %s: only x86-64 binaries", f.Machine)
	}

	of, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open file: %w", err)
	}

	fi, err := of.Stat()
	if err != nil {
		of.Close()
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	all, err := syscall.Mmap(int(of.Fd()), 0, int(fi.Size()), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		of.Close()
		f.Close()
		return nil, fmt.Errorf("mmap file: %w", err)
	}

	im := &Image{Path: path, File: f, All: all, f: of}
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		im.Loads = append(im.Loads, Seg{
			Vaddr:  uint64(p.Vaddr),
			Off:    uint64(p.Off),
			Filesz: uint64(p.Filesz),
			Flags:  p.Flags,
		})
	}

	for _, s := range f.Sections {
		switch s.Name {
		case ".text":
			im.Text = Section{s.Name, s.Addr, s.Offset, s.Size}
		case ".rodata":
			im.Rodata = Section{s.Name, s.Addr, s.Offset, s.Size}
		}
	}

	im.loadSymbols()

	// Fallbacks if stripped.
	if im.Text.Size == 0 {
		for _, l := range im.Loads {
			if l.Flags&elf.PF_X != 0 && l.Filesz > 0 {
				im.Text = Section{"LOAD(exec)", l.Vaddr, l.Off, l.Filesz}
				break
			}
		}
	}
	if im.Rodata.Size == 0 {
		for _, l := range im.Loads {
			if (l.Flags&elf.PF_R != 0) && (l.Flags&elf.PF_W == 0) && l.Filesz > 0 {
				im.Rodata = Section{"LOAD(ro)", l.Vaddr, l.Off, l.Filesz}
				break
			}
		}
	}
	return im, nil
}

// Close unmaps the memory and closes the underlying files.
func (im *Image) Close() error {
	var err1, err2 error
	if im.All != nil {
		err1 = syscall.Munmap(im.All)
		im.All = nil
	}
	if im.f != nil {
		err2 = im.f.Close()
		im.f = nil
	}
	if im.File != nil {
		err3 := im.File.Close()
		if err3 != nil && err2 == nil {
			err2 = err3
		}
		im.File = nil
	}
	if err1 != nil {
		return err1
	}
	return err2
}

// loadSymbols merges the dynamic and static symbol tables into one
// deduplicated, address-sorted list of defined symbols.
func (im *Image) loadSymbols() {
	seen := map[string]uint64{}
	add := func(name string, addr uint64) {
		if name == "" || addr == 0 || strings.HasPrefix(name, "$") {
			return
		}
		if prev, ok := seen[name]; !ok || addr < prev {
			seen[name] = addr
		}
	}

	if dynsyms, err := im.File.DynamicSymbols(); err == nil {
		for _, s := range dynsyms {
			add(s.Name, s.Value)
		}
	}
	if syms, err := im.File.Symbols(); err == nil {
		for _, s := range syms {
			if elf.ST_TYPE(s.Info) == elf.STT_FUNC || elf.ST_TYPE(s.Info) == elf.STT_NOTYPE {
				add(s.Name, s.Value)
			}
		}
	}

	for name, addr := range seen {
		im.Syms = append(im.Syms, Sym{Name: name, Addr: addr})
	}
	sort.Slice(im.Syms, func(i, j int) bool { return im.Syms[i].Addr < im.Syms[j].Addr })
}

// VA2Off translates a virtual address into a file offset
// using PT_LOAD segments. It returns false if VA is unmapped.
func (im *Image) VA2Off(va uint64) (uint64, bool) {
	for _, l := range im.Loads {
		if va >= l.Vaddr && va < l.Vaddr+l.Filesz {
			return l.Off + (va - l.Vaddr), true
		}
	}
	return 0, false
}

// SliceVA returns a subslice of the mapped file for [va, va+size).
// It returns (nil, false) if the VA is unmapped or out of bounds.
func (im *Image) SliceVA(va, size uint64) ([]byte, bool) {
	off, ok := im.VA2Off(va)
	if !ok {
		return nil, false
	}
	if size == 0 {
		return []byte{}, true
	}
	end := off + size
	if end > uint64(len(im.All)) {
		return nil, false
	}
	return im.All[off:end], true
}

// TextBytes returns the bytes of the text section.
func (im *Image) TextBytes() ([]byte, bool) {
	if im.Text.Size == 0 {
		return nil, false
	}
	end := im.Text.Off + im.Text.Size
	if end > uint64(len(im.All)) {
		return nil, false
	}
	return im.All[im.Text.Off:end], true
}

// InText reports whether the VA lies within the text section.
func (im *Image) InText(va uint64) bool {
	return im.Text.Size != 0 && va >= im.Text.VA && va < im.Text.VA+im.Text.Size
}

// TextSymbols returns the symbols whose address falls inside the text
// section, in address order.
func (im *Image) TextSymbols() []Sym {
	var out []Sym
	for _, s := range im.Syms {
		if im.InText(s.Addr) {
			out = append(out, s)
		}
	}
	return out
}

// FindSymbol looks a defined symbol up by exact name.
func (im *Image) FindSymbol(name string) (uint64, bool) {
	for _, s := range im.Syms {
		if s.Name == name {
			return s.Addr, true
		}
	}
	return 0, false
}
