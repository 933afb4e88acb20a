// Package objectfile implements dwarfedit.Image against a memory-mapped
// ELF object: structural parsing leans on the standard library's
// debug/elf, while the mutable section buffers are direct windows into a
// shared read-write mapping of the file so edits land in place with no section ever
// reallocated.
package objectfile

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/CoryXie/DebugEdit/internal/dwarfedit"
	stderrors "github.com/CoryXie/DebugEdit/internal/errors"
)

// ELFImage is the mmap-backed dwarfedit.Image implementation. Close calls
// the unmap function given to Open; the one OpenFile supplies flushes the
// whole mapping (msync or FlushViewOfFile) before unmapping it.
type ELFImage struct {
	raw     []byte
	f       *elf.File
	class   elf.Class
	order   binary.ByteOrder
	machine uint16

	sections map[string]*dwarfedit.Section
	secIndex map[string]uint16
	sectAddr map[string]uint64
	relocs   map[string]dwarfedit.RelocSection
	symbols  []dwarfedit.Symbol
	dirty    map[string]bool
	unmap    func() error
}

// Open parses raw (an mmap'd, read-write view of an ELF file's bytes) into
// an ELFImage. raw is retained and mutated directly; unmap is called by
// Close.
func Open(raw []byte, unmap func() error) (*ELFImage, error) {
	f, err := elf.NewFile(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("objectfile: parse ELF: %w", err)
	}

	img := &ELFImage{
		raw:      raw,
		f:        f,
		class:    f.Class,
		order:    f.ByteOrder,
		machine:  uint16(f.Machine),
		sections: make(map[string]*dwarfedit.Section),
		secIndex: make(map[string]uint16),
		sectAddr: make(map[string]uint64),
		relocs:   make(map[string]dwarfedit.RelocSection),
		dirty:    make(map[string]bool),
		unmap:    unmap,
	}

	seen := make(map[string]bool)

	for i, sh := range f.Sections {
		img.secIndex[sh.Name] = uint16(i)
		img.sectAddr[sh.Name] = sh.Addr

		if sh.Type == elf.SHT_NOBITS || sh.Name == "" {
			continue
		}

		if sh.Offset+sh.Size > uint64(len(raw)) {
			continue
		}

		if strings.HasPrefix(sh.Name, ".debug_") || sh.Name == ".symtab" {
			if seen[sh.Name] {
				return nil, stderrors.DuplicateSection(sh.Name)
			}

			seen[sh.Name] = true
		}

		img.sections[sh.Name] = &dwarfedit.Section{
			Name: sh.Name,
			Data: raw[sh.Offset : sh.Offset+sh.Size],
		}
	}

	if err := img.loadSymbols(); err != nil {
		return nil, err
	}

	if err := img.loadRelocations(); err != nil {
		return nil, err
	}

	return img, nil
}

func (img *ELFImage) Section(name string) (*dwarfedit.Section, bool) {
	s, ok := img.sections[name]
	return s, ok
}

func (img *ELFImage) SectionAddr(name string) (uint64, bool) {
	a, ok := img.sectAddr[name]
	return a, ok
}

func (img *ELFImage) SectionIndex(name string) (uint16, bool) {
	i, ok := img.secIndex[name]
	return i, ok
}

func (img *ELFImage) Relocations(sectionName string) (dwarfedit.RelocSection, bool) {
	rs, ok := img.relocs[sectionName]
	return rs, ok
}

func (img *ELFImage) Symbols() []dwarfedit.Symbol {
	return img.symbols
}

func (img *ELFImage) Endian() dwarfedit.Endian {
	if img.order == binary.BigEndian {
		return dwarfedit.BigEndian
	}

	return dwarfedit.LittleEndian
}

func (img *ELFImage) PointerSize() int {
	if img.class == elf.ELFCLASS64 {
		return 8
	}

	return 4
}

func (img *ELFImage) Machine() uint16 {
	return img.machine
}

func (img *ELFImage) MarkDirty(sectionName string) {
	img.dirty[sectionName] = true
}

// Dirty reports which sections Edit actually modified, mainly for
// diagnostics and tests; a backing store that fsyncs whole files has no
// other use for it.
func (img *ELFImage) Dirty() []string {
	names := make([]string, 0, len(img.dirty))
	for n := range img.dirty {
		names = append(names, n)
	}

	return names
}

// Close unmaps the file.
func (img *ELFImage) Close() error {
	if img.unmap == nil {
		return nil
	}

	return img.unmap()
}
