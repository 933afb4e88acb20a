// Package dwarfedit implements the DWARF path-rewriting core: the
// traversal of .debug_info/.debug_abbrev/.debug_line/.debug_str, relocation
// resolution, and the constrained in-place rewrite of embedded source
// paths. It never grows or reorders the sections it is given.
//
// The package does not know how to open an object file. It consumes the
// Image interface below; internal/objectfile provides an ELF-backed
// implementation.
package dwarfedit

// Endian selects how 16/32-bit integers are decoded from a section buffer.
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

// Section is a named, mutable, fixed-size byte buffer. The core never
// reallocates or resizes Data; it only overwrites bytes in place.
type Section struct {
	Name string
	Data []byte
}

// RelocEntry is one raw relocation record against a debug section, as
// decoded from the object's REL or RELA table. Addend is zero for REL
// entries (REL carries its addend inline in the target bytes instead).
type RelocEntry struct {
	Offset uint64 // r_offset: address within the relocated section's mapped image
	Symbol uint32 // index into the symbol table
	Addend int64  // r_addend; zero for REL
	Type   uint32 // machine-specific relocation type (r_info low bits)
}

// RelocSection groups the relocation entries that target one debug
// section, tagged with whether they come from a REL or RELA table (the
// two use different addend semantics, see relocCursor).
type RelocSection struct {
	Rela    bool
	Entries []RelocEntry
}

// Symbol is one entry of the object's symbol table. NameSection/NameOffset
// point at the raw, mutable bytes backing Name (its string table), so the
// symbol-table rewriter (§4: "Symbol-table file rewriter") can overwrite
// STT_FILE names in place.
type Symbol struct {
	Name        string
	Value       uint64
	Shndx       uint16
	Type        uint8 // ELF symbol type (low 4 bits of st_info), e.g. STT_FILE
	NameSection string
	NameOffset  uint64
}

const SymTypeFile = 4 // STT_FILE

// Image is the object-image collaborator described in spec §3/§6: it
// hands the core named section buffers, relocations, symbols, and the
// means to flag a section dirty. Implementations own the buffers for the
// lifetime of one Edit call.
type Image interface {
	// Section returns the named debug section's buffer, or ok=false if
	// the object carries no such section.
	Section(name string) (sec *Section, ok bool)
	// SectionAddr returns the sh_addr of the named section, used to turn
	// an absolute relocation r_offset into an offset within that
	// section's buffer.
	SectionAddr(name string) (addr uint64, ok bool)
	// SectionIndex returns the object's section-table index for name,
	// used to match a symbol's st_shndx against a debug section.
	SectionIndex(name string) (index uint16, ok bool)
	// Relocations returns the relocation records targeting the named
	// section, if any relocation section is associated with it.
	Relocations(sectionName string) (RelocSection, bool)
	// Symbols returns the object's symbol table.
	Symbols() []Symbol
	// Endian and PointerSize describe the target; PointerSize is the
	// ELF class's address size (4 or 8). The DIE walker does not call
	// PointerSize: it takes the address size from each CU header.
	Endian() Endian
	PointerSize() int
	// Machine identifies the target architecture for the relocation
	// allow-list (§4.2), using the object container's raw e_machine
	// value so the core stays decoupled from any particular container
	// package.
	Machine() uint16
	// MarkDirty flags sectionName as modified; the object-image owner
	// is responsible for writing it back.
	MarkDirty(sectionName string)
}
