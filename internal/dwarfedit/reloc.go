package dwarfedit

import (
	"sort"

	stderrors "github.com/CoryXie/DebugEdit/internal/errors"
)

// relocCursor replays the relocations targeting one section in the same
// way the original tool's do_read_32_relocated macro does: as the walker
// reads 4-byte words in increasing offset order, the cursor only ever
// advances, matching each read against at most one relocation record.
//
// REL records carry no addend of their own; their "addend" is whatever
// value was already stored at the target offset, so the resolved value is
// the sum. RELA records replace the stored value outright.
type relocCursor struct {
	rela    bool
	entries []RelocEntry
	pos     int
}

func newRelocCursor(rs RelocSection) *relocCursor {
	entries := make([]RelocEntry, len(rs.Entries))
	copy(entries, rs.Entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Offset < entries[j].Offset })

	return &relocCursor{rela: rs.Rela, entries: entries}
}

// reset rewinds the cursor for a fresh sequential pass over the section.
func (c *relocCursor) reset() {
	c.pos = 0
}

// resolve32 returns the relocated form of a raw little/big-endian-decoded
// 32-bit word read from offset off, given the value that was physically
// stored there (raw).
func (c *relocCursor) resolve32(off uint64, raw uint32) uint32 {
	if c == nil {
		return raw
	}

	for c.pos < len(c.entries) && c.entries[c.pos].Offset < off {
		c.pos++
	}

	if c.pos < len(c.entries) && c.entries[c.pos].Offset == off {
		addend := c.entries[c.pos].Addend

		if c.rela {
			return uint32(addend)
		}

		return raw + uint32(addend)
	}

	return raw
}

// buildInfoRelocations resolves the relocations targeting .debug_info into
// a relocCursor ready for a sequential walk. Only relocations whose symbol
// resolves into .debug_str, .debug_line, or .debug_abbrev matter: those
// are the only sections .debug_info ever points into by DW_FORM_strp or
// DW_AT_stmt_list (§4.2). Everything else, including REL noise against
// section symbols with a zero value, is dropped silently, matching the
// original tool.
func buildInfoRelocations(img Image) (*relocCursor, error) {
	rs, ok := img.Relocations(".debug_info")
	if !ok || len(rs.Entries) == 0 {
		return nil, nil
	}

	strIdx, _ := img.SectionIndex(".debug_str")
	lineIdx, _ := img.SectionIndex(".debug_line")
	abbrevIdx, _ := img.SectionIndex(".debug_abbrev")

	syms := img.Symbols()
	machine := img.Machine()
	infoAddr, _ := img.SectionAddr(".debug_info")

	filtered := RelocSection{Rela: rs.Rela}

	for _, ent := range rs.Entries {
		if int(ent.Symbol) >= len(syms) {
			continue
		}

		sym := syms[ent.Symbol]

		if !rs.Rela && sym.Value == 0 {
			continue
		}

		if sym.Shndx != strIdx && sym.Shndx != lineIdx && sym.Shndx != abbrevIdx {
			continue
		}

		if !relocationAllowed(machine, ent.Type) {
			return nil, stderrors.UnhandledRelocation(machineName(machine), ent.Type)
		}

		filtered.Entries = append(filtered.Entries, RelocEntry{
			Offset: ent.Offset - infoAddr,
			Symbol: ent.Symbol,
			Addend: int64(sym.Value) + ent.Addend,
			Type:   ent.Type,
		})
	}

	return newRelocCursor(filtered), nil
}
