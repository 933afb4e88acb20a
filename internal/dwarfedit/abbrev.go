package dwarfedit

import stderrors "github.com/CoryXie/DebugEdit/internal/errors"

// abbrevAttr is one (attribute, form) pair inside an abbreviation entry.
type abbrevAttr struct {
	Attr uint64
	Form uint64
}

// abbrevTag is a fully decoded .debug_abbrev entry: the tag a CU uses it
// for and the ordered list of attributes every DIE referencing this entry
// carries (§4.3).
type abbrevTag struct {
	Entry uint64
	Tag   uint64
	Attrs []abbrevAttr
}

// readAbbrevTable decodes one abbreviation table starting at offset off in
// the .debug_abbrev section, keyed by abbreviation code, stopping at the
// table-terminating zero code. It rejects duplicate codes and any form
// outside classic DWARF plus the sec_offset/exprloc/flag_present/ref_sig8
// DWARF 4 additions, matching the original parser's strictness exactly.
func readAbbrevTable(sec []byte, off uint64) (map[uint64]*abbrevTag, error) {
	table := make(map[uint64]*abbrevTag)

	for {
		code, next := readULEB128(sec, off)
		off = next

		if code == 0 {
			break
		}

		if _, dup := table[code]; dup {
			return nil, stderrors.MalformedAbbrev("duplicate abbreviation code")
		}

		tag := &abbrevTag{Entry: code}

		tagNum, next := readULEB128(sec, off)
		off = next
		tag.Tag = tagNum

		off++ // skip the has-children byte

		for {
			attr, next := readULEB128(sec, off)
			off = next

			if attr == 0 {
				break
			}

			form, next := readULEB128(sec, off)
			off = next

			if form == 2 || (form > dwFormFlagPresent && form != dwFormRefSig8) {
				return nil, stderrors.UnknownForm(form)
			}

			tag.Attrs = append(tag.Attrs, abbrevAttr{Attr: attr, Form: form})
		}

		terminator, next := readULEB128(sec, off)
		off = next

		if terminator != 0 {
			return nil, stderrors.MalformedAbbrev("abbreviation does not end with two zero bytes")
		}

		table[code] = tag
	}

	return table, nil
}
