package dwarfedit

import "testing"

// buildAbbrevEntry appends one .debug_abbrev entry (code, tag, children,
// attr/form pairs, terminator) to buf.
func buildAbbrevEntry(buf []byte, code, tag uint64, children byte, attrs ...[2]uint64) []byte {
	buf = appendULEB128(buf, code)
	buf = appendULEB128(buf, tag)
	buf = append(buf, children)

	for _, a := range attrs {
		buf = appendULEB128(buf, a[0])
		buf = appendULEB128(buf, a[1])
	}

	buf = appendULEB128(buf, 0)
	buf = appendULEB128(buf, 0)

	return buf
}

func TestReadAbbrevTableValid(t *testing.T) {
	var sec []byte
	sec = buildAbbrevEntry(sec, 1, dwTagCompileUnit, 1,
		[2]uint64{dwAtName, dwFormString},
		[2]uint64{dwAtCompDir, dwFormStrp},
	)
	sec = appendULEB128(sec, 0) // table terminator

	table, err := readAbbrevTable(sec, 0)
	if err != nil {
		t.Fatalf("readAbbrevTable: %v", err)
	}

	tag, ok := table[1]
	if !ok {
		t.Fatal("expected abbreviation code 1 in table")
	}

	if tag.Tag != dwTagCompileUnit {
		t.Fatalf("tag = 0x%x, want DW_TAG_compile_unit", tag.Tag)
	}

	if len(tag.Attrs) != 2 {
		t.Fatalf("got %d attrs, want 2", len(tag.Attrs))
	}

	if tag.Attrs[0].Attr != dwAtName || tag.Attrs[0].Form != dwFormString {
		t.Fatalf("attr[0] = %+v, want (DW_AT_name, DW_FORM_string)", tag.Attrs[0])
	}

	if tag.Attrs[1].Attr != dwAtCompDir || tag.Attrs[1].Form != dwFormStrp {
		t.Fatalf("attr[1] = %+v, want (DW_AT_comp_dir, DW_FORM_strp)", tag.Attrs[1])
	}
}

func TestReadAbbrevTableDuplicateCode(t *testing.T) {
	var sec []byte
	sec = buildAbbrevEntry(sec, 1, dwTagCompileUnit, 0, [2]uint64{dwAtName, dwFormString})
	sec = buildAbbrevEntry(sec, 1, dwTagCompileUnit, 0, [2]uint64{dwAtName, dwFormString})
	sec = appendULEB128(sec, 0)

	_, err := readAbbrevTable(sec, 0)
	if err == nil {
		t.Fatal("expected error for duplicate abbreviation code")
	}
}

func TestReadAbbrevTableUnknownForm(t *testing.T) {
	var sec []byte
	sec = buildAbbrevEntry(sec, 1, dwTagCompileUnit, 0, [2]uint64{dwAtName, 2})
	sec = appendULEB128(sec, 0)

	_, err := readAbbrevTable(sec, 0)
	if err == nil {
		t.Fatal("expected error for reserved DW_FORM 0x2")
	}
}

func TestReadAbbrevTableMissingTerminator(t *testing.T) {
	// No attributes (the attr loop sees 0 and stops immediately), but the
	// entry's closing byte is non-zero instead of completing the (0,0) pair.
	sec := appendULEB128(nil, 1)
	sec = appendULEB128(sec, dwTagCompileUnit)
	sec = append(sec, 0)
	sec = appendULEB128(sec, 0)
	sec = appendULEB128(sec, 1)

	_, err := readAbbrevTable(sec, 0)
	if err == nil {
		t.Fatal("expected error when abbreviation entry never terminates")
	}
}
