package dwarfedit

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildLineWithAbsoluteDir constructs a line-program header with one
// explicit, absolute directory entry (index 1; index 0 is always the
// implicit ".") and one relative file entry resolved against it.
func buildLineWithAbsoluteDir(dir, file string) []byte {
	line := []byte{0, 0, 0, 0}
	line = appendU16LE(line, 4)
	line = append(line, 0, 0, 0, 0)
	fieldsStart := len(line)
	line = append(line, 1, 1, 1, 0, 1, 1) // min_instr..opcode_base(=1, no standard_opcode_lengths)

	line = append(line, []byte(dir)...)
	line = append(line, 0) // end of the one directory entry
	line = append(line, 0) // directory table terminator

	line = append(line, []byte(file)...)
	line = append(line, 0)
	line = appendULEB128(line, 1) // dir index -> the absolute dir above
	line = appendULEB128(line, 0) // mtime
	line = appendULEB128(line, 0) // length
	line = append(line, 0)        // file table terminator
	fileTableEnd := len(line)

	binary.LittleEndian.PutUint32(line[6:10], uint32(fileTableEnd-fieldsStart))
	binary.LittleEndian.PutUint32(line[0:4], uint32(len(line)-4))

	return line
}

func TestEditLineProgramRewritesAbsoluteDirectory(t *testing.T) {
	buf := buildLineWithAbsoluteDir("/build/src/inc", "main.c")
	origLen := len(buf)

	img := newFakeImage()
	img.addSection(".debug_line", buf, 1)

	var list bytes.Buffer

	w := &dieWalker{
		img:  img,
		cfg:  Config{BaseDir: "/build/src", DestDir: "/srv", ListFile: &list},
		line: mustSection(img, ".debug_line"),
		sink: newListSink(&list),
	}

	if err := w.editLineProgram(0, "", 0); err != nil {
		t.Fatalf("editLineProgram: %v", err)
	}

	sec, _ := img.Section(".debug_line")
	if len(sec.Data) != origLen {
		t.Fatalf("section length changed: got %d, want %d", len(sec.Data), origLen)
	}

	if !img.dirty[".debug_line"] {
		t.Fatal("expected .debug_line to be marked dirty")
	}

	dir, _ := readCString(sec.Data, 16)
	if dir != "/srv/inc" {
		t.Fatalf("rewritten directory = %q, want %q", dir, "/srv/inc")
	}
}

func mustSection(img Image, name string) *Section {
	s, ok := img.Section(name)
	if !ok {
		panic("missing section " + name)
	}
	return s
}
