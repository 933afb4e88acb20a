package dwarfedit

import "testing"

func buildSymtabName(prefix string) ([]byte, uint64) {
	buf := []byte{0} // ELF string tables reserve a leading NUL
	off := uint64(len(buf))
	buf = append(buf, []byte(prefix)...)
	buf = append(buf, 0)
	buf = append(buf, make([]byte, 8)...) // trailing padding, left untouched
	return buf, off
}

func TestEditSymtabRewritesFileName(t *testing.T) {
	strtab, off := buildSymtabName("/build/main.c")

	img := newFakeImage()
	img.addSection(".strtab", strtab, 1)
	img.symbols = []Symbol{
		{Name: "/build/main.c", Type: SymTypeFile, NameSection: ".strtab", NameOffset: off},
	}

	cfg := Config{BaseDir: "/build", DestDir: "/x"}
	editSymtab(img, cfg)

	sec, _ := img.Section(".strtab")
	got, _ := readCString(sec.Data, off)

	want := "/x/main.c"
	if got != want {
		t.Fatalf("rewritten symbol name = %q, want %q", got, want)
	}

	if !img.dirty[".strtab"] {
		t.Fatal("expected .strtab to be marked dirty")
	}
}

func TestEditSymtabWinPathGatedOnFlag(t *testing.T) {
	strtab, off := buildSymtabName("/build/sub/main.c")

	img := newFakeImage()
	img.addSection(".strtab", strtab, 1)
	img.symbols = []Symbol{
		{Name: "/build/sub/main.c", Type: SymTypeFile, NameSection: ".strtab", NameOffset: off},
	}

	cfg := Config{BaseDir: "/build", DestDir: "/x"}
	editSymtab(img, cfg)

	sec, _ := img.Section(".strtab")
	got, _ := readCString(sec.Data, off)

	// Without -win-path, separators must stay forward slashes even though
	// dest-dir rewriting happened.
	want := "/x/sub/main.c"
	if got != want {
		t.Fatalf("name without win-path = %q, want %q", got, want)
	}
}

func TestEditSymtabWinPathAppliedWhenRequested(t *testing.T) {
	strtab, off := buildSymtabName("/build/sub/main.c")

	img := newFakeImage()
	img.addSection(".strtab", strtab, 1)
	img.symbols = []Symbol{
		{Name: "/build/sub/main.c", Type: SymTypeFile, NameSection: ".strtab", NameOffset: off},
	}

	cfg := Config{BaseDir: "/build", DestDir: "/x", WinPath: true}
	editSymtab(img, cfg)

	sec, _ := img.Section(".strtab")
	got, _ := readCString(sec.Data, off)

	want := "\\x\\sub\\main.c"
	if got != want {
		t.Fatalf("name with win-path = %q, want %q", got, want)
	}
}

func TestEditSymtabSkipsNonFileSymbols(t *testing.T) {
	strtab, off := buildSymtabName("/build/main.c")

	img := newFakeImage()
	img.addSection(".strtab", strtab, 1)
	img.symbols = []Symbol{
		{Name: "/build/main.c", Type: 1 /* STT_OBJECT */, NameSection: ".strtab", NameOffset: off},
	}

	cfg := Config{BaseDir: "/build", DestDir: "/x"}
	editSymtab(img, cfg)

	sec, _ := img.Section(".strtab")
	got, _ := readCString(sec.Data, off)

	if got != "/build/main.c" {
		t.Fatalf("non-STT_FILE symbol must be left alone, got %q", got)
	}
}
