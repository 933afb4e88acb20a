package dwarfedit

// fakeImage is a minimal in-memory Image used by the core package's own
// tests, standing in for an ELF-backed objectfile.ELFImage.
type fakeImage struct {
	sections  map[string]*Section
	addrs     map[string]uint64
	indices   map[string]uint16
	relocs    map[string]RelocSection
	symbols   []Symbol
	endian    Endian
	ptrSize   int
	machine   uint16
	dirty     map[string]bool
}

func newFakeImage() *fakeImage {
	return &fakeImage{
		sections: make(map[string]*Section),
		addrs:    make(map[string]uint64),
		indices:  make(map[string]uint16),
		relocs:   make(map[string]RelocSection),
		dirty:    make(map[string]bool),
		ptrSize:  8,
		machine:  0, // unknown by default; tests needing relocations set this explicitly
	}
}

func (f *fakeImage) addSection(name string, data []byte, index uint16) {
	f.sections[name] = &Section{Name: name, Data: data}
	f.indices[name] = index
}

func (f *fakeImage) Section(name string) (*Section, bool) {
	s, ok := f.sections[name]
	return s, ok
}

func (f *fakeImage) SectionAddr(name string) (uint64, bool) {
	a, ok := f.addrs[name]
	return a, ok
}

func (f *fakeImage) SectionIndex(name string) (uint16, bool) {
	i, ok := f.indices[name]
	return i, ok
}

func (f *fakeImage) Relocations(name string) (RelocSection, bool) {
	r, ok := f.relocs[name]
	return r, ok
}

func (f *fakeImage) Symbols() []Symbol {
	return f.symbols
}

func (f *fakeImage) Endian() Endian {
	return f.endian
}

func (f *fakeImage) PointerSize() int {
	return f.ptrSize
}

func (f *fakeImage) Machine() uint16 {
	return f.machine
}

func (f *fakeImage) MarkDirty(name string) {
	f.dirty[name] = true
}
