package objectfile

import (
	"debug/elf"

	"github.com/CoryXie/DebugEdit/internal/dwarfedit"
)

// loadSymbols decodes .symtab by hand rather than through elf.File.Symbols,
// because the path-rewrite core needs each STT_FILE symbol's raw name
// offset into its string table to edit it in place; debug/elf only ever
// hands back already-resolved, copied name strings.
func (img *ELFImage) loadSymbols() error {
	var symtabHdr *elf.Section

	for _, sh := range img.f.Sections {
		if sh.Name == ".symtab" {
			symtabHdr = sh
			break
		}
	}

	if symtabHdr == nil {
		return nil
	}

	strtabName := ""
	if int(symtabHdr.Link) < len(img.f.Sections) {
		strtabName = img.f.Sections[symtabHdr.Link].Name
	}

	symtab, ok := img.sections[".symtab"]
	if !ok {
		return nil
	}

	strtab, ok := img.sections[strtabName]
	if !ok {
		return nil
	}

	entsize := 16
	if img.class == elf.ELFCLASS64 {
		entsize = 24
	}

	for off := 0; off+entsize <= len(symtab.Data); off += entsize {
		var nameOff, value, shndx uint64
		var info uint8

		if img.class == elf.ELFCLASS64 {
			nameOff = uint64(img.order.Uint32(symtab.Data[off:]))
			info = symtab.Data[off+4]
			shndx = uint64(img.order.Uint16(symtab.Data[off+6:]))
			value = img.order.Uint64(symtab.Data[off+8:])
		} else {
			nameOff = uint64(img.order.Uint32(symtab.Data[off:]))
			value = uint64(img.order.Uint32(symtab.Data[off+4:]))
			info = symtab.Data[off+12]
			shndx = uint64(img.order.Uint16(symtab.Data[off+14:]))
		}

		name := cString(strtab.Data, nameOff)

		img.symbols = append(img.symbols, dwarfedit.Symbol{
			Name:        name,
			Value:       value,
			Shndx:       uint16(shndx),
			Type:        info & 0xf,
			NameSection: strtabName,
			NameOffset:  nameOff,
		})
	}

	return nil
}

func cString(buf []byte, off uint64) string {
	if off >= uint64(len(buf)) {
		return ""
	}

	end := off
	for end < uint64(len(buf)) && buf[end] != 0 {
		end++
	}

	return string(buf[off:end])
}
