package objectfile

import (
	"debug/elf"

	"github.com/CoryXie/DebugEdit/internal/dwarfedit"
)

// loadRelocations decodes every .rel.debug_* / .rela.debug_* section by
// hand: debug/elf exposes no generic relocation API for arbitrary
// sections, only for the DWARF data it chooses to interpret itself.
func (img *ELFImage) loadRelocations() error {
	for _, sh := range img.f.Sections {
		if sh.Type != elf.SHT_REL && sh.Type != elf.SHT_RELA {
			continue
		}

		target := relocTargetName(sh.Name)
		if target == "" {
			continue
		}

		data := img.raw[sh.Offset : sh.Offset+sh.Size]
		rela := sh.Type == elf.SHT_RELA

		entries, err := img.decodeRelocEntries(data, rela)
		if err != nil {
			return err
		}

		img.relocs[target] = dwarfedit.RelocSection{Rela: rela, Entries: entries}
	}

	return nil
}

// relocTargetName strips the ".rel"/".rela" prefix a relocation section
// name carries, e.g. ".rela.debug_info" -> ".debug_info".
func relocTargetName(name string) string {
	switch {
	case len(name) > 5 && name[:5] == ".rela":
		return name[5:]
	case len(name) > 4 && name[:4] == ".rel":
		return name[4:]
	default:
		return ""
	}
}

func (img *ELFImage) decodeRelocEntries(data []byte, rela bool) ([]dwarfedit.RelocEntry, error) {
	var entries []dwarfedit.RelocEntry

	if img.class == elf.ELFCLASS64 {
		entsize := 16
		if rela {
			entsize = 24
		}

		for off := 0; off+entsize <= len(data); off += entsize {
			r_offset := img.order.Uint64(data[off:])
			r_info := img.order.Uint64(data[off+8:])

			var addend int64
			if rela {
				addend = int64(img.order.Uint64(data[off+16:]))
			}

			entries = append(entries, dwarfedit.RelocEntry{
				Offset: r_offset,
				Symbol: uint32(r_info >> 32),
				Type:   uint32(r_info & 0xffffffff),
				Addend: addend,
			})
		}
	} else {
		entsize := 8
		if rela {
			entsize = 12
		}

		for off := 0; off+entsize <= len(data); off += entsize {
			r_offset := uint64(img.order.Uint32(data[off:]))
			r_info := img.order.Uint32(data[off+4:])

			var addend int64
			if rela {
				addend = int64(int32(img.order.Uint32(data[off+8:])))
			}

			entries = append(entries, dwarfedit.RelocEntry{
				Offset: r_offset,
				Symbol: r_info >> 8,
				Type:   r_info & 0xff,
				Addend: addend,
			})
		}
	}

	return entries, nil
}
