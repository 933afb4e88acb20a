package dwarfedit

import stderrors "github.com/CoryXie/DebugEdit/internal/errors"

// dieWalker drives the two-phase traversal of .debug_info described in
// §4.4/§4.7. Phase 0 observes comp_dir/stmt_list pairs, drives the line
// program editor, and emits the source-file list; phase 1 performs the
// actual path rewrite of .debug_info and .debug_str. Running the line
// editor in phase 0, before any path has been rewritten, is what lets the
// line editor see the pre-rewrite comp_dir it needs to resolve relative
// file names against.
type dieWalker struct {
	img    Image
	cfg    Config
	info   *Section
	abbrev *Section
	str    *Section
	line   *Section
	reloc  *relocCursor
	sink   *listSink

	ptrSize   int
	cuVersion uint16
}

func newDieWalker(img Image, cfg Config, sink *listSink) (*dieWalker, error) {
	info, ok := img.Section(".debug_info")
	if !ok {
		return nil, nil
	}

	abbrev, ok := img.Section(".debug_abbrev")
	if !ok {
		return nil, stderrors.ExtentExceedsSection(".debug_abbrev missing")
	}

	str, _ := img.Section(".debug_str")
	line, _ := img.Section(".debug_line")

	reloc, err := buildInfoRelocations(img)
	if err != nil {
		return nil, err
	}

	return &dieWalker{
		img: img, cfg: cfg, info: info, abbrev: abbrev, str: str, line: line,
		reloc: reloc, sink: sink,
	}, nil
}

// walk performs one full pass over every compile unit in .debug_info.
func (w *dieWalker) walk(phase int) error {
	if w.info == nil {
		return nil
	}

	if w.reloc != nil {
		w.reloc.reset()
	}

	buf := w.info.Data
	off := uint64(0)

	for off < uint64(len(buf)) {
		if off+11 > uint64(len(buf)) {
			return stderrors.ExtentExceedsSection(".debug_info CU header")
		}

		cuStart := off
		length := w.reloc.resolve32(off, read32(buf, off, w.img.Endian()))
		off += 4
		endCU := cuStart + 4 + uint64(length)

		if length == 0xffffffff {
			return stderrors.Format64BitDWARF()
		}

		if endCU > uint64(len(buf)) {
			return stderrors.ExtentExceedsSection(".debug_info CU")
		}

		version := read16(buf, off, w.img.Endian())
		off += 2

		if version != 2 && version != 3 && version != 4 {
			return stderrors.UnsupportedVersion(".debug_info", version)
		}

		w.cuVersion = version

		abbrevOff := uint64(w.reloc.resolve32(off, read32(buf, off, w.img.Endian())))
		off += 4

		if abbrevOff >= uint64(len(w.abbrev.Data)) {
			return stderrors.ExtentExceedsSection(".debug_info CU abbrev offset")
		}

		pSize := int(buf[off])
		off++

		if w.ptrSize == 0 {
			if pSize != 4 && pSize != 8 {
				return stderrors.MalformedAbbrev("invalid DWARF pointer size")
			}

			w.ptrSize = pSize
		} else if pSize != w.ptrSize {
			return stderrors.MalformedAbbrev("DWARF pointer size differs between compile units")
		}

		table, err := readAbbrevTable(w.abbrev.Data, abbrevOff)
		if err != nil {
			return err
		}

		for off < endCU {
			code, next := readULEB128(buf, off)
			off = next

			if code == 0 {
				continue
			}

			tag, ok := table[code]
			if !ok {
				return stderrors.MalformedAbbrev("could not find DWARF abbreviation")
			}

			next, err := w.editAttributes(off, tag, phase)
			if err != nil {
				return err
			}

			off = next
		}
	}

	return nil
}

// editAttributes steps over one DIE's attribute list, performing the
// path-rewrite actions for DW_AT_comp_dir, DW_AT_stmt_list, and (for
// DW_TAG_compile_unit/DW_TAG_partial_unit) DW_AT_name, and returns the
// offset just past the DIE.
func (w *dieWalker) editAttributes(off uint64, t *abbrevTag, phase int) (uint64, error) {
	var (
		compDir       string
		haveCompDir   bool
		listOffs      uint32
		foundListOffs bool
	)

	endian := w.img.Endian()

	for _, a := range t.Attrs {
		form := a.Form

	redo:
		switch {
		case a.Attr == dwAtStmtList && (form == dwFormData4 || form == dwFormSecOffset):
			listOffs = w.reloc.resolve32(off, read32(w.info.Data, off, endian))
			foundListOffs = true

		case a.Attr == dwAtCompDir && form == dwFormString:
			s, _ := readCString(w.info.Data, off)
			compDir = s
			haveCompDir = true

			if phase == 1 && w.cfg.DestDir != "" && hasPathPrefix(s, w.cfg.BaseDir) {
				if w.rewritePaddedField(w.info.Data, off, w.cfg.BaseDir, w.cfg.DestDir) {
					w.img.MarkDirty(".debug_info")
				}
			}

		case a.Attr == dwAtCompDir && form == dwFormStrp && w.str != nil:
			strOff := uint64(w.reloc.resolve32(off, read32(w.info.Data, off, endian)))
			s, _ := readCString(w.str.Data, strOff)
			compDir = s
			haveCompDir = true

			if phase == 1 && w.cfg.DestDir != "" && hasPathPrefix(s, w.cfg.BaseDir) {
				if w.rewriteStrTableField(strOff, w.cfg.BaseDir, w.cfg.DestDir) {
					w.img.MarkDirty(".debug_str")
				}
			}

		case (t.Tag == dwTagCompileUnit || t.Tag == dwTagPartialUnit) && a.Attr == dwAtName:
			var name string

			switch {
			case form == dwFormStrp && w.str != nil:
				strOff := uint64(w.reloc.resolve32(off, read32(w.info.Data, off, endian)))
				name, _ = readCString(w.str.Data, strOff)

				if len(name) > 0 && name[0] == '/' && !haveCompDir {
					compDir = synthesizeCompDir(name)
					haveCompDir = true
				}

				if phase == 1 && w.cfg.DestDir != "" && hasPathPrefix(name, w.cfg.BaseDir) {
					if w.rewriteStrTableField(strOff, w.cfg.BaseDir, w.cfg.DestDir) {
						w.img.MarkDirty(".debug_str")

						if w.cfg.WinPath {
							rewritten, _ := readCString(w.str.Data, strOff)
							copy(w.str.Data[strOff:], toWinPath(rewritten))
						}
					}
				}

			case form == dwFormString:
				name, _ = readCString(w.info.Data, off)

				if len(name) > 0 && name[0] == '/' && !haveCompDir {
					compDir = synthesizeCompDir(name)
					haveCompDir = true
				}

				if phase == 1 && w.cfg.DestDir != "" && hasPathPrefix(name, w.cfg.BaseDir) {
					if w.rewritePaddedField(w.info.Data, off, w.cfg.BaseDir, w.cfg.DestDir) {
						w.img.MarkDirty(".debug_info")

						if w.cfg.WinPath {
							rewritten, _ := readCString(w.info.Data, off)
							copy(w.info.Data[off:], toWinPath(rewritten))
						}
					}
				}
			}
		}

		var size uint64

		switch form {
		case dwFormRefAddr:
			if w.cuVersion == 2 {
				size = uint64(w.ptrSize)
			} else {
				size = 4
			}
		case dwFormFlagPresent:
			size = 0
		case dwFormAddr:
			size = uint64(w.ptrSize)
		case dwFormRef1, dwFormFlag, dwFormData1:
			size = 1
		case dwFormRef2, dwFormData2:
			size = 2
		case dwFormRef4, dwFormData4, dwFormSecOffset:
			size = 4
		case dwFormRef8, dwFormData8, dwFormRefSig8:
			size = 8
		case dwFormSdata, dwFormRefUdata, dwFormUdata:
			off = skipULEB128(w.info.Data, off)
			continue
		case dwFormStrp:
			size = 4
		case dwFormString:
			_, next := readCString(w.info.Data, off)
			off = next
			continue
		case dwFormIndirect:
			form, off = readULEB128(w.info.Data, off)
			goto redo
		case dwFormBlock1:
			size = uint64(w.info.Data[off])
			off++
		case dwFormBlock2:
			size = uint64(read16(w.info.Data, off, endian))
			off += 2
		case dwFormBlock4:
			size = uint64(read32(w.info.Data, off, endian))
			off += 4
		case dwFormBlock, dwFormExprloc:
			size, off = readULEB128(w.info.Data, off)
		default:
			return 0, stderrors.UnknownForm(form)
		}

		off += size
	}

	if phase == 0 && haveCompDir && w.sink != nil {
		w.sink.emit(compDir, w.cfg.BaseDir, w.cfg.DestDir)
	}

	if foundListOffs && haveCompDir {
		if err := w.editLineProgram(listOffs, compDir, phase); err != nil {
			return 0, err
		}
	}

	return off, nil
}

// synthesizeCompDir reconstructs a compilation directory from an absolute
// CU name when no explicit DW_AT_comp_dir was present, matching the
// original tool's strrchr-based fallback.
func synthesizeCompDir(name string) string {
	idx := -1

	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' {
			idx = i
			break
		}
	}

	if idx <= 0 {
		return "/"
	}

	return name[:idx]
}

// readCString reads a NUL-terminated string starting at off and returns it
// together with the offset just past the terminator.
func readCString(buf []byte, off uint64) (string, uint64) {
	start := off
	for off < uint64(len(buf)) && buf[off] != 0 {
		off++
	}

	return string(buf[start:off]), off + 1
}

// rewritePaddedField overwrites a fixed-width in-place string field (one
// embedded directly in .debug_info, where no neighboring byte can shift
// without corrupting the rest of the stream) with dest, padding any
// leftover space with the path separator so the field keeps its width.
func (w *dieWalker) rewritePaddedField(buf []byte, off uint64, base, dest string) bool {
	copy(buf[off:], dest)

	if len(dest) < len(base) {
		fill := byte('/')
		if w.cfg.WinPath {
			fill = '\\'
		}

		for i := len(dest); i < len(base); i++ {
			buf[off+uint64(i)] = fill
		}
	}

	return true
}

// rewriteStrTableField overwrites the string at strOff in .debug_str with
// dest. Unlike .debug_info, .debug_str is a flat run of independently
// NUL-terminated strings, so when dest is shorter the remainder of the
// string is shifted left to close the gap; the vacated bytes before the
// next string's start become unreferenced filler.
func (w *dieWalker) rewriteStrTableField(strOff uint64, base, dest string) bool {
	buf := w.str.Data
	copy(buf[strOff:], dest)

	if len(dest) < len(base) {
		tailStart := strOff + uint64(len(base))
		_, tailEnd := readCString(buf, tailStart)
		copy(buf[strOff+uint64(len(dest)):], buf[tailStart:tailEnd])
	}

	return true
}
