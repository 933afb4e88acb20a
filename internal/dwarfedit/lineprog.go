package dwarfedit

import stderrors "github.com/CoryXie/DebugEdit/internal/errors"

// editLineProgram rewrites the directory and file-name tables of the line
// program header at off in .debug_line (§4.5). It only runs in phase 0: by
// the time phase 1 would run, edit_attributes would already have rewritten
// comp_dir in .debug_info, and this editor needs the pre-rewrite comp_dir
// to resolve file names that are relative to it.
func (w *dieWalker) editLineProgram(off uint32, compDir string, phase int) error {
	if phase != 0 || w.line == nil {
		return nil
	}

	buf := w.line.Data
	endian := w.img.Endian()

	cuStart := uint64(off)
	if cuStart+11 > uint64(len(buf)) {
		return stderrors.ExtentExceedsSection(".debug_line CU header")
	}

	length := read32(buf, cuStart, endian)
	if length == 0xffffffff {
		return stderrors.Format64BitDWARF()
	}

	endCU := cuStart + 4 + uint64(length)
	if endCU > uint64(len(buf)) {
		return stderrors.ExtentExceedsSection(".debug_line CU")
	}

	version := read16(buf, cuStart+4, endian)
	if version != 2 && version != 3 && version != 4 {
		return stderrors.UnsupportedVersion(".debug_line", version)
	}

	headerLenPos := cuStart + 6
	headerLen := read32(buf, headerLenPos, endian)
	fieldsStart := headerLenPos + 4
	endProl := fieldsStart + uint64(headerLen)

	if endProl > endCU {
		return stderrors.ExtentExceedsSection(".debug_line CU prologue")
	}

	extra := uint64(0)
	if version >= 4 {
		extra = 1
	}

	opcodeBaseOff := fieldsStart + 4 + extra
	opcodeBase := uint64(buf[opcodeBaseOff])
	// standard_opcode_lengths holds opcode_base-1 bytes after opcode_base.
	dirTableStart := opcodeBaseOff + opcodeBase

	// Directory table: a run of NUL-terminated strings terminated by one
	// extra NUL. Index 0 is always the implicit "." entry; it has no
	// on-disk representation.
	dirs := []string{"."}
	p := dirTableStart

	for p < uint64(len(buf)) && buf[p] != 0 {
		s, next := readCString(buf, p)
		dirs = append(dirs, s)
		p = next
	}

	p++ // the directory table's own terminating empty entry

	// Informational pass: resolve every file name to its full path,
	// canonicalize it, emit it to the source list, and count how many
	// absolute file names will need rewriting below.
	absFileCnt := 0

	for p < uint64(len(buf)) && buf[p] != 0 {
		file, next := readCString(buf, p)
		p = next

		dirIdx, next := readULEB128(buf, p)
		p = next

		if dirIdx >= uint64(len(dirs)) {
			return stderrors.DirIndexOutOfRange(dirIdx, uint64(len(dirs)))
		}

		p = skipULEB128(buf, p) // mtime
		p = skipULEB128(buf, p) // length

		var full string

		switch {
		case len(file) > 0 && file[0] == '/':
			full = file

			if w.cfg.DestDir != "" && hasPathPrefix(file, w.cfg.BaseDir) &&
				len(w.cfg.DestDir) < len(w.cfg.BaseDir) {
				absFileCnt++
			}

		case len(dirs[dirIdx]) > 0 && dirs[dirIdx][0] == '/':
			full = dirs[dirIdx] + "/" + file

		default:
			if compDir != "" {
				full = compDir + "/" + dirs[dirIdx] + "/" + file
			} else {
				full = dirs[dirIdx] + "/" + file
			}
		}

		canon := canonicalizePath(full)
		if w.cfg.WinPath {
			canon = toWinPath(canon)
		}

		w.sink.emit(canon, w.cfg.BaseDir, w.cfg.DestDir)
	}

	fileTableEnd := p + 1 // past the file table's terminating NUL

	if w.cfg.DestDir == "" {
		return nil
	}

	baseLen := len(w.cfg.BaseDir)
	destLen := len(w.cfg.DestDir)

	if destLen == baseLen {
		absFileCnt = 0
	}

	// Snapshot the whole listing region so the rewrite below can read
	// pristine bytes while writing shrunk output into the same live
	// buffer; the original only copies when an absolute file name forces
	// it, as a malloc-avoidance optimization. Copying unconditionally is
	// behaviorally identical and simpler to reason about in Go.
	snap := make([]byte, fileTableEnd-dirTableStart)
	copy(snap, buf[dirTableStart:fileTableEnd])

	writePtr := dirTableStart
	readPtr := uint64(0)
	shrank := int64(0)
	absDirCnt := 0

	for readPtr < uint64(len(snap)) && snap[readPtr] != 0 {
		entryStart := readPtr
		s, entryEnd := readCString(snap, entryStart) // entryEnd is past the NUL
		entryLen := entryEnd - entryStart

		canonSrc := entryStart
		matched := len(s) > 0 && s[0] == '/' && hasPathPrefix(s, w.cfg.BaseDir)

		if matched {
			if destLen < baseLen {
				absDirCnt++
			}

			copy(buf[writePtr:], w.cfg.DestDir)
			writePtr += uint64(destLen)
			canonSrc = entryStart + uint64(baseLen)
		}

		shrank += int64(entryEnd - canonSrc)

		remainder := string(snap[canonSrc : entryEnd-1])
		canon := canonicalizePath(remainder)

		if w.cfg.WinPath {
			canon = toWinPath(canon)
		}

		copy(buf[writePtr:], canon)
		buf[writePtr+uint64(len(canon))] = 0
		written := uint64(len(canon) + 1)
		shrank -= int64(written)
		writePtr += written

		if matched || canon != s {
			w.img.MarkDirty(".debug_line")
		}

		readPtr = entryStart + entryLen
	}

	if shrank > 0 {
		shrank--

		if shrank == 0 {
			return stderrors.CanonicalizationShrank()
		}

		for i := int64(0); i < shrank; i++ {
			buf[writePtr] = 'X'
			writePtr++
		}

		buf[writePtr] = 0
		writePtr++
	}

	if absDirCnt+absFileCnt != 0 {
		reserve := uint64(absDirCnt+absFileCnt) * uint64(baseLen-destLen)
		if reserve == 1 {
			return stderrors.ReserveTooSmall()
		}

		for i := uint64(0); i < reserve-1; i++ {
			buf[writePtr] = 'X'
			writePtr++
		}

		buf[writePtr] = 0
		writePtr++
	}

	buf[writePtr] = 0
	writePtr++
	readPtr++ // past the directory table's own terminator in snap

	for readPtr < uint64(len(snap)) && snap[readPtr] != 0 {
		nameStart := readPtr
		name, nameEnd := readCString(snap, nameStart)
		entryLen := nameEnd - nameStart

		savings := uint64(0)
		matched := len(name) > 0 && name[0] == '/' && hasPathPrefix(name, w.cfg.BaseDir)

		if matched {
			copy(buf[writePtr:], w.cfg.DestDir)

			if destLen < baseLen {
				savings = uint64(baseLen - destLen)
				tailStart := nameStart + uint64(baseLen)
				copy(buf[writePtr+uint64(destLen):], snap[tailStart:nameEnd])
			} else {
				copy(buf[writePtr+uint64(destLen):], snap[nameStart+uint64(destLen):nameEnd])
			}

			w.img.MarkDirty(".debug_line")
		} else {
			copy(buf[writePtr:], snap[nameStart:nameEnd])
		}

		writePtr += entryLen - savings
		readPtr = nameEnd

		ulebStart := readPtr
		readPtr = skipULEB128(snap, readPtr) // dir index
		readPtr = skipULEB128(snap, readPtr) // mtime
		readPtr = skipULEB128(snap, readPtr) // length
		ulebLen := readPtr - ulebStart

		copy(buf[writePtr:], snap[ulebStart:readPtr])
		writePtr += ulebLen
	}

	buf[writePtr] = 0

	return nil
}

// toWinPath converts every forward slash to a backslash, for consumers
// that expect Windows-style paths in the emitted source list.
func toWinPath(s string) string {
	b := []byte(s)

	for i, c := range b {
		if c == '/' {
			b[i] = '\\'
		}
	}

	return string(b)
}
