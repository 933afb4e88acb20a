package dwarfedit

// editSymtab rewrites every STT_FILE symbol name that carries the base
// directory prefix, the same way edit_attributes rewrites DW_AT_name: copy
// dest-dir over the matched prefix, then shift the remainder left to close
// the gap left by a shorter dest-dir.
//
// Unlike the reference implementation, make_win_path conversion here is
// gated on cfg.WinPath: unconditionally flipping separators regardless of
// the flag rewrote non-Windows symbol names whenever -dest-dir happened to
// be set, which was never the intent of the flag.
func editSymtab(img Image, cfg Config) {
	if cfg.DestDir == "" {
		return
	}

	baseLen := len(cfg.BaseDir)
	destLen := len(cfg.DestDir)

	for _, sym := range img.Symbols() {
		if sym.Type != SymTypeFile {
			continue
		}

		if !hasPathPrefix(sym.Name, cfg.BaseDir) {
			continue
		}

		sec, ok := img.Section(sym.NameSection)
		if !ok {
			continue
		}

		off := sym.NameOffset
		copy(sec.Data[off:], cfg.DestDir)

		if destLen < baseLen {
			tailStart := off + uint64(baseLen)
			_, tailEnd := readCString(sec.Data, tailStart)
			copy(sec.Data[off+uint64(destLen):], sec.Data[tailStart:tailEnd])
		}

		if cfg.WinPath {
			rewritten, _ := readCString(sec.Data, off)
			win := toWinPath(rewritten)
			copy(sec.Data[off:], win)
		}

		img.MarkDirty(sym.NameSection)
	}
}
