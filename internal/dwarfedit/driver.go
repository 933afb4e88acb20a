package dwarfedit

import (
	"io"

	stderrors "github.com/CoryXie/DebugEdit/internal/errors"
)

// Config holds the per-run path-rewrite parameters (§4.7). BaseDir is the
// build-time prefix to strip; DestDir is what replaces it. DestDir must
// never be longer than BaseDir, since every section this tool touches is
// edited in place and cannot grow.
type Config struct {
	BaseDir string
	DestDir string
	WinPath bool

	// ListFile, if set, receives a NUL-terminated path per resolved
	// source or header file, with BaseDir/DestDir stripped off (§5).
	ListFile io.Writer
}

func (c Config) validate() error {
	if c.DestDir == "" {
		return nil
	}

	if c.BaseDir == "" {
		return stderrors.MissingBaseDir()
	}

	if len(c.DestDir) > len(c.BaseDir) {
		return stderrors.DestLongerThanBase(c.BaseDir, c.DestDir)
	}

	return nil
}

// Edit rewrites img's embedded source paths in place per cfg. It never
// resizes any section; every byte freed by a shorter DestDir is replaced
// with filler, never removed.
func Edit(img Image, cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	editSymtab(img, cfg)

	sink := newListSink(cfg.ListFile)

	walker, err := newDieWalker(img, cfg, sink)
	if err != nil {
		return err
	}

	if walker == nil {
		return nil
	}

	if err := walker.walk(0); err != nil {
		return err
	}

	return walker.walk(1)
}
