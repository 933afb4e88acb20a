// Command debugedit rewrites the build-time source paths embedded in an
// ELF object's DWARF debug info and symbol table to their deployment-time
// equivalents, in place, and optionally records every source and header
// file it saw along the way.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/fsnotify/fsnotify"

	"github.com/CoryXie/DebugEdit/internal/cli"
	"github.com/CoryXie/DebugEdit/internal/dwarfedit"
	"github.com/CoryXie/DebugEdit/internal/objectfile"
)

func main() {
	var (
		baseDir     = flag.String("base-dir", "", "base build directory of objects")
		destDir     = flag.String("dest-dir", "", "directory to rewrite base-dir into")
		listFile    = flag.String("list-file", "", "file where to put the list of source and header file names")
		winPath     = flag.Bool("win-path", false, "change the path delimiter to be Windows compatible")
		watch       = flag.Bool("watch", false, "re-run the edit whenever the target file is rewritten")
		compat      = flag.String("compat", "", "require the running binary to satisfy this semver constraint before editing")
		showVersion = flag.Bool("version", false, "show version information")
		jsonOutput  = flag.Bool("json", false, "output version information as JSON")
		verbose     = flag.Bool("verbose", false, "verbose output")
		debugMode   = flag.Bool("debug", false, "debug output")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] FILE...\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Rewrite build-time source paths embedded in ELF objects.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersion {
		cli.PrintVersion("debugedit", *jsonOutput)
		os.Exit(0)
	}

	logger := cli.NewLogger(*verbose, *debugMode)

	if *compat != "" {
		if err := checkCompat(*compat); err != nil {
			cli.ExitWithError("%v", err)
		}
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if *baseDir != "" && !strings.HasSuffix(*baseDir, "/") {
		*baseDir += "/"
	}

	if *destDir != "" {
		sep := "/"
		if *winPath {
			sep = "\\"
		}

		if !strings.HasSuffix(*destDir, "/") && !strings.HasSuffix(*destDir, "\\") {
			*destDir += sep
		}
	}

	cfg := dwarfedit.Config{
		BaseDir: *baseDir,
		DestDir: *destDir,
		WinPath: *winPath,
	}

	if *listFile != "" {
		f, err := os.OpenFile(*listFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			cli.ExitWithError("opening list file %s: %v", *listFile, err)
		}
		defer f.Close()

		cfg.ListFile = f
	}

	run := func() error {
		for _, path := range flag.Args() {
			if err := editOne(path, cfg, logger); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}

		return nil
	}

	if err := run(); err != nil {
		cli.HandleError(err, logger)
	}

	if !*watch {
		return
	}

	if err := watchAndRerun(flag.Args(), run, logger); err != nil {
		cli.HandleError(err, logger)
	}
}

// editOne opens path, preserving its permission bits across the edit the
// way the original tool's chmod-around-elf_update dance did, runs the
// path rewrite, and syncs the mapping back.
func editOne(path string, cfg dwarfedit.Config, logger *cli.Logger) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := fi.Mode()

	if mode&0o200 == 0 {
		if err := os.Chmod(path, mode|0o200); err != nil {
			return err
		}

		defer os.Chmod(path, mode)
	}

	img, err := objectfile.OpenFile(path)
	if err != nil {
		return err
	}
	defer img.Close()

	logger.Debug("editing %s (base=%q dest=%q win-path=%v)", path, cfg.BaseDir, cfg.DestDir, cfg.WinPath)

	if err := dwarfedit.Edit(img, cfg); err != nil {
		return err
	}

	logger.Info("rewrote %s: dirty sections %v", path, img.Dirty())

	return nil
}

// checkCompat gates the run on a semver constraint against the build's own
// version, for callers that pin a minimum debugedit behavior in their
// build scripts.
func checkCompat(constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid -compat constraint %q: %w", constraint, err)
	}

	v, err := semver.NewVersion(cli.Version)
	if err != nil {
		return fmt.Errorf("invalid build version %q: %w", cli.Version, err)
	}

	if !c.Check(v) {
		return fmt.Errorf("debugedit %s does not satisfy -compat %q", cli.Version, constraint)
	}

	return nil
}

// watchAndRerun re-invokes run every time one of paths is rewritten on
// disk, debouncing bursts of writes from a single build step into one
// edit pass.
func watchAndRerun(paths []string, run func() error, logger *cli.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	for _, p := range paths {
		if err := w.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
	}

	var debounce *time.Timer

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}

			debounce = time.AfterFunc(200*time.Millisecond, func() {
				if err := run(); err != nil {
					logger.Error("re-edit after %s: %v", ev.Name, err)
				}
			})

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			logger.Error("watcher: %v", err)
		}
	}
}
