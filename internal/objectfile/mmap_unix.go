//go:build linux || darwin || freebsd || netbsd || openbsd
// +build linux darwin freebsd netbsd openbsd

package objectfile

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// OpenFile maps path read-write and returns an ELFImage backed directly by
// the mapping, so every in-place edit lands on the file with no
// intermediate read/write copy. Close flushes the mapping back with msync
// before unmapping it.
func OpenFile(path string) (*ELFImage, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("objectfile: open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("objectfile: stat %s: %w", path, err)
	}

	size := int(fi.Size())
	if size == 0 {
		return nil, fmt.Errorf("objectfile: %s is empty", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("objectfile: mmap %s: %w", path, err)
	}

	unmap := func() error {
		if err := unix.Msync(data, unix.MS_SYNC); err != nil {
			_ = unix.Munmap(data)
			return err
		}

		return unix.Munmap(data)
	}

	img, err := Open(data, unmap)
	if err != nil {
		_ = unix.Munmap(data)
		return nil, err
	}

	return img, nil
}
