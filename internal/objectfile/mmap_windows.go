//go:build windows
// +build windows

package objectfile

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// OpenFile maps path read-write via CreateFileMapping/MapViewOfFile and
// returns an ELFImage backed directly by the mapping.
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

	size := fi.Size()
	if size == 0 {
		return nil, fmt.Errorf("objectfile: %s is empty", path)
	}

	mapping, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil,
		windows.PAGE_READWRITE, uint32(size>>32), uint32(size&0xffffffff), nil)
	if err != nil {
		return nil, fmt.Errorf("objectfile: CreateFileMapping %s: %w", path, err)
	}

	addr, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(mapping)
		return nil, fmt.Errorf("objectfile: MapViewOfFile %s: %w", path, err)
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))

	unmap := func() error {
		if err := windows.FlushViewOfFile(addr, uintptr(size)); err != nil {
			windows.UnmapViewOfFile(addr)
			windows.CloseHandle(mapping)
			return err
		}

		if err := windows.UnmapViewOfFile(addr); err != nil {
			windows.CloseHandle(mapping)
			return err
		}

		return windows.CloseHandle(mapping)
	}

	img, err := Open(data, unmap)
	if err != nil {
		windows.UnmapViewOfFile(addr)
		windows.CloseHandle(mapping)
		return nil, err
	}

	return img, nil
}
