//go:build unix

package scanner

import (
	"os"
	"syscall"
)

// withMappedFile maps the file read-only and passes the mapping to fn. The
// mapping is only valid for the duration of the call; fn must copy anything
// it keeps.
func withMappedFile(path string, fn func(data []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	// Zero-length files cannot be mapped.
	if info.Size() == 0 {
		return fn(nil)
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(info.Size()), syscall.PROT_READ, syscall.MAP_PRIVATE)
	if err != nil {
		return err
	}
	defer syscall.Munmap(data)

	return fn(data)
}
