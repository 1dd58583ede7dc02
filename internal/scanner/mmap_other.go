//go:build !unix

package scanner

import "os"

// withMappedFile falls back to a plain read on platforms without a usable
// mmap syscall surface.
func withMappedFile(path string, fn func(data []byte) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return fn(data)
}
