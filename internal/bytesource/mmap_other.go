//go:build !unix

package bytesource

import "os"

// openMmap has no portable implementation outside unix; Open falls
// back to fileSource whenever this returns an error.
func openMmap(f *os.File, size int64) (Source, error) {
	return nil, errNoMmap
}

var errNoMmap = &noMmapError{}

type noMmapError struct{}

func (*noMmapError) Error() string { return "bytesource: mmap not supported on this platform" }
