//go:build unix

package bytesource

import (
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"

	"github.com/galler-alexander/tpsread/internal/errs"
)

// mmapSource backs ReadAt with a slice over a read-only mmap of the
// whole file, matching the reference's mmap.mmap(fileno, 0) handle.
type mmapSource struct {
	f    *os.File
	data []byte
}

func openMmap(f *os.File, size int64) (Source, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, errs.WrapIO("mmap", err)
	}
	return &mmapSource{f: f, data: data}, nil
}

func (s *mmapSource) ReadAt(buf []byte, pos int64) error {
	if pos < 0 || pos+int64(len(buf)) > int64(len(s.data)) {
		return errs.WrapIO("read", errors.Newf("bytesource: out-of-range read at %d, size %d, file size %d", pos, len(buf), len(s.data)))
	}
	copy(buf, s.data[pos:pos+int64(len(buf))])
	return nil
}

func (s *mmapSource) Size() int64 { return int64(len(s.data)) }

func (s *mmapSource) Close() error {
	err := unix.Munmap(s.data)
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}
