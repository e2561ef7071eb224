// Package bytesource exposes the TPS file as a random-access byte
// image: component A of the decode pipeline. Everything above it reads
// through Source rather than touching *os.File directly, so the
// decryptor (component B) can transparently interpose itself.
package bytesource

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/galler-alexander/tpsread/internal/errs"
)

// Source is a random-access byte image of the whole file.
type Source interface {
	// ReadAt reads len(buf) bytes starting at pos. It returns an IoError
	// (see errs.IO) on a short read, matching the reference's behavior
	// of failing outright on a truncated file rather than returning a
	// partial buffer.
	ReadAt(buf []byte, pos int64) error
	// Size returns the file's length in bytes.
	Size() int64
	// Close releases the underlying file/mapping.
	Close() error
}

// Open maps path into memory when the platform supports it, falling
// back to ordinary positioned reads otherwise.
func Open(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.WrapNotFound(path, err)
		}
		return nil, errs.WrapIO("open "+path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errs.WrapIO("stat "+path, err)
	}
	if info.Size() == 0 {
		f.Close()
		return nil, errs.Newf("%s: empty file", path)
	}

	if src, err := openMmap(f, info.Size()); err == nil {
		return src, nil
	}
	// mmap unavailable or failed: fall back to plain file reads. The
	// file descriptor stays open for the fallback's lifetime.
	return &fileSource{f: f, size: info.Size()}, nil
}

// fileSource is the portable fallback: every read is a pread(2)-style
// ReadAt on the open file.
type fileSource struct {
	f    *os.File
	size int64
}

func (s *fileSource) ReadAt(buf []byte, pos int64) error {
	if pos < 0 || pos+int64(len(buf)) > s.size {
		return errs.WrapIO("read", errors.Newf("bytesource: out-of-range read at %d, size %d, file size %d", pos, len(buf), s.size))
	}
	n, err := s.f.ReadAt(buf, pos)
	if err != nil && !(err == io.EOF && n == len(buf)) {
		return errs.WrapIO("read", errors.Wrapf(err, "at %d len %d", pos, len(buf)))
	}
	return nil
}

func (s *fileSource) Size() int64 { return s.size }

func (s *fileSource) Close() error {
	return s.f.Close()
}
