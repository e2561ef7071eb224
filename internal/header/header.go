// Package header parses the fixed 512-byte TPS file header and its
// block-range map: component C of the decode pipeline.
package header

import (
	"bytes"
	"encoding/binary"

	"github.com/galler-alexander/tpsread/internal/crypt"
	"github.com/galler-alexander/tpsread/internal/errs"
)

const (
	// Size is the logical length of the header region read from the
	// (possibly encrypted) start of the file.
	Size = 0x200

	marker        = "tOpS\x00\x00"
	markerOffset  = 14
	markerLen     = 6
	arraysOffset  = 0x20
	fixedPrefix   = 32
	perEntryBytes = 8 // one u32 in block_start_ref + one u32 in block_end_ref
)

// Header is the parsed result of the file's first 0x200 bytes.
type Header struct {
	Offset             uint32
	Size               uint16
	FileSize           uint32
	AllocatedFileSize  uint32
	LastIssuedRow      uint32
	ChangeCount        uint32
	PageRootRef        uint32
	BlockStartRef      []uint32
	BlockEndRef        []uint32
}

// Parse reads and decodes the header through dec. It fails with
// errs.BadMagic if the literal "tOpS\x00\x00" marker is absent, which
// in practice almost always means a wrong password.
func Parse(dec *crypt.Decryptor, path string) (Header, error) {
	buf, err := dec.Read(Size, 0)
	if err != nil {
		return Header{}, err
	}
	if len(buf) < fixedPrefix {
		return Header{}, errs.Newf("header: short read (%d bytes)", len(buf))
	}

	if !bytes.Equal(buf[markerOffset:markerOffset+markerLen], []byte(marker)) {
		return Header{}, errs.NewBadMagic(path)
	}

	h := Header{
		Offset:            binary.LittleEndian.Uint32(buf[0:4]),
		Size:              binary.LittleEndian.Uint16(buf[4:6]),
		FileSize:          binary.LittleEndian.Uint32(buf[6:10]),
		AllocatedFileSize: binary.LittleEndian.Uint32(buf[10:14]),
		LastIssuedRow:     binary.BigEndian.Uint32(buf[20:24]),
		ChangeCount:       binary.LittleEndian.Uint32(buf[24:28]),
		PageRootRef:       binary.LittleEndian.Uint32(buf[28:32]),
	}

	if int(h.Size) < arraysOffset {
		return Header{}, errs.Newf("header: declared size %d smaller than fixed prefix", h.Size)
	}
	count := (int(h.Size) - arraysOffset) / perEntryBytes
	need := arraysOffset + count*perEntryBytes
	if len(buf) < need {
		// The header claims more block-range entries than we read;
		// re-read through the decryptor for the full declared size.
		buf, err = dec.Read(need, 0)
		if err != nil {
			return Header{}, err
		}
	}

	h.BlockStartRef = make([]uint32, count)
	h.BlockEndRef = make([]uint32, count)
	for i := 0; i < count; i++ {
		h.BlockStartRef[i] = binary.LittleEndian.Uint32(buf[arraysOffset+i*4 : arraysOffset+i*4+4])
	}
	endBase := arraysOffset + count*4
	for i := 0; i < count; i++ {
		h.BlockEndRef[i] = binary.LittleEndian.Uint32(buf[endBase+i*4 : endBase+i*4+4])
	}

	return h, nil
}

// BlockContains reports whether some declared block range fully
// contains [startRef, endRef].
func (h Header) BlockContains(startRef, endRef uint32) bool {
	for i := range h.BlockStartRef {
		if h.BlockStartRef[i] <= startRef && endRef <= h.BlockEndRef[i] {
			return true
		}
	}
	return false
}
