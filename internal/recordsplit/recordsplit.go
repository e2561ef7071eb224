// Package recordsplit splits a decompressed leaf-page body into its
// delta-encoded records: component F. Each record shares a prefix of
// bytes with the one before it in page order, so a Splitter carries
// state (the previous record's body, and the last-seen record/header
// sizes) across calls to Split within one page; a fresh Splitter must
// be used per page.
package recordsplit

import "encoding/binary"

// Raw is one record's framing: a two-byte little-endian data_size
// length prefix followed by exactly that many bytes, ready for
// record.Parse.
type Raw struct {
	HeaderSize uint16
	Bytes      []byte
}

// Splitter reconstructs full record bodies from a page's delta stream.
type Splitter struct {
	recordSize       uint16
	recordHeaderSize uint16
	previous         []byte
}

// New returns a Splitter with no inherited state, for the start of a
// new page.
func New() *Splitter {
	return &Splitter{}
}

// Split consumes the entirety of a decompressed page body and returns
// its records in on-disk order.
func (s *Splitter) Split(data []byte) []Raw {
	var out []Raw
	pos := 0
	for pos < len(data) {
		b := data[pos]
		pos++

		if b&0x80 != 0 {
			s.recordSize = binary.LittleEndian.Uint16(data[pos : pos+2])
			pos += 2
		}
		if b&0x40 != 0 {
			s.recordHeaderSize = binary.LittleEndian.Uint16(data[pos : pos+2])
			pos += 2
		}

		keep := int(b & 0x3F)
		newLen := int(s.recordSize) - keep

		body := make([]byte, s.recordSize)
		copy(body, s.previous[:keep])
		copy(body[keep:], data[pos:pos+newLen])
		pos += newLen

		s.previous = body

		framed := make([]byte, 2+len(body))
		binary.LittleEndian.PutUint16(framed, s.recordSize)
		copy(framed[2:], body)

		out = append(out, Raw{HeaderSize: s.recordHeaderSize, Bytes: framed})
	}
	return out
}
