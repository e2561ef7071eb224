package catalog

import (
	"encoding/binary"

	"github.com/galler-alexander/tpsread/internal/errs"
	"github.com/galler-alexander/tpsread/internal/record"
)

// cursor is a small forward-only binary reader over a definition's
// reassembled bytes.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) remaining() int { return len(c.buf) - c.pos }

func (c *cursor) byte() (byte, error) {
	if c.remaining() < 1 {
		return 0, errs.Newf("table definition: truncated (wanted 1 byte at %d)", c.pos)
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

func (c *cursor) u16() (uint16, error) {
	if c.remaining() < 2 {
		return 0, errs.Newf("table definition: truncated (wanted u16 at %d)", c.pos)
	}
	v := binary.LittleEndian.Uint16(c.buf[c.pos : c.pos+2])
	c.pos += 2
	return v, nil
}

// cstring reads a NUL-terminated string, not including the NUL.
func (c *cursor) cstring() (string, error) {
	start := c.pos
	for c.pos < len(c.buf) && c.buf[c.pos] != 0 {
		c.pos++
	}
	if c.pos >= len(c.buf) {
		return "", errs.Newf("table definition: unterminated string at %d", start)
	}
	s := string(c.buf[start:c.pos])
	c.pos++ // consume NUL
	return s, nil
}

// ParseDefinition decodes a fully reassembled TABLE_DEFINITION payload
// (field_count, memo_count and index_count arrays) per the format.
func ParseDefinition(data []byte) (TableDefinition, error) {
	c := &cursor{buf: data}

	minVersion, err := c.u16()
	if err != nil {
		return TableDefinition{}, err
	}
	recordSize, err := c.u16()
	if err != nil {
		return TableDefinition{}, err
	}
	fieldCount, err := c.u16()
	if err != nil {
		return TableDefinition{}, err
	}
	memoCount, err := c.u16()
	if err != nil {
		return TableDefinition{}, err
	}
	indexCount, err := c.u16()
	if err != nil {
		return TableDefinition{}, err
	}

	def := TableDefinition{MinVersionDriver: minVersion, RecordSize: recordSize}

	for i := uint16(0); i < fieldCount; i++ {
		f, err := parseField(c)
		if err != nil {
			return TableDefinition{}, errs.Wrapf(err, "field %d", i)
		}
		def.Fields = append(def.Fields, f)
	}
	for i := uint16(0); i < memoCount; i++ {
		m, err := parseMemo(c)
		if err != nil {
			return TableDefinition{}, errs.Wrapf(err, "memo %d", i)
		}
		def.Memos = append(def.Memos, m)
	}
	for i := uint16(0); i < indexCount; i++ {
		idx, err := parseIndex(c)
		if err != nil {
			return TableDefinition{}, errs.Wrapf(err, "index %d", i)
		}
		def.Indexes = append(def.Indexes, idx)
	}

	return def, nil
}

func parseField(c *cursor) (FieldDescriptor, error) {
	typByte, err := c.byte()
	if err != nil {
		return FieldDescriptor{}, err
	}
	f := FieldDescriptor{Type: FieldType(typByte)}

	if f.Offset, err = c.u16(); err != nil {
		return f, err
	}
	if f.Name, err = c.cstring(); err != nil {
		return f, err
	}
	if f.ArrayElementCount, err = c.u16(); err != nil {
		return f, err
	}
	if f.Size, err = c.u16(); err != nil {
		return f, err
	}
	overlaps, err := c.u16()
	if err != nil {
		return f, err
	}
	f.Overlaps = overlaps != 0
	if f.Number, err = c.u16(); err != nil {
		return f, err
	}

	if f.Type.hasArrayElementFields() {
		if f.ArrayElementSize, err = c.u16(); err != nil {
			return f, err
		}
		if f.Template, err = c.u16(); err != nil {
			return f, err
		}
	}
	if f.Type == Decimal {
		if f.DecimalCount, err = c.byte(); err != nil {
			return f, err
		}
		if f.DecimalSize, err = c.byte(); err != nil {
			return f, err
		}
	}

	return f, nil
}

func parseMemo(c *cursor) (MemoDescriptor, error) {
	var m MemoDescriptor
	var err error
	if m.ExternalFilename, err = c.cstring(); err != nil {
		return m, err
	}
	if m.ExternalFilename == "" {
		if _, err := c.byte(); err != nil { // index_mark, expected 1
			return m, err
		}
	}
	if m.Name, err = c.cstring(); err != nil {
		return m, err
	}
	if m.Size, err = c.u16(); err != nil {
		return m, err
	}

	flagsHi, err := c.byte()
	if err != nil {
		return m, err
	}
	flagsLo, err := c.byte()
	if err != nil {
		return m, err
	}
	flags := uint16(flagsHi)<<8 | uint16(flagsLo)
	// Padding(5), memo_type(1), BINARY(1), Flag(1), Padding(8), MSB first.
	m.Kind = MemoKind((flags >> 10) & 0x1)
	m.Binary = (flags>>9)&0x1 != 0

	return m, nil
}

func parseIndex(c *cursor) (IndexDescriptor, error) {
	var idx IndexDescriptor
	var err error
	if idx.ExternalFilename, err = c.cstring(); err != nil {
		return idx, err
	}
	if idx.ExternalFilename == "" {
		if _, err := c.byte(); err != nil { // index_mark, expected 1
			return idx, err
		}
	}
	if idx.Name, err = c.cstring(); err != nil {
		return idx, err
	}

	flags, err := c.byte()
	if err != nil {
		return idx, err
	}
	// Padding(1), type(2), Padding(2), NOCASE(1), OPT(1), DUP(1), MSB first.
	idx.Kind = IndexKind((flags >> 5) & 0x3)
	idx.NoCase = (flags>>2)&0x1 != 0
	idx.Opt = (flags>>1)&0x1 != 0
	idx.Dup = flags&0x1 != 0

	fieldCount, err := c.u16()
	if err != nil {
		return idx, err
	}
	for i := uint16(0); i < fieldCount; i++ {
		num, err := c.u16()
		if err != nil {
			return idx, err
		}
		order, err := c.u16()
		if err != nil {
			return idx, err
		}
		o := IndexFieldOrder(order)
		if o != Ascending {
			o = Descending
		}
		idx.Fields = append(idx.Fields, IndexFieldPart{FieldNumber: num, Order: o})
	}

	return idx, nil
}

// splitPortion strips the leading 2-byte portion_number from a
// TABLE_DEFINITION record's bytes.
func splitPortion(rec record.Record) (portion uint16, body []byte, err error) {
	if len(rec.DefinitionBytes) < 2 {
		return 0, nil, errs.Newf("table definition portion: payload shorter than portion_number header")
	}
	portion = binary.LittleEndian.Uint16(rec.DefinitionBytes[0:2])
	return portion, rec.DefinitionBytes[2:], nil
}
