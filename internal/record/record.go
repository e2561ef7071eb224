// Package record parses a raw delta-split record into the tagged
// variant described by the format: component G. The variant is
// modeled as a discriminated union (Type plus the fields relevant to
// that type) rather than an object hierarchy, since the set of
// variants is closed and small.
package record

import (
	"encoding/binary"

	"github.com/galler-alexander/tpsread/internal/errs"
	"github.com/galler-alexander/tpsread/internal/recordsplit"
)

// Type discriminates the record variants.
type Type int

const (
	Null Type = iota
	TableName
	Data
	Metadata
	TableDefinition
	Index
)

func (t Type) String() string {
	switch t {
	case Null:
		return "NULL"
	case TableName:
		return "TABLE_NAME"
	case Data:
		return "DATA"
	case Metadata:
		return "METADATA"
	case TableDefinition:
		return "TABLE_DEFINITION"
	case Index:
		return "INDEX"
	default:
		return "UNKNOWN"
	}
}

const (
	tagTableName       = 0xFE
	tagData            = 0xF3
	tagMetadata        = 0xF6
	tagTableDefinition = 0xFA
)

// Decoder turns raw bytes into a string per the caller's chosen
// encoding. A nil Decoder means "pass bytes through uninterpreted".
type Decoder func([]byte) string

func decode(dec Decoder, b []byte) string {
	if dec == nil {
		return string(b)
	}
	return dec(b)
}

// Record is the parsed, tagged record. Only the fields relevant to
// Type are meaningful; the zero value for everything else holds.
type Record struct {
	Type        Type
	HeaderSize  uint16
	TableNumber uint32

	// TABLE_NAME
	Name string

	// DATA, INDEX
	RecordNumber uint32
	Data         []byte

	// TABLE_DEFINITION (still carries its leading portion_number; the
	// catalog package strips it when it stores the portion)
	DefinitionBytes []byte

	// METADATA
	MetadataType        uint8
	MetadataRecordCount uint32
	MetadataLastAccess  uint32
}

// Parse decodes one raw, delta-reassembled record. A record whose
// payload (beyond the 2-byte data_size header) is empty is NULL.
func Parse(raw recordsplit.Raw, dec Decoder) (Record, error) {
	if len(raw.Bytes) < 2 {
		return Record{}, errs.Newf("record: framed record shorter than its own length header (%d bytes)", len(raw.Bytes))
	}
	dataSize := len(raw.Bytes) - 2
	if dataSize == 0 {
		return Record{Type: Null, HeaderSize: raw.HeaderSize}, nil
	}
	payload := raw.Bytes[2:]

	if payload[0] == tagTableName {
		if dataSize < 5 {
			return Record{}, errs.Newf("record: TABLE_NAME payload too short (%d bytes)", dataSize)
		}
		nameLen := dataSize - 5
		name := payload[1 : 1+nameLen]
		tableNumber := binary.BigEndian.Uint32(payload[1+nameLen : 1+nameLen+4])
		return Record{
			Type:        TableName,
			HeaderSize:  raw.HeaderSize,
			TableNumber: tableNumber,
			Name:        decode(dec, name),
		}, nil
	}

	if dataSize < 5 {
		return Record{}, errs.Newf("record: payload too short for table_number+tag (%d bytes)", dataSize)
	}
	tableNumber := binary.BigEndian.Uint32(payload[0:4])
	tag := payload[4]
	rest := payload[5:]

	switch tag {
	case tagData:
		if len(rest) < 4 {
			return Record{}, errs.Newf("record: DATA payload too short (%d bytes)", len(rest))
		}
		recordNumber := binary.BigEndian.Uint32(rest[0:4])
		return Record{
			Type:         Data,
			HeaderSize:   raw.HeaderSize,
			TableNumber:  tableNumber,
			RecordNumber: recordNumber,
			Data:         rest[4:],
		}, nil

	case tagMetadata:
		if len(rest) < 9 {
			return Record{}, errs.Newf("record: METADATA payload too short (%d bytes)", len(rest))
		}
		return Record{
			Type:                Metadata,
			HeaderSize:          raw.HeaderSize,
			TableNumber:         tableNumber,
			MetadataType:        rest[0],
			MetadataRecordCount: binary.LittleEndian.Uint32(rest[1:5]),
			MetadataLastAccess:  binary.LittleEndian.Uint32(rest[5:9]),
		}, nil

	case tagTableDefinition:
		return Record{
			Type:            TableDefinition,
			HeaderSize:      raw.HeaderSize,
			TableNumber:     tableNumber,
			DefinitionBytes: rest,
		}, nil

	default:
		// The data array is data_size-10 bytes, followed by a 4-byte
		// little-endian record_number; table_number+tag already
		// consumed 5 of data_size's bytes, which leaves one trailing
		// byte of rest unused. This mirrors the reference's own
		// (slightly inconsistent) framing rather than "fixing" it.
		dataLen := dataSize - 10
		if dataLen < 0 || dataLen+4 > len(rest) {
			return Record{}, errs.Newf("record: INDEX payload too short (data_size %d)", dataSize)
		}
		return Record{
			Type:         Index,
			HeaderSize:   raw.HeaderSize,
			TableNumber:  tableNumber,
			Data:         rest[:dataLen],
			RecordNumber: binary.LittleEndian.Uint32(rest[dataLen : dataLen+4]),
		}, nil
	}
}
