package catalog

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func appendCString(buf []byte, s string) []byte {
	buf = append(buf, []byte(s)...)
	return append(buf, 0)
}

func appendU16(buf []byte, v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return append(buf, b...)
}

// buildField encodes one TABLE_DEFINITION_FIELD_STRUCT entry.
func buildField(typ FieldType, offset uint16, name string, arrayCount, size, number uint16) []byte {
	buf := []byte{byte(typ)}
	buf = appendU16(buf, offset)
	buf = appendCString(buf, name)
	buf = appendU16(buf, arrayCount)
	buf = appendU16(buf, size)
	buf = appendU16(buf, 0) // overlaps
	buf = appendU16(buf, number)
	if typ.hasArrayElementFields() {
		buf = appendU16(buf, size) // array_element_size
		buf = appendU16(buf, 0)    // template
	}
	if typ == Decimal {
		buf = append(buf, 2, 4) // decimal_count, decimal_size
	}
	return buf
}

func TestParseDefinitionRoundTrip(t *testing.T) {
	var buf []byte
	buf = appendU16(buf, 1)  // min_version_driver
	buf = appendU16(buf, 20) // record_size
	buf = appendU16(buf, 2)  // field_count
	buf = appendU16(buf, 0)  // memo_count
	buf = appendU16(buf, 0)  // index_count

	buf = append(buf, buildField(Long, 0, "ID", 0, 4, 1)...)
	buf = append(buf, buildField(String, 4, "NAME", 0, 16, 2)...)

	def, err := ParseDefinition(buf)
	require.NoError(t, err)
	require.Equal(t, uint16(20), def.RecordSize)
	require.Len(t, def.Fields, 2)

	id, ok := def.FieldByName("ID")
	require.True(t, ok)
	require.Equal(t, Long, id.Type)
	require.Equal(t, uint16(4), id.Size)

	name, ok := def.FieldByName("NAME")
	require.True(t, ok)
	require.Equal(t, String, name.Type)
	require.Equal(t, uint16(16), name.ArrayElementSize)
}

func TestParseDefinitionWithMemoAndIndex(t *testing.T) {
	var buf []byte
	buf = appendU16(buf, 1)
	buf = appendU16(buf, 4)
	buf = appendU16(buf, 1) // field_count
	buf = appendU16(buf, 1) // memo_count
	buf = appendU16(buf, 1) // index_count

	buf = append(buf, buildField(Long, 0, "ID", 0, 4, 1)...)

	// memo: no external filename -> index_mark byte, then name, size, flags(2 bytes)
	buf = append(buf, 0) // empty external_filename cstring
	buf = append(buf, 1) // index_mark
	buf = appendCString(buf, "NOTES")
	buf = appendU16(buf, 100)
	buf = append(buf, 0x04, 0x00) // flags: memo_type bit set (BLOB), MSB-first as (hi<<8|lo)

	// index: no external filename
	buf = append(buf, 0)
	buf = append(buf, 1)
	buf = appendCString(buf, "BY_ID")
	buf = append(buf, 0x01) // flags: DUP bit set
	buf = appendU16(buf, 1) // field_count
	buf = appendU16(buf, 1) // field_number
	buf = appendU16(buf, uint16(Ascending))

	def, err := ParseDefinition(buf)
	require.NoError(t, err)
	require.Len(t, def.Memos, 1)
	require.Equal(t, "NOTES", def.Memos[0].Name)
	require.Equal(t, Blob, def.Memos[0].Kind)

	require.Len(t, def.Indexes, 1)
	require.Equal(t, "BY_ID", def.Indexes[0].Name)
	require.True(t, def.Indexes[0].Dup)
	require.Len(t, def.Indexes[0].Fields, 1)
	require.Equal(t, Ascending, def.Indexes[0].Fields[0].Order)
}
