package tpsread_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galler-alexander/tpsread"
	"github.com/galler-alexander/tpsread/internal/catalog"
)

const (
	headerSize   = 0x200
	pageHeaderSz = 13
)

func u16le(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func u32be(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// deltaEntry encodes one recordsplit delta record declaring its full
// size with no shared prefix, matching what a single-record-per-delta
// page stream looks like.
func deltaEntry(payload []byte) []byte {
	b := byte(0x80) // withSize, keep=0
	out := []byte{b}
	out = append(out, u16le(uint16(len(payload)))...)
	out = append(out, payload...)
	return out
}

// buildField mirrors the on-disk TABLE_DEFINITION_FIELD_STRUCT layout
// for field types without extra trailers; unlike internal/catalog's
// test helper it does not write the STRING/PICTURE or DECIMAL extras.
func buildField(typ catalog.FieldType, offset uint16, name string, arrayCount, size, number uint16) []byte {
	buf := []byte{byte(typ)}
	buf = append(buf, u16le(offset)...)
	buf = append(buf, []byte(name)...)
	buf = append(buf, 0)
	buf = append(buf, u16le(arrayCount)...)
	buf = append(buf, u16le(size)...)
	buf = append(buf, u16le(0)...) // overlaps
	buf = append(buf, u16le(number)...)
	return buf
}

// buildTPSFile assembles a minimal, unencrypted, single-table, single
// leaf-page TPS image with one LONG field ("ID") and numRecords DATA
// records numbered 1..numRecords.
func buildTPSFile(t *testing.T, numRecords int) string {
	t.Helper()

	const tableNumber = 1
	const pageRef = 1

	// TABLE_NAME record payload.
	nameRecord := append([]byte{0xFE}, []byte("ORDERS")...)
	nameRecord = append(nameRecord, u32be(tableNumber)...)

	// TABLE_DEFINITION payload: table_number + tag + portion_number + body.
	var defBody []byte
	defBody = append(defBody, u16le(1)...) // min_version_driver
	defBody = append(defBody, u16le(4)...) // record_size
	defBody = append(defBody, u16le(1)...) // field_count
	defBody = append(defBody, u16le(0)...) // memo_count
	defBody = append(defBody, u16le(0)...) // index_count
	defBody = append(defBody, buildField(catalog.Long, 0, "ID", 0, 4, 1)...)

	definitionBytes := append(u16le(0), defBody...) // portion_number=0

	defRecord := append([]byte{}, u32be(tableNumber)...)
	defRecord = append(defRecord, 0xFA)
	defRecord = append(defRecord, definitionBytes...)

	var body []byte
	body = append(body, deltaEntry(nameRecord)...)
	body = append(body, deltaEntry(defRecord)...)

	for i := 1; i <= numRecords; i++ {
		dataRecord := append([]byte{}, u32be(tableNumber)...)
		dataRecord = append(dataRecord, 0xF3)
		dataRecord = append(dataRecord, u32be(uint32(i))...)
		dataRecord = append(dataRecord, u32le(uint32(100+i))...)
		body = append(body, deltaEntry(dataRecord)...)
	}

	pageSize := pageHeaderSz + len(body)
	pageOffset := int64(pageRef)*0x100 + headerSize

	page := make([]byte, pageHeaderSz)
	binary.LittleEndian.PutUint32(page[0:4], uint32(pageOffset))
	binary.LittleEndian.PutUint16(page[4:6], uint16(pageSize))
	binary.LittleEndian.PutUint16(page[6:8], uint16(pageSize)) // uncompressed_size == size: no RLE
	binary.LittleEndian.PutUint16(page[8:10], uint16(pageSize))
	binary.LittleEndian.PutUint16(page[10:12], uint16(numRecords+2))
	page[12] = 0 // leaf
	page = append(page, body...)

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[0:4], headerSize)
	binary.LittleEndian.PutUint16(header[4:6], headerSize)
	copy(header[14:20], []byte("tOpS\x00\x00"))
	binary.LittleEndian.PutUint32(header[28:32], pageRef)

	file := make([]byte, pageOffset)
	copy(file, header)
	file = append(file, page...)

	path := filepath.Join(t.TempDir(), "orders.tps")
	require.NoError(t, os.WriteFile(path, file, 0o600))
	return path
}

func TestOpenAndIterateYieldsRecordsInOrder(t *testing.T) {
	path := buildTPSFile(t, 3)

	f, err := tpsread.Open(tpsread.Options{Filename: path, CurrentTableName: "ORDERS"})
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"ORDERS"}, f.Tables())

	var recNos []uint32
	var ids []any
	for values, err := range f.All() {
		require.NoError(t, err)
		recNos = append(recNos, values[":RecNo"].(uint32))
		ids = append(ids, values["ID"])
	}

	require.Equal(t, []uint32{1, 2, 3}, recNos)
	require.Equal(t, []any{int32(101), int32(102), int32(103)}, ids)
}

func TestSetCurrentTableRejectsUnknownName(t *testing.T) {
	path := buildTPSFile(t, 1)

	f, err := tpsread.Open(tpsread.Options{Filename: path})
	require.NoError(t, err)
	defer f.Close()

	err = f.SetCurrentTable("NO_SUCH_TABLE")
	require.Error(t, err)
}

func TestGetDefinitionReturnsParsedSchema(t *testing.T) {
	path := buildTPSFile(t, 0)

	f, err := tpsread.Open(tpsread.Options{Filename: path, CurrentTableName: "ORDERS"})
	require.NoError(t, err)
	defer f.Close()

	def, err := f.GetDefinition(1)
	require.NoError(t, err)
	require.Len(t, def.Fields, 1)
	require.Equal(t, "ID", def.Fields[0].Name)
}
