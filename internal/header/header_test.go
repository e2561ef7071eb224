package header_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galler-alexander/tpsread/internal/crypt"
	"github.com/galler-alexander/tpsread/internal/header"
)

type memSource struct{ buf []byte }

func (m *memSource) ReadAt(buf []byte, pos int64) error {
	copy(buf, m.buf[pos:pos+int64(len(buf))])
	return nil
}
func (m *memSource) Size() int64 { return int64(len(m.buf)) }
func (m *memSource) Close() error { return nil }

func buildHeader(pageRootRef uint32) []byte {
	buf := make([]byte, header.Size)
	binary.LittleEndian.PutUint32(buf[0:4], header.Size)
	binary.LittleEndian.PutUint16(buf[4:6], uint16(header.Size))
	copy(buf[14:20], []byte("tOpS\x00\x00"))
	binary.LittleEndian.PutUint32(buf[28:32], pageRootRef)
	return buf
}

func TestParseRejectsMissingMarker(t *testing.T) {
	buf := buildHeader(1)
	buf[14] = 'x' // corrupt the marker
	dec := crypt.New(&memSource{buf: buf}, "")

	_, err := header.Parse(dec, "orders.tps")
	require.Error(t, err)
}

func TestParseReadsFixedFieldsAndBlockRanges(t *testing.T) {
	buf := buildHeader(7)
	binary.LittleEndian.PutUint32(buf[0x20:0x24], 100) // block_start_ref[0]
	binary.LittleEndian.PutUint32(buf[0x20+240:0x20+244], 200)
	dec := crypt.New(&memSource{buf: buf}, "")

	hdr, err := header.Parse(dec, "orders.tps")
	require.NoError(t, err)
	require.Equal(t, uint16(header.Size), hdr.Size)
	require.Equal(t, uint32(7), hdr.PageRootRef)
	require.Equal(t, uint32(100), hdr.BlockStartRef[0])
	require.Equal(t, uint32(200), hdr.BlockEndRef[0])
}

func TestBlockContainsChecksDeclaredRanges(t *testing.T) {
	hdr := header.Header{
		BlockStartRef: []uint32{10},
		BlockEndRef:   []uint32{20},
	}
	require.True(t, hdr.BlockContains(12, 18))
	require.False(t, hdr.BlockContains(5, 25))
}
