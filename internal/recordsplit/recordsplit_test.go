package recordsplit_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galler-alexander/tpsread/internal/recordsplit"
)

// encodeDelta builds one delta-encoded record entry: control byte,
// optional record_size/header_size words, then the new tail bytes.
func encodeDelta(keep int, recordSize, headerSize uint16, withSize, withHeader bool, tail []byte) []byte {
	var b byte
	if withSize {
		b |= 0x80
	}
	if withHeader {
		b |= 0x40
	}
	b |= byte(keep & 0x3F)

	out := []byte{b}
	if withSize {
		sz := make([]byte, 2)
		binary.LittleEndian.PutUint16(sz, recordSize)
		out = append(out, sz...)
	}
	if withHeader {
		hs := make([]byte, 2)
		binary.LittleEndian.PutUint16(hs, headerSize)
		out = append(out, hs...)
	}
	return append(out, tail...)
}

func TestSplitFirstRecordDeclaresFullSize(t *testing.T) {
	rec1 := encodeDelta(0, 4, 0, true, false, []byte("abcd"))
	s := recordsplit.New()
	out := s.Split(rec1)
	require.Len(t, out, 1)
	require.Equal(t, []byte("abcd"), out[0].Bytes[2:])
}

func TestSplitSharesPrefixWithPrevious(t *testing.T) {
	rec1 := encodeDelta(0, 4, 0, true, false, []byte("abcd"))
	rec2 := encodeDelta(2, 0, 0, false, false, []byte("ef")) // keep "ab", replace tail with "ef"
	s := recordsplit.New()
	out := s.Split(append(rec1, rec2...))
	require.Len(t, out, 2)
	require.Equal(t, []byte("abcd"), out[0].Bytes[2:])
	require.Equal(t, []byte("abef"), out[1].Bytes[2:])
}

func TestSplitFreshSplitterHasNoInheritedState(t *testing.T) {
	rec1 := encodeDelta(0, 3, 0, true, false, []byte("xyz"))
	out := recordsplit.New().Split(rec1)
	require.Len(t, out, 1)
	require.Equal(t, []byte("xyz"), out[0].Bytes[2:])
}
