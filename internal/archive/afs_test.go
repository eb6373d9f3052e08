package archive

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAFS(files [][]byte) []byte {
	header := make([]byte, 8+8*len(files))
	binary.BigEndian.PutUint32(header[0:4], afsMagic)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(files)))

	offset := uint32(len(header))
	var body []byte
	for i, f := range files {
		entryOff := 8 + i*8
		binary.LittleEndian.PutUint32(header[entryOff:], offset)
		binary.LittleEndian.PutUint32(header[entryOff+4:], uint32(len(f)))
		body = append(body, f...)
		offset += uint32(len(f))
	}
	return append(header, body...)
}

func TestParseAFS_RoundTrip(t *testing.T) {
	files := [][]byte{
		[]byte("first file contents"),
		[]byte("second"),
		{},
		[]byte("fourth file is a bit longer than the others"),
	}
	raw := buildAFS(files)

	a, err := ParseAFS(raw)
	require.NoError(t, err)
	require.Equal(t, len(files), a.NumFiles())

	for i, want := range files {
		got, err := a.Get(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestParseAFS_RejectsBadMagic(t *testing.T) {
	raw := make([]byte, 16)
	_, err := ParseAFS(raw)
	require.Error(t, err)
}

func TestParseAFS_RejectsTruncatedEntryTable(t *testing.T) {
	raw := buildAFS([][]byte{[]byte("x"), []byte("y")})
	_, err := ParseAFS(raw[:10])
	require.Error(t, err)
}

func TestAFS_GetRejectsOutOfRangeIndex(t *testing.T) {
	raw := buildAFS([][]byte{[]byte("only")})
	a, err := ParseAFS(raw)
	require.NoError(t, err)

	_, err = a.Get(5)
	require.Error(t, err)
}

func TestAFS_GetRejectsEntryExtendingPastEnd(t *testing.T) {
	raw := buildAFS([][]byte{[]byte("abcd")})
	binary.LittleEndian.PutUint32(raw[12:], 0xFFFFFF)
	a, err := ParseAFS(raw)
	require.NoError(t, err)

	_, err = a.Get(0)
	require.Error(t, err)
}
