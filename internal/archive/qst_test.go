package archive

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pcHeader encodes a 4-byte PC-family command header: {size u16, command u8, flag u8}.
func pcHeader(size uint16, command byte, flag byte) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint16(b[0:2], size)
	b[2] = command
	b[3] = flag
	return b
}

func pcOpenCommand(filename string, fileSize uint32) []byte {
	body := make([]byte, qstOpenBodySize)
	copy(body, filename)
	binary.LittleEndian.PutUint32(body[qstOpenFilenameSize:], fileSize)
	return append(pcHeader(uint16(4+len(body)), 0x44, 0), body...)
}

func pcWriteCommand(filename string, chunkIndex uint32, data []byte) []byte {
	body := make([]byte, qstWriteBodySize)
	copy(body, filename)
	binary.LittleEndian.PutUint32(body[qstWriteFilenameSize:], uint32(len(data)))
	copy(body[qstWriteFilenameSize+8:], data)
	return append(pcHeader(uint16(4+len(body)), 0x13, byte(chunkIndex)), body...)
}

func TestParseQST_RoundTrip(t *testing.T) {
	binData := make([]byte, 1024+200)
	for i := range binData {
		binData[i] = byte(i)
	}
	datData := []byte("short dat contents")

	var raw []byte
	raw = append(raw, pcOpenCommand("quest.bin", uint32(len(binData)))...)
	raw = append(raw, pcOpenCommand("quest.dat", uint32(len(datData)))...)
	raw = append(raw, pcWriteCommand("quest.bin", 0, binData[:1024])...)
	raw = append(raw, pcWriteCommand("quest.bin", 1, binData[1024:])...)
	raw = append(raw, pcWriteCommand("quest.dat", 0, datData)...)

	q, err := ParseQST(raw)
	require.NoError(t, err)
	assert.Equal(t, "quest.bin", q.BinFilename)
	assert.Equal(t, "quest.dat", q.DatFilename)
	assert.Equal(t, binData, q.BinContents)
	assert.Equal(t, datData, q.DatContents)
}

func TestParseQST_RejectsOutOfOrderChunk(t *testing.T) {
	binData := make([]byte, 1024)
	var raw []byte
	raw = append(raw, pcOpenCommand("quest.bin", uint32(len(binData)))...)
	raw = append(raw, pcWriteCommand("quest.bin", 1, binData)...) // should be chunk 0

	_, err := ParseQST(raw)
	require.Error(t, err)
}

func TestParseQST_RejectsUnknownSignature(t *testing.T) {
	_, err := ParseQST([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	require.Error(t, err)
}

func TestDetectQSTFamily(t *testing.T) {
	bb := []byte{0x58, 0x00, 0x44, 0x00}
	fam, err := DetectQSTFamily(bb)
	require.NoError(t, err)
	assert.Equal(t, "bb-v4", fam.String())

	pc := pcHeader(8, 0x44, 0)
	fam, err = DetectQSTFamily(pc)
	require.NoError(t, err)
	assert.Equal(t, "pc-v2", fam.String())
}
