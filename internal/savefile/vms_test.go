package savefile

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildVMS(data []byte) []byte {
	raw := make([]byte, VMSHeaderSize+len(data))
	binary.LittleEndian.PutUint32(raw[0:4], 0x1010)
	sizeOff := 4 + gciFileNameSize + gciIconSize
	binary.LittleEndian.PutUint32(raw[sizeOff:], uint32(len(data)))
	copy(raw[VMSHeaderSize:], data)
	return raw
}

func TestParseVMS_Valid(t *testing.T) {
	data := []byte{5, 6, 7, 8}
	raw := buildVMS(data)

	v, err := ParseVMS(raw)
	require.NoError(t, err)
	assert.Equal(t, data, v.Data)
	assert.Equal(t, uint32(0x1010), v.EmbeddedSeed)
}

func TestParseVMS_RejectsTruncated(t *testing.T) {
	_, err := ParseVMS(make([]byte, 4))
	require.Error(t, err)
}

func TestParseVMS_RejectsDataSizeOverflow(t *testing.T) {
	raw := buildVMS([]byte{1, 2})
	sizeOff := 4 + gciFileNameSize + gciIconSize
	binary.LittleEndian.PutUint32(raw[sizeOff:], 0xFFFFFFFF)

	_, err := ParseVMS(raw)
	require.Error(t, err)
}

func TestVMS_DecryptRoundTrip(t *testing.T) {
	plaintext := []byte("dreamcast save data payload")
	seed := uint32(0x1234)
	encoded := EncodeSection(plaintext, seed, false)

	raw := buildVMS(encoded)
	v, err := ParseVMS(raw)
	require.NoError(t, err)

	decoded, err := v.Decrypt(seed, len(plaintext)+64)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decoded)
}
