package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioB_RunOf0xAA(t *testing.T) {
	plaintext := bytes.Repeat([]byte{0xAA}, 256)

	compressed := Compress(plaintext)
	assert.LessOrEqual(t, len(compressed), 8)

	size, err := DecompressSize(compressed, 4096)
	require.NoError(t, err)
	assert.Equal(t, 256, size)

	decompressed, err := Decompress(compressed, 4096)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decompressed)
}

func TestRoundTrip_MixedContent(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte{0x01},
		[]byte("the quick brown fox jumps over the lazy dog"),
		bytes.Repeat([]byte("ABCABCABC"), 40),
		func() []byte {
			b := make([]byte, 4096)
			for i := range b {
				b[i] = byte(i % 251)
			}
			return b
		}(),
	}

	for _, plaintext := range cases {
		compressed := Compress(plaintext)
		out, err := Decompress(compressed, len(plaintext)+1)
		require.NoError(t, err)
		assert.Equal(t, plaintext, out)

		size, err := DecompressSize(compressed, len(plaintext)+1)
		require.NoError(t, err)
		assert.Equal(t, len(plaintext), size)
	}
}

func TestDecompress_RejectsOutputTooLarge(t *testing.T) {
	plaintext := bytes.Repeat([]byte{0x42}, 100)
	compressed := Compress(plaintext)

	_, err := Decompress(compressed, 50)
	require.Error(t, err)

	_, err = DecompressSize(compressed, 50)
	require.Error(t, err)
}

func TestDecompress_RejectsTruncatedStream(t *testing.T) {
	plaintext := bytes.Repeat([]byte("hello world"), 20)
	compressed := Compress(plaintext)

	_, err := Decompress(compressed[:len(compressed)-3], 4096)
	require.Error(t, err)
}

func TestDecompress_RejectsBackReferencePastStart(t *testing.T) {
	// Route bits 0,0 (short copy), length bits for length=3, offset byte
	// pointing one byte before the very first output byte.
	w := new(bitWriter)
	w.putBit(1)
	w.putByte('A')
	w.shortCopy(-2, 3)
	// EOF marker.
	w.putBit(0)
	w.putBit(1)
	w.putByte(0)
	w.putByte(0)

	_, err := Decompress(w.out, 4096)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "underflow")
}

func TestCompress_EmptyInput(t *testing.T) {
	compressed := Compress(nil)
	out, err := Decompress(compressed, 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}
