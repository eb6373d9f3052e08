package cipher

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestV2_ScenarioA_KnownVector(t *testing.T) {
	c := NewV2(0x12345678, false)
	plaintext := make([]byte, 16)
	ciphertext := make([]byte, 16)
	copy(ciphertext, plaintext)

	require.NoError(t, c.Encrypt(ciphertext))
	assert.Equal(t, uint32(0x21F97A84), binary.LittleEndian.Uint32(ciphertext[:4]))

	c2 := NewV2(0x12345678, false)
	decrypted := make([]byte, 16)
	copy(decrypted, ciphertext)
	require.NoError(t, c2.Decrypt(decrypted))
	assert.Equal(t, plaintext, decrypted)
}

func TestV2_EncryptDecryptRoundTrip(t *testing.T) {
	for _, seed := range []uint32{0x00000001, 0x48615467, 0xDEADBEEF} {
		t.Run("", func(t *testing.T) {
			enc := NewV2(seed, false)
			dec := NewV2(seed, false)

			plaintext := make([]byte, 256)
			for i := range plaintext {
				plaintext[i] = byte(i)
			}
			buf := make([]byte, len(plaintext))
			copy(buf, plaintext)

			require.NoError(t, enc.Encrypt(buf))
			assert.NotEqual(t, plaintext, buf)

			require.NoError(t, dec.Decrypt(buf))
			assert.Equal(t, plaintext, buf)
		})
	}
}

func TestV2_RejectsUnalignedLength(t *testing.T) {
	c := NewV2(1, false)
	err := c.Encrypt(make([]byte, 7))
	require.Error(t, err)
	var bsErr *ErrBadBlockSize
	require.ErrorAs(t, err, &bsErr)
	assert.Equal(t, 4, bsErr.BlockSize)
}

func TestV2_SkipAdvancesStreamLikeEncrypt(t *testing.T) {
	skipped := NewV2(0xDEADBEEF, false)
	require.NoError(t, skipped.Skip(8))

	reference := NewV2(0xDEADBEEF, false)
	discard := make([]byte, 8)
	require.NoError(t, reference.Encrypt(discard))

	tail := make([]byte, 4)
	tailRef := make([]byte, 4)
	require.NoError(t, skipped.Encrypt(tail))
	require.NoError(t, reference.Encrypt(tailRef))
	assert.Equal(t, tailRef, tail)
}

func TestV2_EmptyWriteIsNoop(t *testing.T) {
	c := NewV2(1, false)
	require.NoError(t, c.Encrypt(nil))
}

func TestV2_BigEndianWordOrder(t *testing.T) {
	le := NewV2(7, false)
	be := NewV2(7, true)

	data := []byte{0x11, 0x22, 0x33, 0x44}
	leBuf := append([]byte(nil), data...)
	beBuf := append([]byte(nil), data...)
	require.NoError(t, le.Encrypt(leBuf))
	require.NoError(t, be.Encrypt(beBuf))

	assert.NotEqual(t, leBuf, beBuf, "same keystream word read in opposite byte orders must differ")
}
