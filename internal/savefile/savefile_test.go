package savefile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShuffleTables_ForwardReverseAreInverses(t *testing.T) {
	tables := NewShuffleTables(0x12345678)

	src := make([]byte, 512)
	for i := range src {
		src[i] = byte(i)
	}

	forward := tables.Shuffle(src, false)
	back := tables.Shuffle(forward, true)
	assert.Equal(t, src, back)
	assert.NotEqual(t, src, forward)
}

func TestShuffleTables_TailShorterThanBlockIsCopiedUnpermuted(t *testing.T) {
	tables := NewShuffleTables(42)
	src := bytes.Repeat([]byte{0xAB}, 300)
	for i := 256; i < 300; i++ {
		src[i] = byte(i)
	}

	out := tables.Shuffle(src, false)
	assert.Equal(t, src[256:300], out[256:300])
}

func TestShuffleTables_DifferentSeedsProduceDifferentTables(t *testing.T) {
	a := NewShuffleTables(1)
	b := NewShuffleTables(2)
	assert.NotEqual(t, a.Forward, b.Forward)
}

func TestMinusT_RoundTrip(t *testing.T) {
	plain := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	enc := make([]byte, len(plain))
	copy(enc, plain)
	minusTEncrypt(enc, 99, endianOrder(true))
	assert.NotEqual(t, plain, enc)

	dec := make([]byte, len(enc))
	copy(dec, enc)
	minusTDecrypt(dec, 99, endianOrder(true))
	assert.Equal(t, plain, dec)
}

func TestEncodeDecodeSection_RoundTrip(t *testing.T) {
	plaintext := bytes.Repeat([]byte("guild card data section payload "), 20)

	for _, big := range []bool{true, false} {
		encoded := EncodeSection(plaintext, 0xCAFEBABE, big)
		decoded, err := DecodeSection(encoded, 0xCAFEBABE, big, len(plaintext)+64)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decoded)
	}
}

func TestDecodeSection_WrongSeedFailsOrMismatches(t *testing.T) {
	plaintext := bytes.Repeat([]byte{0x77}, 64)
	encoded := EncodeSection(plaintext, 1, true)

	decoded, err := DecodeSection(encoded, 2, true, len(plaintext)+64)
	if err == nil {
		assert.NotEqual(t, plaintext, decoded)
	}
}
