package cipher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPatch_RoundTrip(t *testing.T) {
	enc := NewPatch(0xCAFEBABE)
	dec := NewPatch(0xCAFEBABE)

	plaintext := []byte("quest catalogue response\x00\x00\x00\x00")
	buf := append([]byte(nil), plaintext...)

	require.NoError(t, enc.Encrypt(buf))
	assert.NotEqual(t, plaintext, buf)

	require.NoError(t, dec.Decrypt(buf))
	assert.Equal(t, plaintext, buf)
}

func TestNewPatch_IsLittleEndian(t *testing.T) {
	patch := NewPatch(1)
	plain := NewV2(1, false)

	a := make([]byte, 4)
	b := make([]byte, 4)
	require.NoError(t, patch.Encrypt(a))
	require.NoError(t, plain.Encrypt(b))
	assert.Equal(t, b, a)
}

// All four constructors must satisfy Stream; this is a compile-time check.
var (
	_ Stream = (*V2)(nil)
	_ Stream = (*V3)(nil)
	_ Stream = (*V4)(nil)
)
