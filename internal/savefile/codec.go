package savefile

import (
	"encoding/binary"

	"github.com/fuzziqer/psocore/internal/cipher"
	"github.com/fuzziqer/psocore/internal/compression"
)

// minusTEncrypt subtracts each keystream word from the corresponding
// plaintext word (mod 2^32) rather than XORing, per the v2-derived
// "minus-t" block mode used by GCI/VMS data sections
// (original_source/SaveFileFormats.hh: encrypt_gci_or_vms_v2_data_section).
// data must be a multiple of 4 bytes; order selects endianness per
// spec.md §4.6 (big for GCI, little for VMS).
func minusTEncrypt(data []byte, seed uint32, order binary.ByteOrder) {
	crypt := cipher.NewV2(seed, false)
	for i := 0; i+4 <= len(data); i += 4 {
		word := order.Uint32(data[i:])
		word -= crypt.NextWord()
		order.PutUint32(data[i:], word)
	}
}

// minusTDecrypt is the inverse of minusTEncrypt: keystream words are added
// back rather than subtracted, keeping the transform invertible even
// though both directions derive from the same underlying v2 stream.
func minusTDecrypt(data []byte, seed uint32, order binary.ByteOrder) {
	crypt := cipher.NewV2(seed, false)
	for i := 0; i+4 <= len(data); i += 4 {
		word := order.Uint32(data[i:])
		word += crypt.NextWord()
		order.PutUint32(data[i:], word)
	}
}

// EncodeSection compresses, minus-t-encrypts, and shuffles a save file's
// data section, mirroring encrypt_gci_or_vms_v2_data_section's
// compress-then-encrypt-then-shuffle pipeline order (original_source/
// SaveFileFormats.hh:233-245).
func EncodeSection(plaintext []byte, seed uint32, bigEndian bool) []byte {
	compressed := compression.Compress(plaintext)
	padded := padTo4(compressed)

	minusTEncrypt(padded, seed, endianOrder(bigEndian))
	tables := NewShuffleTables(seed)
	return tables.Shuffle(padded, false)
}

// DecodeSection is the exact inverse of EncodeSection: un-shuffle, then
// minus-t-decrypt, then decompress. maxSize bounds the decompressed
// output (psoerr.KindCodec on overflow, matching compression.Decompress).
func DecodeSection(ciphertext []byte, seed uint32, bigEndian bool, maxSize int) ([]byte, error) {
	tables := NewShuffleTables(seed)
	unshuffled := tables.Shuffle(ciphertext, true)

	minusTDecrypt(unshuffled, seed, endianOrder(bigEndian))
	return compression.Decompress(unshuffled, maxSize)
}

// padTo4 rounds data up to a 4-byte multiple with zero bytes, since the
// minus-t cipher and the shuffle tables both operate on whole 32-bit words.
func padTo4(data []byte) []byte {
	if rem := len(data) % 4; rem != 0 {
		data = append(data, make([]byte, 4-rem)...)
	}
	return data
}

func endianOrder(big bool) binary.ByteOrder {
	if big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
