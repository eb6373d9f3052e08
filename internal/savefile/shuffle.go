// Package savefile implements the shuffled-stream container codec used by
// GCI (GameCube, big-endian) and VMS (Dreamcast, little-endian) memory-card
// save files: a 256-byte block permutation keyed by a v2-cipher-driven
// Fisher-Yates shuffle, composed with a v2 cipher run in "minus-t" mode
// (the keystream word is subtracted from, not XORed with, the plaintext).
// Ported from ShuffleTables and decrypt/encrypt_gci_or_vms_v2_data_section
// in original_source/SaveFileFormats.{hh,cc}.
package savefile

import "github.com/fuzziqer/psocore/internal/cipher"

// ShuffleTables is a pair of mutually-inverse byte permutations over
// 0..255, derived deterministically from a v2 cipher seed.
type ShuffleTables struct {
	Forward [256]byte
	Reverse [256]byte
}

// NewShuffleTables builds the permutation pair by running a fresh v2
// cipher through a keyed Fisher-Yates shuffle of the identity permutation.
func NewShuffleTables(seed uint32) *ShuffleTables {
	crypt := cipher.NewV2(seed, false)

	var t ShuffleTables
	for x := 0; x < 256; x++ {
		t.Forward[x] = byte(x)
	}

	for i := 255; i >= 0; i-- {
		r := pseudorand(crypt, uint32(i+1))
		swapped := t.Forward[i]
		t.Forward[i] = t.Forward[r]
		t.Forward[r] = swapped
		t.Reverse[t.Forward[i]] = byte(i)
	}
	return &t
}

// pseudorand scales one 16-bit half of a keystream word into [0, prev).
func pseudorand(crypt *cipher.V2, prev uint32) uint32 {
	r := (crypt.NextWord() >> 16) & 0xFFFF
	return (((prev & 0xFFFF) * r) >> 16) & 0xFFFF
}

// Shuffle permutes src into a newly allocated buffer of the same length,
// 256 bytes at a time; any trailing bytes shorter than a full block are
// copied unpermuted (spec.md §3). reverse selects Reverse over Forward.
func (t *ShuffleTables) Shuffle(src []byte, reverse bool) []byte {
	table := &t.Forward
	if reverse {
		table = &t.Reverse
	}

	dest := make([]byte, len(src))
	full := len(src) &^ 0xFF
	for block := 0; block < full; block += 256 {
		for z := 0; z < 256; z++ {
			dest[block+int(table[z])] = src[block+z]
		}
	}
	copy(dest[full:], src[full:])
	return dest
}
