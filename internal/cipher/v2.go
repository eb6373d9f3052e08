package cipher

import "encoding/binary"

const v2StreamLength = 56

// V2 is the "PC" stream cipher: a 56-entry 32-bit stream regenerated
// in-place ("stirred") when the read index wraps, operating on 4-byte
// units. Symmetric: Decrypt == Encrypt. Ported bit-for-bit from
// PSOPCEncryption in original_source/PSOEncryption.cc.
type V2 struct {
	stream    [v2StreamLength + 1]uint32
	offset    int
	bigEndian bool
}

// NewV2 constructs a V2 cipher from a 32-bit seed. bigEndian selects how
// 4-byte payload words are read against the stream (spec.md §4.1: little
// for DC/PC, big for GC/XB games — the text-archive codec runs V2
// big-endian for GC/XB archives).
func NewV2(seed uint32, bigEndian bool) *V2 {
	c := &V2{offset: 1, bigEndian: bigEndian}

	esi := uint32(1)
	ebx := seed
	c.stream[56] = ebx
	c.stream[55] = ebx
	for edi := uint32(0x15); edi <= 0x46E; edi += 0x15 {
		var1 := edi / 55
		edx := edi - var1*55
		ebx = ebx - esi
		c.stream[edx] = esi
		esi = ebx
		ebx = c.stream[edx]
	}
	for i := 0; i < 5; i++ {
		c.stir()
	}
	return c
}

// stir regenerates the stream array in place; see spec.md §4.2.
func (c *V2) stir() {
	for i := 1; i <= 24; i++ {
		c.stream[i] -= c.stream[i+31]
	}
	for i := 25; i <= 55; i++ {
		c.stream[i] -= c.stream[i-24]
	}
}

func (c *V2) next() uint32 {
	if c.offset == v2StreamLength {
		c.stir()
		c.offset = 1
	}
	v := c.stream[c.offset]
	c.offset++
	return v
}

// NextWord exposes one raw 32-bit keystream word. The save-file codec's
// shuffle-table construction and "minus-t" block mode both need to drive
// the underlying stream directly rather than through XOR Encrypt/Decrypt.
func (c *V2) NextWord() uint32 { return c.next() }

// BlockSize returns 4: V2 operates on 4-byte words.
func (c *V2) BlockSize() int { return 4 }

// Encrypt XORs data with the cipher stream, 4 bytes at a time.
func (c *V2) Encrypt(data []byte) error {
	if len(data)%4 != 0 {
		return &ErrBadBlockSize{BlockSize: 4, Got: len(data)}
	}
	order := endianOrder(c.bigEndian)
	for i := 0; i < len(data); i += 4 {
		w := order.Uint32(data[i:]) ^ c.next()
		order.PutUint32(data[i:], w)
	}
	return nil
}

// Decrypt is identical to Encrypt: V2 is a symmetric XOR stream cipher.
func (c *V2) Decrypt(data []byte) error { return c.Encrypt(data) }

// Skip advances the stream by n bytes without producing output.
func (c *V2) Skip(n int) error {
	if n%4 != 0 {
		return &ErrBadBlockSize{BlockSize: 4, Got: n}
	}
	for i := 0; i < n; i += 4 {
		c.next()
	}
	return nil
}

func endianOrder(big bool) binary.ByteOrder {
	if big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
