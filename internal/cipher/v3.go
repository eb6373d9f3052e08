package cipher

const v3StreamLength = 521

// V3 is the "GC" stream cipher: a 521-entry 32-bit stream built from a
// linear-congruential expansion followed by a recurrence fill, stirred by
// a two-pass self-XOR whenever the read index wraps. Operates on 4-byte
// units and is symmetric, like V2. Ported bit-for-bit from PSOGCEncryption
// in original_source/PSOEncryption.cc.
type V3 struct {
	stream    [v3StreamLength]uint32
	offset    int
	bigEndian bool
}

// NewV3 constructs a V3 cipher from a 32-bit seed. GC and XB families are
// always treated as big-endian for cipher purposes (spec.md §4.1), but the
// flag is still explicit here rather than hardcoded.
func NewV3(seed uint32, bigEndian bool) *V3 {
	c := &V3{bigEndian: bigEndian}

	var basekey uint32
	offset := 0
	for x := 0; x <= 16; x++ {
		for y := 0; y < 32; y++ {
			seed = seed * 0x5D588B65
			basekey >>= 1
			seed++
			if seed&0x80000000 != 0 {
				basekey |= 0x80000000
			} else {
				basekey &= 0x7FFFFFFF
			}
		}
		c.stream[offset] = basekey
		offset++
	}

	c.stream[offset-1] = ((c.stream[0] >> 9) ^ (c.stream[offset-1] << 23)) ^ c.stream[15]

	source1, source2, source3 := 0, 1, offset-1
	for offset != v3StreamLength {
		c.stream[offset] = c.stream[source3] ^ (((c.stream[source1] << 23) & 0xFF800000) ^ ((c.stream[source2] >> 9) & 0x007FFFFF))
		source1++
		source2++
		source3++
		offset++
	}

	for i := 0; i < 3; i++ {
		c.stir()
	}
	c.offset = v3StreamLength - 1
	return c
}

// stir regenerates the stream array in place via a two-pass self-XOR; see
// spec.md §4.2.
func (c *V3) stir() {
	r5, r6, r7 := 0, 489, 0
	for r6 != v3StreamLength {
		c.stream[r5] ^= c.stream[r6]
		r5++
		r6++
	}
	for r5 != v3StreamLength {
		c.stream[r5] ^= c.stream[r7]
		r5++
		r7++
	}
}

func (c *V3) next() uint32 {
	c.offset++
	if c.offset == v3StreamLength {
		c.stir()
		c.offset = 0
	}
	return c.stream[c.offset]
}

// BlockSize returns 4: V3 operates on 4-byte words.
func (c *V3) BlockSize() int { return 4 }

// Encrypt XORs data with the cipher stream, 4 bytes at a time.
func (c *V3) Encrypt(data []byte) error {
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

// Decrypt is identical to Encrypt: V3 is a symmetric XOR stream cipher.
func (c *V3) Decrypt(data []byte) error { return c.Encrypt(data) }

// Skip advances the stream by n bytes without producing output.
func (c *V3) Skip(n int) error {
	if n%4 != 0 {
		return &ErrBadBlockSize{BlockSize: 4, Got: n}
	}
	for i := 0; i < n; i += 4 {
		c.next()
	}
	return nil
}
