package cipher

import "encoding/binary"

// V4KeyFileWords is the length, in 32-bit words, of a BB key file: 18
// round-key words followed by four 256-entry S-box tables.
const V4KeyFileWords = 1042

// V4 is the "BB" cipher: a fixed 1042-word table (18 key-schedule words,
// the first six used as round subkeys, plus four 256-entry S-boxes) derived once from a key file and a 48-byte
// per-session seed, then used unchanged for every subsequent block. Unlike
// V2/V3 the table never mutates after construction, and encrypt/decrypt
// consume the six round subkeys in opposite order. Operates on 8-byte
// blocks. Ported bit-for-bit from PSOBBEncryption in
// original_source/PSOEncryption.cc.
type V4 struct {
	stream [V4KeyFileWords]uint32
}

// NewV4 constructs a V4 cipher from a 1042-word key file (shared across a
// server deployment, loaded from a .nsk-style blob) and a 48-byte seed
// exchanged during the session's 03/04 handshake (spec.md §4.2).
func NewV4(keyFile [V4KeyFileWords]uint32, seed [48]byte) *V4 {
	c := &V4{stream: keyFile}

	var masked [48]byte
	mask := [3]byte{0x19, 0x16, 0x18}
	for i := 0; i < len(masked); i += 3 {
		masked[i] = seed[i] ^ mask[0]
		masked[i+1] = seed[i+1] ^ mask[1]
		masked[i+2] = seed[i+2] ^ mask[2]
	}

	c.postprocessInitialStream(masked[:])
	return c
}

// f is the round function shared by construction and block transform: it
// combines four bytes of x against the four S-box tables living at
// stream[18:274], stream[274:530], stream[530:786], stream[786:1042].
func (c *V4) f(x uint32) uint32 {
	a := c.stream[(x>>24)+0x12] + c.stream[((x>>16)&0xff)+0x112]
	a ^= c.stream[((x>>8)&0xff)+0x212]
	a += c.stream[(x&0xff)+0x312]
	return a
}

// postprocessInitialStream XORs the seed into the first words of the key
// file, then repeatedly feeds the state through the six-round network
// below, storing each two-word output pair back into the state, until all
// 1042 words have been processed: 18 words in the first pass, then four
// passes of 256 words each.
func (c *V4) postprocessInitialStream(seed []byte) {
	for i := 0; i+4 <= len(seed); i += 4 {
		c.stream[i/4] ^= binary.BigEndian.Uint32(seed[i:])
	}

	var esi, ecx uint32
	round := func() {
		esi = esi ^ c.stream[0]
		eax := c.f(esi)
		eax ^= c.stream[1]
		ecx ^= eax
		ebx := c.f(ecx)

		for x := 0; x <= 5; x++ {
			ebx ^= c.stream[uint32(x*2)+2]
			esi ^= ebx
			ebx = c.f(esi)
			ebx ^= c.stream[uint32(x*2)+3]
			ecx ^= ebx
			ebx = c.f(ecx)
		}

		ebx ^= c.stream[14]
		esi ^= ebx
		eax = c.f(esi)
		eax ^= c.stream[15]
		val := ecx ^ eax
		ecx = c.f(val)
		ecx ^= c.stream[16]
		ecx ^= esi
		esi = c.stream[17]
		esi ^= val
	}

	edi := uint32(0)
	for edi < 0x48 {
		round()
		c.stream[edi/4] = esi
		c.stream[edi/4+1] = ecx
		edi += 8
	}

	for ou := uint32(0); ou < 0x1000; ou += 0x400 {
		edi = 0x48
		for edi < 0x448 {
			round()
			c.stream[ou/4+edi/4] = esi
			c.stream[ou/4+edi/4+1] = ecx
			edi += 8
		}
	}
}

// feistelPair runs one 8-byte block through the six-round network with
// the given subkey order and returns the transformed (a, b) pair.
func (c *V4) feistelPair(a, b uint32, keys [6]uint32) (uint32, uint32) {
	ebx := a ^ keys[0]
	ebp := c.f(ebx) ^ keys[1]
	ebp ^= b
	edi := c.f(ebp) ^ keys[2]
	ebx ^= edi
	esi := c.f(ebx)
	ebp = ebp ^ esi ^ keys[3]
	edi = c.f(ebp) ^ keys[4]
	ebp ^= keys[5]
	ebx ^= edi
	return ebp, ebx
}

// BlockSize returns 8: V4 operates on 8-byte blocks.
func (c *V4) BlockSize() int { return 8 }

// Encrypt runs each 8-byte block through the network with subkeys in
// ascending order (stream[0..5]).
func (c *V4) Encrypt(data []byte) error {
	return c.crypt(data, [6]uint32{c.stream[0], c.stream[1], c.stream[2], c.stream[3], c.stream[4], c.stream[5]})
}

// Decrypt runs each 8-byte block through the network with subkeys in
// descending order (stream[5..0]) — the inverse of Encrypt.
func (c *V4) Decrypt(data []byte) error {
	return c.crypt(data, [6]uint32{c.stream[5], c.stream[4], c.stream[3], c.stream[2], c.stream[1], c.stream[0]})
}

func (c *V4) crypt(data []byte, keys [6]uint32) error {
	if len(data)%8 != 0 {
		return &ErrBadBlockSize{BlockSize: 8, Got: len(data)}
	}
	for i := 0; i < len(data); i += 8 {
		a := binary.LittleEndian.Uint32(data[i:])
		b := binary.LittleEndian.Uint32(data[i+4:])
		a2, b2 := c.feistelPair(a, b, keys)
		binary.LittleEndian.PutUint32(data[i:], a2)
		binary.LittleEndian.PutUint32(data[i+4:], b2)
	}
	return nil
}

// Skip is a no-op beyond validating alignment: V4's table never mutates,
// so there is no stream position to advance.
func (c *V4) Skip(n int) error {
	if n%8 != 0 {
		return &ErrBadBlockSize{BlockSize: 8, Got: n}
	}
	return nil
}
