package savefile

import (
	"encoding/binary"

	"github.com/fuzziqer/psocore/internal/psoerr"
)

// VMS mirrors GCI's container shape for Dreamcast memory-card saves
// (spec.md §6: "identical codec to GCI but little-endian"). The original
// source's VMS header layout was not present in the retrieved reference
// pack; this struct reuses a subset of GCI's fields (embedded seed, file
// name, icon, data size), since both platforms share the same
// shuffle/minus-t data-section codec, with every multi-byte field read
// little-endian instead of big-endian. It has no banner, game-name,
// developer-id or checksum field.
type VMS struct {
	EmbeddedSeed uint32
	FileName     [gciFileNameSize]byte
	Icon         [gciIconSize]byte
	DataSize     uint32
	Data         []byte
}

// VMSHeaderSize is the fixed prefix preceding a VMS save's data section:
// a 4-byte embedded seed, a file-name field matching GCI's, an icon
// bitmap (Dreamcast VMS files carry no separate banner bitmap), and a
// 4-byte data size.
const VMSHeaderSize = 4 + gciFileNameSize + gciIconSize + 4

// ParseVMS decodes a raw .vms file's fixed header. It does not validate a
// checksum: unlike GCI, the Dreamcast container carries none in the
// fields this core exposes.
func ParseVMS(raw []byte) (*VMS, error) {
	if len(raw) < VMSHeaderSize {
		return nil, psoerr.New(psoerr.KindCodec, "ParseVMS", errTooShort)
	}

	v := &VMS{}
	v.EmbeddedSeed = binary.LittleEndian.Uint32(raw[0:4])
	copy(v.FileName[:], raw[4:4+gciFileNameSize])
	iconStart := 4 + gciFileNameSize
	copy(v.Icon[:], raw[iconStart:iconStart+gciIconSize])
	sizeOff := iconStart + gciIconSize
	v.DataSize = binary.LittleEndian.Uint32(raw[sizeOff:])

	dataStart := sizeOff + 4
	if int(v.DataSize) > len(raw)-dataStart {
		return nil, psoerr.New(psoerr.KindCodec, "ParseVMS", errDataSizeOverflow)
	}
	v.Data = raw[dataStart : dataStart+int(v.DataSize)]
	return v, nil
}

// Decrypt returns the decompressed, decrypted data section using the
// given seed. VMS data sections are little-endian (spec.md §4.6).
func (v *VMS) Decrypt(seed uint32, maxSize int) ([]byte, error) {
	return DecodeSection(v.Data, seed, false, maxSize)
}
