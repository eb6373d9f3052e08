// Package protocol implements the framed, encrypted channel every session
// speaks over (spec.md §4.1, component C3): per-family header layouts, the
// encrypt-on-send/decrypt-on-recv pump, and the clear-to-encrypted
// transition triggered by a server-init command. Grounded on the teacher's
// internal/protocol WritePacket/ReadPacket framing and on
// original_source/PSOProtocol.hh for the exact per-family header shapes.
package protocol

import (
	"encoding/binary"

	"github.com/fuzziqer/psocore/internal/pstype"
)

// Header is a decoded command header, normalized across the three wire
// layouts (PC, DC/GC, BB) that original_source/PSOProtocol.hh defines.
type Header struct {
	Size    uint16
	Command uint16 // low byte is the opcode on non-BB families
	Flag    uint32
}

// Opcode returns the dispatch key: the low byte of Command for every
// family except BB, which uses the full 16-bit command as its opcode.
func (h Header) Opcode(v pstype.Version) uint16 {
	if v == pstype.BBV4 {
		return h.Command
	}
	return h.Command & 0xFF
}

// encodeHeader and decodeHeader translate between Header and the raw
// bytes of the family-specific layout. All three layouts are little-endian
// on the wire (spec.md §4.1: "the header is always little-endian").

// DecodeHeader parses buf (which must be exactly v.HeaderSize() bytes)
// into a Header. Exported for callers outside the channel pump, such as
// the QST container reader, that need to interpret a raw recorded
// command stream rather than a live socket.
func DecodeHeader(v pstype.Version, buf []byte) Header {
	return decodeHeader(v, buf)
}

// decodeHeader parses buf (which must be exactly v.HeaderSize() bytes)
// into a Header.
func decodeHeader(v pstype.Version, buf []byte) Header {
	switch v.HeaderSize() {
	case 8: // BB: { u16 size; u16 command; u32 flag }
		return Header{
			Size:    binary.LittleEndian.Uint16(buf[0:2]),
			Command: binary.LittleEndian.Uint16(buf[2:4]),
			Flag:    binary.LittleEndian.Uint32(buf[4:8]),
		}
	default:
		if isPCFamily(v) {
			// PC: { u16 size; u8 command; u8 flag }
			return Header{
				Size:    binary.LittleEndian.Uint16(buf[0:2]),
				Command: uint16(buf[2]),
				Flag:    uint32(buf[3]),
			}
		}
		// DC/GC/XB: { u8 command; u8 flag; u16 size }
		return Header{
			Size:    binary.LittleEndian.Uint16(buf[2:4]),
			Command: uint16(buf[0]),
			Flag:    uint32(buf[1]),
		}
	}
}

// encodeHeader writes h into buf (sized v.HeaderSize()).
func encodeHeader(v pstype.Version, h Header, buf []byte) {
	switch v.HeaderSize() {
	case 8:
		binary.LittleEndian.PutUint16(buf[0:2], h.Size)
		binary.LittleEndian.PutUint16(buf[2:4], h.Command)
		binary.LittleEndian.PutUint32(buf[4:8], h.Flag)
	default:
		if isPCFamily(v) {
			binary.LittleEndian.PutUint16(buf[0:2], h.Size)
			buf[2] = byte(h.Command)
			buf[3] = byte(h.Flag)
			return
		}
		buf[0] = byte(h.Command)
		buf[1] = byte(h.Flag)
		binary.LittleEndian.PutUint16(buf[2:4], h.Size)
	}
}

// isPCFamily reports whether v uses the { size, command, flag } byte order
// (PC and BB's 16-bit command field follows this layout's field order even
// though BB's header is wider); DC/GC/XB use { command, flag, size }.
func isPCFamily(v pstype.Version) bool {
	switch v {
	case pstype.PCNTE, pstype.PCV2, pstype.PatchNTE, pstype.Patch:
		return true
	default:
		return false
	}
}
