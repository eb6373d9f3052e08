package dispatch

import (
	"encoding/binary"

	"github.com/fuzziqer/psocore/internal/session"
)

// UpdateClientConfigSize is sizeof the 0x04 command's fixed body: a
// 32-byte opaque round-trip blob preceded by the guild-card number
// (spec.md §4.4).
const UpdateClientConfigSize = 4 + 0x20

// HandleUpdateClientConfig implements opcode 0x04 (spec.md §4.4): latches
// the guild-card number and the 0x20-byte opaque blob the client must get
// back verbatim on reconnect.
func HandleUpdateClientConfig(s *session.Session, opcode uint16, flag uint32, payload []byte) error {
	if err := CheckSize(len(payload), UpdateClientConfigSize, UpdateClientConfigSize); err != nil {
		return err
	}
	s.GuildCardNumber = binary.LittleEndian.Uint32(payload[0:4])
	copy(s.ClientConfig[:], payload[4:4+0x20])
	return nil
}

// HandleMessageBoxClosed implements opcode 0xD6: an acknowledgement with
// no payload, used as a "continue" signal (spec.md §4.4).
func HandleMessageBoxClosed(s *session.Session, opcode uint16, flag uint32, payload []byte) error {
	return CheckSize(len(payload), 0, 0)
}

// MenuSelection is the decoded body of opcode 0x10 (spec.md §4.4):
// (menu_id, item_id, optional_password). Password is present only when
// the payload is longer than the fixed 8-byte prefix.
type MenuSelection struct {
	MenuID   uint32
	ItemID   uint32
	Password string
}

const menuSelectionMinSize = 8

// DecodeMenuSelection parses a 0x10 payload after CheckSize has validated
// its band. wide selects UTF-16LE password decoding (PC/BB) versus a
// single-byte charset (everyone else).
func DecodeMenuSelection(payload []byte, wide bool) MenuSelection {
	sel := MenuSelection{
		MenuID: binary.LittleEndian.Uint32(payload[0:4]),
		ItemID: binary.LittleEndian.Uint32(payload[4:8]),
	}
	tail := payload[menuSelectionMinSize:]
	if len(tail) == 0 {
		return sel
	}
	if wide {
		sel.Password = decodeUTF16LENullTerminated(tail)
	} else {
		sel.Password = decodeLatin1NullTerminated(tail)
	}
	return sel
}

func decodeLatin1NullTerminated(b []byte) string {
	for i, c := range b {
		if c == 0 {
			b = b[:i]
			break
		}
	}
	return string(b)
}

func decodeUTF16LENullTerminated(b []byte) string {
	runes := make([]rune, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u := binary.LittleEndian.Uint16(b[i : i+2])
		if u == 0 {
			break
		}
		runes = append(runes, rune(u))
	}
	return string(runes)
}
