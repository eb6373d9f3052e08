package download

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"unicode/utf16"

	"github.com/fuzziqer/psocore/internal/psoerr"
	"github.com/fuzziqer/psocore/internal/pstype"
)

// This file decodes and encodes the fixed-record wire bodies the download
// control loop needs to actually drive a session: menu/quest listings,
// open-file and write-file transfers, and the game-creation command. None
// of the C struct definitions these are ported from
// (S_MenuItem_*_08_Ep3_E6, S_QuestMenuEntry_*_A2_A4, S_OpenFile_*_44_A6,
// S_WriteFile_13_A7, C_MenuSelection_10_Flag00, C_CreateGame_*) survive in
// the retrieved original_source/ pack — only call sites referencing their
// named fields do. Every layout below is therefore a documented
// reconstruction sized to the fields the call sites actually use, not a
// byte-exact port.

const (
	// menuItemHeaderSize is menu_id(4) + item_id(4) + flags(2), common to
	// every menu-item/quest-entry record shape regardless of family.
	menuItemHeaderSize = 10
	// menuItemNameChars bounds the reconstructed name field: ASCII bytes
	// for narrow families, UTF-16LE code units (so twice the bytes) for
	// PC/BB.
	menuItemNameChars = 0x20
)

func menuItemRecordSize(wide bool) int {
	if wide {
		return menuItemHeaderSize + menuItemNameChars*2
	}
	return menuItemHeaderSize + menuItemNameChars
}

// decodeMenuItems parses count fixed-size records out of payload, skipping
// one leading header record first when skipHeader is set (the ship-select
// listing's item_index loop starts at 1, per original_source/
// DownloadSession.cc's handling of 0x07/0x1F/0xA0/0xA1; the quest-list
// listing at 0xA2 has no such header and starts at 0).
func decodeMenuItems(payload []byte, count uint32, wide, skipHeader bool) ([]MenuEntry, error) {
	recSize := menuItemRecordSize(wide)
	start := 0
	if skipHeader {
		start = recSize
	}
	need := start + recSize*int(count)
	if len(payload) < need {
		return nil, psoerr.New(psoerr.KindProtocol, "decode-menu-items", fmt.Errorf("menu item list: need %d bytes, got %d", need, len(payload)))
	}

	entries := make([]MenuEntry, 0, count)
	for i := 0; i < int(count); i++ {
		rec := payload[start+i*recSize : start+(i+1)*recSize]
		entries = append(entries, MenuEntry{
			MenuID:      binary.LittleEndian.Uint32(rec[0:4]),
			ItemID:      binary.LittleEndian.Uint32(rec[4:8]),
			DisplayName: decodeMenuName(rec[menuItemHeaderSize:], wide),
		})
	}
	return entries, nil
}

// decodeMenuName decodes a fixed-width, NUL-terminated name field: ASCII
// for narrow families, UTF-16LE for PC/BB (spec.md §3 "wide text").
func decodeMenuName(field []byte, wide bool) string {
	if !wide {
		return cString(field)
	}
	units := make([]uint16, len(field)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(field[i*2:])
	}
	for i, u := range units {
		if u == 0 {
			units = units[:i]
			break
		}
	}
	return string(utf16.Decode(units))
}

// cString returns the bytes of b up to (not including) its first NUL, or
// all of b if it has none.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// encodeMenuSelection builds the C_MenuSelection_10_Flag00 body: menu_id
// and item_id as two little-endian uint32s (original_source/
// DownloadSession.cc send_next_request and the 0x07/0x1F/0xA0/0xA1 ship
// select handler both send exactly this shape with flag 0x00).
func encodeMenuSelection(menuID, itemID uint32) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint32(out[0:4], menuID)
	binary.LittleEndian.PutUint32(out[4:8], itemID)
	return out
}

const (
	// openFileNameSize reconstructs S_OpenFile_*_44_A6's internal_name
	// field width; real quest filenames are short 8.3-style DOS names.
	openFileNameSize = 0x10
)

// decodeOpenFile parses an open-file announcement: a fixed name field
// followed by a little-endian file_size (original_source/
// DownloadSession.cc case 0x44/0xA6).
func decodeOpenFile(payload []byte) (internalName string, fileSize uint32, err error) {
	need := openFileNameSize + 4
	if len(payload) < need {
		return "", 0, psoerr.New(psoerr.KindProtocol, "decode-open-file", fmt.Errorf("open-file: need %d bytes, got %d", need, len(payload)))
	}
	internalName = cString(payload[:openFileNameSize])
	fileSize = binary.LittleEndian.Uint32(payload[openFileNameSize : openFileNameSize+4])
	return internalName, fileSize, nil
}

const (
	// writeFileNameSize mirrors openFileNameSize; both reconstructions
	// name the same on-the-wire quest file.
	writeFileNameSize = 0x10
	// writeFileBlockSize is S_WriteFile_13_A7's maximum per-frame payload;
	// data_size != writeFileBlockSize marks the file's final block
	// (original_source/DownloadSession.cc case 0x13/0xA7).
	writeFileBlockSize = 0x400
)

// decodeWriteFile parses one write-file block: a fixed name field, a
// little-endian data_size, then up to writeFileBlockSize bytes of data.
func decodeWriteFile(payload []byte) (internalName string, data []byte, dataSize uint32, err error) {
	need := writeFileNameSize + 4
	if len(payload) < need {
		return "", nil, 0, psoerr.New(psoerr.KindProtocol, "decode-write-file", fmt.Errorf("write-file: need %d bytes, got %d", need, len(payload)))
	}
	internalName = cString(payload[:writeFileNameSize])
	dataSize = binary.LittleEndian.Uint32(payload[writeFileNameSize : writeFileNameSize+4])
	start := writeFileNameSize + 4
	end := start + int(dataSize)
	if end > len(payload) {
		end = len(payload)
	}
	data = payload[start:end]
	return internalName, data, dataSize, nil
}

// encodeWriteFileConfirmation builds C_WriteFileConfirmation_V3_BB_13_A7,
// sent back verbatim with the same opcode/flag only by v3+ families
// (original_source/DownloadSession.cc case 0x13/0xA7, "!is_v1_or_v2").
func encodeWriteFileConfirmation(internalName string) []byte {
	out := make([]byte, writeFileNameSize)
	copy(out, internalName)
	return out
}

const (
	createGameNameSize     = 0x10
	createGamePasswordSize = 0x10
)

// encodeCreateGame builds C_CreateGame_DC_V3_0C_C1_Ep3_EC (or, for BB,
// C_CreateGame_BB_C1 with its trailing solo_mode byte), per
// original_source/DownloadSession.cc case 0x67. episode is pre-encoded by
// the caller to the wire values 0/1/2/4 (original's v1-forces-0, then
// EP1/EP2/EP4 -> 1/2/4).
func encodeCreateGame(name, password string, battleMode, challengeMode bool, episode byte, soloMode, bb bool) []byte {
	size := createGameNameSize + createGamePasswordSize + 4
	if bb {
		size++
	}
	out := make([]byte, size)
	copy(out[0:createGameNameSize], name)
	copy(out[createGameNameSize:createGameNameSize+createGamePasswordSize], password)
	off := createGameNameSize + createGamePasswordSize
	out[off] = 0 // difficulty is always 0 (original_source/DownloadSession.cc case 0x67)
	out[off+1] = boolByte(battleMode)
	out[off+2] = boolByte(challengeMode)
	out[off+3] = episode
	if bb {
		out[off+4] = boolByte(soloMode)
	}
	return out
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// encodeChatCommand builds a minimal 0x06 chat body carrying text as a
// NUL-terminated ASCII buffer. The real client prefixes a guild-card number
// and colour tag; those aren't needed to drive a configured
// quest-completion command (spec.md §4.5's on_complete commands) against a
// server that already knows this session's identity.
func encodeChatCommand(text string) []byte {
	return append([]byte(text), 0)
}

// encodeLobbySelection builds C_LobbySelection_84: menu_id and item_id as
// two little-endian uint32s, the same shape as encodeMenuSelection but
// named separately since it answers a distinct opcode (0x84).
func encodeLobbySelection(menuID, itemID uint32) []byte {
	return encodeMenuSelection(menuID, itemID)
}

// randomNameAlphabet matches original_source/DownloadSession.cc's
// random_name(): upper/lowercase letters and digits, 4-16 characters.
const randomNameAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// randomName generates a random game name/password (original_source/
// DownloadSession.cc random_name(), used for both C_CreateGame.name and
// .password).
func randomName() string {
	n := 4 + rand.IntN(13) // 4..16 inclusive
	b := make([]byte, n)
	for i := range b {
		b[i] = randomNameAlphabet[rand.IntN(len(randomNameAlphabet))]
	}
	return string(b)
}

// episodeWireValue encodes an Episode the way original_source/
// DownloadSession.cc's case 0x67 does: v1 always sends 0 regardless of
// episode, everyone else sends 1/2/4 for EP1/EP2/EP4.
func episodeWireValue(ep Episode, v pstype.Version) byte {
	switch v {
	case pstype.DCNTE, pstype.DC112000, pstype.DCV1:
		return 0
	}
	switch ep {
	case Ep1:
		return 1
	case Ep2:
		return 2
	case Ep4:
		return 4
	default:
		return 0
	}
}
