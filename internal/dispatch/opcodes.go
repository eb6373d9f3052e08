package dispatch

// Representative opcodes the dispatcher recognises (spec.md §4.4). This is
// not an exhaustive command set — it covers the commands this core's own
// components (server-init, file transfer, menu navigation, login) need to
// name directly; everything else is routed purely by table lookup.
const (
	OpServerInitV2A    uint16 = 0x02
	OpServerInitV2B    uint16 = 0x17
	OpServerInitV3     uint16 = 0x91
	OpServerInitShared uint16 = 0x9B
	OpServerInitV4     uint16 = 0x03

	OpUpdateClientConfig uint16 = 0x04
	OpChat               uint16 = 0x06
	OpGameListRequest    uint16 = 0x08
	OpMenuItemInfo       uint16 = 0x09
	OpMenuSelection      uint16 = 0x10
	OpWriteFile          uint16 = 0x13
	OpWriteFileAlt       uint16 = 0xA7
	OpReconnect          uint16 = 0x19
	OpOpenFile           uint16 = 0x44
	OpOpenFileAlt        uint16 = 0xA6
	OpPlayerData         uint16 = 0x61
	OpPlayerDataAlt      uint16 = 0x98
	OpChangeLobby        uint16 = 0x84
	OpArrowUpdate        uint16 = 0x88
	OpLobbyList          uint16 = 0x83
	OpGameCreateReady    uint16 = 0x67
	OpJoinGame           uint16 = 0x64
	OpLogin93            uint16 = 0x93
	OpLogin9A            uint16 = 0x9A
	OpLogin9C            uint16 = 0x9C
	OpLogin9D            uint16 = 0x9D
	OpLogin9EExtended    uint16 = 0x9E
	OpLoginDB            uint16 = 0xDB
	OpChangeShip         uint16 = 0xA0
	OpChangeBlock        uint16 = 0xA1
	OpQuestList          uint16 = 0xA2
	OpQuestListAlt       uint16 = 0xA4
	OpQuestLoadingReady  uint16 = 0xAC
	OpCreateGame         uint16 = 0xC1
	OpCreateGameAlt      uint16 = 0x0C
	OpCreateGameCard     uint16 = 0xEC
	OpMessageBoxClosed   uint16 = 0xD6
)

// ServerInitOpcodes reports the set of opcodes that install ciphers and
// flip a channel from clear to encrypted for the given family (spec.md
// §4.1): 0x02/0x17/0x91/0x9B for v2/v3 families, 0x03 or 0x9B for v4.
func ServerInitOpcodes(usesV4 bool) []uint16 {
	if usesV4 {
		return []uint16{OpServerInitV4, OpServerInitShared}
	}
	return []uint16{OpServerInitV2A, OpServerInitV2B, OpServerInitV3, OpServerInitShared}
}

// IsServerInit reports whether opcode is a server-init command for a
// session of the given family.
func IsServerInit(opcode uint16, usesV4 bool) bool {
	for _, op := range ServerInitOpcodes(usesV4) {
		if op == opcode {
			return true
		}
	}
	return false
}
