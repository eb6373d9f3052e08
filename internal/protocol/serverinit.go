package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/fuzziqer/psocore/internal/psoerr"
)

// serverInitKeyPairOffset is the byte offset of the little-endian
// server_key/client_key uint32 pair within a 0x02/0x17/0x91/0x9B
// server-init command body (spec.md §4.1). The full
// S_ServerInitDefault_DC_PC_V3_02_17_91_9B struct (a fixed copyright-
// string field ahead of the two keys) is not present in the retrieved
// reference pack, only call sites that read cmd.server_key/cmd.client_key
// after it — this offset reconstructs the struct's shape from those call
// sites rather than from a struct definition.
const serverInitKeyPairOffset = 0x40

// ParseServerInitKeys extracts the server/client key pair from a v2/v3
// server-init command payload (opcodes 0x02, 0x17, 0x91, 0x9B). It does
// not apply to BB's 0x03/0x9B form, whose key material is a raw byte
// blob rather than a uint32 pair (see cipher.NewV4).
func ParseServerInitKeys(payload []byte) (serverKey, clientKey uint32, err error) {
	if len(payload) < serverInitKeyPairOffset+8 {
		return 0, 0, psoerr.New(psoerr.KindFramed, "server-init", fmt.Errorf("payload too short: %d", len(payload)))
	}
	serverKey = binary.LittleEndian.Uint32(payload[serverInitKeyPairOffset:])
	clientKey = binary.LittleEndian.Uint32(payload[serverInitKeyPairOffset+4:])
	return serverKey, clientKey, nil
}
