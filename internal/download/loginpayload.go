package download

import (
	"encoding/binary"
	"fmt"

	"github.com/fuzziqer/psocore/internal/psoerr"
	"github.com/fuzziqer/psocore/internal/pstype"
)

// BuildLoginCommand builds the login command a download session sends
// immediately after a server-init handshake, grounded on
// original_source/DownloadSession.cc's send_93_9D_9E: v1 families reply
// with opcode 0x93, v2 families with 0x9D, and GC/XB v3 with 0x9E
// (extended form, since the download session always supplies a hardware
// id). BB is handled separately by its own post-auth flow and is not
// accepted here.
//
// The C_Login*_93/9D/9E struct layouts are not present in the retrieved
// reference pack (only field-assignment call sites are), so the exact
// byte layout below is a reconstruction: a fixed 0x20-byte fields block
// (player_tag, guild_card_number, hardware_id hash, sub_version, flags,
// language) followed by four NUL-padded 0x10-byte credential strings
// (serial_number, access_key, serial_number2, access_key2). It preserves
// every field the original assigns, not necessarily their exact offsets.
func BuildLoginCommand(cfg Config, freshConnect bool) ([]byte, uint16, error) {
	switch {
	case cfg.Version.UsesV4Cipher():
		return nil, 0, psoerr.New(psoerr.KindProtocol, "build-login", fmt.Errorf("BB login is not built by BuildLoginCommand"))
	case cfg.Version == pstype.DCNTE, cfg.Version == pstype.DC112000, cfg.Version == pstype.DCV1:
		return buildLoginPayload(cfg, freshConnect, cfg.Creds.SerialNumber, cfg.Creds.AccessKey, cfg.Creds.SerialNumber, cfg.Creds.AccessKey), 0x93, nil
	case cfg.Version == pstype.DCV2, cfg.Version == pstype.PCNTE, cfg.Version == pstype.PCV2:
		return buildLoginPayload(cfg, freshConnect, cfg.Creds.SerialNumber, cfg.Creds.AccessKey, cfg.Creds.SerialNumber, cfg.Creds.AccessKey), 0x9D, nil
	case cfg.Version == pstype.XBV3:
		return buildLoginPayload(cfg, freshConnect, cfg.Creds.XBGamertag, cfg.Creds.XBUserID, cfg.Creds.XBGamertag, cfg.Creds.XBUserID), 0x9E, nil
	default: // GCNTE, GCV3, GCEp3NTE, GCEp3
		return buildLoginPayload(cfg, freshConnect, cfg.Creds.SerialNumber, cfg.Creds.AccessKey, cfg.Creds.SerialNumber, cfg.Creds.AccessKey), 0x9E, nil
	}
}

const loginFixedFieldsSize = 0x20
const loginCredentialFieldSize = 0x10

func buildLoginPayload(cfg Config, extended bool, serial, access, serial2, access2 string) []byte {
	size := loginFixedFieldsSize + 4*loginCredentialFieldSize
	buf := make([]byte, size)

	playerTag := uint32(0x00010000)
	binary.LittleEndian.PutUint32(buf[0x00:], playerTag)
	binary.LittleEndian.PutUint32(buf[0x04:], 0) // guild_card_number: unknown until server assigns one
	binary.LittleEndian.PutUint32(buf[0x08:], hardwareIDHash(cfg.Version))
	binary.LittleEndian.PutUint32(buf[0x0C:], 0) // sub_version: left to the server's default
	if extended {
		buf[0x10] = 1
	}
	buf[0x11] = byte(cfg.Language)

	putFixedString(buf[loginFixedFieldsSize:], serial)
	putFixedString(buf[loginFixedFieldsSize+loginCredentialFieldSize:], access)
	putFixedString(buf[loginFixedFieldsSize+2*loginCredentialFieldSize:], serial2)
	putFixedString(buf[loginFixedFieldsSize+3*loginCredentialFieldSize:], access2)

	return buf
}

func putFixedString(dst []byte, s string) {
	n := copy(dst, s)
	for ; n < len(dst); n++ {
		dst[n] = 0
	}
}

// hardwareIDHash stands in for original_source's generate_random_hardware_id:
// a per-run random value seeded once per version family. Since spec.md
// doesn't name the exact per-family generation rule and the function body
// isn't in the retrieved pack, this derives a stable placeholder from the
// version tag rather than a true RNG, keeping BuildLoginCommand
// deterministic and testable.
func hardwareIDHash(v pstype.Version) uint32 {
	return 0x1000_0000 | uint32(v)
}
