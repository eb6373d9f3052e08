package savefile

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/fuzziqer/psocore/internal/psoerr"
)

// GCI header layout constants, per original_source/SaveFileFormats.hh
// (PSOGCIFileHeader, packed, big-endian). The header occupies the first
// 0x2088 bytes of the file; everything after that is the (possibly
// encrypted) data section, whose length is given by DataSize.
const (
	gciGameIDOffset      = 0x00
	gciDeveloperIDOffset = 0x04
	gciGameNameOffset    = 0x40
	gciGameNameSize      = 0x1C
	gciEmbeddedSeed      = 0x5C
	gciFileNameOffset    = 0x60
	gciFileNameSize      = 0x20
	gciBannerOffset      = 0x80
	gciBannerSize        = 0x1800
	gciIconOffset        = 0x1880
	gciIconSize          = 0x800
	gciDataSizeOffset    = 0x2080
	gciChecksumOffset    = 0x2084
	GCIHeaderSize        = 0x2088
)

// GCI holds a parsed GameCube memory-card save file: its fixed-layout
// header plus the (still encrypted, for character/guild-card files)
// data section that follows it.
type GCI struct {
	GameID       [4]byte
	DeveloperID  [2]byte
	GameName     [gciGameNameSize]byte
	EmbeddedSeed uint32
	FileName     [gciFileNameSize]byte
	Banner       [gciBannerSize]byte
	Icon         [gciIconSize]byte
	DataSize     uint32
	Checksum     uint32
	Data         []byte
}

// ParseGCI decodes a raw .gci file. It validates the header checksum and
// the Sega/GameCube/PSO game-ID markers but does not decrypt the data
// section; call DecodeSection on GCI.Data with the save's seed for that.
func ParseGCI(raw []byte) (*GCI, error) {
	if len(raw) < GCIHeaderSize {
		return nil, psoerr.New(psoerr.KindCodec, "ParseGCI", errTooShort)
	}

	g := &GCI{}
	copy(g.GameID[:], raw[gciGameIDOffset:gciGameIDOffset+4])
	copy(g.DeveloperID[:], raw[gciDeveloperIDOffset:gciDeveloperIDOffset+2])
	copy(g.GameName[:], raw[gciGameNameOffset:gciGameNameOffset+gciGameNameSize])
	g.EmbeddedSeed = binary.BigEndian.Uint32(raw[gciEmbeddedSeed:])
	copy(g.FileName[:], raw[gciFileNameOffset:gciFileNameOffset+gciFileNameSize])
	copy(g.Banner[:], raw[gciBannerOffset:gciBannerOffset+gciBannerSize])
	copy(g.Icon[:], raw[gciIconOffset:gciIconOffset+gciIconSize])
	g.DataSize = binary.BigEndian.Uint32(raw[gciDataSizeOffset:])
	g.Checksum = binary.BigEndian.Uint32(raw[gciChecksumOffset:])

	if int(g.DataSize) > len(raw)-GCIHeaderSize {
		return nil, psoerr.New(psoerr.KindCodec, "ParseGCI", errDataSizeOverflow)
	}
	g.Data = raw[GCIHeaderSize : GCIHeaderSize+int(g.DataSize)]

	if !g.checksumCorrect() {
		return nil, psoerr.New(psoerr.KindCodec, "ParseGCI", errBadChecksum)
	}
	if err := g.checkGameMarkers(); err != nil {
		return nil, psoerr.New(psoerr.KindCodec, "ParseGCI", err)
	}
	return g, nil
}

// checksumCorrect reproduces PSOGCIFileHeader::checksum_correct: a CRC32
// over game_name..data_size followed by four zero bytes standing in for
// the checksum field itself.
func (g *GCI) checksumCorrect() bool {
	cs := crc32.ChecksumIEEE(g.GameName[:])
	cs = crc32Update(cs, g.EmbeddedSeed)
	cs = crc32.Update(cs, crc32.IEEETable, g.FileName[:])
	cs = crc32.Update(cs, crc32.IEEETable, g.Banner[:])
	cs = crc32.Update(cs, crc32.IEEETable, g.Icon[:])
	cs = crc32Update(cs, g.DataSize)
	cs = crc32.Update(cs, crc32.IEEETable, []byte{0, 0, 0, 0})
	return cs == g.Checksum
}

func crc32Update(cs uint32, word uint32) uint32 {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], word)
	return crc32.Update(cs, crc32.IEEETable, buf[:])
}

// checkGameMarkers reproduces PSOGCIFileHeader::check's developer/game ID
// validation (excluding the checksum check, done separately).
func (g *GCI) checkGameMarkers() error {
	if g.DeveloperID[0] != '8' || g.DeveloperID[1] != 'P' {
		return errNotSega
	}
	if g.GameID[0] != 'G' || g.GameID[1] != 'P' {
		return errNotGameCube
	}
	if g.GameID[2] != 'S' && g.GameID[2] != 'O' {
		return errNotPSO
	}
	return nil
}

// IsEp12 reports whether this save is from Episode I & II (game_id[2] == 'O').
func (g *GCI) IsEp12() bool { return g.GameID[2] == 'O' }

// IsEp3 reports whether this save is from Episode III (game_id[2] == 'S').
func (g *GCI) IsEp3() bool { return g.GameID[2] == 'S' }

// Decrypt returns the decompressed, decrypted data section using the
// given seed. GCI data sections are big-endian (spec.md §4.6).
func (g *GCI) Decrypt(seed uint32, maxSize int) ([]byte, error) {
	return DecodeSection(g.Data, seed, true, maxSize)
}
