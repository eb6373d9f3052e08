package archive

import (
	"encoding/binary"

	"github.com/fuzziqer/psocore/internal/cipher"
	"github.com/fuzziqer/psocore/internal/compression"
	"github.com/fuzziqer/psocore/internal/psoerr"
	"github.com/fuzziqer/psocore/internal/pstype"
)

// pr2HeaderSize is the size of a text archive's encrypted prefix: the
// compressed and decompressed sizes of the PRS body that follows,
// per original_source/TextArchive.cc's load_t (the decrypt_pr2_data
// helper's body was not present in the retrieved source; this header
// shape and the seed-recovery approach below are this port's resolution
// of spec.md §6's "v2-cipher-encrypted header whose seed the decoder
// recovers from a sentinel scan").
const pr2HeaderSize = 8

// pr2SeedSearchSpace bounds the brute-force seed recovery scan. Text
// archive seeds observed in the wild fit in 16 bits; scanning the full
// 32-bit space would be prohibitively slow with no other way to prune it.
const pr2SeedSearchSpace = 0x10000

// TextArchive is a parsed .pr2 text archive: a list of string
// collections plus a set of fixed-size keyboard key-code tables.
type TextArchive struct {
	Collections           [][]string
	Keyboards             [][7][16]uint16
	KeyboardSelectorWidth uint8
}

// ParseTextArchive decrypts and decompresses a .pr2 file and parses its
// collection/keyboard relocation-table layout. bigEndian selects the
// multi-byte field order used by GC/XB clients versus everyone else;
// lang selects the codepage its string table is encoded in (see
// textEncoding).
func ParseTextArchive(pr2Data []byte, bigEndian bool, lang pstype.Language) (*TextArchive, error) {
	decompressed, err := decryptPR2(pr2Data, bigEndian)
	if err != nil {
		return nil, psoerr.New(psoerr.KindCodec, "ParseTextArchive", err)
	}

	order := byteOrder(bigEndian)
	ta := &TextArchive{}

	if len(decompressed) < 8 {
		return nil, psoerr.New(psoerr.KindCodec, "ParseTextArchive", errTruncatedHeader)
	}
	usedOffsets := map[uint32]bool{}

	footerOffset := uint32(len(decompressed) - 8)
	usedOffsets[footerOffset] = true

	keyboardIndexOffset := order.Uint32(decompressed[footerOffset:])
	if err := boundsCheck(decompressed, keyboardIndexOffset, 8); err != nil {
		return nil, psoerr.New(psoerr.KindCodec, "ParseTextArchive", err)
	}
	usedOffsets[keyboardIndexOffset] = true

	numKeyboards := int(decompressed[keyboardIndexOffset])
	ta.KeyboardSelectorWidth = decompressed[keyboardIndexOffset+1]
	keyboardsOffset := order.Uint32(decompressed[keyboardIndexOffset+4:])
	usedOffsets[keyboardsOffset] = true

	const keyboardBytes = 7 * 16 * 2
	for i := 0; i < numKeyboards; i++ {
		entryOffset := keyboardsOffset + uint32(4*i)
		if err := boundsCheck(decompressed, entryOffset, 4); err != nil {
			return nil, psoerr.New(psoerr.KindCodec, "ParseTextArchive", err)
		}
		kbOffset := order.Uint32(decompressed[entryOffset:])
		usedOffsets[kbOffset] = true
		if err := boundsCheck(decompressed, kbOffset, keyboardBytes); err != nil {
			return nil, psoerr.New(psoerr.KindCodec, "ParseTextArchive", err)
		}
		var kb [7][16]uint16
		pos := kbOffset
		for y := 0; y < 7; y++ {
			for x := 0; x < 16; x++ {
				kb[y][x] = order.Uint16(decompressed[pos:])
				pos += 2
			}
		}
		ta.Keyboards = append(ta.Keyboards, kb)
	}

	collectionsOffset := order.Uint32(decompressed[len(decompressed)-4:])
	for offset := collectionsOffset; !usedOffsets[offset]; offset += 4 {
		if err := boundsCheck(decompressed, offset, 4); err != nil {
			return nil, psoerr.New(psoerr.KindCodec, "ParseTextArchive", err)
		}
		usedOffsets[order.Uint32(decompressed[offset:])] = true
	}
	usedOffsets[collectionsOffset] = true

	for offset := collectionsOffset; offset == collectionsOffset || !usedOffsets[offset]; offset += 4 {
		if err := boundsCheck(decompressed, offset, 4); err != nil {
			return nil, psoerr.New(psoerr.KindCodec, "ParseTextArchive", err)
		}
		firstStringOffsetOffset := order.Uint32(decompressed[offset:])
		var collection []string
		for stringOffsetOffset := firstStringOffsetOffset; stringOffsetOffset == firstStringOffsetOffset || !usedOffsets[stringOffsetOffset]; stringOffsetOffset += 4 {
			if err := boundsCheck(decompressed, stringOffsetOffset, 4); err != nil {
				return nil, psoerr.New(psoerr.KindCodec, "ParseTextArchive", err)
			}
			strOffset := order.Uint32(decompressed[stringOffsetOffset:])
			s, err := cString(decompressed, strOffset, lang)
			if err != nil {
				return nil, psoerr.New(psoerr.KindCodec, "ParseTextArchive", err)
			}
			collection = append(collection, s)
		}
		ta.Collections = append(ta.Collections, collection)
	}

	return ta, nil
}

// decryptPR2 brute-forces the header seed by checking the decrypted
// compressed-size field against the actual remaining length (the
// "sentinel"), then returns the decompressed PRS body.
func decryptPR2(pr2Data []byte, bigEndian bool) ([]byte, error) {
	if len(pr2Data) < pr2HeaderSize {
		return nil, errTruncatedHeader
	}
	order := byteOrder(bigEndian)

	var header [pr2HeaderSize]byte
	for seed := uint32(0); seed < pr2SeedSearchSpace; seed++ {
		copy(header[:], pr2Data[:pr2HeaderSize])
		crypt := cipher.NewV2(seed, bigEndian)
		if err := crypt.Decrypt(header[:]); err != nil {
			return nil, err
		}
		compressedSize := order.Uint32(header[0:4])
		if int(compressedSize) == len(pr2Data)-pr2HeaderSize {
			body := pr2Data[pr2HeaderSize:]
			decompressedSize := int(order.Uint32(header[4:8]))
			return compression.Decompress(body, decompressedSize)
		}
	}
	return nil, errBadTextArchiveSeed
}

func boundsCheck(data []byte, offset uint32, size int) error {
	if uint64(offset)+uint64(size) > uint64(len(data)) {
		return errEntryExtendsBeyondEnd
	}
	return nil
}

func cString(data []byte, offset uint32, lang pstype.Language) (string, error) {
	if uint64(offset) > uint64(len(data)) {
		return "", errEntryBeyondEnd
	}
	end := offset
	for end < uint32(len(data)) && data[end] != 0 {
		end++
	}
	return decodeText(lang, data[offset:end])
}

func byteOrder(bigEndian bool) binary.ByteOrder {
	if bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
