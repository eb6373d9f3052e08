package archive

import (
	"encoding/binary"
	"sort"

	"github.com/fuzziqer/psocore/internal/cipher"
	"github.com/fuzziqer/psocore/internal/compression"
	"github.com/fuzziqer/psocore/internal/psoerr"
	"github.com/fuzziqer/psocore/internal/pstype"
)

// Serialize rebuilds a (pr2, pr3) file pair from this archive's in-memory
// contents, mirroring serialize_t in original_source/TextArchive.cc: pr2
// carries the string/keyboard data plus a relocation-bearing footer, pr3
// a run-length table of the offsets (in 4-byte words) pr2 needs patched
// if relocated. seed drives the header's v2 encryption (spec.md §6 calls
// for a fresh random seed per archive; callers choose one). lang picks
// the codepage collection strings are re-encoded into, matching the
// decoder ParseTextArchive uses for the same language.
func (ta *TextArchive) Serialize(bigEndian bool, seed uint32, lang pstype.Language) (pr2, pr3 []byte, err error) {
	order := byteOrder(bigEndian)
	w := &byteWriter{}
	var relocations []uint32

	putOffset := func(v uint32) {
		relocations = append(relocations, uint32(w.len()))
		w.putU32(order, v)
	}

	stringOffsets := map[string]uint32{}
	for _, collection := range ta.Collections {
		for _, s := range collection {
			if _, ok := stringOffsets[s]; ok {
				continue
			}
			encoded, encErr := encodeText(lang, s)
			if encErr != nil {
				return nil, nil, psoerr.New(psoerr.KindCodec, "Serialize", encErr)
			}
			stringOffsets[s] = uint32(w.len())
			w.putBytes(encoded)
			w.putU8(0)
			for w.len()&3 != 0 {
				w.putU8(0)
			}
		}
	}

	collectionOffsets := make([]uint32, len(ta.Collections))
	for i, collection := range ta.Collections {
		collectionOffsets[i] = uint32(w.len())
		for _, s := range collection {
			putOffset(stringOffsets[s])
		}
	}

	collectionsOffset := uint32(w.len())
	for _, co := range collectionOffsets {
		putOffset(co)
	}

	keyboardOffsets := make([]uint32, len(ta.Keyboards))
	for i, kb := range ta.Keyboards {
		keyboardOffsets[i] = uint32(w.len())
		for y := 0; y < 7; y++ {
			for x := 0; x < 16; x++ {
				w.putU16(order, kb[y][x])
			}
		}
	}

	keyboardsOffset := uint32(w.len())
	for _, ko := range keyboardOffsets {
		putOffset(ko)
	}

	keyboardIndexOffset := uint32(w.len())
	w.putU8(uint8(len(ta.Keyboards)))
	w.putU8(ta.KeyboardSelectorWidth)
	w.putU16(order, 0)
	putOffset(keyboardsOffset)

	putOffset(keyboardIndexOffset)
	putOffset(collectionsOffset)

	plainBody := w.bytes()
	compressedBody := compression.Compress(plainBody)

	pr2, err = encryptPR2(compressedBody, len(plainBody), bigEndian, seed)
	if err != nil {
		return nil, nil, err
	}

	sort.Slice(relocations, func(i, j int) bool { return relocations[i] < relocations[j] })
	relocW := &byteWriter{}
	for _, off := range relocations {
		if off&3 != 0 {
			return nil, nil, errMisalignedRelocation
		}
	}
	relocW.putU32(order, 0)
	relocW.putU32(order, uint32(len(relocations)))
	relocW.putU32(order, 0)
	relocW.putU32(order, 0)
	relocW.putU32(order, uint32(len(plainBody)-8))
	relocW.putU32(order, 0)
	relocW.putU32(order, 0)
	relocW.putU32(order, 0)
	prevOffset := uint32(0)
	for _, off := range relocations {
		numWords := (off - prevOffset) >> 2
		if numWords > 0xFFFF {
			return nil, nil, errRelocationTooFar
		}
		relocW.putU16(order, uint16(numWords))
		prevOffset = off
	}

	compressedReloc := compression.Compress(relocW.bytes())
	pr3, err = encryptPR2(compressedReloc, relocW.len(), bigEndian, seed+1)
	if err != nil {
		return nil, nil, err
	}
	return pr2, pr3, nil
}

func encryptPR2(compressed []byte, decompressedSize int, bigEndian bool, seed uint32) ([]byte, error) {
	var header [pr2HeaderSize]byte
	order := byteOrder(bigEndian)
	order.PutUint32(header[0:4], uint32(len(compressed)))
	order.PutUint32(header[4:8], uint32(decompressedSize))

	crypt := cipher.NewV2(seed, bigEndian)
	if err := crypt.Encrypt(header[:]); err != nil {
		return nil, err
	}
	out := make([]byte, 0, pr2HeaderSize+len(compressed))
	out = append(out, header[:]...)
	out = append(out, compressed...)
	return out, nil
}

// byteWriter is a tiny growable-buffer writer over a plain []byte (not a
// bytes.Buffer), with just the fixed-width put helpers this format needs.
type byteWriter struct {
	buf []byte
}

func (w *byteWriter) len() int      { return len(w.buf) }
func (w *byteWriter) bytes() []byte { return w.buf }

func (w *byteWriter) putU8(v uint8)  { w.buf = append(w.buf, v) }
func (w *byteWriter) putBytes(b []byte) { w.buf = append(w.buf, b...) }

func (w *byteWriter) putU16(order binary.ByteOrder, v uint16) {
	var b [2]byte
	order.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *byteWriter) putU32(order binary.ByteOrder, v uint32) {
	var b [4]byte
	order.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
