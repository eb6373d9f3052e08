// Package archive implements the container formats the download session
// and quest catalog work with: AFS (flat offset/size table), the
// PRS-compressed text archive (.pr2/.pr3, which can also be serialized),
// and QST (a pre-recorded command replay used to extract quest files).
// AFS and QST are read-only here. Ported from
// original_source/AFSArchive.{hh,cc}, TextArchive.{hh,cc}, and the quest
// file-open/write replay logic in original_source/Quest.cc.
package archive

import (
	"encoding/binary"

	"github.com/fuzziqer/psocore/internal/psoerr"
)

const afsMagic = 0x41465300 // "AFS\0", read big-endian

// AFSEntry is one file's location within the archive.
type AFSEntry struct {
	Offset uint32
	Size   uint32
}

// AFS is a parsed AFS archive: a flat, random-access, read-only table of
// byte ranges into the backing buffer. Entries are not required to be
// contiguous or sorted.
type AFS struct {
	data    []byte
	Entries []AFSEntry
}

// ParseAFS decodes an AFS archive's header and entry table. data is kept
// by reference, not copied; callers must not mutate it afterward.
func ParseAFS(data []byte) (*AFS, error) {
	if len(data) < 8 {
		return nil, psoerr.New(psoerr.KindCodec, "ParseAFS", errTruncatedHeader)
	}
	magic := binary.BigEndian.Uint32(data[0:4])
	if magic != afsMagic {
		return nil, psoerr.New(psoerr.KindCodec, "ParseAFS", errNotAFS)
	}
	numFiles := binary.LittleEndian.Uint32(data[4:8])

	entriesEnd := 8 + int(numFiles)*8
	if entriesEnd > len(data) {
		return nil, psoerr.New(psoerr.KindCodec, "ParseAFS", errTruncatedHeader)
	}

	a := &AFS{data: data, Entries: make([]AFSEntry, numFiles)}
	for i := 0; i < int(numFiles); i++ {
		off := 8 + i*8
		a.Entries[i] = AFSEntry{
			Offset: binary.LittleEndian.Uint32(data[off:]),
			Size:   binary.LittleEndian.Uint32(data[off+4:]),
		}
	}
	return a, nil
}

// Get returns a slice of the backing buffer for entry index, without
// copying. The slice is invalidated if the caller mutates the original
// data passed to ParseAFS.
func (a *AFS) Get(index int) ([]byte, error) {
	if index < 0 || index >= len(a.Entries) {
		return nil, psoerr.New(psoerr.KindCodec, "AFS.Get", errEntryIndexOutOfRange)
	}
	e := a.Entries[index]
	if uint64(e.Offset) > uint64(len(a.data)) {
		return nil, psoerr.New(psoerr.KindCodec, "AFS.Get", errEntryBeyondEnd)
	}
	if uint64(e.Offset)+uint64(e.Size) > uint64(len(a.data)) {
		return nil, psoerr.New(psoerr.KindCodec, "AFS.Get", errEntryExtendsBeyondEnd)
	}
	return a.data[e.Offset : e.Offset+e.Size], nil
}

// NumFiles returns the number of entries in the archive.
func (a *AFS) NumFiles() int { return len(a.Entries) }
