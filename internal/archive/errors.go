package archive

import "errors"

var (
	errTruncatedHeader       = errors.New("truncated archive header")
	errNotAFS                = errors.New("file is not an AFS archive")
	errEntryIndexOutOfRange  = errors.New("entry index out of range")
	errEntryBeyondEnd        = errors.New("entry begins beyond end of archive")
	errEntryExtendsBeyondEnd = errors.New("entry extends beyond end of archive")
	errBadTextArchiveSeed    = errors.New("could not recover text archive header seed")
	errTruncatedQST          = errors.New("truncated QST record")
	errUnsupportedQSTCommand = errors.New("unsupported QST command in replay stream")
	errMisalignedRelocation  = errors.New("relocation offset is not word-aligned")
	errRelocationTooFar      = errors.New("relocation offset too far from previous to encode")
	errMultipleBin           = errors.New("qst contains multiple bin files")
	errMultipleDat           = errors.New("qst contains multiple dat files")
	errNonBinDatFile         = errors.New("qst contains non-bin, non-dat file")
	errWriteForUnopenedFile  = errors.New("qst contains write command for non-open file")
	errInvalidWriteCommand   = errors.New("qst contains invalid write command")
	errUnevenChunks          = errors.New("qst contains uneven chunks out of order")
	errChunksOutOfOrder      = errors.New("qst contains chunks out of order")
	errBinSizeMismatch       = errors.New("bin file does not match expected size")
	errDatSizeMismatch       = errors.New("dat file does not match expected size")
)
