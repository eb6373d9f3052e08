package savefile

import "errors"

var (
	errTooShort         = errors.New("file shorter than fixed header")
	errDataSizeOverflow = errors.New("declared data size exceeds remaining file length")
	errBadChecksum      = errors.New("unencrypted header checksum is incorrect")
	errNotSega          = errors.New("file is not for a Sega game")
	errNotGameCube      = errors.New("file is not for a GameCube game")
	errNotPSO           = errors.New("file is not for Phantasy Star Online")
)
