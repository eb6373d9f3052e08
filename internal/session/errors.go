package session

import "errors"

var errChunkOutOfOrder = errors.New("write-file chunk arrived out of order")
