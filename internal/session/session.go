// Package session defines the per-connection state a dispatcher consults
// and mutates: negotiated family, guild-card number, client-config blob,
// lobby/game placement, and in-flight chunked file transfers (spec.md §3).
package session

import (
	"sync"

	"github.com/fuzziqer/psocore/internal/protocol"
	"github.com/fuzziqer/psocore/internal/pstype"
)

// State is the session lifecycle (spec.md §3): created in PreAuth,
// transitions through EncryptionEstablished/Authenticated/InMenu/InGame;
// Disconnected is terminal.
type State int

const (
	PreAuth State = iota
	EncryptionEstablished
	Authenticated
	InMenu
	InGame
	Disconnected
)

// ChunkSize is the maximum bytes a single WriteFile command carries; a
// chunk shorter than this closes the pending transfer (spec.md §3).
const ChunkSize = 1024

// PendingFile tracks one in-flight chunked file transfer, opened by an
// OpenFile command and grown by a stream of WriteFile commands.
type PendingFile struct {
	InternalFilename string
	LocalFilename    string
	TotalSize        int
	Data             []byte
}

// Done reports whether every chunk up to TotalSize has arrived.
func (p *PendingFile) Done() bool {
	return len(p.Data) >= p.TotalSize
}

// WriteChunk appends a chunk at the given index, enforcing the invariant
// that chunk k covers byte range [1024k, 1024k+len) and arrives in order.
func (p *PendingFile) WriteChunk(index int, chunk []byte) error {
	want := index * ChunkSize
	if want != len(p.Data) {
		return errChunkOutOfOrder
	}
	p.Data = append(p.Data, chunk...)
	return nil
}

// Session owns a channel plus everything a dispatcher needs to carry
// state across commands on that channel.
type Session struct {
	mu sync.Mutex

	Channel *protocol.Channel
	Family  pstype.Version

	GuildCardNumber uint32
	ClientConfig    [0x20]byte

	LobbyID int32
	GameID  int32
	Loading bool

	State State

	PendingRequest *PendingFile
	PendingFiles   map[string]*PendingFile

	shouldDisconnect bool
}

// New creates a session in PreAuth state, wrapping an already-constructed
// channel (ciphers are installed later, by the dispatcher, once it
// recognizes the family's server-init command).
func New(ch *protocol.Channel, family pstype.Version) *Session {
	return &Session{
		Channel:      ch,
		Family:       family,
		State:        PreAuth,
		PendingFiles: make(map[string]*PendingFile),
	}
}

// MarkDisconnect requests that the dispatcher close this session after the
// current handler returns (spec.md §5 cancellation semantics).
func (s *Session) MarkDisconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shouldDisconnect = true
}

// ShouldDisconnect reports whether MarkDisconnect has been called.
func (s *Session) ShouldDisconnect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shouldDisconnect
}
