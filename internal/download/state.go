package download

// Phase names the download session's top-level state machine (spec.md
// §4.5's canonical v4/BB flow, generalized across families: the opcode
// numbers differ per family but the phase sequence does not).
type Phase int

const (
	PhaseConnected Phase = iota
	PhaseEncrypted
	PhaseAuthPending
	PhaseAuthenticated
	PhaseInMenu
	PhaseInLobby
	PhaseInGame
)

func (p Phase) String() string {
	switch p {
	case PhaseConnected:
		return "connected"
	case PhaseEncrypted:
		return "encrypted"
	case PhaseAuthPending:
		return "auth-pending"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseInMenu:
		return "in-menu"
	case PhaseInLobby:
		return "in-lobby"
	case PhaseInGame:
		return "in-game"
	default:
		return "unknown"
	}
}

// RequestKey identifies one quest-selection request, used to de-duplicate
// completed downloads (spec.md §4.5 "Idempotence").
type RequestKey struct {
	MenuID uint32
	ItemID uint32
}

// MenuEntry is one selectable item in the session's current menu
// snapshot (ship list, quest category list, or quest list).
type MenuEntry struct {
	MenuID      uint32
	ItemID      uint32
	DisplayName string
}

// OpenFile mirrors session.PendingFile for the download session's own
// bookkeeping of an in-flight quest payload (spec.md §4.5 "open-file
// map"). It is a distinct type from session.PendingFile because the
// download session additionally needs to know which RequestKey it
// belongs to, to mark that request done once both halves close.
type OpenFile struct {
	InternalFilename string
	LocalFilename    string
	TotalSize        uint32
	Data             []byte
	Request          RequestKey
}

// Done reports whether every byte of the file has been received.
func (f *OpenFile) Done() bool { return uint32(len(f.Data)) >= f.TotalSize }
