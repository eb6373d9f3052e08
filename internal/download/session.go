package download

import (
	"fmt"

	"github.com/fuzziqer/psocore/internal/dispatch"
	"github.com/fuzziqer/psocore/internal/pstype"
)

// Session holds a download session's full per-connection state (spec.md
// §4.5 "Per-connection state"). It is deliberately free of any net.Conn
// or channel reference so its decision logic — which ship to pick, which
// quest to request next, when a request is done — is unit-testable
// without a socket.
type Session struct {
	Config Config

	HardwareID      string
	GuildCardNumber uint32
	ClientConfig    [0x20]byte
	Phase           Phase

	sentConfigAck bool
	inGame        bool

	CurrentMenu   []MenuEntry
	LobbyMenu     []MenuEntry // captured from the 0x83 lobby-list broadcast
	PendingFiles  map[string]*OpenFile // keyed by internal filename
	DoneRequests  map[RequestKey]bool

	// CompletedFiles queues every OpenFile that ApplyWriteChunk just
	// closed, so the socket-owning Driver can write it to disk without
	// Session itself touching a filesystem. Driver drains this after
	// every Handle call.
	CompletedFiles []*OpenFile

	// PendingRequests mirrors original_source/DownloadSession.cc's
	// pending_requests map: quest entries seen in a quest-list listing
	// that haven't been requested yet, keyed the same way as
	// DoneRequests. CurrentRequest/hasCurrentRequest track the one
	// in-flight request so a later quest-list listing doesn't re-queue it
	// before it closes (DoneRequests itself is only set once CloseFile
	// sees both halves closed, not at send time as the original does;
	// see DESIGN.md).
	PendingRequests   map[RequestKey]string
	CurrentRequest    RequestKey
	hasCurrentRequest bool

	// shouldRequestCategoryList mirrors should_request_category_list:
	// set whenever the session needs to ask the server for a fresh quest
	// list (on first entering a game, and again after advancing to the
	// next game-config template).
	shouldRequestCategoryList bool

	// awaitingShipChoice is set when a ship listing had no entry matching
	// Config.Ships, so the Driver must resolve one interactively (or fail)
	// before the control loop can keep going.
	awaitingShipChoice bool

	binComplete bool
	datComplete bool

	CurrentTemplateIndex int
	applicableTemplates  []int
}

// NewSession constructs a Session ready to begin its control loop.
func NewSession(cfg Config) *Session {
	return &Session{
		Config:                    cfg,
		Phase:                     PhaseConnected,
		PendingFiles:              make(map[string]*OpenFile),
		DoneRequests:              make(map[RequestKey]bool),
		PendingRequests:           make(map[RequestKey]string),
		shouldRequestCategoryList: true,
		applicableTemplates:       ApplicableTemplates(cfg.Version),
	}
}

// CurrentTemplate returns the game-config template the session should
// use for its next game-creation command, or false if every applicable
// template has been exhausted (spec.md §4.5 step 9).
func (s *Session) CurrentTemplate() (GameConfigTemplate, bool) {
	if s.CurrentTemplateIndex >= len(s.applicableTemplates) {
		return GameConfigTemplate{}, false
	}
	return Templates[s.applicableTemplates[s.CurrentTemplateIndex]], true
}

// AdvanceTemplate moves to the next applicable game-config template.
// Returns false once the catalog is exhausted, signalling a clean run
// completion (spec.md §6 CLI exit code 0).
func (s *Session) AdvanceTemplate() bool {
	s.CurrentTemplateIndex++
	return s.CurrentTemplateIndex < len(s.applicableTemplates)
}

// SelectShip scans the current menu for an entry whose colour-code-
// stripped display name is in the configured ship set, returning the
// first match. ok is false when nothing matches, in which case the
// caller falls back to interactive prompting or fails (spec.md §4.5
// step 5).
func (s *Session) SelectShip() (MenuEntry, bool) {
	wanted := make(map[string]bool, len(s.Config.Ships))
	for _, name := range s.Config.Ships {
		wanted[name] = true
	}
	for _, entry := range s.CurrentMenu {
		if wanted[StripColorCodes(entry.DisplayName)] {
			return entry, true
		}
	}
	return MenuEntry{}, false
}

// BeginRequest records that key's file transfer has started, returning
// false without side effects if it was already completed this run
// (spec.md §4.5 "Idempotence").
func (s *Session) BeginRequest(key RequestKey) bool {
	return !s.DoneRequests[key]
}

// OpenFileForRequest registers a new in-flight file transfer.
func (s *Session) OpenFileForRequest(key RequestKey, internalName, localName string, totalSize uint32) *OpenFile {
	f := &OpenFile{
		InternalFilename: internalName,
		LocalFilename:    localName,
		TotalSize:        totalSize,
		Request:          key,
	}
	s.PendingFiles[internalName] = f
	return f
}

// WriteChunk appends a chunk to the named open file and reports whether
// the file is now complete.
func (s *Session) WriteChunk(internalName string, chunk []byte) (*OpenFile, error) {
	f, ok := s.PendingFiles[internalName]
	if !ok {
		return nil, fmt.Errorf("write for unopened file %q", internalName)
	}
	f.Data = append(f.Data, chunk...)
	return f, nil
}

// CloseFile removes internalName from the pending set. If both halves of
// its request (a .bin and a .dat file sharing the same RequestKey) are
// gone, the request is marked done (spec.md §4.5 step 8 "treat the quest
// as done").
func (s *Session) CloseFile(internalName string) {
	f, ok := s.PendingFiles[internalName]
	if !ok {
		return
	}
	delete(s.PendingFiles, internalName)

	for _, other := range s.PendingFiles {
		if other.Request == f.Request {
			return // sibling half still open
		}
	}
	s.DoneRequests[f.Request] = true
	if s.hasCurrentRequest && s.CurrentRequest == f.Request {
		s.hasCurrentRequest = false
	}
}

// PopNextRequest removes and returns the lowest-keyed entry of
// PendingRequests, mirroring pending_requests.begin() against the
// original's ordered std::map (Go's map has no iteration order, so this
// scans for the minimum key instead). It records the result as the
// session's in-flight request.
func (s *Session) PopNextRequest() (RequestKey, string, bool) {
	if len(s.PendingRequests) == 0 {
		return RequestKey{}, "", false
	}
	var best RequestKey
	first := true
	for key := range s.PendingRequests {
		if first || key.MenuID < best.MenuID || (key.MenuID == best.MenuID && key.ItemID < best.ItemID) {
			best, first = key, false
		}
	}
	name := s.PendingRequests[best]
	delete(s.PendingRequests, best)
	s.CurrentRequest = best
	s.hasCurrentRequest = true
	return best, name, true
}

// AwaitingShipChoice reports whether the last ship listing had no entry
// matching Config.Ships, so the Driver must resolve one interactively (or
// fail) before the control loop can keep going (spec.md §4.5 step 5,
// original_source/DownloadSession.cc's "interactive" / "unhandled menu
// selection" fallback on the 0x07/0x1F/0xA0/0xA1 case).
func (s *Session) AwaitingShipChoice() bool {
	return s.awaitingShipChoice
}

// ResolveShipChoice answers a pending ship choice, clearing
// AwaitingShipChoice and returning the 0x10 reply to send.
func (s *Session) ResolveShipChoice(entry MenuEntry) Outbound {
	s.awaitingShipChoice = false
	return Outbound{Opcode: dispatch.OpMenuSelection, Payload: encodeMenuSelection(entry.MenuID, entry.ItemID)}
}

// nextRequestOutbound is send_next_request(): request a fresh quest list
// if one is due, else pop and send the next pending quest request, else
// fall through to completeRequestCycle (original_source/
// DownloadSession.cc send_next_request).
func (s *Session) nextRequestOutbound() []Outbound {
	if s.shouldRequestCategoryList {
		s.shouldRequestCategoryList = false
		out := []Outbound{{Opcode: dispatch.OpQuestList, Flag: 0}}
		if s.Config.Version.UsesV4Cipher() {
			out = append(out, Outbound{Opcode: dispatch.OpQuestList, Flag: 1})
		}
		return out
	}
	if key, _, ok := s.PopNextRequest(); ok {
		return []Outbound{{Opcode: dispatch.OpMenuSelection, Payload: encodeMenuSelection(key.MenuID, key.ItemID)}}
	}
	return s.completeRequestCycle()
}

// completeRequestCycle is on_request_complete(): run the configured
// completion chat commands, leave the game, select the lobby menu's
// middle entry, and — once nothing is left pending — advance to the next
// applicable game-config template (original_source/DownloadSession.cc
// on_request_complete).
func (s *Session) completeRequestCycle() []Outbound {
	var out []Outbound
	for _, cmd := range s.Config.OnComplete {
		out = append(out, Outbound{Opcode: dispatch.OpChat, Payload: encodeChatCommand(cmd)})
	}

	s.inGame = false
	s.Phase = PhaseInLobby

	if len(s.LobbyMenu) > 0 {
		mid := s.LobbyMenu[len(s.LobbyMenu)/2]
		out = append(out, Outbound{Opcode: dispatch.OpChangeLobby, Payload: encodeLobbySelection(mid.MenuID, mid.ItemID)})
	}

	if len(s.PendingRequests) == 0 {
		if s.AdvanceTemplate() {
			s.shouldRequestCategoryList = true
		}
		// Otherwise CurrentTemplate() now reports exhausted, and Driver's
		// Run loop exits the next time Phase settles at PhaseInLobby.
	}
	return out
}

// buildCreateGame builds the game-creation command for the session's
// current template (original_source/DownloadSession.cc case 0x67).
func (s *Session) buildCreateGame() []Outbound {
	tmpl, ok := s.CurrentTemplate()
	if !ok {
		return nil
	}
	v := s.Config.Version
	isV1 := v == pstype.DCNTE || v == pstype.DC112000 || v == pstype.DCV1
	bb := v.UsesV4Cipher()

	payload := encodeCreateGame(
		randomName(), randomName(),
		tmpl.Mode == ModeBattle, tmpl.Mode == ModeChallenge,
		episodeWireValue(tmpl.Episode, v),
		tmpl.Mode == ModeSolo, bb,
	)
	op := dispatch.OpCreateGame
	if isV1 {
		op = dispatch.OpCreateGameAlt
	}
	return []Outbound{{Opcode: op, Payload: payload}}
}

// isV1OrV2 reports whether v is a DC/PC family, mirroring
// original_source's is_v1_or_v2 (everything that isn't v3 or v4).
func isV1OrV2(v pstype.Version) bool {
	return !v.UsesV3Cipher() && !v.UsesV4Cipher()
}

// UsesExtendedLogin reports whether the family must (or may) use the
// extended (0x9E) login form (spec.md §4.4 state-machine note: "always
// for XB, optional for GC").
func UsesExtendedLogin(v pstype.Version) bool {
	switch v {
	case pstype.XBV3, pstype.GCNTE, pstype.GCV3, pstype.GCEp3NTE, pstype.GCEp3, pstype.BBV4:
		return true
	default:
		return false
	}
}

// RequiresLicenseVerification reports whether the family's login flow
// needs a separate "verify license" (DB) step before the main login
// command (spec.md §4.4: "v3 only").
func RequiresLicenseVerification(v pstype.Version) bool {
	switch v {
	case pstype.GCNTE, pstype.GCV3, pstype.GCEp3NTE, pstype.GCEp3, pstype.XBV3:
		return true
	default:
		return false
	}
}
