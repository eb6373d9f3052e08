package download

import (
	"fmt"
	"strings"

	"github.com/fuzziqer/psocore/internal/dispatch"
	"github.com/fuzziqer/psocore/internal/psoerr"
	"github.com/fuzziqer/psocore/internal/pstype"
)

// Command is one decoded inbound frame, detached from any live Channel so
// the nine handler categories below can be exercised with plain values in
// tests (spec.md §4.5 "Control loop").
type Command struct {
	Opcode  uint16
	Flag    uint32
	Payload []byte
}

// Outbound is one command this session wants to send in response.
type Outbound struct {
	Opcode  uint16
	Flag    uint32
	Payload []byte
}

// Category names one of the nine inbound-command groups the control loop
// distinguishes (spec.md §4.5).
type Category int

const (
	CategoryHandshake Category = iota
	CategoryAuthentication
	CategoryConfigReconcile
	CategoryHealthCheck
	CategoryMenuNavigation
	CategoryLobbyJoin
	CategoryQuestList
	CategoryFileTransfer
	CategoryBetweenQuests
	CategoryUnknown
)

// Classify maps an inbound opcode to its control-loop category for the
// session's family. Classification is opcode-only; some opcodes (0x19) are
// reinterpreted contextually by Handle (spec.md §4.5 "unexpected 0x19
// redirect" cancellation path).
func Classify(opcode uint16, v pstype.Version) Category {
	if dispatch.IsServerInit(opcode, v.UsesV4Cipher()) {
		return CategoryHandshake
	}
	switch opcode {
	case dispatch.OpLogin93, dispatch.OpLogin9A, dispatch.OpLogin9C, dispatch.OpLogin9D,
		dispatch.OpLogin9EExtended, dispatch.OpLoginDB:
		return CategoryAuthentication
	case dispatch.OpUpdateClientConfig:
		return CategoryConfigReconcile
	case dispatch.OpMessageBoxClosed, dispatch.OpArrowUpdate:
		return CategoryHealthCheck
	case dispatch.OpMenuItemInfo, dispatch.OpMenuSelection, dispatch.OpChangeShip, dispatch.OpChangeBlock:
		return CategoryMenuNavigation
	case dispatch.OpChangeLobby, dispatch.OpPlayerData, dispatch.OpPlayerDataAlt, dispatch.OpLobbyList:
		return CategoryLobbyJoin
	case dispatch.OpQuestList, dispatch.OpQuestListAlt:
		return CategoryQuestList
	case dispatch.OpOpenFile, dispatch.OpOpenFileAlt, dispatch.OpWriteFile, dispatch.OpWriteFileAlt:
		return CategoryFileTransfer
	case dispatch.OpCreateGame, dispatch.OpCreateGameAlt, dispatch.OpCreateGameCard, dispatch.OpQuestLoadingReady,
		dispatch.OpGameCreateReady, dispatch.OpJoinGame:
		return CategoryBetweenQuests
	case dispatch.OpReconnect:
		return CategoryUnknown // contextual: cancellation redirect, see Handle
	default:
		return CategoryUnknown
	}
}

// Handle dispatches one inbound command against the session's state,
// returning zero or more commands to send in response. It never touches a
// socket or cipher: Driver owns translating Outbound values into
// Channel.Send calls, which keeps this function deterministic and
// unit-testable.
func (s *Session) Handle(cmd Command) ([]Outbound, error) {
	if cmd.Opcode == dispatch.OpReconnect && s.Phase != PhaseConnected {
		// An 0x19 outside the initial handshake is the server redirecting
		// the session elsewhere mid-flow; spec.md §4.5 treats this as an
		// unrequested cancellation of whatever transfer is in progress.
		s.PendingFiles = make(map[string]*OpenFile)
		return nil, nil
	}

	switch Classify(cmd.Opcode, s.Config.Version) {
	case CategoryHandshake:
		return s.handleHandshake(cmd)
	case CategoryAuthentication:
		return s.handleAuthentication(cmd)
	case CategoryConfigReconcile:
		return s.handleConfigReconcile(cmd)
	case CategoryHealthCheck:
		return s.handleHealthCheck(cmd)
	case CategoryMenuNavigation:
		return s.handleMenuNavigation(cmd)
	case CategoryLobbyJoin:
		return s.handleLobbyJoin(cmd)
	case CategoryQuestList:
		return s.handleQuestList(cmd)
	case CategoryFileTransfer:
		return s.handleFileTransfer(cmd)
	case CategoryBetweenQuests:
		return s.handleBetweenQuests(cmd)
	default:
		return nil, nil // unrecognised commands are ignored, not fatal
	}
}

// handleHandshake advances CONNECTED -> ENCRYPTED. Cipher installation
// itself is the Driver's job (it owns the Channel); this only updates the
// phase and does not emit a reply, matching spec.md §4.1's "server-init is
// never answered" rule.
func (s *Session) handleHandshake(cmd Command) ([]Outbound, error) {
	s.Phase = PhaseEncrypted
	return nil, nil
}

// handleAuthentication builds the family-appropriate login reply. The
// actual credential payload encoding is family-specific wire format, which
// belongs to the protocol package; here we only decide what to send and
// advance AUTH_PENDING -> AUTHENTICATED once the server's ack is seen.
func (s *Session) handleAuthentication(cmd Command) ([]Outbound, error) {
	if s.Phase == PhaseEncrypted {
		s.Phase = PhaseAuthPending
		return nil, nil // the Driver emits the actual login command directly
	}
	s.Phase = PhaseAuthenticated
	return nil, nil
}

// handleConfigReconcile stores the server's opaque client-config blob and
// acknowledges it exactly once per spec.md §4.5's sent_96 flag ("the
// session acknowledges a given client-config blob at most once").
func (s *Session) handleConfigReconcile(cmd Command) ([]Outbound, error) {
	copy(s.ClientConfig[:], cmd.Payload)
	if s.sentConfigAck {
		return nil, nil
	}
	s.sentConfigAck = true
	return []Outbound{{Opcode: dispatch.OpUpdateClientConfig, Payload: append([]byte(nil), s.ClientConfig[:]...)}}, nil
}

// handleHealthCheck answers a keep-alive/arrow-update style ping with an
// empty reply of the same opcode, per spec.md §4.5 "health check".
func (s *Session) handleHealthCheck(cmd Command) ([]Outbound, error) {
	return []Outbound{{Opcode: cmd.Opcode, Flag: cmd.Flag}}, nil
}

// handleMenuNavigation records a ship listing (0xA0) and answers it with a
// 0x10 selection when a configured ship matches; other menu-navigation
// opcodes (menu-item info, change-block) only confirm the phase, since the
// session doesn't drive block selection (spec.md §4.5 step 5,
// original_source/DownloadSession.cc case 0x07/0x1F/0xA0/0xA1). If no
// configured ship matches, AwaitingShipChoice is set and the Driver must
// resolve one interactively or fail.
func (s *Session) handleMenuNavigation(cmd Command) ([]Outbound, error) {
	if s.Phase < PhaseAuthenticated {
		return nil, psoerr.New(psoerr.KindProtocol, "menu-navigation", fmt.Errorf("menu command before authentication"))
	}
	s.Phase = PhaseInMenu

	if cmd.Opcode != dispatch.OpChangeShip {
		return nil, nil
	}

	items, err := decodeMenuItems(cmd.Payload, cmd.Flag, s.Config.Version.UsesWideText(), true)
	if err != nil {
		return nil, err
	}
	s.CurrentMenu = items

	if entry, ok := s.SelectShip(); ok {
		return []Outbound{{Opcode: dispatch.OpMenuSelection, Payload: encodeMenuSelection(entry.MenuID, entry.ItemID)}}, nil
	}
	s.awaitingShipChoice = true
	return nil, nil
}

// handleLobbyJoin captures the 0x83 lobby-list broadcast (needed later to
// pick a lobby in completeRequestCycle) or advances IN_MENU -> IN_LOBBY on
// a player-data broadcast.
func (s *Session) handleLobbyJoin(cmd Command) ([]Outbound, error) {
	if cmd.Opcode == dispatch.OpLobbyList {
		items, err := decodeMenuItems(cmd.Payload, cmd.Flag, s.Config.Version.UsesWideText(), false)
		if err != nil {
			return nil, err
		}
		s.LobbyMenu = items
		return nil, nil
	}
	s.Phase = PhaseInLobby
	return nil, nil
}

// handleQuestList decodes a quest-list listing, queues any entry not
// already done or in flight, and immediately requests the next one
// (original_source/DownloadSession.cc case 0xA2 followed by
// send_next_request).
func (s *Session) handleQuestList(cmd Command) ([]Outbound, error) {
	if s.Phase != PhaseInLobby && s.Phase != PhaseInMenu {
		return nil, psoerr.New(psoerr.KindProtocol, "quest-list", fmt.Errorf("quest list outside menu/lobby phase"))
	}

	items, err := decodeMenuItems(cmd.Payload, cmd.Flag, s.Config.Version.UsesWideText(), false)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		key := RequestKey{MenuID: item.MenuID, ItemID: item.ItemID}
		if s.DoneRequests[key] || (s.hasCurrentRequest && s.CurrentRequest == key) {
			continue
		}
		if _, exists := s.PendingRequests[key]; !exists {
			s.PendingRequests[key] = item.DisplayName
		}
	}
	return s.nextRequestOutbound(), nil
}

// handleFileTransfer decodes an open-file or write-file body and applies
// it to the session's open-file map via ApplyOpenFile / ApplyWriteChunk.
// Once both halves of the in-flight request are written, it signals
// completion the way the family expects: v1/v2 complete the request cycle
// directly, v3+ send a 0xAC completion round-trip instead (original_source/
// DownloadSession.cc cases 0x44/0xA6, 0x13/0xA7, 0xAC).
func (s *Session) handleFileTransfer(cmd Command) ([]Outbound, error) {
	switch cmd.Opcode {
	case dispatch.OpOpenFile, dispatch.OpOpenFileAlt:
		internalName, fileSize, err := decodeOpenFile(cmd.Payload)
		if err != nil {
			return nil, err
		}
		if !s.hasCurrentRequest {
			return nil, psoerr.New(psoerr.KindProtocol, "file-transfer", fmt.Errorf("open-file %q with no request in flight", internalName))
		}
		s.ApplyOpenFile(s.CurrentRequest, internalName, internalName, fileSize)
		return nil, nil

	case dispatch.OpWriteFile, dispatch.OpWriteFileAlt:
		internalName, data, _, err := decodeWriteFile(cmd.Payload)
		if err != nil {
			return nil, err
		}
		f, err := s.ApplyWriteChunk(internalName, data)
		if err != nil {
			return nil, err
		}

		var out []Outbound
		if !isV1OrV2(s.Config.Version) {
			out = append(out, Outbound{Opcode: cmd.Opcode, Flag: cmd.Flag, Payload: encodeWriteFileConfirmation(internalName)})
		}
		if !f.Done() {
			return out, nil
		}

		switch {
		case strings.HasSuffix(internalName, ".bin"):
			s.binComplete = true
		case strings.HasSuffix(internalName, ".dat"):
			s.datComplete = true
		}
		if len(s.PendingFiles) == 0 && s.binComplete && s.datComplete {
			if isV1OrV2(s.Config.Version) {
				out = append(out, s.completeRequestCycle()...)
			} else {
				out = append(out, Outbound{Opcode: dispatch.OpQuestLoadingReady})
			}
		}
		return out, nil

	default:
		return nil, nil
	}
}

// ApplyOpenFile registers a newly opened quest-file transfer for key.
func (s *Session) ApplyOpenFile(key RequestKey, internalName, localName string, totalSize uint32) {
	s.OpenFileForRequest(key, internalName, localName, totalSize)
}

// ApplyWriteChunk appends chunk bytes to internalName's open transfer and
// closes it once complete, marking its request done and queuing it onto
// CompletedFiles for the Driver to persist (spec.md §4.5 "Idempotence").
func (s *Session) ApplyWriteChunk(internalName string, chunk []byte) (*OpenFile, error) {
	f, err := s.WriteChunk(internalName, chunk)
	if err != nil {
		return nil, psoerr.New(psoerr.KindProtocol, "file-transfer", err)
	}
	if f.Done() {
		s.CloseFile(internalName)
		s.CompletedFiles = append(s.CompletedFiles, f)
	}
	return f, nil
}

// handleBetweenQuests drives the game-creation / game-entry / request-
// complete round trip: 0x67 builds and sends the create-game command for
// the current template, 0x64 marks game entry and requests the next item,
// and 0xAC (the only opcode this category receives at v3+, after the
// session itself sent it from handleFileTransfer) completes the request
// cycle. Anything else falls back to returning to the lobby
// (original_source/DownloadSession.cc cases 0x67, 0x64, 0xAC).
func (s *Session) handleBetweenQuests(cmd Command) ([]Outbound, error) {
	switch cmd.Opcode {
	case dispatch.OpGameCreateReady:
		return s.buildCreateGame(), nil
	case dispatch.OpJoinGame:
		s.Phase = PhaseInGame
		s.inGame = true
		s.binComplete = false
		s.datComplete = false
		return s.nextRequestOutbound(), nil
	case dispatch.OpQuestLoadingReady:
		if isV1OrV2(s.Config.Version) {
			return nil, psoerr.New(psoerr.KindProtocol, "between-quests", fmt.Errorf("0xAC is not valid for v1/v2"))
		}
		return s.completeRequestCycle(), nil
	default:
		s.Phase = PhaseInLobby
		s.inGame = false
		return nil, nil
	}
}
