package download

import (
	"testing"

	"github.com/fuzziqer/psocore/internal/dispatch"
	"github.com/fuzziqer/psocore/internal/pstype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	v := pstype.GCV3
	assert.Equal(t, CategoryHandshake, Classify(dispatch.OpServerInitV3, v))
	assert.Equal(t, CategoryAuthentication, Classify(dispatch.OpLogin9EExtended, v))
	assert.Equal(t, CategoryConfigReconcile, Classify(dispatch.OpUpdateClientConfig, v))
	assert.Equal(t, CategoryHealthCheck, Classify(dispatch.OpMessageBoxClosed, v))
	assert.Equal(t, CategoryMenuNavigation, Classify(dispatch.OpMenuSelection, v))
	assert.Equal(t, CategoryLobbyJoin, Classify(dispatch.OpChangeLobby, v))
	assert.Equal(t, CategoryQuestList, Classify(dispatch.OpQuestList, v))
	assert.Equal(t, CategoryFileTransfer, Classify(dispatch.OpOpenFile, v))
	assert.Equal(t, CategoryBetweenQuests, Classify(dispatch.OpCreateGame, v))
}

func TestSession_Handle_HandshakeAdvancesPhase(t *testing.T) {
	s := newTestSession()
	_, err := s.Handle(Command{Opcode: dispatch.OpServerInitV3})
	require.NoError(t, err)
	assert.Equal(t, PhaseEncrypted, s.Phase)
}

func TestSession_Handle_ConfigReconcileAckedOnce(t *testing.T) {
	s := newTestSession()
	s.Phase = PhaseAuthenticated

	out, err := s.Handle(Command{Opcode: dispatch.OpUpdateClientConfig, Payload: []byte{1, 2, 3}})
	require.NoError(t, err)
	require.Len(t, out, 1)

	out, err = s.Handle(Command{Opcode: dispatch.OpUpdateClientConfig, Payload: []byte{4, 5, 6}})
	require.NoError(t, err)
	assert.Empty(t, out, "a second config blob must not be re-acked")
}

func TestSession_Handle_HealthCheckEchoesOpcode(t *testing.T) {
	s := newTestSession()
	out, err := s.Handle(Command{Opcode: dispatch.OpArrowUpdate, Flag: 7})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, dispatch.OpArrowUpdate, out[0].Opcode)
	assert.Equal(t, uint32(7), out[0].Flag)
}

func TestSession_Handle_MenuNavigationRejectedBeforeAuth(t *testing.T) {
	s := newTestSession()
	_, err := s.Handle(Command{Opcode: dispatch.OpMenuSelection})
	assert.Error(t, err)
}

func TestSession_Handle_MenuNavigationAdvancesPhase(t *testing.T) {
	s := newTestSession()
	s.Phase = PhaseAuthenticated
	_, err := s.Handle(Command{Opcode: dispatch.OpMenuSelection})
	require.NoError(t, err)
	assert.Equal(t, PhaseInMenu, s.Phase)
}

func TestSession_Handle_UnexpectedReconnectCancelsTransfers(t *testing.T) {
	s := newTestSession()
	s.Phase = PhaseInLobby
	s.OpenFileForRequest(RequestKey{MenuID: 1, ItemID: 1}, "quest.bin", "local.bin", 100)
	require.Len(t, s.PendingFiles, 1)

	_, err := s.Handle(Command{Opcode: dispatch.OpReconnect})
	require.NoError(t, err)
	assert.Empty(t, s.PendingFiles, "an unrequested 0x19 cancels in-flight transfers")
}

func TestSession_Handle_ReconnectDuringHandshakeIsNotACancellation(t *testing.T) {
	s := newTestSession()
	assert.Equal(t, PhaseConnected, s.Phase)
	_, err := s.Handle(Command{Opcode: dispatch.OpReconnect})
	require.NoError(t, err)
}

func TestSession_ApplyWriteChunk_ClosesRequestOnCompletion(t *testing.T) {
	s := newTestSession()
	key := RequestKey{MenuID: 2, ItemID: 9}
	s.ApplyOpenFile(key, "quest.bin", "local.bin", 3)

	f, err := s.ApplyWriteChunk("quest.bin", []byte{1, 2})
	require.NoError(t, err)
	assert.False(t, f.Done())
	assert.False(t, s.DoneRequests[key])

	f, err = s.ApplyWriteChunk("quest.bin", []byte{3})
	require.NoError(t, err)
	assert.True(t, f.Done())
	assert.True(t, s.DoneRequests[key])
}

func TestSession_Handle_BetweenQuestsTransitions(t *testing.T) {
	s := newTestSession()
	s.Phase = PhaseInLobby

	_, err := s.Handle(Command{Opcode: dispatch.OpJoinGame})
	require.NoError(t, err)
	assert.Equal(t, PhaseInGame, s.Phase)

	_, err = s.Handle(Command{Opcode: dispatch.OpQuestLoadingReady})
	require.NoError(t, err)
	assert.Equal(t, PhaseInLobby, s.Phase)
}
