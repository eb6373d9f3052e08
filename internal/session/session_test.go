package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingFile_WriteChunkInOrder(t *testing.T) {
	pf := &PendingFile{InternalFilename: "quest.bin", TotalSize: ChunkSize + 10}

	require.NoError(t, pf.WriteChunk(0, make([]byte, ChunkSize)))
	assert.False(t, pf.Done())

	require.NoError(t, pf.WriteChunk(1, make([]byte, 10)))
	assert.True(t, pf.Done())
}

func TestPendingFile_WriteChunkRejectsOutOfOrder(t *testing.T) {
	pf := &PendingFile{InternalFilename: "quest.dat", TotalSize: ChunkSize * 2}

	err := pf.WriteChunk(1, make([]byte, ChunkSize))
	require.Error(t, err)
}

func TestSession_MarkDisconnectIsObservable(t *testing.T) {
	s := New(nil, 0)
	assert.False(t, s.ShouldDisconnect())
	s.MarkDisconnect()
	assert.True(t, s.ShouldDisconnect())
}
