package download

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "connected", PhaseConnected.String())
	assert.Equal(t, "in-game", PhaseInGame.String())
	assert.Equal(t, "unknown", Phase(99).String())
}

func TestOpenFile_Done(t *testing.T) {
	f := &OpenFile{TotalSize: 4}
	assert.False(t, f.Done())
	f.Data = []byte{1, 2, 3}
	assert.False(t, f.Done())
	f.Data = append(f.Data, 4)
	assert.True(t, f.Done())
}
