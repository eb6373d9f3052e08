package psoerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesWrappedKind(t *testing.T) {
	base := errors.New("short read")
	err := New(KindFramed, "read command header", base)
	wrapped := fmt.Errorf("session recv loop: %w", err)

	assert.True(t, Is(wrapped, KindFramed))
	assert.False(t, Is(wrapped, KindCodec))
	assert.True(t, errors.Is(wrapped, base))
}

func TestError_MessageIncludesKindOpAndCause(t *testing.T) {
	err := New(KindCodec, "decompress quest body", errors.New("truncated stream"))
	assert.Contains(t, err.Error(), "codec")
	assert.Contains(t, err.Error(), "decompress quest body")
	assert.Contains(t, err.Error(), "truncated stream")
}

func TestError_NilCauseOmitsColon(t *testing.T) {
	err := New(KindAuth, "reject duplicate serial number", nil)
	assert.Equal(t, "auth: reject duplicate serial number", err.Error())
}
