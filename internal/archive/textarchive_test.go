package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuzziqer/psocore/internal/pstype"
)

func TestTextArchive_SerializeParseRoundTrip(t *testing.T) {
	ta := &TextArchive{
		Collections: [][]string{
			{"hello", "world"},
			{"single entry"},
		},
		KeyboardSelectorWidth: 4,
	}
	var kb [7][16]uint16
	for y := range kb {
		for x := range kb[y] {
			kb[y][x] = uint16(y*16 + x)
		}
	}
	ta.Keyboards = append(ta.Keyboards, kb)

	for _, big := range []bool{true, false} {
		pr2, pr3, err := ta.Serialize(big, 0xABCD, pstype.LangEnglish)
		require.NoError(t, err)
		assert.NotEmpty(t, pr3)

		parsed, err := ParseTextArchive(pr2, big, pstype.LangEnglish)
		require.NoError(t, err)
		assert.Equal(t, ta.Collections, parsed.Collections)
		assert.Equal(t, ta.KeyboardSelectorWidth, parsed.KeyboardSelectorWidth)
		require.Len(t, parsed.Keyboards, 1)
		assert.Equal(t, kb, parsed.Keyboards[0])
	}
}

func TestParseTextArchive_RejectsTruncatedInput(t *testing.T) {
	_, err := ParseTextArchive([]byte{1, 2, 3}, false, pstype.LangEnglish)
	require.Error(t, err)
}

func TestTextArchive_JapaneseRoundTrip(t *testing.T) {
	ta := &TextArchive{Collections: [][]string{{"こんにちは"}}}
	pr2, _, err := ta.Serialize(false, 0x1234, pstype.LangJapanese)
	require.NoError(t, err)

	parsed, err := ParseTextArchive(pr2, false, pstype.LangJapanese)
	require.NoError(t, err)
	assert.Equal(t, ta.Collections, parsed.Collections)
}
