package download

import (
	"testing"

	"github.com/fuzziqer/psocore/internal/pstype"
	"github.com/stretchr/testify/assert"
)

func TestSanitiseFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Normal Quest", "Normal_Quest"},
		{"quest/with\\slashes", "quest_with_slashes"},
		{"already-ok_Name.123", "already-ok_Name.123"},
		{"", ""},
		{"\tC1colored name", "_C1colored_name"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SanitiseFilename(c.in))
	}
}

func TestBuildFilename(t *testing.T) {
	got := BuildFilename(RequestKey{MenuID: 0, ItemID: 42}, 1_700_000_000_000_000, pstype.GCV3, pstype.LangEnglish, "quest name!")
	assert.Equal(t, "000000000000002A_1700000000000000_gc-v3_e_quest_name_", got)
}

func TestStripColorCodes(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Plain Ship", "Plain Ship"},
		{"\tCGGreen Ship", "Green Ship"},
		{"\tC1Red\tC2Blue", "RedBlue"},
		{"trailing\t", "trailing\t"}, // a \t with no following selector byte is left alone
	}
	for _, c := range cases {
		assert.Equal(t, c.want, StripColorCodes(c.in))
	}
}
