package download

import (
	"fmt"
	"strings"

	"github.com/fuzziqer/psocore/internal/pstype"
)

// SanitiseFilename replaces every character (rune) outside [A-Za-z0-9._-]
// with a single '_'
// (spec.md §6 "Persisted state").
func SanitiseFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// BuildFilename constructs the on-disk filename for a completed quest
// payload: "<request_id>_<epoch_us>_<version>_<lang_char>_<sanitised-name>"
// (spec.md §6). request_id is key's (menu_id,item_id) packed into one
// 16-hex-digit value, matching original_source/DownloadSession.cc's
// "{:016X}" formatting of current_request (menu_id<<32|item_id) — a
// single shared numeric id, not the per-file uint32 this function
// previously (incorrectly) took. lang_char is the single-character code
// from pstype.Language.Char, not its multi-character String() form.
func BuildFilename(key RequestKey, epochMicros int64, v pstype.Version, lang pstype.Language, internalName string) string {
	requestID := uint64(key.MenuID)<<32 | uint64(key.ItemID)
	return fmt.Sprintf("%016X_%d_%s_%c_%s", requestID, epochMicros, v, lang.Char(), SanitiseFilename(internalName))
}

// StripColorCodes removes PSO's inline colour-control sequences
// ("\tC" followed by one selector byte) from a menu display name, so it
// can be compared against the configured ship-name set (spec.md §4.5
// step 5). A bare '\t' not followed by a 'C'/'c' and a selector byte is
// left untouched, since it isn't a colour code.
func StripColorCodes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\t' && i+1 < len(runes) && (runes[i+1] == 'C' || runes[i+1] == 'c') && i+2 < len(runes) {
			i += 2 // skip the 'C' and the selector byte following it
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}
