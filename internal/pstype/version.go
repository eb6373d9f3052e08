// Package pstype defines the client-family and language enumerations shared
// by every other package in the core: ciphers, framing, the dispatcher, and
// the download session all key off these two small closed sets.
package pstype

import "fmt"

// Version identifies a client family's wire protocol revision.
type Version uint8

const (
	DCNTE Version = iota
	DC112000
	DCV1
	DCV2
	PCNTE
	PCV2
	GCNTE
	GCV3
	GCEp3NTE
	GCEp3
	XBV3
	BBV4
	PatchNTE
	Patch
)

// String returns a short human-readable name, used in log lines and in the
// download session's "[DownloadSession:<version>]" failure prefix.
func (v Version) String() string {
	switch v {
	case DCNTE:
		return "dc-nte"
	case DC112000:
		return "dc-11-2000"
	case DCV1:
		return "dc-v1"
	case DCV2:
		return "dc-v2"
	case PCNTE:
		return "pc-nte"
	case PCV2:
		return "pc-v2"
	case GCNTE:
		return "gc-nte"
	case GCV3:
		return "gc-v3"
	case GCEp3NTE:
		return "gc-ep3-nte"
	case GCEp3:
		return "gc-ep3"
	case XBV3:
		return "xb-v3"
	case BBV4:
		return "bb-v4"
	case PatchNTE:
		return "patch-nte"
	case Patch:
		return "patch"
	default:
		return fmt.Sprintf("version(%d)", uint8(v))
	}
}

// UsesWideText reports whether this family encodes text as 16-bit
// codepoints (UTF-16LE), per spec.md §3. Only the PC and BB families do.
func (v Version) UsesWideText() bool {
	switch v {
	case PCNTE, PCV2, BBV4:
		return true
	default:
		return false
	}
}

// UsesV3Cipher reports whether this family uses the v3 ("GC") cipher.
// GC and XB families do; everything else that isn't v4 uses v2.
func (v Version) UsesV3Cipher() bool {
	switch v {
	case GCNTE, GCV3, GCEp3NTE, GCEp3, XBV3:
		return true
	default:
		return false
	}
}

// UsesV4Cipher reports whether this family uses the v4 ("BB") cipher.
// Only BB does.
func (v Version) UsesV4Cipher() bool {
	return v == BBV4
}

// IsPatchServer reports whether this family is one of the two patch-server
// variants, which use a v2 cipher but a distinct handler table.
func (v Version) IsPatchServer() bool {
	return v == PatchNTE || v == Patch
}

// HeaderSize returns the framed-header size in bytes for this family:
// 8 for BB, 4 for everything else (spec.md §3).
func (v Version) HeaderSize() int {
	if v == BBV4 {
		return 8
	}
	return 4
}

// BigEndianCipher reports whether this family's v2/v3 cipher stream words
// are consumed big-endian against payload bytes. This is a property of the
// cipher, not the header (spec.md §4.1): GC and XB are big-endian games,
// everything else is little-endian.
func (v Version) BigEndianCipher() bool {
	switch v {
	case GCNTE, GCV3, GCEp3NTE, GCEp3, XBV3:
		return true
	default:
		return false
	}
}

// Language is one of the eight closed language codes (spec.md §3).
type Language uint8

const (
	LangJapanese Language = iota
	LangEnglish
	LangGerman
	LangFrench
	LangSpanish
	LangChineseSimplified
	LangChineseTraditional
	LangKorean
)

func (l Language) String() string {
	names := [...]string{"ja", "en", "de", "fr", "es", "zh-cn", "zh-tw", "ko"}
	if int(l) < len(names) {
		return names[l]
	}
	return fmt.Sprintf("lang(%d)", uint8(l))
}

// Char returns the single-character language code spec.md §6 uses in the
// persisted-filename format ("<lang_char>"). original_source's
// char_for_language_code was not present in the retrieved pack (only call
// sites formatting its result with "%c" survive), so this picks the first
// letter of each language's English name (Japanese, English, German,
// French, Spanish), 'c'/'t' for simplified/traditional Chinese, and 'k'
// for Korean.
func (l Language) Char() byte {
	chars := [...]byte{'j', 'e', 'g', 'f', 's', 'c', 't', 'k'}
	if int(l) < len(chars) {
		return chars[l]
	}
	return '?'
}
