package archive

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/fuzziqer/psocore/internal/pstype"
)

// textEncoding returns the byte encoding a text archive's string table
// uses for the given client language. original_source/TextArchive.cc
// treats collection strings as raw client-native bytes; real clients
// pair each language with the single- or double-byte codepage their
// platform ships (Shift-JIS for Japanese, EUC-KR for Korean, GBK/Big5
// for the two Chinese variants, Windows-1252 for the Latin-script
// languages), so a round trip through Go's UTF-8 strings needs an
// explicit per-language decoder/encoder pair rather than a raw cast.
func textEncoding(lang pstype.Language) encoding.Encoding {
	switch lang {
	case pstype.LangJapanese:
		return japanese.ShiftJIS
	case pstype.LangKorean:
		return korean.EUCKR
	case pstype.LangChineseSimplified:
		return simplifiedchinese.GBK
	case pstype.LangChineseTraditional:
		return traditionalchinese.Big5
	default:
		return charmap.Windows1252
	}
}

// decodeText converts client-native bytes to a UTF-8 Go string.
func decodeText(lang pstype.Language, b []byte) (string, error) {
	out, err := textEncoding(lang).NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// encodeText converts a UTF-8 Go string to client-native bytes.
func encodeText(lang pstype.Language, s string) ([]byte, error) {
	return textEncoding(lang).NewEncoder().Bytes([]byte(s))
}
