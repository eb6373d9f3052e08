package main

import (
	"fmt"

	"github.com/fuzziqer/psocore/internal/pstype"
)

// parseVersion maps the --version flag's string form to pstype.Version.
// Spelling mirrors pstype.Version.String() so the flag and the logged
// family name always agree.
func parseVersion(s string) (pstype.Version, error) {
	switch s {
	case "dc-nte":
		return pstype.DCNTE, nil
	case "dc-11-2000":
		return pstype.DC112000, nil
	case "dc-v1":
		return pstype.DCV1, nil
	case "dc-v2":
		return pstype.DCV2, nil
	case "pc-nte":
		return pstype.PCNTE, nil
	case "pc-v2":
		return pstype.PCV2, nil
	case "gc-nte":
		return pstype.GCNTE, nil
	case "gc-v3":
		return pstype.GCV3, nil
	case "gc-ep3-nte":
		return pstype.GCEp3NTE, nil
	case "gc-ep3":
		return pstype.GCEp3, nil
	case "xb-v3":
		return pstype.XBV3, nil
	case "bb-v4":
		return pstype.BBV4, nil
	default:
		return 0, fmt.Errorf("unrecognised --version %q", s)
	}
}

// parseLanguage maps the --language flag's string form to pstype.Language.
func parseLanguage(s string) (pstype.Language, error) {
	switch s {
	case "ja":
		return pstype.LangJapanese, nil
	case "en":
		return pstype.LangEnglish, nil
	case "de":
		return pstype.LangGerman, nil
	case "fr":
		return pstype.LangFrench, nil
	case "es":
		return pstype.LangSpanish, nil
	case "zh-cn":
		return pstype.LangChineseSimplified, nil
	case "zh-tw":
		return pstype.LangChineseTraditional, nil
	case "ko":
		return pstype.LangKorean, nil
	default:
		return 0, fmt.Errorf("unrecognised --language %q", s)
	}
}
