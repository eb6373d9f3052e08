package download

import "github.com/fuzziqer/psocore/internal/pstype"

// Mode is a game-creation mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeBattle
	ModeChallenge
	ModeSolo
)

// Episode is a game-creation episode selector.
type Episode int

const (
	Ep1 Episode = iota
	Ep2
	Ep4
)

// GameConfigTemplate is one entry of the built-in nine-element catalog of
// game-creation templates (spec.md §4.5: the cross product of
// {NORMAL,BATTLE,CHALLENGE,SOLO} x {EP1,EP2,EP4} that any version could
// plausibly host). V1OK/V2OK/V3OK gate which client families may use it.
type GameConfigTemplate struct {
	Mode    Mode
	Episode Episode
	V1OK    bool
	V2OK    bool
	V3OK    bool
}

// Templates is the static, built-in catalog in iteration order.
var Templates = []GameConfigTemplate{
	{Mode: ModeNormal, Episode: Ep1, V1OK: true, V2OK: true, V3OK: true},
	{Mode: ModeNormal, Episode: Ep2, V1OK: false, V2OK: true, V3OK: true},
	{Mode: ModeNormal, Episode: Ep4, V1OK: false, V2OK: false, V3OK: true},
	{Mode: ModeBattle, Episode: Ep1, V1OK: true, V2OK: true, V3OK: true},
	{Mode: ModeBattle, Episode: Ep2, V1OK: false, V2OK: true, V3OK: true},
	{Mode: ModeChallenge, Episode: Ep1, V1OK: false, V2OK: true, V3OK: true},
	{Mode: ModeChallenge, Episode: Ep2, V1OK: false, V2OK: false, V3OK: true},
	{Mode: ModeSolo, Episode: Ep1, V1OK: true, V2OK: true, V3OK: true},
	{Mode: ModeSolo, Episode: Ep2, V1OK: false, V2OK: true, V3OK: true},
}

// AppliesTo reports whether this template is usable by the given family,
// per the V1OK/V2OK/V3OK generation gate (GCNTE/GCV3/GCEp3*/XBV3/BBV4 all
// count as "v3 or later").
func (t GameConfigTemplate) AppliesTo(v pstype.Version) bool {
	switch v {
	case pstype.DCNTE, pstype.DC112000, pstype.DCV1:
		return t.V1OK
	case pstype.DCV2, pstype.PCNTE, pstype.PCV2:
		return t.V2OK
	default:
		return t.V3OK
	}
}

// ApplicableTemplates returns the indices into Templates that apply to v,
// in catalog order.
func ApplicableTemplates(v pstype.Version) []int {
	var out []int
	for i, t := range Templates {
		if t.AppliesTo(v) {
			out = append(out, i)
		}
	}
	return out
}
