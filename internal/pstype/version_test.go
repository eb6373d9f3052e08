package pstype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionPredicates(t *testing.T) {
	cases := []struct {
		v                     Version
		wide, v3, v4, patch   bool
		bigEndian             bool
		headerSize            int
	}{
		{DCV1, false, false, false, false, false, 4},
		{DCV2, false, false, false, false, false, 4},
		{PCNTE, true, false, false, false, false, 4},
		{PCV2, true, false, false, false, false, 4},
		{GCV3, false, true, false, false, true, 4},
		{GCEp3, false, true, false, false, true, 4},
		{XBV3, false, true, false, false, true, 4},
		{BBV4, true, false, true, false, false, 8},
		{Patch, false, false, false, true, false, 4},
		{PatchNTE, false, false, false, true, false, 4},
	}

	for _, c := range cases {
		t.Run(c.v.String(), func(t *testing.T) {
			assert.Equal(t, c.wide, c.v.UsesWideText())
			assert.Equal(t, c.v3, c.v.UsesV3Cipher())
			assert.Equal(t, c.v4, c.v.UsesV4Cipher())
			assert.Equal(t, c.patch, c.v.IsPatchServer())
			assert.Equal(t, c.bigEndian, c.v.BigEndianCipher())
			assert.Equal(t, c.headerSize, c.v.HeaderSize())
		})
	}
}

func TestPartitionsAreExhaustiveAndExclusive(t *testing.T) {
	all := []Version{DCNTE, DC112000, DCV1, DCV2, PCNTE, PCV2, GCNTE, GCV3, GCEp3NTE, GCEp3, XBV3, BBV4, PatchNTE, Patch}
	for _, v := range all {
		n := 0
		if v.UsesV3Cipher() {
			n++
		}
		if v.UsesV4Cipher() {
			n++
		}
		assert.LessOrEqual(t, n, 1, "version %s claims more than one cipher family", v)
	}
}
