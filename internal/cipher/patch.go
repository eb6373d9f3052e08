package cipher

// NewPatch constructs the patch-server cipher. Structurally it is the same
// 56-word stream as V2 (spec.md §3); patch servers are always little-endian
// PC-derived clients, so the endianness flag is fixed rather than exposed.
func NewPatch(seed uint32) *V2 {
	return NewV2(seed, false)
}
