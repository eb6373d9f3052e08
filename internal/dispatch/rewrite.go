package dispatch

import "github.com/fuzziqer/psocore/internal/pstype"

// GuildCardRewriter rewrites the guild-card number embedded in an outbound
// command's payload before it is forwarded (spec.md §4.4 "guild-card
// number rewriting"): when this core acts as a proxy, the real server's
// guild-card number is swapped for the locally-issued one heading toward
// the client, and vice versa on the return path. Keyed by opcode, since
// the field offset is family- and command-specific.
type GuildCardRewriter func(payload []byte, from, to uint32)

// RewriteTable maps (family, opcode) to the rewriter for commands that
// embed a guild-card number.
type RewriteTable map[pstype.Version]map[uint16]GuildCardRewriter

// Rewrite applies the registered rewriter for (family, opcode), if any,
// mutating payload in place. It is a no-op when no rewriter is registered.
func (t RewriteTable) Rewrite(family pstype.Version, opcode uint16, payload []byte, from, to uint32) {
	fam, ok := t[family]
	if !ok {
		return
	}
	if rw, ok := fam[opcode]; ok && rw != nil {
		rw(payload, from, to)
	}
}

// SplitReconnectTarget is one family's redirect entry within a version-
// split reconnect command (spec.md §4.4 "version-split reconnect"): a
// single port accepting multiple client families sends one redirect per
// candidate family; each client interprets only its own entry.
type SplitReconnectTarget struct {
	Family pstype.Version
	IPv4   [4]byte
	Port   uint16
}
