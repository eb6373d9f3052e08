// Package dispatch implements the command dispatcher (spec.md §4.4,
// component C4): a 256-entry, per-family table mapping opcode low byte to
// a handler, check_size enforcement, and the top-level process() loop.
// Grounded on the teacher's internal/login and internal/gameserver
// switch-based handler dispatch, generalized from a single family's
// switch statement into the spec's per-family table-of-tables shape.
package dispatch

import (
	"fmt"
	"log/slog"

	"github.com/fuzziqer/psocore/internal/psoerr"
	"github.com/fuzziqer/psocore/internal/session"
	"github.com/fuzziqer/psocore/internal/pstype"
)

// Handler processes one command body. It must not block (spec.md §5): all
// outbound I/O it initiates goes through session.Channel.Send, which writes
// the framed command straight to the connection (there is no send queue).
type Handler func(s *session.Session, opcode uint16, flag uint32, payload []byte) error

// NoOp is the "accept and drop" handler: it validates nothing and does
// nothing, for commands the dispatcher must acknowledge receiving but that
// carry no actionable payload.
func NoOp(*session.Session, uint16, uint32, []byte) error { return nil }

// Table is a per-family opcode table. A nil entry means "unimplemented":
// process() logs and disconnects.
type Table map[uint16]Handler

// Dispatcher holds one Table per client family and drives process().
type Dispatcher struct {
	Tables map[pstype.Version]Table
	Log    *slog.Logger
}

// New constructs a Dispatcher with an empty table set. Callers populate
// Tables per family before serving connections.
func New(log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{Tables: make(map[pstype.Version]Table), Log: log}
}

// Process is the dispatcher's top level (spec.md §4.4):
//  1. log the received command,
//  2. look up the handler for s.Family,
//  3. disconnect on a nil slot,
//  4. call the handler, converting a panic into the same "mark for
//     disconnect and log" outcome as a returned error.
func (d *Dispatcher) Process(s *session.Session, opcode uint16, flag uint32, payload []byte) {
	d.Log.Debug("recv command",
		"family", s.Family,
		"opcode", fmt.Sprintf("0x%02X", opcode),
		"flag", flag,
		"size", len(payload),
	)

	table := d.Tables[s.Family]
	handler, ok := table[opcode]
	if !ok || handler == nil {
		d.Log.Warn("unimplemented opcode, closing session",
			"family", s.Family, "opcode", fmt.Sprintf("0x%02X", opcode))
		s.MarkDisconnect()
		return
	}

	if err := d.call(handler, s, opcode, flag, payload); err != nil {
		d.Log.Warn("handler failed, closing session",
			"family", s.Family, "opcode", fmt.Sprintf("0x%02X", opcode), "error", err)
		s.MarkDisconnect()
	}
}

// call invokes handler, recovering a panic as the dispatcher's equivalent
// of the spec's "handlers fail by raising an exception-like error."
func (d *Dispatcher) call(h Handler, s *session.Session, opcode uint16, flag uint32, payload []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = psoerr.New(psoerr.KindProtocol, "handler panic", fmt.Errorf("%v", r))
		}
	}()
	return h(s, opcode, flag, payload)
}

// CheckSize enforces the size band a handler declares for its payload: it
// fails if received < min ("too small") or received > max ("too large").
// Fixed-size commands pass min == max == sizeof(struct); variable commands
// pass max = 0xFFFF.
func CheckSize(received, min, max int) error {
	if received < min {
		return psoerr.New(psoerr.KindProtocol, "check_size", fmt.Errorf("too small: %d < %d", received, min))
	}
	if received > max {
		return psoerr.New(psoerr.KindProtocol, "check_size", fmt.Errorf("too large: %d > %d", received, max))
	}
	return nil
}
