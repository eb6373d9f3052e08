// Package download implements the download session (spec.md §4.5,
// component C5): a client-impersonating driver that logs into a remote
// PSO server, walks its menus, and archives its quest catalog to disk.
// It is the one component that drives the protocol as a client rather
// than serving it; its control loop is grounded on the handshake/auth/
// menu/file-transfer state machine in
// original_source/DownloadSession.{hh,cc}, composed with the teacher's
// context-driven connection-loop idiom (internal/gameserver's per-
// connection goroutine, generalized here to a single outbound session).
package download

import "github.com/fuzziqer/psocore/internal/pstype"

// Credentials holds whichever subset of fields a client family's login
// sequence needs; unused fields are left zero (spec.md §4.5).
type Credentials struct {
	SerialNumber string
	AccessKey    string
	Username     string
	Password     string
	XBGamertag   string
	XBUserID     string
	XBAccountID  string
}

// Config is the download session's immutable configuration, fixed for
// the lifetime of a run.
type Config struct {
	Host            string
	Port            int
	OutputDir       string
	Version         pstype.Version
	Language        pstype.Language
	BBKeyFile       string
	Creds           Credentials
	Ships           []string // display names to auto-select, colour codes stripped
	OnComplete      []string // chat commands to run after each completed download
	Interactive     bool
	ShowCommandData bool
}
