package download

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fuzziqer/psocore/internal/cipher"
	"github.com/fuzziqer/psocore/internal/dispatch"
	"github.com/fuzziqer/psocore/internal/protocol"
	"github.com/fuzziqer/psocore/internal/psoerr"
)

// Driver runs a Session's control loop against a live connection (spec.md
// §4.5, §5: one cooperative task per connection, synchronous non-blocking
// handlers). It owns the Channel and translates the Session's Outbound
// decisions into framed writes; Session itself stays socket-free so its
// decision logic is unit-testable without a Driver.
type Driver struct {
	Session *Session
	Log     *slog.Logger

	conn  net.Conn
	ch    *protocol.Channel
	stdin *bufio.Reader // lazily created; only used by resolveShipChoice
}

// NewDriver constructs a Driver for session, logging to log (or
// slog.Default if nil).
func NewDriver(s *Session, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.Default()
	}
	return &Driver{Session: s, Log: log}
}

// Dial opens the TCP connection to the configured host/port and wraps it
// in a framed Channel. The channel starts unencrypted until the server's
// init command installs ciphers.
func (d *Driver) Dial(ctx context.Context) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, dialTimeout)
		defer cancel()
	}
	var dialer net.Dialer
	addr := fmt.Sprintf("%s:%d", d.Session.Config.Host, d.Session.Config.Port)
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return psoerr.New(psoerr.KindTransient, "dial", err)
	}
	d.conn = conn
	d.ch = protocol.NewChannel(conn, d.Session.Config.Version)
	return nil
}

// Close releases the underlying connection.
func (d *Driver) Close() error {
	if d.ch == nil {
		return nil
	}
	return d.ch.Disconnect()
}

// Run drives the control loop until ctx is cancelled, the server closes
// the connection, every applicable game-config template has been
// exhausted, or a protocol error occurs (spec.md §5). It returns nil on a
// clean run completion.
func (d *Driver) Run(ctx context.Context) error {
	type recvResult struct {
		opcode  uint16
		flag    uint32
		payload []byte
		err     error
	}
	results := make(chan recvResult, 1)

	for {
		select {
		case <-ctx.Done():
			return psoerr.New(psoerr.KindTransient, "run", ctx.Err())
		default:
		}

		go func() {
			opcode, flag, payload, err := d.ch.Recv()
			results <- recvResult{opcode, flag, payload, err}
		}()

		var res recvResult
		select {
		case <-ctx.Done():
			d.Close()
			return psoerr.New(psoerr.KindTransient, "run", ctx.Err())
		case res = <-results:
		}

		if res.err != nil {
			return res.err
		}

		if err := d.handleFrame(res.opcode, res.flag, res.payload); err != nil {
			return err
		}

		if _, more := d.Session.CurrentTemplate(); !more && d.Session.Phase == PhaseInLobby {
			d.Log.Info("game-config catalog exhausted, run complete")
			return nil
		}
	}
}

// handleFrame installs ciphers on a server-init command, hands the decoded
// command to Session.Handle, sends whatever replies it returns, persists
// any quest payload that just finished transferring, resolves a pending
// ship choice if one is outstanding, and emits the family-specific login
// command as soon as the server-init handshake leaves the session in
// ENCRYPTED (or an auth command has moved it to AUTH_PENDING) (spec.md
// §4.5 steps 1-5).
func (d *Driver) handleFrame(opcode uint16, flag uint32, payload []byte) error {
	v := d.Session.Config.Version
	wasEncrypted := d.ch.Encrypted()

	if dispatch.IsServerInit(opcode, v.UsesV4Cipher()) && !wasEncrypted {
		if err := d.installCiphers(payload); err != nil {
			return err
		}
	}

	replies, err := d.Session.Handle(Command{Opcode: opcode, Flag: flag, Payload: payload})
	if err != nil {
		return err
	}
	if err := d.sendAll(replies); err != nil {
		return err
	}

	if err := d.saveCompletedFiles(); err != nil {
		return err
	}

	if d.Session.AwaitingShipChoice() {
		reply, err := d.resolveShipChoice()
		if err != nil {
			return err
		}
		if err := d.sendAll([]Outbound{reply}); err != nil {
			return err
		}
	}

	if d.Session.Phase == PhaseEncrypted || d.Session.Phase == PhaseAuthPending {
		login, loginOp, err := BuildLoginCommand(d.Session.Config, opcode == dispatch.OpServerInitV2A)
		if err != nil {
			return err
		}
		if err := d.ch.Send(loginOp, 0, login); err != nil {
			return psoerr.New(psoerr.KindTransient, "send login", err)
		}
		d.Session.Phase = PhaseAuthenticated
	}

	return nil
}

// sendAll writes each Outbound in order, wrapping the first transport
// error encountered.
func (d *Driver) sendAll(outs []Outbound) error {
	for _, out := range outs {
		if err := d.ch.Send(out.Opcode, out.Flag, out.Payload); err != nil {
			return psoerr.New(psoerr.KindTransient, "send reply", err)
		}
	}
	return nil
}

// saveCompletedFiles drains Session.CompletedFiles, writing each one to
// Config.OutputDir under the name spec.md §6 specifies (BuildFilename).
func (d *Driver) saveCompletedFiles() error {
	for _, f := range d.Session.CompletedFiles {
		outName := BuildFilename(f.Request, time.Now().UnixMicro(), d.Session.Config.Version, d.Session.Config.Language, f.InternalFilename)
		outPath := filepath.Join(d.Session.Config.OutputDir, outName)
		if err := os.WriteFile(outPath, f.Data, 0o644); err != nil {
			return psoerr.New(psoerr.KindTransient, "save file", err)
		}
		d.Log.Info("saved quest payload", "internal_name", f.InternalFilename, "path", outPath, "size", len(f.Data))
	}
	d.Session.CompletedFiles = nil
	return nil
}

// resolveShipChoice picks a ship from Session.CurrentMenu when no
// configured ship matched: interactively via stdin if Config.Interactive,
// otherwise a hard failure (original_source/DownloadSession.cc's
// interactive-prompt / "unhandled menu selection" fallback on the ship
// select case).
func (d *Driver) resolveShipChoice() (Outbound, error) {
	if !d.Session.Config.Interactive {
		return Outbound{}, psoerr.New(psoerr.KindProtocol, "menu-navigation", fmt.Errorf("no configured ship matched and --interactive was not set"))
	}
	if d.stdin == nil {
		d.stdin = bufio.NewReader(os.Stdin)
	}
	for {
		fmt.Println("Ship Select menu:")
		for i, entry := range d.Session.CurrentMenu {
			fmt.Printf("%d: (%08X %08X) %s\n", i+1, entry.MenuID, entry.ItemID, StripColorCodes(entry.DisplayName))
		}
		fmt.Print("Choose response index: ")
		line, err := d.stdin.ReadString('\n')
		if err != nil {
			return Outbound{}, psoerr.New(psoerr.KindTransient, "interactive ship choice", err)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || idx < 1 || idx > len(d.Session.CurrentMenu) {
			continue
		}
		return d.Session.ResolveShipChoice(d.Session.CurrentMenu[idx-1]), nil
	}
}

// installCiphers extracts the server/client key pair from a server-init
// payload and installs the family-appropriate cipher pair on the channel
// (spec.md §4.1, original_source/DownloadSession.cc on_message 0x02/0x17/
// 0x91/0x9B/0x03 case).
func (d *Driver) installCiphers(payload []byte) error {
	serverKey, clientKey, err := protocol.ParseServerInitKeys(payload)
	if err != nil {
		return err
	}

	v := d.Session.Config.Version
	switch {
	case v.UsesV4Cipher():
		return psoerr.New(psoerr.KindCrypto, "server-init", fmt.Errorf("BB key-file cipher install not supported by this driver"))
	case v.UsesV3Cipher():
		d.ch.SetCiphers(cipher.NewV3(serverKey, v.BigEndianCipher()), cipher.NewV3(clientKey, v.BigEndianCipher()))
	default:
		d.ch.SetCiphers(cipher.NewV2(serverKey, v.BigEndianCipher()), cipher.NewV2(clientKey, v.BigEndianCipher()))
	}
	d.Log.Info("installed session ciphers", "version", v, "server_key", fmt.Sprintf("0x%08X", serverKey), "client_key", fmt.Sprintf("0x%08X", clientKey))
	return nil
}

// dialTimeout bounds Driver.Dial when no deadline is set by the caller's
// context; spec.md doesn't name a value so this mirrors a conservative TCP
// connect timeout.
const dialTimeout = 10 * time.Second
