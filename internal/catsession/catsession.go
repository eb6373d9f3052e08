// Package catsession implements the passive listener (SPEC_FULL.md §4.8,
// spec.md §1: "a variant of the same framing contract... specified
// implicitly via §4.1"). A CatSession sits between a real client and a
// real server, decoding and logging every frame that passes in either
// direction and forwarding it on unmodified — it never dispatches to a
// handler table the way the core server does.
//
// Grounded on original_source/CatSession.cc: on_channel_input installs
// ciphers the moment a server-init command (0x02/0x17/0x91/0x9B, or
// 0x03/0x9B for BB) is seen, then print_data-dumps every command
// before relaying it. prepend_command_header's re-encryption step
// corresponds to this package re-framing onto the outbound Channel.
package catsession

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/fuzziqer/psocore/internal/cipher"
	"github.com/fuzziqer/psocore/internal/dispatch"
	"github.com/fuzziqer/psocore/internal/protocol"
	"github.com/fuzziqer/psocore/internal/psoerr"
	"github.com/fuzziqer/psocore/internal/pstype"
)

// CatSession relays framed commands between a client-facing channel and a
// server-facing channel, logging each one. Both channels must already be
// connected (dialed/accepted); CatSession only owns the relay loop.
type CatSession struct {
	Client  *protocol.Channel
	Server  *protocol.Channel
	Version pstype.Version
	Log     *slog.Logger

	// BBKeyFile holds a BB key file supplied by the caller. installCiphers
	// does not pass it to cipher.NewV4: for BB it returns a KindCrypto
	// error whether or not this field is set.
	BBKeyFile *[cipher.V4KeyFileWords]uint32
}

// New constructs a CatSession relaying between client and server, both
// already wrapped as protocol.Channel for the same family v.
func New(client, server *protocol.Channel, v pstype.Version, log *slog.Logger) *CatSession {
	if log == nil {
		log = slog.Default()
	}
	return &CatSession{Client: client, Server: server, Version: v, Log: log}
}

// direction names which leg a frame is relayed across.
type direction int

const (
	serverToClient direction = iota
	clientToServer
)

func (d direction) String() string {
	if d == serverToClient {
		return "server->client"
	}
	return "client->server"
}

// Run relays frames in both directions until ctx is cancelled or either
// leg errors, matching spec.md §5's one-task-per-connection model: both
// legs of one CatSession share a single goroutine pair, synchronized by a
// shared error channel rather than locks.
func (c *CatSession) Run(ctx context.Context) error {
	errc := make(chan error, 2)
	go func() { errc <- c.pump(ctx, c.Server, c.Client, serverToClient) }()
	go func() { errc <- c.pump(ctx, c.Client, c.Server, clientToServer) }()

	select {
	case <-ctx.Done():
		c.Client.Disconnect()
		c.Server.Disconnect()
		return psoerr.New(psoerr.KindTransient, "catsession", ctx.Err())
	case err := <-errc:
		c.Client.Disconnect()
		c.Server.Disconnect()
		return err
	}
}

// pump copies frames from src to dst, installing ciphers on src and dst
// the moment a server-init command is observed travelling server->client
// (the direction it is always sent in).
func (c *CatSession) pump(ctx context.Context, src, dst *protocol.Channel, dir direction) error {
	for {
		if ctx.Err() != nil {
			return psoerr.New(psoerr.KindTransient, "catsession pump", ctx.Err())
		}

		opcode, flag, payload, err := src.Recv()
		if err != nil {
			return err
		}

		if dir == serverToClient && dispatch.IsServerInit(opcode, c.Version.UsesV4Cipher()) && !src.Encrypted() {
			if err := c.installCiphers(payload); err != nil {
				return err
			}
		}

		c.Log.Info("relayed command",
			"direction", dir,
			"version", c.Version,
			"opcode", fmt.Sprintf("0x%02X", opcode),
			"flag", flag,
			"size", len(payload),
			"data", hex.EncodeToString(truncate(payload, 64)),
		)

		if err := dst.Send(opcode, flag, payload); err != nil {
			return err
		}
	}
}

// installCiphers mirrors original_source/CatSession.cc's
// on_channel_input: both the client-facing and server-facing channel get
// their own cipher pair keyed from the same seed fields, so each leg
// encrypts/decrypts independently even though the logical payload is
// identical on both sides. The client-facing leg stands in for the server,
// so its pair is mirrored: it receives under the client key and sends
// under the server key.
func (c *CatSession) installCiphers(serverInitPayload []byte) error {
	serverKey, clientKey, err := protocol.ParseServerInitKeys(serverInitPayload)
	if err != nil {
		return err
	}

	switch {
	case c.Version.UsesV4Cipher():
		if c.BBKeyFile == nil {
			return psoerr.New(psoerr.KindCrypto, "catsession", fmt.Errorf("BB relay requires a key file"))
		}
		return psoerr.New(psoerr.KindCrypto, "catsession", fmt.Errorf("BB cipher install not wired: key material is not a uint32 seed pair"))
	case c.Version.UsesV3Cipher():
		c.Server.SetCiphers(cipher.NewV3(serverKey, c.Version.BigEndianCipher()), cipher.NewV3(clientKey, c.Version.BigEndianCipher()))
		c.Client.SetCiphers(cipher.NewV3(clientKey, c.Version.BigEndianCipher()), cipher.NewV3(serverKey, c.Version.BigEndianCipher()))
	default:
		c.Server.SetCiphers(cipher.NewV2(serverKey, c.Version.BigEndianCipher()), cipher.NewV2(clientKey, c.Version.BigEndianCipher()))
		c.Client.SetCiphers(cipher.NewV2(clientKey, c.Version.BigEndianCipher()), cipher.NewV2(serverKey, c.Version.BigEndianCipher()))
	}
	c.Log.Info("installed relay ciphers", "version", c.Version)
	return nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
