package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/fuzziqer/psocore/internal/cipher"
	"github.com/fuzziqer/psocore/internal/psoerr"
	"github.com/fuzziqer/psocore/internal/pstype"
)

const maxFrameSize = 64 * 1024

// Channel is a symmetric duplex framed transport: the same type represents
// both the client side and the server side of a connection (spec.md §4.1).
// Direction only determines which cipher slot is "recv" vs "send" and
// which handler table a dispatcher consults.
type Channel struct {
	conn    net.Conn
	r       *bufio.Reader
	version pstype.Version

	recvCipher cipher.Stream
	sendCipher cipher.Stream

	closed bool
}

// NewChannel wraps conn as a framed channel for the given client family.
// Both cipher slots start nil: the channel frames in clear until the
// dispatcher recognizes a server-init command and installs ciphers via
// SetCiphers.
func NewChannel(conn net.Conn, v pstype.Version) *Channel {
	return &Channel{conn: conn, r: bufio.NewReader(conn), version: v}
}

// SetCiphers installs the recv/send cipher pair, completing the
// clear-to-encrypted transition (spec.md §4.1). The server-init command
// itself is always exchanged in clear; every command from this point on is
// framed encrypted.
func (c *Channel) SetCiphers(recv, send cipher.Stream) {
	c.recvCipher = recv
	c.sendCipher = send
}

// Encrypted reports whether both cipher slots are installed.
func (c *Channel) Encrypted() bool {
	return c.recvCipher != nil && c.sendCipher != nil
}

// Recv reads one complete frame and returns its logical payload (header
// and padding stripped).
func (c *Channel) Recv() (opcode uint16, flag uint32, payload []byte, err error) {
	if c.closed {
		return 0, 0, nil, psoerr.New(psoerr.KindTransient, "recv", net.ErrClosed)
	}

	headerSize := c.version.HeaderSize()
	raw := make([]byte, headerSize)
	if _, err := io.ReadFull(c.r, raw); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, 0, nil, psoerr.New(psoerr.KindTransient, "recv: read header", io.EOF)
		}
		return 0, 0, nil, psoerr.New(psoerr.KindTransient, "recv: read header", err)
	}

	if c.recvCipher != nil {
		if err := c.recvCipher.Decrypt(raw); err != nil {
			return 0, 0, nil, psoerr.New(psoerr.KindCrypto, "recv: decrypt header", err)
		}
	}

	h := decodeHeader(c.version, raw)
	if int(h.Size) < headerSize {
		return 0, 0, nil, psoerr.New(psoerr.KindFramed, "recv", fmt.Errorf("size-too-small: %d < %d", h.Size, headerSize))
	}
	if int(h.Size) > maxFrameSize {
		return 0, 0, nil, psoerr.New(psoerr.KindFramed, "recv", fmt.Errorf("size-too-large: %d > %d", h.Size, maxFrameSize))
	}

	bodySize := int(h.Size) - headerSize
	blockSize := 1
	if c.recvCipher != nil {
		blockSize = c.recvCipher.BlockSize()
	}
	paddedSize := roundUp(bodySize, blockSize)

	body := make([]byte, paddedSize)
	if paddedSize > 0 {
		if _, err := io.ReadFull(c.r, body); err != nil {
			return 0, 0, nil, psoerr.New(psoerr.KindTransient, "recv: read body", err)
		}
		if c.recvCipher != nil {
			if err := c.recvCipher.Decrypt(body); err != nil {
				return 0, 0, nil, psoerr.New(psoerr.KindCrypto, "recv: decrypt body", err)
			}
		}
	}

	return h.Opcode(c.version), h.Flag, body[:bodySize], nil
}

// Send prepends the family's header (size = header + payload, rounded up
// to the send cipher's block size with zero padding), encrypts, and
// writes the frame.
func (c *Channel) Send(opcode uint16, flag uint32, payload []byte) error {
	if c.closed {
		return psoerr.New(psoerr.KindTransient, "send", net.ErrClosed)
	}

	headerSize := c.version.HeaderSize()
	blockSize := 1
	if c.sendCipher != nil {
		blockSize = c.sendCipher.BlockSize()
	}

	logicalSize := headerSize + len(payload)
	frame := make([]byte, headerSize+roundUp(len(payload), blockSize))
	copy(frame[headerSize:], payload)

	command := opcode
	if c.version != pstype.BBV4 {
		command = opcode & 0xFF
	}
	encodeHeader(c.version, Header{Size: uint16(logicalSize), Command: command, Flag: flag}, frame[:headerSize])

	if c.sendCipher != nil {
		if err := c.sendCipher.Encrypt(frame); err != nil {
			return psoerr.New(psoerr.KindCrypto, "send: encrypt frame", err)
		}
	}

	if _, err := c.conn.Write(frame); err != nil {
		return psoerr.New(psoerr.KindTransient, "send: write", err)
	}
	return nil
}

// Disconnect closes the underlying socket. Subsequent Recv/Send fail.
func (c *Channel) Disconnect() error {
	c.closed = true
	return c.conn.Close()
}

func roundUp(n, block int) int {
	if block <= 1 {
		return n
	}
	rem := n % block
	if rem == 0 {
		return n
	}
	return n + (block - rem)
}
