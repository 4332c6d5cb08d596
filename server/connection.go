// File: server/connection.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Per-connection state machine: upgrade handshake, frame decoding and the
// outbound reply queue. A Connection is owned by the event loop and is
// never touched from another goroutine.

package server

import (
	"bytes"
	"errors"
	"io"
	"net"

	"github.com/eapache/queue"
	"github.com/google/uuid"
	"github.com/momentics/wsreactor/api"
	"github.com/momentics/wsreactor/control"
	"github.com/momentics/wsreactor/protocol"
	"go.uber.org/zap"
)

// ErrPeerClosed is returned by Read when the client closed its side of the
// stream. It ends the connection without counting as a failure.
var ErrPeerClosed = errors.New("peer closed connection")

// Connection is one accepted client.
type Connection struct {
	token  api.Token
	id     uuid.UUID
	remote net.Addr
	socket api.Socket

	state    connState
	headers  protocol.Headers
	interest api.Interest

	outbound *queue.Queue // of *protocol.Frame
	inbound  []byte       // undecoded bytes read from the socket
	pending  []byte       // encoded bytes not yet accepted by the socket
	scratch  []byte

	closeReceived bool
	closeQueued   bool

	cfg     *Config
	metrics *control.Metrics
	log     *zap.Logger
}

func newConnection(token api.Token, sock api.Socket, remote net.Addr, scratch []byte, cfg *Config, m *control.Metrics, log *zap.Logger) *Connection {
	id := uuid.New()
	return &Connection{
		token:    token,
		id:       id,
		remote:   remote,
		socket:   sock,
		state:    awaitingHandshake{parser: protocol.NewRequestParser()},
		headers:  make(protocol.Headers),
		interest: api.Readable,
		outbound: queue.New(),
		scratch:  scratch,
		cfg:      cfg,
		metrics:  m,
		log: log.Named("conn").With(
			zap.Uint64("token", uint64(token)),
			zap.Stringer("conn_id", id),
		),
	}
}

// Token returns the registry key.
func (c *Connection) Token() api.Token { return c.token }

// ID returns the correlation id used in log lines.
func (c *Connection) ID() uuid.UUID { return c.id }

// RemoteAddr is the peer address reported by accept.
func (c *Connection) RemoteAddr() net.Addr { return c.remote }

// State reports the current stage.
func (c *Connection) State() StateKind { return c.state.kind() }

// Interest is the readiness the connection wants to be woken for next.
func (c *Connection) Interest() api.Interest { return c.interest }

// Headers returns the request headers collected during the handshake.
func (c *Connection) Headers() protocol.Headers { return c.headers }

// Queued returns the number of frames waiting to be encoded.
func (c *Connection) Queued() int { return c.outbound.Length() }

// Read handles a readable event.
func (c *Connection) Read() error {
	switch st := c.state.(type) {
	case awaitingHandshake:
		return c.readHandshake(st)
	case connected:
		return c.readFrames()
	default:
		// The 101 response is still being written; input waits.
		return nil
	}
}

// Write handles a writable event.
func (c *Connection) Write() error {
	switch c.state.(type) {
	case handshakeResponse:
		return c.writeHandshake()
	case connected:
		return c.writeFrames()
	default:
		return nil
	}
}

func (c *Connection) readHandshake(st awaitingHandshake) error {
	for {
		n, err := c.socket.Read(c.scratch)
		if n > 0 {
			res, perr := st.parser.Feed(c.scratch[:n], c.headers)
			if perr != nil {
				return api.WrapError(api.ErrCodeProtocol, "parse upgrade request", perr)
			}
			if res.HeadersComplete {
				if !res.Upgrade {
					return api.NewError(api.ErrCodeProtocol, "request is not a websocket upgrade")
				}
				// Frames pipelined behind the request head.
				c.inbound = append(c.inbound, c.scratch[res.Consumed:n]...)
				c.state = handshakeResponse{}
				c.interest = api.Writable
				c.log.Debug("upgrade request received", zap.Int("headers", len(c.headers)))
				return nil
			}
		}
		switch {
		case err == nil:
		case errors.Is(err, api.ErrWouldBlock):
			return nil
		case errors.Is(err, io.EOF):
			return ErrPeerClosed
		default:
			return api.WrapError(api.ErrCodeIO, "read upgrade request", err)
		}
	}
}

func (c *Connection) writeHandshake() error {
	if c.pending == nil {
		resp, err := protocol.HandshakeResponse(c.headers)
		if err != nil {
			return api.WrapError(api.ErrCodeProtocol, "compose handshake response", err)
		}
		c.pending = resp
	}
	done, err := c.flush()
	if err != nil {
		return err
	}
	if !done {
		return nil
	}

	c.state = connected{}
	c.interest = api.Readable
	c.metrics.Handshakes.Inc()
	c.log.Debug("handshake complete")

	if len(c.inbound) > 0 {
		if err := c.decodeInbound(); err != nil {
			return err
		}
		c.interest = api.Writable
	}
	return nil
}

func (c *Connection) readFrames() error {
	// Reading stops at Close: anything after it is ignored, and a FIN
	// behind it must not cost the peer its Close reply.
	for !c.closeReceived {
		n, err := c.socket.Read(c.scratch)
		if n > 0 {
			c.inbound = append(c.inbound, c.scratch[:n]...)
			if derr := c.decodeInbound(); derr != nil {
				return derr
			}
		}
		if err == nil || c.closeReceived {
			continue
		}
		if errors.Is(err, api.ErrWouldBlock) {
			break
		}
		if errors.Is(err, io.EOF) {
			return ErrPeerClosed
		}
		return api.WrapError(api.ErrCodeIO, "read frame", err)
	}
	// Always pass through a write turn so queued replies get flushed.
	c.interest = api.Writable
	return nil
}

// decodeInbound decodes every complete frame in c.inbound and keeps the
// partial tail.
func (c *Connection) decodeInbound() error {
	off := 0
	for off < len(c.inbound) && !c.closeReceived {
		size, err := protocol.FrameSize(c.inbound[off:], c.cfg.MaxFramePayload)
		if err != nil {
			return api.WrapError(api.ErrCodeDecode, "decode frame", err)
		}
		if size == 0 || int64(len(c.inbound)-off) < size {
			break
		}
		f, err := protocol.DecodeLimit(bytes.NewReader(c.inbound[off:off+int(size)]), c.cfg.MaxFramePayload)
		if err != nil {
			return api.WrapError(api.ErrCodeDecode, "decode frame", err)
		}
		off += int(size)
		c.handleFrame(f)
	}
	if c.closeReceived {
		c.inbound = nil
		return nil
	}
	c.inbound = append(c.inbound[:0], c.inbound[off:]...)
	return nil
}

func (c *Connection) handleFrame(f *protocol.Frame) {
	c.metrics.FramesReceived.WithLabelValues(f.Opcode.String()).Inc()
	if ce := c.log.Check(zap.DebugLevel, "frame received"); ce != nil {
		ce.Write(zap.Stringer("opcode", f.Opcode), zap.Int("len", len(f.Payload)))
	}
	switch f.Opcode {
	case protocol.OpcodeText:
		c.outbound.Add(protocol.FromText(c.cfg.TextReply))
	case protocol.OpcodePing:
		c.outbound.Add(protocol.Pong(f))
	case protocol.OpcodeClose:
		c.outbound.Add(protocol.CloseFrom(f))
		c.closeReceived = true
	}
}

func (c *Connection) writeFrames() error {
	for c.outbound.Length() > 0 {
		f := c.outbound.Remove().(*protocol.Frame)
		c.pending = protocol.AppendFrame(c.pending, f)
		c.metrics.FramesSent.WithLabelValues(f.Opcode.String()).Inc()
		if f.IsClose() {
			c.closeQueued = true
		}
	}
	done, err := c.flush()
	if err != nil {
		return err
	}
	switch {
	case !done:
		c.interest = api.Writable
	case c.closeQueued:
		// Close went out: wait for the peer to hang up, read nothing more.
		c.interest = api.Hangup
	default:
		c.interest = api.Readable
	}
	return nil
}

// flush writes c.pending until it is empty or the socket would block.
func (c *Connection) flush() (bool, error) {
	for len(c.pending) > 0 {
		n, err := c.socket.Write(c.pending)
		c.pending = c.pending[n:]
		if err != nil {
			if errors.Is(err, api.ErrWouldBlock) {
				return false, nil
			}
			return false, api.WrapError(api.ErrCodeIO, "write", err)
		}
	}
	c.pending = nil
	return true, nil
}

// close shuts the socket down and releases it.
func (c *Connection) close() {
	if err := c.socket.Shutdown(); err != nil {
		c.log.Debug("shutdown failed", zap.Error(err))
	}
	if err := c.socket.Close(); err != nil {
		c.log.Debug("close failed", zap.Error(err))
	}
}
