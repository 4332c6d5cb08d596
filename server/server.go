// File: server/server.go
// Package server implements a single-threaded, readiness-driven WebSocket
// server: one listener, one multiplexer, and a registry of connections
// keyed by token.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"errors"
	"fmt"
	"net"

	"github.com/momentics/wsreactor/adapters"
	"github.com/momentics/wsreactor/api"
	"github.com/momentics/wsreactor/control"
	"github.com/momentics/wsreactor/pool"
	"github.com/momentics/wsreactor/reactor"
	"github.com/momentics/wsreactor/transport/tcp"
	"go.uber.org/zap"
)

// listenerToken identifies the listening socket; connections count from 1.
const listenerToken api.Token = 0

// ErrAcceptInvariant is returned by Serve when the listener was reported
// readable but had no connection to accept.
var ErrAcceptInvariant = errors.New("listener readable but no connection pending")

// errHangup marks a teardown requested by the multiplexer.
var errHangup = errors.New("hangup")

// Server owns the listener, the multiplexer and every connection.
type Server struct {
	cfg *Config

	listener api.Listener
	poller   api.Poller
	loop     *adapters.PollerAdapter
	events   []api.Event

	conns     map[api.Token]*Connection
	nextToken api.Token
	buffers   *pool.BytePool

	log      *zap.Logger
	metrics  *control.Metrics
	logLimit *control.LogLimiter
}

// New binds the listener and registers it with the multiplexer. A nil cfg
// means DefaultConfig.
func New(cfg *Config, opts ...ServerOption) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.withDefaults()
	s := &Server{
		cfg:       cfg,
		conns:     make(map[api.Token]*Connection),
		nextToken: listenerToken + 1,
		buffers:   pool.NewBytePool(cfg.ReadBufferSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.log = s.log.Named("server")
	if s.metrics == nil {
		s.metrics = control.NewMetrics(nil)
	}
	s.logLimit = control.NewLogLimiter(s.cfg.LogRate, s.cfg.LogBurst, s.metrics)

	if s.listener == nil {
		l, err := tcp.Listen(s.cfg.ListenAddr, s.cfg.Backlog)
		if err != nil {
			return nil, fmt.Errorf("listen %s: %w", s.cfg.ListenAddr, err)
		}
		s.listener = l
	}
	if s.poller == nil {
		p, err := reactor.New()
		if err != nil {
			s.listener.Close()
			return nil, fmt.Errorf("create reactor: %w", err)
		}
		s.poller = p
	}
	s.loop = adapters.NewPollerAdapter(s.poller)
	if err := s.loop.Watch(s.listener.Fd(), listenerToken, api.Readable); err != nil {
		s.listener.Close()
		s.loop.Close()
		return nil, fmt.Errorf("register listener: %w", err)
	}
	s.events = reactor.NewEvents(s.cfg.MaxEvents)

	s.log.Info("listening", zap.Stringer("addr", s.listener.Addr()))
	return s, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Len returns the number of live connections.
func (s *Server) Len() int { return len(s.conns) }

// Poll waits up to timeoutMs for readiness and dispatches what arrived.
// Serve calls it in a loop; tests drive it directly.
func (s *Server) Poll(timeoutMs int) error {
	n, err := s.loop.Wait(s.events, timeoutMs)
	if err != nil {
		return fmt.Errorf("reactor wait: %w", err)
	}
	for _, ev := range s.events[:n] {
		if ev.Token == listenerToken {
			if err := s.acceptReady(); err != nil {
				return err
			}
			continue
		}
		s.connReady(ev)
	}
	return nil
}

// acceptReady drains the accept queue and re-arms the listener.
func (s *Server) acceptReady() error {
	accepted := 0
	for {
		sock, remote, err := s.listener.Accept()
		if errors.Is(err, api.ErrWouldBlock) {
			if accepted == 0 {
				return ErrAcceptInvariant
			}
			break
		}
		if err != nil {
			// A failed accept (fd exhaustion, aborted handshake) only loses
			// that client.
			s.logError("accept failed", err)
			break
		}
		accepted++
		s.register(sock, remote)
	}
	if err := s.loop.Rearm(s.listener.Fd(), listenerToken, api.Readable); err != nil {
		return fmt.Errorf("re-arm listener: %w", err)
	}
	return nil
}

func (s *Server) register(sock api.Socket, remote net.Addr) {
	token := s.nextToken
	s.nextToken++

	c := newConnection(token, sock, remote, s.buffers.Get(), s.cfg, s.metrics, s.log)
	if err := s.loop.Watch(sock.Fd(), token, c.Interest()); err != nil {
		s.logError("register connection", err, zap.Uint64("token", uint64(token)))
		s.release(c)
		return
	}
	s.conns[token] = c
	s.metrics.ConnectionsAccepted.Inc()
	s.metrics.ConnectionsActive.Set(float64(len(s.conns)))
	c.log.Debug("accepted", zap.Stringer("remote", c.RemoteAddr()))
}

// connReady dispatches one event: read, then write, then hangup. The
// connection is re-armed afterwards unless it was torn down.
func (s *Server) connReady(ev api.Event) {
	c, ok := s.conns[ev.Token]
	if !ok {
		// Stale event for a connection closed earlier in this batch.
		return
	}
	var err error
	if ev.Ready&api.Readable != 0 {
		err = c.Read()
	}
	if err == nil && ev.Ready&api.Writable != 0 {
		err = c.Write()
	}
	if err == nil && ev.Ready&api.Hangup != 0 {
		err = errHangup
	}
	if err == nil {
		if err = s.loop.Rearm(c.socket.Fd(), c.token, c.Interest()); err != nil {
			err = api.WrapError(api.ErrCodeInternal, "re-arm connection", err)
		}
	}
	if err != nil {
		s.teardown(c, err)
	}
}

// teardown removes c from the registry and the multiplexer and closes it.
func (s *Server) teardown(c *Connection, cause error) {
	delete(s.conns, c.token)
	if err := c.socket.Shutdown(); err != nil {
		c.log.Debug("shutdown failed", zap.Error(err))
	}
	if err := s.loop.Forget(c.socket.Fd()); err != nil {
		c.log.Debug("deregister failed", zap.Error(err))
	}
	if err := c.socket.Close(); err != nil {
		c.log.Debug("close failed", zap.Error(err))
	}
	s.buffers.Put(c.scratch)
	c.scratch = nil
	s.metrics.ConnectionsActive.Set(float64(len(s.conns)))

	if errors.Is(cause, errHangup) || errors.Is(cause, ErrPeerClosed) {
		c.log.Debug("connection closed", zap.Stringer("state", c.State()))
		return
	}
	kind := api.CodeOf(cause).String()
	s.metrics.ConnectionErrors.WithLabelValues(kind).Inc()
	s.logError("connection failed", cause,
		zap.Uint64("token", uint64(c.Token())),
		zap.Stringer("conn_id", c.ID()),
		zap.Stringer("remote", c.RemoteAddr()),
		zap.String("kind", kind),
		zap.Stringer("state", c.State()),
	)
}

// release closes a connection that never made it into the registry, or
// is being dropped wholesale, and recycles its read buffer.
func (s *Server) release(c *Connection) {
	c.close()
	s.buffers.Put(c.scratch)
	c.scratch = nil
}

// logError emits an error line unless the log limiter is saturated.
func (s *Server) logError(msg string, err error, fields ...zap.Field) {
	ok, suppressed := s.logLimit.Allow()
	if !ok {
		return
	}
	if suppressed > 0 {
		fields = append(fields, zap.Uint64("suppressed", suppressed))
	}
	s.log.Warn(msg, append(fields, zap.Error(err))...)
}

// closeAll tears down every connection, then the listener and poller.
func (s *Server) closeAll() {
	for _, c := range s.conns {
		delete(s.conns, c.token)
		s.loop.Forget(c.socket.Fd())
		s.release(c)
	}
	s.metrics.ConnectionsActive.Set(0)
	if err := s.loop.Forget(s.listener.Fd()); err != nil {
		s.log.Debug("deregister listener", zap.Error(err))
	}
	if err := s.listener.Close(); err != nil {
		s.log.Warn("close listener", zap.Error(err))
	}
	if err := s.loop.Close(); err != nil {
		s.log.Warn("close reactor", zap.Error(err))
	}
}
