// File: server/options.go
// Package server defines functional options for the Server.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"github.com/momentics/wsreactor/api"
	"github.com/momentics/wsreactor/control"
	"go.uber.org/zap"
)

// ServerOption customizes server initialization.
type ServerOption func(*Server)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) ServerOption {
	return func(s *Server) {
		s.log = l
	}
}

// WithMetrics sets the collectors updated by the event loop.
func WithMetrics(m *control.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithPoller replaces the platform reactor.
func WithPoller(p api.Poller) ServerOption {
	return func(s *Server) {
		s.poller = p
	}
}

// WithListener replaces the TCP listener; Config.ListenAddr is then unused.
func WithListener(l api.Listener) ServerOption {
	return func(s *Server) {
		s.listener = l
	}
}
