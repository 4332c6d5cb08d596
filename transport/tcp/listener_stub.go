//go:build !linux
// +build !linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package tcp

import (
	"fmt"
	"net"

	"github.com/momentics/wsreactor/api"
)

// Listener is unavailable on this platform.
type Listener struct{}

// Listen reports api.ErrNotSupported.
func Listen(addr string, backlog int) (*Listener, error) {
	return nil, fmt.Errorf("tcp listen %s: %w", addr, api.ErrNotSupported)
}

func (l *Listener) Accept() (api.Socket, net.Addr, error) { return nil, nil, api.ErrNotSupported }
func (l *Listener) Addr() net.Addr                        { return nil }
func (l *Listener) Fd() int                               { return -1 }
func (l *Listener) Close() error                          { return nil }
