// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the core interfaces.

package fake

import (
	"bytes"
	"io"
	"net"

	"github.com/momentics/wsreactor/api"
)

// Socket is a scripted, non-blocking api.Socket.
type Socket struct {
	FD int

	// In holds bytes the peer has sent; Read drains it and then reports
	// api.ErrWouldBlock, or io.EOF once PeerClosed is set.
	In         bytes.Buffer
	PeerClosed bool

	// Out collects everything written.
	Out bytes.Buffer
	// MaxWrite caps the bytes accepted per Write call before
	// api.ErrWouldBlock; zero means unlimited.
	MaxWrite int

	ReadErr  error
	WriteErr error

	Reads         int
	ShutdownCalls int
	Closed        bool
}

var _ api.Socket = (*Socket)(nil)

// NewSocket returns a socket reporting fd.
func NewSocket(fd int) *Socket {
	return &Socket{FD: fd}
}

// Feed queues data as if the peer had sent it.
func (s *Socket) Feed(p []byte) {
	s.In.Write(p)
}

func (s *Socket) Read(p []byte) (int, error) {
	s.Reads++
	if s.ReadErr != nil {
		return 0, s.ReadErr
	}
	if s.In.Len() == 0 {
		if s.PeerClosed {
			return 0, io.EOF
		}
		return 0, api.ErrWouldBlock
	}
	return s.In.Read(p)
}

func (s *Socket) Write(p []byte) (int, error) {
	if s.WriteErr != nil {
		return 0, s.WriteErr
	}
	if s.MaxWrite > 0 && len(p) > s.MaxWrite {
		s.Out.Write(p[:s.MaxWrite])
		return s.MaxWrite, api.ErrWouldBlock
	}
	return s.Out.Write(p)
}

func (s *Socket) Shutdown() error {
	s.ShutdownCalls++
	return nil
}

func (s *Socket) Close() error {
	s.Closed = true
	return nil
}

func (s *Socket) Fd() int { return s.FD }

// Listener hands out queued sockets.
type Listener struct {
	FD      int
	Pending []*Socket
	Err     error
	Closed  bool
}

var _ api.Listener = (*Listener)(nil)

func (l *Listener) Accept() (api.Socket, net.Addr, error) {
	if l.Err != nil {
		return nil, nil, l.Err
	}
	if len(l.Pending) == 0 {
		return nil, nil, api.ErrWouldBlock
	}
	s := l.Pending[0]
	l.Pending = l.Pending[1:]
	return s, &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000 + s.FD}, nil
}

func (l *Listener) Addr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 10000}
}

func (l *Listener) Fd() int { return l.FD }

func (l *Listener) Close() error {
	l.Closed = true
	return nil
}
