//go:build linux
// +build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package tcp

import (
	"errors"
	"io"

	"github.com/momentics/wsreactor/api"
	"golang.org/x/sys/unix"
)

// Socket is a non-blocking TCP stream on a raw descriptor.
type Socket struct {
	fd int
}

var _ api.Socket = (*Socket)(nil)

// Read reads what is available without blocking.
func (s *Socket) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(s.fd, p)
		switch {
		case err == nil && n == 0 && len(p) > 0:
			return 0, io.EOF
		case err == nil:
			return n, nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return 0, api.ErrWouldBlock
		}
		return 0, err
	}
}

// Write writes as much of p as the socket buffer takes.
func (s *Socket) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := unix.Write(s.fd, p[written:])
		if n > 0 {
			written += n
		}
		switch {
		case err == nil:
			continue
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return written, api.ErrWouldBlock
		}
		return written, err
	}
	return written, nil
}

// Shutdown shuts the stream down for both directions.
func (s *Socket) Shutdown() error {
	return unix.Shutdown(s.fd, unix.SHUT_RDWR)
}

// Close releases the descriptor.
func (s *Socket) Close() error {
	return unix.Close(s.fd)
}

// Fd returns the descriptor.
func (s *Socket) Fd() int { return s.fd }
