// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Socket abstractions consumed by the event loop. Implementations are
// non-blocking: Read and Write return ErrWouldBlock instead of waiting.

package api

import "net"

// Socket is an exclusively owned, non-blocking stream handle.
type Socket interface {
	// Read returns ErrWouldBlock when no data is available and io.EOF when
	// the peer closed its write side.
	Read(p []byte) (n int, err error)

	// Write may accept fewer bytes than len(p); with n < len(p) the error is
	// ErrWouldBlock or a real failure.
	Write(p []byte) (n int, err error)

	// Shutdown shuts the stream down in both directions.
	Shutdown() error

	// Close releases the descriptor.
	Close() error

	// Fd returns the descriptor registered with the Poller.
	Fd() int
}

// Listener is a non-blocking listening socket.
type Listener interface {
	// Accept returns ErrWouldBlock when no connection is pending.
	Accept() (Socket, net.Addr, error)
	Addr() net.Addr
	Fd() int
	Close() error
}
