// File: server/state.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import "github.com/momentics/wsreactor/protocol"

// StateKind names the stage a connection is in.
type StateKind int

const (
	// AwaitingHandshake: reading the HTTP upgrade request.
	AwaitingHandshake StateKind = iota
	// HandshakeResponse: writing the 101 response.
	HandshakeResponse
	// Connected: exchanging frames.
	Connected
)

func (k StateKind) String() string {
	switch k {
	case AwaitingHandshake:
		return "awaiting_handshake"
	case HandshakeResponse:
		return "handshake_response"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// connState is the per-stage data. Only the handshake reader carries any:
// the request parser lives exactly as long as the stage that needs it.
type connState interface {
	kind() StateKind
}

type awaitingHandshake struct {
	parser *protocol.RequestParser
}

type handshakeResponse struct{}

type connected struct{}

func (awaitingHandshake) kind() StateKind { return AwaitingHandshake }
func (handshakeResponse) kind() StateKind { return HandshakeResponse }
func (connected) kind() StateKind         { return Connected }
