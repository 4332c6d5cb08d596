// File: protocol/handshake.go
// Package protocol implements the server side of the WebSocket upgrade.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Sec-WebSocket-Key/Accept negotiation and the fixed 101 response.

package protocol

import (
	"crypto/sha1"
	"encoding/base64"
	"errors"
)

// Constants used for handshake processing. Header names are lower-cased the
// way RequestParser stores them.
const (
	WebSocketGUID           = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"
	HeaderConnection        = "connection"
	HeaderUpgrade           = "upgrade"
	HeaderSecWebSocketKey   = "sec-websocket-key"
	MaxHandshakeHeadersSize = 8192
)

// ErrMissingWebSocketKey is returned when a response must be composed for a
// request that carried no Sec-WebSocket-Key.
var ErrMissingWebSocketKey = errors.New("missing Sec-WebSocket-Key header")

// ComputeAcceptKey computes the Sec-WebSocket-Accept value from the client's key.
// This implements the algorithm specified in RFC6455 Section 1.3.
func ComputeAcceptKey(clientKey string) string {
	hash := sha1.Sum([]byte(clientKey + WebSocketGUID))
	return base64.StdEncoding.EncodeToString(hash[:])
}

// AppendHandshakeResponse appends the 101 Switching Protocols response
// carrying accept to dst.
func AppendHandshakeResponse(dst []byte, accept string) []byte {
	dst = append(dst, "HTTP/1.1 101 Switching Protocols\r\n"...)
	dst = append(dst, "Connection: Upgrade\r\n"...)
	dst = append(dst, "Sec-WebSocket-Accept: "...)
	dst = append(dst, accept...)
	dst = append(dst, "\r\n"...)
	dst = append(dst, "Upgrade: websocket\r\n\r\n"...)
	return dst
}

// HandshakeResponse builds the response for the request headers h.
func HandshakeResponse(h Headers) ([]byte, error) {
	key, ok := h[HeaderSecWebSocketKey]
	if !ok || key == "" {
		return nil, ErrMissingWebSocketKey
	}
	return AppendHandshakeResponse(nil, ComputeAcceptKey(key)), nil
}
