// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Implements the WebSocket protocol pieces (RFC 6455) used by wsreactor.
//
// Includes:
//   - Frame encoding/decoding with the three payload-length encodings
//   - Masking and opcode validation
//   - Sec-WebSocket-Accept computation and the 101 response
//   - An incremental HTTP request-head parser for the upgrade handshake
//
// Nothing in this package performs I/O state tracking of its own; callers
// hand it readers, writers and byte slices.
package protocol
