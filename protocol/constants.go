// Package protocol
// Author: momentics <momentics@gmail.com>
//
// WebSocket wire protocol constants

package protocol

const (
	// Length codes carried in the low 7 bits of the second header byte.
	PayloadLen16 = 126
	PayloadLen64 = 127

	// Frame limit settings
	MaxDirectPayloadLen = 125
	MaxFrameHeaderLen   = 14 // for extended payloads with masking
	MaxFramePayload     = 1 << 20

	// Bit masks
	FinBit    = 0x80
	Rsv1Bit   = 0x40
	Rsv2Bit   = 0x20
	Rsv3Bit   = 0x10
	OpcodeMsk = 0x0F
	MaskBit   = 0x80
	LenMask   = 0x7F
)

// Opcode identifies the purpose of a frame.
type Opcode byte

const (
	OpcodeText   Opcode = 0x1
	OpcodeBinary Opcode = 0x2
	OpcodeClose  Opcode = 0x8
	OpcodePing   Opcode = 0x9
	OpcodePong   Opcode = 0xA
)

// Valid reports whether op is one of the opcodes this engine accepts.
// Continuation frames are not supported.
func (op Opcode) Valid() bool {
	switch op {
	case OpcodeText, OpcodeBinary, OpcodeClose, OpcodePing, OpcodePong:
		return true
	}
	return false
}

func (op Opcode) String() string {
	switch op {
	case OpcodeText:
		return "text"
	case OpcodeBinary:
		return "binary"
	case OpcodeClose:
		return "close"
	case OpcodePing:
		return "ping"
	case OpcodePong:
		return "pong"
	}
	return "unknown"
}
