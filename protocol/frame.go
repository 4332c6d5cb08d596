// Package protocol
// Author: momentics <momentics@gmail.com>
//
// WebSocket frame encoding/decoding and masking logic.

package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	ErrInvalidOpcode   = errors.New("invalid opcode")
	ErrPayloadTooLarge = errors.New("frame payload exceeds maximum allowed size")
)

// DecodeError reports the decoding stage that failed.
type DecodeError struct {
	Op  string // header, length, mask, payload
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode frame %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Frame is one WebSocket message unit. Payload is always unmasked.
type Frame struct {
	Fin     bool
	Rsv1    bool
	Rsv2    bool
	Rsv3    bool
	Opcode  Opcode
	Masked  bool
	MaskKey [4]byte
	Payload []byte
}

// LengthCode returns the 7-bit length code implied by the payload.
func (f *Frame) LengthCode() byte {
	return DetermineLen(len(f.Payload))
}

// IsClose reports whether f is a Close frame.
func (f *Frame) IsClose() bool {
	return f.Opcode == OpcodeClose
}

// DetermineLen maps a payload length to its length code.
//
// A payload of exactly 65535 bytes is sent with the 64-bit extended length
// even though it fits in 16 bits; peers accept either encoding.
func DetermineLen(n int) byte {
	switch {
	case n <= MaxDirectPayloadLen:
		return byte(n)
	case n < 0xFFFF:
		return PayloadLen16
	default:
		return PayloadLen64
	}
}

// ApplyMask XORs p in place with key, cycling over its four bytes.
// Applying the same key twice restores the original bytes.
func ApplyMask(key [4]byte, p []byte) {
	for i := range p {
		p[i] ^= key[i&3]
	}
}

// Decode reads one frame from r using the default payload limit.
func Decode(r io.Reader) (*Frame, error) {
	return DecodeLimit(r, MaxFramePayload)
}

// DecodeLimit reads one frame from r. Short input is reported as io.EOF
// (nothing read) or io.ErrUnexpectedEOF wrapped in a *DecodeError; the codec
// never retries, detecting and re-driving partial frames is up to the caller.
func DecodeLimit(r io.Reader, max int64) (*Frame, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, &DecodeError{Op: "header", Err: err}
	}

	f := &Frame{
		Fin:    hdr[0]&FinBit != 0,
		Rsv1:   hdr[0]&Rsv1Bit != 0,
		Rsv2:   hdr[0]&Rsv2Bit != 0,
		Rsv3:   hdr[0]&Rsv3Bit != 0,
		Opcode: Opcode(hdr[0] & OpcodeMsk),
		Masked: hdr[1]&MaskBit != 0,
	}
	if !f.Opcode.Valid() {
		return nil, &DecodeError{Op: "header", Err: fmt.Errorf("%w: 0x%X", ErrInvalidOpcode, byte(f.Opcode))}
	}

	length, err := readLength(r, hdr[1]&LenMask)
	if err != nil {
		return nil, &DecodeError{Op: "length", Err: err}
	}
	if length > uint64(max) {
		return nil, &DecodeError{Op: "length", Err: ErrPayloadTooLarge}
	}

	if f.Masked {
		if _, err := io.ReadFull(r, f.MaskKey[:]); err != nil {
			return nil, &DecodeError{Op: "mask", Err: noEOF(err)}
		}
	}

	f.Payload = make([]byte, length)
	if _, err := io.ReadFull(r, f.Payload); err != nil {
		return nil, &DecodeError{Op: "payload", Err: noEOF(err)}
	}
	if f.Masked {
		ApplyMask(f.MaskKey, f.Payload)
	}
	return f, nil
}

func readLength(r io.Reader, code byte) (uint64, error) {
	switch code {
	case PayloadLen16:
		var ext [2]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return 0, noEOF(err)
		}
		return uint64(binary.BigEndian.Uint16(ext[:])), nil
	case PayloadLen64:
		var ext [8]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return 0, noEOF(err)
		}
		return binary.BigEndian.Uint64(ext[:]), nil
	default:
		return uint64(code), nil
	}
}

// noEOF converts io.EOF into io.ErrUnexpectedEOF once the header was read.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// AppendFrame serializes f onto dst. The mask bit is never set: server
// frames are sent unmasked.
func AppendFrame(dst []byte, f *Frame) []byte {
	var b0 byte
	if f.Fin {
		b0 |= FinBit
	}
	if f.Rsv1 {
		b0 |= Rsv1Bit
	}
	if f.Rsv2 {
		b0 |= Rsv2Bit
	}
	if f.Rsv3 {
		b0 |= Rsv3Bit
	}
	b0 |= byte(f.Opcode) & OpcodeMsk

	code := f.LengthCode()
	dst = append(dst, b0, code&LenMask)
	switch code {
	case PayloadLen16:
		dst = binary.BigEndian.AppendUint16(dst, uint16(len(f.Payload)))
	case PayloadLen64:
		dst = binary.BigEndian.AppendUint64(dst, uint64(len(f.Payload)))
	}
	return append(dst, f.Payload...)
}

// Encode writes f to w.
func Encode(w io.Writer, f *Frame) error {
	buf := AppendFrame(make([]byte, 0, MaxFrameHeaderLen+len(f.Payload)), f)
	_, err := w.Write(buf)
	return err
}

// FromText builds a final, unmasked Text frame.
func FromText(payload string) *Frame {
	return &Frame{Fin: true, Opcode: OpcodeText, Payload: []byte(payload)}
}

// Pong answers ping with its payload copied verbatim.
func Pong(ping *Frame) *Frame {
	payload := make([]byte, len(ping.Payload))
	copy(payload, ping.Payload)
	return &Frame{Fin: true, Opcode: OpcodePong, Payload: payload}
}

// CloseFrom builds the Close reply for recv, echoing its status code (the
// first two payload bytes) when present.
func CloseFrom(recv *Frame) *Frame {
	var body []byte
	if len(recv.Payload) >= 2 {
		body = []byte{recv.Payload[0], recv.Payload[1]}
	}
	return &Frame{Fin: true, Opcode: OpcodeClose, Payload: body}
}

// FrameSize returns the encoded size of the frame at the start of b once its
// header (including any extended length and mask key) is complete, or 0
// while it is not. Invalid opcodes and oversized payloads are reported as
// soon as the bytes carrying them are present.
func FrameSize(b []byte, max int64) (int64, error) {
	if len(b) < 2 {
		return 0, nil
	}
	if op := Opcode(b[0] & OpcodeMsk); !op.Valid() {
		return 0, &DecodeError{Op: "header", Err: fmt.Errorf("%w: 0x%X", ErrInvalidOpcode, byte(op))}
	}
	hdr := 2
	var length uint64
	switch code := b[1] & LenMask; code {
	case PayloadLen16:
		hdr += 2
		if len(b) < hdr {
			return 0, nil
		}
		length = uint64(binary.BigEndian.Uint16(b[2:4]))
	case PayloadLen64:
		hdr += 8
		if len(b) < hdr {
			return 0, nil
		}
		length = binary.BigEndian.Uint64(b[2:10])
	default:
		length = uint64(code)
	}
	if length > uint64(max) {
		return 0, &DecodeError{Op: "length", Err: ErrPayloadTooLarge}
	}
	if b[1]&MaskBit != 0 {
		hdr += 4
		if len(b) < hdr {
			return 0, nil
		}
	}
	return int64(hdr) + int64(length), nil
}
