package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFrameRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 125, 126, 65534, 65535, 65536} {
		payload := bytes.Repeat([]byte{0x5A}, n)
		in := &Frame{Fin: true, Opcode: OpcodeBinary, Payload: payload}

		var buf bytes.Buffer
		if err := Encode(&buf, in); err != nil {
			t.Fatalf("len %d: Encode: %v", n, err)
		}
		out, err := Decode(&buf)
		if err != nil {
			t.Fatalf("len %d: Decode: %v", n, err)
		}
		if out.Opcode != OpcodeBinary {
			t.Errorf("len %d: opcode = %v, want binary", n, out.Opcode)
		}
		if !bytes.Equal(out.Payload, payload) {
			t.Errorf("len %d: payload mismatch", n)
		}
		if out.Masked {
			t.Errorf("len %d: decoded frame is masked", n)
		}
		if buf.Len() != 0 {
			t.Errorf("len %d: %d trailing bytes", n, buf.Len())
		}
	}
}

func TestDetermineLen(t *testing.T) {
	tests := []struct {
		n    int
		want byte
	}{
		{0, 0},
		{125, 125},
		{126, PayloadLen16},
		{65534, PayloadLen16},
		{65535, PayloadLen64},
		{65536, PayloadLen64},
	}
	for _, tt := range tests {
		if got := DetermineLen(tt.n); got != tt.want {
			t.Errorf("DetermineLen(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestEncodeHeaderLayout(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want []byte
	}{
		{"direct", 5, []byte{0x81, 0x05}},
		{"u16", 126, []byte{0x81, 126, 0x00, 0x7E}},
		{"u16-max", 65534, []byte{0x81, 126, 0xFF, 0xFE}},
		{"u64-quirk", 65535, []byte{0x81, 127, 0, 0, 0, 0, 0, 0, 0xFF, 0xFF}},
		{"u64", 65536, []byte{0x81, 127, 0, 0, 0, 0, 0, 1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Frame{Fin: true, Opcode: OpcodeText, Payload: make([]byte, tt.n)}
			got := AppendFrame(nil, f)
			if diff := cmp.Diff(tt.want, got[:len(tt.want)]); diff != "" {
				t.Errorf("header mismatch (-want +got):\n%s", diff)
			}
			if len(got) != len(tt.want)+tt.n {
				t.Errorf("encoded length = %d, want %d", len(got), len(tt.want)+tt.n)
			}
		})
	}
}

func TestEncodeControlBits(t *testing.T) {
	f := &Frame{Fin: false, Rsv1: true, Rsv3: true, Opcode: OpcodePing, Masked: true, Payload: []byte("x")}
	got := AppendFrame(nil, f)
	want := []byte{0x59, 0x01, 'x'}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("frame mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyMaskInvolution(t *testing.T) {
	keys := [][4]byte{{0, 0, 0, 0}, {0x37, 0xfa, 0x21, 0x3d}, {0xff, 0xff, 0xff, 0xff}}
	payloads := [][]byte{nil, []byte("a"), []byte("Hello"), bytes.Repeat([]byte{1, 2, 3}, 1000)}
	for _, key := range keys {
		for _, p := range payloads {
			orig := append([]byte(nil), p...)
			buf := append([]byte(nil), p...)
			ApplyMask(key, buf)
			ApplyMask(key, buf)
			if !bytes.Equal(buf, orig) {
				t.Errorf("mask %x twice changed payload %q", key, orig)
			}
		}
	}
}

func TestDecodeMaskedRFCExample(t *testing.T) {
	// RFC 6455 5.7: a single-frame masked text message containing "Hello".
	raw := []byte{0x81, 0x85, 0x37, 0xfa, 0x21, 0x3d, 0x7f, 0x9f, 0x4d, 0x51, 0x58}
	f, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !f.Fin || f.Opcode != OpcodeText || !f.Masked {
		t.Errorf("unexpected header: %+v", f)
	}
	if f.MaskKey != [4]byte{0x37, 0xfa, 0x21, 0x3d} {
		t.Errorf("mask key = %x", f.MaskKey)
	}
	if string(f.Payload) != "Hello" {
		t.Errorf("payload = %q, want Hello", f.Payload)
	}
}

func TestDecodeOpcodeValidation(t *testing.T) {
	for _, op := range []byte{0x3, 0x4, 0xB, 0xF, 0x0} {
		_, err := Decode(bytes.NewReader([]byte{0x80 | op, 0x00}))
		if !errors.Is(err, ErrInvalidOpcode) {
			t.Errorf("opcode 0x%X: err = %v, want ErrInvalidOpcode", op, err)
		}
		var de *DecodeError
		if !errors.As(err, &de) || de.Op != "header" {
			t.Errorf("opcode 0x%X: err = %#v, want header DecodeError", op, err)
		}
	}
	for _, op := range []byte{0x1, 0x2, 0x8, 0x9, 0xA} {
		f, err := Decode(bytes.NewReader([]byte{0x80 | op, 0x00}))
		if err != nil {
			t.Errorf("opcode 0x%X: %v", op, err)
			continue
		}
		if byte(f.Opcode) != op {
			t.Errorf("opcode = 0x%X, want 0x%X", byte(f.Opcode), op)
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	full := AppendFrame(nil, &Frame{Fin: true, Opcode: OpcodeText, Payload: make([]byte, 300)})

	if _, err := Decode(bytes.NewReader(nil)); !errors.Is(err, io.EOF) {
		t.Errorf("empty input: err = %v, want io.EOF", err)
	}
	for _, cut := range []int{1, 2, 3, 4, 100, len(full) - 1} {
		_, err := Decode(bytes.NewReader(full[:cut]))
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("cut at %d: err = %v, want io.ErrUnexpectedEOF", cut, err)
		}
	}
}

func TestDecodeLimit(t *testing.T) {
	raw := AppendFrame(nil, &Frame{Fin: true, Opcode: OpcodeBinary, Payload: make([]byte, 200)})
	if _, err := DecodeLimit(bytes.NewReader(raw), 100); !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("err = %v, want ErrPayloadTooLarge", err)
	}
	if _, err := DecodeLimit(bytes.NewReader(raw), 200); err != nil {
		t.Errorf("at limit: %v", err)
	}
}

func TestConstructors(t *testing.T) {
	text := FromText("hi there!")
	if !text.Fin || text.Opcode != OpcodeText || text.Masked || string(text.Payload) != "hi there!" {
		t.Errorf("FromText = %+v", text)
	}

	ping := &Frame{Fin: true, Opcode: OpcodePing, Payload: []byte("abc")}
	pong := Pong(ping)
	if pong.Opcode != OpcodePong || string(pong.Payload) != "abc" {
		t.Errorf("Pong = %+v", pong)
	}
	ping.Payload[0] = 'z'
	if string(pong.Payload) != "abc" {
		t.Error("Pong shares payload with ping")
	}

	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"empty", nil, nil},
		{"one-byte", []byte{0x03}, nil},
		{"status", []byte{0x03, 0xE8}, []byte{0x03, 0xE8}},
		{"status+reason", []byte{0x03, 0xE8, 'b', 'y', 'e'}, []byte{0x03, 0xE8}},
	}
	for _, tt := range tests {
		c := CloseFrom(&Frame{Opcode: OpcodeClose, Payload: tt.in})
		if !c.IsClose() {
			t.Errorf("%s: opcode = %v", tt.name, c.Opcode)
		}
		if !bytes.Equal(c.Payload, tt.want) {
			t.Errorf("%s: payload = %x, want %x", tt.name, c.Payload, tt.want)
		}
	}
}

func TestFrameSize(t *testing.T) {
	raw := AppendFrame(nil, &Frame{Fin: true, Opcode: OpcodeText, Payload: make([]byte, 300)})
	for cut := 0; cut < 4; cut++ {
		if n, err := FrameSize(raw[:cut], MaxFramePayload); n != 0 || err != nil {
			t.Errorf("cut %d: FrameSize = %d, %v; want 0, nil", cut, n, err)
		}
	}
	if n, err := FrameSize(raw[:4], MaxFramePayload); n != int64(len(raw)) || err != nil {
		t.Errorf("FrameSize = %d, %v; want %d", n, err, len(raw))
	}

	masked := []byte{0x81, 0x85, 0x37, 0xfa}
	if n, _ := FrameSize(masked, MaxFramePayload); n != 0 {
		t.Errorf("incomplete mask key: FrameSize = %d, want 0", n)
	}
	masked = append(masked, 0x21, 0x3d)
	if n, _ := FrameSize(masked, MaxFramePayload); n != 11 {
		t.Errorf("masked: FrameSize = %d, want 11", n)
	}

	if _, err := FrameSize([]byte{0x83, 0x00}, MaxFramePayload); !errors.Is(err, ErrInvalidOpcode) {
		t.Errorf("invalid opcode: err = %v", err)
	}
	if _, err := FrameSize(raw[:4], 100); !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("oversized: err = %v", err)
	}
}
