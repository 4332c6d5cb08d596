package protocol

import (
	"errors"
	"strings"
	"testing"
)

func TestComputeAcceptKey(t *testing.T) {
	got := ComputeAcceptKey("dGhlIHNhbXBsZSBub25jZQ==")
	if got != "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=" {
		t.Errorf("ComputeAcceptKey = %q", got)
	}
}

func TestHandshakeResponse(t *testing.T) {
	resp, err := HandshakeResponse(Headers{HeaderSecWebSocketKey: "dGhlIHNhbXBsZSBub25jZQ=="})
	if err != nil {
		t.Fatalf("HandshakeResponse: %v", err)
	}
	want := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n" +
		"Upgrade: websocket\r\n\r\n"
	if string(resp) != want {
		t.Errorf("response:\n%q\nwant:\n%q", resp, want)
	}
	if !strings.HasSuffix(string(resp), "\r\n\r\n") {
		t.Error("response not terminated by a blank line")
	}
}

func TestHandshakeResponseMissingKey(t *testing.T) {
	for _, h := range []Headers{nil, {}, {HeaderSecWebSocketKey: ""}} {
		if _, err := HandshakeResponse(h); !errors.Is(err, ErrMissingWebSocketKey) {
			t.Errorf("headers %v: err = %v, want ErrMissingWebSocketKey", h, err)
		}
	}
}
