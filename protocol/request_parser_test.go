package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const upgradeRequest = "GET /chat HTTP/1.1\r\n" +
	"Host: server.example.com\r\n" +
	"Upgrade: websocket\r\n" +
	"Connection: keep-alive, Upgrade\r\n" +
	"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
	"Sec-WebSocket-Version: 13\r\n" +
	"\r\n"

func TestRequestParserSingleChunk(t *testing.T) {
	p := NewRequestParser()
	h := Headers{}
	res, err := p.Feed([]byte(upgradeRequest), h)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	want := ParseResult{HeadersComplete: true, Upgrade: true, Consumed: len(upgradeRequest)}
	if res != want {
		t.Errorf("result = %+v, want %+v", res, want)
	}
	wantHeaders := Headers{
		"host":                  "server.example.com",
		"upgrade":               "websocket",
		"connection":            "keep-alive, Upgrade",
		"sec-websocket-key":     "dGhlIHNhbXBsZSBub25jZQ==",
		"sec-websocket-version": "13",
	}
	if diff := cmp.Diff(wantHeaders, h); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
}

func TestRequestParserByteAtATime(t *testing.T) {
	p := NewRequestParser()
	h := Headers{}
	for i := 0; i < len(upgradeRequest); i++ {
		res, err := p.Feed([]byte{upgradeRequest[i]}, h)
		if err != nil {
			t.Fatalf("byte %d: %v", i, err)
		}
		last := i == len(upgradeRequest)-1
		if res.HeadersComplete != last {
			t.Fatalf("byte %d: HeadersComplete = %v", i, res.HeadersComplete)
		}
		if last && !res.Upgrade {
			t.Fatal("upgrade not detected")
		}
	}
	if h[HeaderSecWebSocketKey] != "dGhlIHNhbXBsZSBub25jZQ==" {
		t.Errorf("key = %q", h[HeaderSecWebSocketKey])
	}
}

func TestRequestParserTrailingBytes(t *testing.T) {
	p := NewRequestParser()
	data := upgradeRequest + "\x81\x80abcd"
	res, err := p.Feed([]byte(data), Headers{})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if res.Consumed != len(upgradeRequest) {
		t.Errorf("Consumed = %d, want %d", res.Consumed, len(upgradeRequest))
	}
}

func TestRequestParserNotUpgrade(t *testing.T) {
	tests := []struct {
		name string
		req  string
	}{
		{"plain", "GET / HTTP/1.1\r\nHost: x\r\n\r\n"},
		{"post", "POST / HTTP/1.1\r\nConnection: Upgrade\r\nUpgrade: websocket\r\n\r\n"},
		{"no-connection", "GET / HTTP/1.1\r\nUpgrade: websocket\r\n\r\n"},
		{"other-protocol", "GET / HTTP/1.1\r\nConnection: Upgrade\r\nUpgrade: h2c\r\n\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewRequestParser().Feed([]byte(tt.req), Headers{})
			if err != nil {
				t.Fatalf("Feed: %v", err)
			}
			if !res.HeadersComplete || res.Upgrade {
				t.Errorf("result = %+v", res)
			}
		})
	}
}

func TestRequestParserIncomplete(t *testing.T) {
	res, err := NewRequestParser().Feed([]byte("GET / HTTP/1.1\r\nUpgrade: websocket\r\n"), Headers{})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if res.HeadersComplete || res.Upgrade {
		t.Errorf("result = %+v", res)
	}
}

func TestRequestParserErrors(t *testing.T) {
	if _, err := NewRequestParser().Feed([]byte("garbage\r\n"), Headers{}); !errors.Is(err, ErrMalformedRequest) {
		t.Errorf("bad request line: err = %v", err)
	}
	if _, err := NewRequestParser().Feed([]byte("GET / HTTP/1.1\r\nno colon here\r\n"), Headers{}); !errors.Is(err, ErrMalformedRequest) {
		t.Errorf("bad header line: err = %v", err)
	}
	huge := "GET / HTTP/1.1\r\nX-Big: " + strings.Repeat("a", MaxHandshakeHeadersSize) + "\r\n\r\n"
	if _, err := NewRequestParser().Feed([]byte(huge), Headers{}); !errors.Is(err, ErrHeadersTooLarge) {
		t.Errorf("huge head: err = %v", err)
	}
}

func TestRequestParserRepeatedHeader(t *testing.T) {
	h := Headers{}
	req := "GET / HTTP/1.1\r\nConnection: keep-alive\r\nConnection: Upgrade\r\nUpgrade: websocket\r\n\r\n"
	res, err := NewRequestParser().Feed([]byte(req), h)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if !res.Upgrade {
		t.Error("upgrade not detected across repeated Connection headers")
	}
	if h[HeaderConnection] != "keep-alive, Upgrade" {
		t.Errorf("connection = %q", h[HeaderConnection])
	}
}
