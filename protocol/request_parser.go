// File: protocol/request_parser.go
// Package protocol
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Incremental HTTP/1.1 request-head parser for the upgrade handshake. Input
// may arrive in arbitrary chunks; partial lines are carried between calls.

package protocol

import (
	"bytes"
	"errors"
	"strings"

	"github.com/gobwas/httphead"
)

var (
	ErrMalformedRequest = errors.New("malformed HTTP request head")
	ErrHeadersTooLarge  = errors.New("handshake headers too large")
)

// Headers maps lower-cased header names to their values. Repeated headers
// are joined with ", ".
type Headers map[string]string

// ParseResult describes the outcome of one Feed call.
type ParseResult struct {
	// HeadersComplete is set once the blank line ending the head was seen.
	HeadersComplete bool
	// Upgrade is set with HeadersComplete when the request asks for a
	// WebSocket upgrade.
	Upgrade bool
	// Consumed is the number of input bytes that belong to the request head.
	// Bytes past Consumed were sent after the head.
	Consumed int
}

// RequestParser tokenizes a request head. It never keeps a reference to the
// Headers it is given; the caller owns the map between calls.
type RequestParser struct {
	partial     []byte
	size        int
	requestLine bool
	isGet       bool
	done        bool
	upgrade     bool
}

// NewRequestParser returns a parser awaiting the request line.
func NewRequestParser() *RequestParser {
	return &RequestParser{}
}

// Feed consumes data, storing discovered header fields into h.
func (p *RequestParser) Feed(data []byte, h Headers) (ParseResult, error) {
	if p.done {
		return ParseResult{HeadersComplete: true, Upgrade: p.upgrade}, nil
	}
	for i := 0; i < len(data); {
		j := bytes.IndexByte(data[i:], '\n')
		if j < 0 {
			if err := p.grow(len(data) - i); err != nil {
				return ParseResult{}, err
			}
			p.partial = append(p.partial, data[i:]...)
			break
		}
		chunk := data[i : i+j+1]
		i += j + 1
		if err := p.grow(len(chunk)); err != nil {
			return ParseResult{}, err
		}

		// httphead canonicalizes keys in place, so parse a private copy.
		p.partial = append(p.partial, chunk...)
		err := p.parseLine(bytes.TrimRight(p.partial, "\r\n"), h)
		p.partial = p.partial[:0]
		if err != nil {
			return ParseResult{}, err
		}
		if p.done {
			return ParseResult{HeadersComplete: true, Upgrade: p.upgrade, Consumed: i}, nil
		}
	}
	return ParseResult{Consumed: len(data)}, nil
}

func (p *RequestParser) grow(n int) error {
	p.size += n
	if p.size > MaxHandshakeHeadersSize {
		return ErrHeadersTooLarge
	}
	return nil
}

func (p *RequestParser) parseLine(line []byte, h Headers) error {
	if !p.requestLine {
		if len(line) == 0 {
			// RFC 7230 3.5: ignore empty lines before the request line.
			return nil
		}
		rl, ok := httphead.ParseRequestLine(line)
		if !ok {
			return ErrMalformedRequest
		}
		p.requestLine = true
		p.isGet = string(rl.Method) == "GET"
		return nil
	}

	if len(line) == 0 {
		p.done = true
		p.upgrade = p.isGet &&
			hasToken(h[HeaderConnection], "upgrade") &&
			hasToken(h[HeaderUpgrade], "websocket")
		return nil
	}

	k, v, ok := httphead.ParseHeaderLine(line)
	if !ok {
		return ErrMalformedRequest
	}
	key := strings.ToLower(strings.TrimSpace(string(k)))
	val := strings.TrimSpace(string(v))
	if prev, dup := h[key]; dup {
		h[key] = prev + ", " + val
	} else {
		h[key] = val
	}
	return nil
}

// hasToken reports whether the comma separated list value contains token,
// compared case-insensitively.
func hasToken(value, token string) bool {
	if value == "" {
		return false
	}
	found := false
	httphead.ScanTokens([]byte(value), func(t []byte) bool {
		if bytes.EqualFold(t, []byte(token)) {
			found = true
			return false
		}
		return true
	})
	return found
}
