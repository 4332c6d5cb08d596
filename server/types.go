// File: server/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"time"

	"github.com/momentics/wsreactor/protocol"
)

// Config holds all server-side configuration parameters.
type Config struct {
	ListenAddr      string        // TCP bind address, e.g. "127.0.0.1:10000"
	Backlog         int           // listen(2) backlog
	PollTimeout     time.Duration // upper bound of one reactor wait; bounds Serve's reaction to ctx
	MaxEvents       int           // events fetched per reactor wait
	ReadBufferSize  int           // scratch buffer for socket reads
	MaxFramePayload int64         // largest accepted client payload
	TextReply       string        // canned payload answered to every Text frame
	LogRate         float64       // error log lines per second, <= 0 disables throttling
	LogBurst        int           // error log burst size
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:      "127.0.0.1:10000",
		Backlog:         128,
		PollTimeout:     100 * time.Millisecond,
		MaxEvents:       128,
		ReadBufferSize:  2048,
		MaxFramePayload: protocol.MaxFramePayload,
		TextReply:       "hi there!",
		LogRate:         5,
		LogBurst:        10,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	out := *c
	if out.ListenAddr == "" {
		out.ListenAddr = d.ListenAddr
	}
	if out.Backlog <= 0 {
		out.Backlog = d.Backlog
	}
	if out.PollTimeout <= 0 {
		out.PollTimeout = d.PollTimeout
	}
	if out.MaxEvents <= 0 {
		out.MaxEvents = d.MaxEvents
	}
	if out.ReadBufferSize <= 0 {
		out.ReadBufferSize = d.ReadBufferSize
	}
	if out.MaxFramePayload <= 0 {
		out.MaxFramePayload = d.MaxFramePayload
	}
	if out.TextReply == "" {
		out.TextReply = d.TextReply
	}
	return &out
}
