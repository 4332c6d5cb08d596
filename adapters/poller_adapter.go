// File: adapters/poller_adapter.go
// Package adapters
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// PollerAdapter translates the connection state machine's intent (read,
// write, hang up) into registrations on the readiness multiplexer.

package adapters

import (
	"github.com/momentics/wsreactor/api"
)

// connFlags is the delivery discipline for every handle: exactly one event
// per registration, re-armed by the caller after it is handled.
const connFlags = api.Edge | api.Oneshot

// PollerAdapter owns the mapping between intent and api.Poller calls.
type PollerAdapter struct {
	poller api.Poller
}

// NewPollerAdapter wraps poller.
func NewPollerAdapter(poller api.Poller) *PollerAdapter {
	return &PollerAdapter{poller: poller}
}

// Watch registers a descriptor (the listener or a freshly accepted
// connection).
func (p *PollerAdapter) Watch(fd int, token api.Token, interest api.Interest) error {
	return p.poller.Add(fd, token, interest, connFlags)
}

// Rearm re-registers a connection after an event was handled. It must be
// called after every event, or later events for the handle are lost.
func (p *PollerAdapter) Rearm(fd int, token api.Token, interest api.Interest) error {
	return p.poller.Modify(fd, token, interest, connFlags)
}

// Forget removes a connection from the multiplexer.
func (p *PollerAdapter) Forget(fd int) error {
	return p.poller.Delete(fd)
}

// Wait forwards to the poller.
func (p *PollerAdapter) Wait(events []api.Event, timeoutMs int) (int, error) {
	return p.poller.Wait(events, timeoutMs)
}

// Close releases the poller.
func (p *PollerAdapter) Close() error {
	return p.poller.Close()
}
