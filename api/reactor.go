// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Defines the abstract interface for the readiness multiplexer that drives
// the single-threaded event loop (epoll on Linux).

package api

import "strings"

// Token is the opaque handle associating readiness events with a registered
// descriptor. Tokens are never reused within a process lifetime.
type Token uint64

// Interest is the set of readiness conditions a descriptor is registered for.
type Interest uint8

const (
	Readable Interest = 1 << iota
	Writable
	Hangup
)

// Has reports whether all bits of o are set in i.
func (i Interest) Has(o Interest) bool { return i&o == o && o != 0 }

func (i Interest) String() string {
	if i == 0 {
		return "none"
	}
	var parts []string
	if i&Readable != 0 {
		parts = append(parts, "readable")
	}
	if i&Writable != 0 {
		parts = append(parts, "writable")
	}
	if i&Hangup != 0 {
		parts = append(parts, "hangup")
	}
	return strings.Join(parts, "|")
}

// PollFlags selects the delivery discipline of a registration.
type PollFlags uint8

const (
	// Edge requests edge-triggered delivery.
	Edge PollFlags = 1 << iota
	// Oneshot disables the registration after one event; it must be re-armed
	// with Modify before any further event is delivered.
	Oneshot
)

// Event encapsulates one readiness notification.
type Event struct {
	Token Token
	Ready Interest
}

// Poller is the OS readiness primitive.
type Poller interface {
	// Add registers fd under token.
	Add(fd int, token Token, interest Interest, flags PollFlags) error

	// Modify replaces the interest of an already registered fd; for oneshot
	// registrations this re-arms delivery.
	Modify(fd int, token Token, interest Interest, flags PollFlags) error

	// Delete removes fd from the interest list.
	Delete(fd int) error

	// Wait blocks up to timeoutMs (negative blocks forever) and fills events.
	Wait(events []Event, timeoutMs int) (int, error)

	// Close releases the poller.
	Close() error
}
