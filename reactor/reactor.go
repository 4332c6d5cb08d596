// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral helpers shared by the reactor implementations.

package reactor

import "github.com/momentics/wsreactor/api"

// DefaultMaxEvents bounds the number of events returned by a single Wait
// when callers do not size the slice themselves.
const DefaultMaxEvents = 128

// NewEvents allocates an event slice for Wait.
func NewEvents(n int) []api.Event {
	if n <= 0 {
		n = DefaultMaxEvents
	}
	return make([]api.Event, n)
}
