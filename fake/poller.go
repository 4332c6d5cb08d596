package fake

import (
	"fmt"

	"github.com/momentics/wsreactor/api"
)

// Registration is the last state recorded for a descriptor.
type Registration struct {
	Token    api.Token
	Interest api.Interest
	Flags    api.PollFlags
}

// Poller implements api.Poller for tests. Events are injected with Push and
// returned by the next Wait.
type Poller struct {
	Regs     map[int]Registration
	Adds     int
	Modifies int
	Deletes  []int
	events   []api.Event
	WaitErr  error
	Closed   bool
}

var _ api.Poller = (*Poller)(nil)

func NewPoller() *Poller {
	return &Poller{Regs: make(map[int]Registration)}
}

func (p *Poller) Add(fd int, token api.Token, interest api.Interest, flags api.PollFlags) error {
	if _, ok := p.Regs[fd]; ok {
		return fmt.Errorf("fd %d already registered", fd)
	}
	p.Adds++
	p.Regs[fd] = Registration{Token: token, Interest: interest, Flags: flags}
	return nil
}

func (p *Poller) Modify(fd int, token api.Token, interest api.Interest, flags api.PollFlags) error {
	if _, ok := p.Regs[fd]; !ok {
		return fmt.Errorf("fd %d not registered", fd)
	}
	p.Modifies++
	p.Regs[fd] = Registration{Token: token, Interest: interest, Flags: flags}
	return nil
}

func (p *Poller) Delete(fd int) error {
	if _, ok := p.Regs[fd]; !ok {
		return fmt.Errorf("fd %d not registered", fd)
	}
	delete(p.Regs, fd)
	p.Deletes = append(p.Deletes, fd)
	return nil
}

// Push queues an event for the next Wait.
func (p *Poller) Push(token api.Token, ready api.Interest) {
	p.events = append(p.events, api.Event{Token: token, Ready: ready})
}

func (p *Poller) Wait(events []api.Event, timeoutMs int) (int, error) {
	if p.WaitErr != nil {
		return 0, p.WaitErr
	}
	n := copy(events, p.events)
	p.events = p.events[n:]
	return n, nil
}

func (p *Poller) Close() error {
	p.Closed = true
	return nil
}
