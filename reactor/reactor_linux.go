//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based reactor implementation and factory.

package reactor

import (
	"errors"
	"fmt"

	"github.com/momentics/wsreactor/api"
	"golang.org/x/sys/unix"
)

// linuxReactor is an epoll-based event reactor. The token travels in the
// event's data field, so no fd→token table is kept.
type linuxReactor struct {
	epfd int
	raw  []unix.EpollEvent
}

// New constructs the platform reactor.
func New() (api.Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &linuxReactor{epfd: epfd}, nil
}

func epollEvents(interest api.Interest, flags api.PollFlags) uint32 {
	var ev uint32
	if interest&api.Readable != 0 {
		ev |= unix.EPOLLIN
	}
	if interest&api.Writable != 0 {
		ev |= unix.EPOLLOUT
	}
	if interest&api.Hangup != 0 {
		ev |= unix.EPOLLRDHUP
	}
	if flags&api.Edge != 0 {
		ev |= unix.EPOLLET
	}
	if flags&api.Oneshot != 0 {
		ev |= unix.EPOLLONESHOT
	}
	return ev
}

func (r *linuxReactor) ctl(op, fd int, token api.Token, interest api.Interest, flags api.PollFlags) error {
	ev := unix.EpollEvent{Events: epollEvents(interest, flags)}
	ev.Fd = int32(token)
	ev.Pad = int32(token >> 32)
	return unix.EpollCtl(r.epfd, op, fd, &ev)
}

// Add registers fd with epoll.
func (r *linuxReactor) Add(fd int, token api.Token, interest api.Interest, flags api.PollFlags) error {
	if err := r.ctl(unix.EPOLL_CTL_ADD, fd, token, interest, flags); err != nil {
		return fmt.Errorf("epoll ctl add fd=%d: %w", fd, err)
	}
	return nil
}

// Modify replaces the registration of fd, re-arming oneshot delivery.
func (r *linuxReactor) Modify(fd int, token api.Token, interest api.Interest, flags api.PollFlags) error {
	if err := r.ctl(unix.EPOLL_CTL_MOD, fd, token, interest, flags); err != nil {
		return fmt.Errorf("epoll ctl mod fd=%d: %w", fd, err)
	}
	return nil
}

// Delete removes fd from the epoll watch list.
func (r *linuxReactor) Delete(fd int) error {
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("epoll ctl del fd=%d: %w", fd, err)
	}
	return nil
}

// Wait blocks for events. timeoutMs < 0 means block infinitely.
func (r *linuxReactor) Wait(events []api.Event, timeoutMs int) (int, error) {
	if len(events) == 0 {
		return 0, api.ErrInvalidArgument
	}
	if cap(r.raw) < len(events) {
		r.raw = make([]unix.EpollEvent, len(events))
	}
	raw := r.raw[:len(events)]

	n, err := unix.EpollWait(r.epfd, raw, timeoutMs)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, nil // interrupted by signal, normal
		}
		return 0, fmt.Errorf("epoll wait: %w", err)
	}

	for i := 0; i < n; i++ {
		ev := raw[i]
		var ready api.Interest
		if ev.Events&unix.EPOLLIN != 0 {
			ready |= api.Readable
		}
		if ev.Events&unix.EPOLLOUT != 0 {
			ready |= api.Writable
		}
		if ev.Events&(unix.EPOLLRDHUP|unix.EPOLLHUP|unix.EPOLLERR) != 0 {
			ready |= api.Hangup
		}
		events[i] = api.Event{
			Token: api.Token(uint32(ev.Fd)) | api.Token(uint32(ev.Pad))<<32,
			Ready: ready,
		}
	}
	return n, nil
}

// Close closes the epoll instance.
func (r *linuxReactor) Close() error {
	return unix.Close(r.epfd)
}
