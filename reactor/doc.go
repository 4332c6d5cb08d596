// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the readiness multiplexer behind api.Poller: an
// epoll(7) implementation on Linux with edge-triggered and oneshot
// registration, and a stub reporting api.ErrNotSupported elsewhere.
package reactor
