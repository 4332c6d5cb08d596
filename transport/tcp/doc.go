// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp provides non-blocking TCP listening and stream sockets on raw
// descriptors, suitable for registration with an edge-triggered reactor.
// Would-block conditions surface as api.ErrWouldBlock.
package tcp
