// File: server/run.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Serve runs the event loop until ctx is cancelled or a fatal error occurs,
// then closes every connection, the listener and the multiplexer. A
// cancelled ctx is a clean stop and yields nil.
func (s *Server) Serve(ctx context.Context) error {
	defer s.closeAll()

	timeout := int(s.cfg.PollTimeout / time.Millisecond)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("stopping", zap.Int("connections", len(s.conns)))
			return nil
		default:
		}
		if err := s.Poll(timeout); err != nil {
			s.log.Error("event loop failed", zap.Error(err))
			return err
		}
	}
}
