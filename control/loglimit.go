// control/loglimit.go
// Author: momentics <momentics@gmail.com>
//
// Token-bucket throttle for per-connection error logging.

package control

import (
	"golang.org/x/time/rate"
)

// LogLimiter decides whether an error line may be logged.
type LogLimiter struct {
	limiter    *rate.Limiter
	suppressed uint64
	metrics    *Metrics
}

// NewLogLimiter allows perSecond lines on average with bursts up to burst.
// A non-positive perSecond disables throttling.
func NewLogLimiter(perSecond float64, burst int, m *Metrics) *LogLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &LogLimiter{limiter: rate.NewLimiter(limit, burst), metrics: m}
}

// Allow reports whether a line may be emitted now. It returns the number of
// lines suppressed since the last allowed one so callers can report it.
func (l *LogLimiter) Allow() (bool, uint64) {
	if !l.limiter.Allow() {
		l.suppressed++
		if l.metrics != nil {
			l.metrics.LogsSuppressed.Inc()
		}
		return false, 0
	}
	n := l.suppressed
	l.suppressed = 0
	return true, n
}
