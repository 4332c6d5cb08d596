// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics and log throttling for wsreactor.
//
// Provides:
//   - Prometheus collectors describing connections, handshakes and frames
//   - A token-bucket log limiter so a misbehaving peer cannot flood the log
package control
