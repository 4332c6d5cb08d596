// Package pool
// Author: momentics <momentics@gmail.com>
//
// Reusable byte buffers for socket reads. Connections come and go much
// faster than their read buffers need to be reallocated.
package pool
