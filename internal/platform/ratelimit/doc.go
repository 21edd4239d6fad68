// Package ratelimit provides a fixed-window request limiter behind an
// injectable Store, with an in-process implementation and HTTP middleware.
//
// LRUStore counters are process-local. A multi-instance deployment needs a
// shared Store implementation.
package ratelimit
