// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral readiness reactor interface.

package reactor

import "time"

// Interest selects which readiness conditions a descriptor is watched for.
type Interest uint8

const (
	InterestRead Interest = 1 << iota
	InterestWrite
)

// EventReactor multiplexes readiness for a set of descriptors. It is level
// triggered: a descriptor stays reported while the condition holds, so
// callers adjust interest with Modify instead of draining to EAGAIN.
type EventReactor interface {
	// Register starts watching fd. Descriptors that cannot be polled (regular
	// files) return api.ErrNotSupported; treat them as always ready.
	Register(fd int, interest Interest) error

	// Modify replaces the interest set of a registered fd.
	Modify(fd int, interest Interest) error

	// Unregister stops watching fd.
	Unregister(fd int) error

	// Wait blocks up to timeout (negative: forever) and fills events.
	// An interrupted wait returns 0 events and no error.
	Wait(events []Event, timeout time.Duration) (n int, err error)

	// Close releases the poller.
	Close() error
}

// Event is one readiness report.
type Event struct {
	Fd       int
	Readable bool
	Writable bool
	Hangup   bool // peer closed or error condition; a read will observe it
}

func timeoutMillis(d time.Duration) int {
	if d < 0 {
		return -1
	}
	ms := int(d / time.Millisecond)
	if ms == 0 && d > 0 {
		ms = 1
	}
	return ms
}
