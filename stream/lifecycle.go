// File: stream/lifecycle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Shutdown, out-of-band error code and pipe bookkeeping.

package stream

import (
	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/internal/critical"
)

// Shutdown closes the given directions. Directions the stream does not
// support are ignored. A direction whose buffer is absent or empty closes at
// once (end / finish is emitted now); otherwise the event follows the Read or
// Pull that empties it. Each event fires at most once.
func (s *Stream) Shutdown(dir Capability) {
	if s == nil {
		return
	}
	var fx effects
	s.shutdown(dir&s.caps, &fx)
	s.apply(&fx)
}

func (s *Stream) shutdown(dir Capability, fx *effects) {
	sec := critical.Enter(s.mask)
	defer sec.Exit()

	if dir.CanRead() {
		s.rx.shutdown = true
		s.endLocked(fx)
	}
	if dir.CanWrite() {
		s.tx.shutdown = true
		s.finishLocked(fx)
	}
}

// SetError records an application-level error code and emits the error event
// when code is non-zero. Buffers and shutdown state are left alone.
func (s *Stream) SetError(code uint8) {
	if s == nil {
		return
	}
	var fx effects
	func() {
		sec := critical.Enter(s.mask)
		defer sec.Exit()
		s.errCode = code
	}()
	if code != 0 {
		fx.emit(api.EventError)
	}
	s.apply(&fx)
}

// ErrorCode returns the negated recorded code; 0 means no error.
func (s *Stream) ErrorCode() int {
	if s == nil {
		return api.Errno(api.ErrInvalidArgument)
	}
	sec := critical.Enter(s.mask)
	defer sec.Exit()
	return -int(s.errCode)
}

// Pipe records consumer as the downstream of s and switches s to Flowing.
// Moving bytes is left to the owner of the relation (see package pump); s
// does not own consumer.
func (s *Stream) Pipe(consumer *Stream) error {
	if s == nil || !s.caps.CanRead() || consumer == nil || !consumer.caps.CanWrite() {
		return api.ErrInvalidArgument
	}
	sec := critical.Enter(s.mask)
	defer sec.Exit()

	if s.piped {
		return api.ErrInvalidArgument
	}
	s.piped = true
	s.rx.state = Flowing
	s.pipeTo = consumer
	return nil
}

// Unpipe drops the downstream relation and returns s to Paused.
func (s *Stream) Unpipe() error {
	if s == nil || !s.caps.CanRead() {
		return api.ErrInvalidArgument
	}
	sec := critical.Enter(s.mask)
	defer sec.Exit()

	if !s.piped {
		return api.ErrInvalidArgument
	}
	s.piped = false
	s.rx.state = Paused
	s.pipeTo = nil
	return nil
}

// Piped reports whether a downstream is attached.
func (s *Stream) Piped() bool {
	sec := critical.Enter(s.mask)
	defer sec.Exit()
	return s.piped
}

// PipeTarget returns the downstream stream, or nil.
func (s *Stream) PipeTarget() *Stream {
	sec := critical.Enter(s.mask)
	defer sec.Exit()
	return s.pipeTo
}
