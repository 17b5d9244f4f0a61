// File: stream/rx.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Receive direction: driver-facing Push, application-facing Read and the
// Idle -> Paused <-> Flowing demand state machine.

package stream

import (
	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/internal/critical"
	"github.com/momentics/hioload-stream/pool"
)

// Push stores received bytes and returns how many were accepted. It is a
// no-op returning 0 when the stream is not readable, data is empty, or the
// receive direction is shut down or blocked. When the buffer fills, RxBlocked
// becomes true and the driver must stop pushing until demand is re-issued.
func (s *Stream) Push(data []byte) (int, error) {
	if s == nil || !s.caps.CanRead() || len(data) == 0 {
		return 0, nil
	}
	var fx effects
	n, err := s.push(data, &fx)
	s.apply(&fx)
	return n, err
}

func (s *Stream) push(data []byte, fx *effects) (int, error) {
	sec := critical.Enter(s.mask)
	defer sec.Exit()

	rx := &s.rx
	if rx.shutdown || rx.blocked {
		return 0, nil
	}
	if rx.buf == nil {
		buf, err := pool.AllocateByteBuffer(s.alloc, rx.capacity)
		if err != nil {
			fx.allocFailed |= Readable
			return 0, err
		}
		rx.buf = buf
	}

	if rx.state == Flowing && rx.buf.IsEmpty() {
		fx.emit(api.EventData)
	}
	n := rx.buf.Give(data)
	if rx.buf.IsFull() {
		rx.blocked = true
		fx.blocked |= Readable
	}
	fx.transfer(OpPush, n)
	return n, nil
}

// Read moves up to len(out) buffered bytes into out. It never blocks: with
// nothing buffered it (re-)issues demand for len(out) bytes and returns 0.
// The first Read on an Idle stream moves it to Paused and seeds demand for
// len(out) before serving buffered bytes; if that read also unblocks the
// driver, a second demand for the freed space follows. No demand is issued
// once the receive direction is shut down, including the Idle seed.
func (s *Stream) Read(out []byte) (int, error) {
	if s == nil || !s.caps.CanRead() || out == nil {
		return 0, api.ErrInvalidArgument
	}
	var fx effects
	n := s.read(out, &fx)
	s.apply(&fx)
	return n, nil
}

func (s *Stream) read(out []byte, fx *effects) int {
	sec := critical.Enter(s.mask)
	defer sec.Exit()

	rx := &s.rx
	seeded := false
	if rx.state == Idle {
		rx.state = Paused
		seeded = true
	}

	if rx.buf == nil || rx.buf.IsEmpty() {
		if !rx.shutdown {
			fx.demandRx(len(out))
		}
		return 0
	}
	if seeded && !rx.shutdown {
		fx.demandRx(len(out))
	}

	n := rx.buf.Take(out)
	if rx.shutdown {
		s.endLocked(fx)
	} else if n > 0 && rx.blocked {
		rx.blocked = false
		fx.unblocked |= Readable
		fx.demandRx(rx.buf.Space())
	}
	fx.transfer(OpRead, n)
	return n
}

// Unshift pushes c back in front of the receive buffer. It returns 1 when
// stored and 0 when the buffer is full or not yet allocated.
func (s *Stream) Unshift(c byte) (int, error) {
	if s == nil || !s.caps.CanRead() {
		return 0, api.ErrInvalidArgument
	}
	sec := critical.Enter(s.mask)
	defer sec.Exit()

	if s.rx.buf == nil || !s.rx.buf.Unshift(c) {
		return 0, nil
	}
	return 1, nil
}

// Pause stops requesting data. Demand already issued is not withdrawn; bytes
// in flight are still accepted.
func (s *Stream) Pause() {
	if s == nil || !s.caps.CanRead() {
		return
	}
	sec := critical.Enter(s.mask)
	defer sec.Exit()
	s.rx.state = Paused
}

// Resume switches to Flowing and requests as much as the buffer can take.
// It does nothing when already flowing.
func (s *Stream) Resume() {
	if s == nil || !s.caps.CanRead() {
		return
	}
	var fx effects
	s.resume(&fx)
	s.apply(&fx)
}

func (s *Stream) resume(fx *effects) {
	sec := critical.Enter(s.mask)
	defer sec.Exit()

	rx := &s.rx
	if rx.state == Flowing {
		return
	}
	rx.state = Flowing
	if rx.buf != nil {
		fx.demandRx(rx.buf.Space())
	} else {
		fx.demandRx(rx.capacity)
	}
}

// endLocked emits end once the receive buffer is gone or empty.
func (s *Stream) endLocked(fx *effects) {
	rx := &s.rx
	if rx.ended || !release(&rx.buf) {
		return
	}
	rx.ended = true
	fx.emit(api.EventEnd)
}
