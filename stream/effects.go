// File: stream/effects.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Side effects gathered inside the critical section and run after it.
// Drivers may re-enter the stream from a demand callback, so nothing may call
// out while the mask is held.

package stream

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-stream/api"
)

// Op names a byte transfer for observers.
type Op uint8

const (
	OpPush Op = iota
	OpRead
	OpWrite
	OpPull
)

func (o Op) String() string {
	switch o {
	case OpPush:
		return "push"
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	default:
		return "pull"
	}
}

// Observer receives notifications after each operation. Calls happen outside
// the critical section, on the caller's goroutine.
type Observer interface {
	OnTransfer(s *Stream, op Op, n int)
	OnBackpressure(s *Stream, dir Capability, blocked bool)
	OnEvent(s *Stream, ev api.EventCode)
	OnAllocFailure(s *Stream, dir Capability)
}

type effects struct {
	events  [3]api.EventCode
	nevents int

	rxDemands  [2]int
	nrx        int
	txDemanded bool

	op    Op
	moved int

	blocked     Capability
	unblocked   Capability
	allocFailed Capability
}

func (fx *effects) emit(ev api.EventCode) {
	if fx.nevents < len(fx.events) {
		fx.events[fx.nevents] = ev
		fx.nevents++
	}
}

// demandRx queues a receive demand. A single Read can seed demand and then
// unblock the driver, so up to two are kept and issued in order.
func (fx *effects) demandRx(n int) {
	if fx.nrx < len(fx.rxDemands) {
		fx.rxDemands[fx.nrx] = n
		fx.nrx++
	}
}

func (fx *effects) transfer(op Op, n int) {
	fx.op = op
	fx.moved = n
}

func (s *Stream) apply(fx *effects) {
	if s.obs != nil {
		if fx.moved > 0 {
			s.obs.OnTransfer(s, fx.op, fx.moved)
		}
		for _, dir := range [...]Capability{Readable, Writable} {
			if fx.blocked&dir != 0 {
				s.obs.OnBackpressure(s, dir, true)
			}
			if fx.unblocked&dir != 0 {
				s.obs.OnBackpressure(s, dir, false)
			}
			if fx.allocFailed&dir != 0 {
				s.obs.OnAllocFailure(s, dir)
			}
		}
	}
	if fx.allocFailed != 0 {
		s.log.Debug("buffer allocation failed", zap.Stringer("dir", fx.allocFailed))
	}

	for i := 0; i < fx.nevents; i++ {
		ev := fx.events[i]
		switch ev {
		case api.EventEnd, api.EventFinish:
			s.log.Debug("stream closed", zap.Stringer("event", ev))
		case api.EventError:
			s.log.Debug("stream error", zap.Int("code", s.ErrorCode()))
		}
		if s.obs != nil {
			s.obs.OnEvent(s, ev)
		}
		if s.emitter != nil {
			s.emitter.Emit(s.base + ev)
		}
	}

	for i := 0; i < fx.nrx; i++ {
		s.rx.demand(s, fx.rxDemands[i])
	}
	if fx.txDemanded {
		s.tx.demand(s)
	}
}
