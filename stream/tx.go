// File: stream/tx.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Transmit direction: application-facing Write, driver-facing Pull.

package stream

import (
	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/internal/critical"
	"github.com/momentics/hioload-stream/pool"
)

// Write queues data for transmission and returns how many bytes were
// accepted. A short count sets TxBlocked; the writer should retry the rest
// after the drain event. Writes after shutdown are dropped and return 0.
func (s *Stream) Write(data []byte) (int, error) {
	if s == nil || !s.caps.CanWrite() || data == nil {
		return 0, api.ErrInvalidArgument
	}
	var fx effects
	n, err := s.write(data, &fx)
	s.apply(&fx)
	return n, err
}

func (s *Stream) write(data []byte, fx *effects) (int, error) {
	sec := critical.Enter(s.mask)
	defer sec.Exit()

	tx := &s.tx
	if tx.shutdown {
		return 0, nil
	}
	if tx.buf == nil {
		buf, err := pool.AllocateByteBuffer(s.alloc, tx.capacity)
		if err != nil {
			fx.allocFailed |= Writable
			return 0, err
		}
		tx.buf = buf
	}

	trigger := tx.buf.IsEmpty()
	n := tx.buf.Give(data)
	if n != len(data) {
		if !tx.blocked {
			fx.blocked |= Writable
		}
		tx.blocked = true
	}
	if n > 0 && trigger {
		fx.txDemanded = true
	}
	fx.transfer(OpWrite, n)
	return n, nil
}

// Pull hands up to len(out) queued bytes to the driver. Once the transmit
// direction is shut down, the pull that empties the buffer emits finish;
// otherwise a pull that frees space after a short Write emits drain.
func (s *Stream) Pull(out []byte) int {
	if s == nil || !s.caps.CanWrite() || len(out) == 0 {
		return 0
	}
	var fx effects
	n := s.pull(out, &fx)
	s.apply(&fx)
	return n
}

func (s *Stream) pull(out []byte, fx *effects) int {
	sec := critical.Enter(s.mask)
	defer sec.Exit()

	tx := &s.tx
	if tx.buf == nil {
		return 0
	}
	n := tx.buf.Take(out)
	if tx.shutdown {
		s.finishLocked(fx)
	} else if n > 0 && tx.blocked {
		tx.blocked = false
		fx.unblocked |= Writable
		fx.emit(api.EventDrain)
	}
	fx.transfer(OpPull, n)
	return n
}

// finishLocked emits finish once the transmit buffer is gone or empty.
func (s *Stream) finishLocked(fx *effects) {
	tx := &s.tx
	if tx.finished || !release(&tx.buf) {
		return
	}
	tx.finished = true
	fx.emit(api.EventFinish)
}
