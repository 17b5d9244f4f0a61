// File: stream/stream.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stream construction, capability model and state queries.

package stream

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/internal/critical"
	"github.com/momentics/hioload-stream/pool"
)

// Capability is the fixed set of directions a stream supports. It is also the
// direction argument of Shutdown.
type Capability uint8

const (
	Readable Capability = 1 << iota
	Writable

	Duplex = Readable | Writable
)

// CanRead reports whether the receive direction is included.
func (c Capability) CanRead() bool { return c&Readable != 0 }

// CanWrite reports whether the transmit direction is included.
func (c Capability) CanWrite() bool { return c&Writable != 0 }

func (c Capability) String() string {
	switch c {
	case Readable:
		return "readable"
	case Writable:
		return "writable"
	case Duplex:
		return "duplex"
	default:
		return "none"
	}
}

// State is the read-side demand state.
type State uint8

const (
	Idle State = iota
	Paused
	Flowing
)

func (s State) String() string {
	switch s {
	case Paused:
		return "paused"
	case Flowing:
		return "flowing"
	default:
		return "idle"
	}
}

// RxDemand asks the driver to deliver up to n bytes through Push.
type RxDemand func(s *Stream, n int)

// TxDemand asks the driver to start draining through Pull.
type TxDemand func(s *Stream)

type rxSide struct {
	state    State
	shutdown bool
	blocked  bool
	ended    bool
	buf      *pool.ByteBuffer
	capacity int
	demand   RxDemand
}

type txSide struct {
	shutdown bool
	blocked  bool
	finished bool
	buf      *pool.ByteBuffer
	capacity int
	demand   TxDemand
}

// Stream is the flow-controlled byte stream between a driver (Push/Pull) and
// an application (Read/Write). Initialise it with one of the Init methods or
// New constructors; the zero value is unusable. A Stream must not be copied
// after initialisation.
//
// Push may be called from a different context (ISR or goroutine) than the
// other operations. All state changes happen inside a critical section;
// demand callbacks, events and observer hooks run after it is left.
type Stream struct {
	caps Capability
	rx   rxSide
	tx   txSide

	errCode uint8
	piped   bool
	pipeTo  *Stream

	emitter api.Emitter
	base    api.EventCode
	alloc   api.Allocator
	mask    api.InterruptMask
	lock    critical.MutexMask
	obs     Observer
	log     *zap.Logger
	name    string
}

// InitReadable prepares s as a receive-only stream. Re-initialising fails
// while s still holds a buffer; see Released.
func (s *Stream) InitReadable(rxCapacity int, demandRx RxDemand, opts ...Option) error {
	if s == nil || demandRx == nil || rxCapacity <= 0 {
		return api.ErrInvalidArgument
	}
	if err := s.init(Readable, opts); err != nil {
		return err
	}
	s.rx.capacity = rxCapacity
	s.rx.demand = demandRx
	return nil
}

// InitWritable prepares s as a transmit-only stream.
func (s *Stream) InitWritable(txCapacity int, demandTx TxDemand, opts ...Option) error {
	if s == nil || demandTx == nil || txCapacity <= 0 {
		return api.ErrInvalidArgument
	}
	if err := s.init(Writable, opts); err != nil {
		return err
	}
	s.tx.capacity = txCapacity
	s.tx.demand = demandTx
	return nil
}

// InitDuplex prepares s for both directions.
func (s *Stream) InitDuplex(rxCapacity, txCapacity int, demandRx RxDemand, demandTx TxDemand, opts ...Option) error {
	if s == nil || demandRx == nil || demandTx == nil || rxCapacity <= 0 || txCapacity <= 0 {
		return api.ErrInvalidArgument
	}
	if err := s.init(Duplex, opts); err != nil {
		return err
	}
	s.rx.capacity = rxCapacity
	s.rx.demand = demandRx
	s.tx.capacity = txCapacity
	s.tx.demand = demandTx
	return nil
}

// NewReadable allocates and initialises a receive-only stream.
func NewReadable(rxCapacity int, demandRx RxDemand, opts ...Option) (*Stream, error) {
	s := &Stream{}
	if err := s.InitReadable(rxCapacity, demandRx, opts...); err != nil {
		return nil, err
	}
	return s, nil
}

// NewWritable allocates and initialises a transmit-only stream.
func NewWritable(txCapacity int, demandTx TxDemand, opts ...Option) (*Stream, error) {
	s := &Stream{}
	if err := s.InitWritable(txCapacity, demandTx, opts...); err != nil {
		return nil, err
	}
	return s, nil
}

// NewDuplex allocates and initialises a bidirectional stream.
func NewDuplex(rxCapacity, txCapacity int, demandRx RxDemand, demandTx TxDemand, opts ...Option) (*Stream, error) {
	s := &Stream{}
	if err := s.InitDuplex(rxCapacity, txCapacity, demandRx, demandTx, opts...); err != nil {
		return nil, err
	}
	return s, nil
}

// init resets s. A stream still holding a buffer must be drained and
// released first, otherwise its storage would never return to the allocator.
func (s *Stream) init(caps Capability, opts []Option) error {
	if s.rx.buf != nil || s.tx.buf != nil {
		return api.ErrInvalidArgument
	}
	*s = Stream{caps: caps}
	for _, opt := range opts {
		opt(s)
	}
	if s.alloc == nil {
		s.alloc = pool.DefaultArena()
	}
	if s.mask == nil {
		s.mask = &s.lock
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.log = s.log.With(zap.String("component", "stream"), zap.String("stream", s.name), zap.Stringer("caps", caps))
	return nil
}

// Capability returns the directions fixed at construction.
func (s *Stream) Capability() Capability { return s.caps }

// Name returns the label given with WithName.
func (s *Stream) Name() string { return s.name }

// EventBase returns the offset added to every emitted event code.
func (s *Stream) EventBase() api.EventCode { return s.base }

// Readable returns the number of buffered receive bytes.
func (s *Stream) Readable() int {
	if s == nil || !s.caps.CanRead() {
		return 0
	}
	sec := critical.Enter(s.mask)
	defer sec.Exit()
	if s.rx.buf == nil {
		return 0
	}
	return s.rx.buf.Len()
}

// Writable returns how many bytes Write would accept now; 0 once the transmit
// direction is shut down.
func (s *Stream) Writable() int {
	if s == nil || !s.caps.CanWrite() {
		return 0
	}
	sec := critical.Enter(s.mask)
	defer sec.Exit()
	if s.tx.shutdown {
		return 0
	}
	if s.tx.buf == nil {
		return s.tx.capacity
	}
	return s.tx.buf.Space()
}

// RxCacheSpace returns the receive headroom.
func (s *Stream) RxCacheSpace() (int, error) {
	if s == nil || !s.caps.CanRead() {
		return 0, api.ErrInvalidArgument
	}
	sec := critical.Enter(s.mask)
	defer sec.Exit()
	if s.rx.buf == nil {
		return s.rx.capacity, nil
	}
	return s.rx.buf.Space(), nil
}

// TxCacheSpace returns the transmit headroom.
func (s *Stream) TxCacheSpace() (int, error) {
	if s == nil || !s.caps.CanWrite() {
		return 0, api.ErrInvalidArgument
	}
	sec := critical.Enter(s.mask)
	defer sec.Exit()
	if s.tx.buf == nil {
		return s.tx.capacity, nil
	}
	return s.tx.buf.Space(), nil
}

// State returns the read-side demand state.
func (s *Stream) State() State {
	sec := critical.Enter(s.mask)
	defer sec.Exit()
	return s.rx.state
}

// RxBlocked reports whether the producer must stop pushing.
func (s *Stream) RxBlocked() bool {
	sec := critical.Enter(s.mask)
	defer sec.Exit()
	return s.rx.blocked
}

// TxBlocked reports whether the last Write was only partially accepted and
// no drain has happened since.
func (s *Stream) TxBlocked() bool {
	sec := critical.Enter(s.mask)
	defer sec.Exit()
	return s.tx.blocked
}

// Ended reports whether the end event has been emitted.
func (s *Stream) Ended() bool {
	sec := critical.Enter(s.mask)
	defer sec.Exit()
	return s.rx.ended
}

// Finished reports whether the finish event has been emitted.
func (s *Stream) Finished() bool {
	sec := critical.Enter(s.mask)
	defer sec.Exit()
	return s.tx.finished
}

// Released reports whether neither buffer is held. Owners destroy a stream
// only once this holds.
func (s *Stream) Released() bool {
	sec := critical.Enter(s.mask)
	defer sec.Exit()
	return s.rx.buf == nil && s.tx.buf == nil
}

// Snapshot is a point-in-time copy of stream state.
type Snapshot struct {
	Name       string `json:"name"`
	Capability string `json:"capability"`
	State      string `json:"state"`
	RxShutdown bool   `json:"rx_shutdown"`
	TxShutdown bool   `json:"tx_shutdown"`
	RxBlocked  bool   `json:"rx_blocked"`
	TxBlocked  bool   `json:"tx_blocked"`
	Piped      bool   `json:"piped"`
	Ended      bool   `json:"ended"`
	Finished   bool   `json:"finished"`
	RxBuffered int    `json:"rx_buffered"`
	TxBuffered int    `json:"tx_buffered"`
	RxHeld     bool   `json:"rx_held"`
	TxHeld     bool   `json:"tx_held"`
	ErrorCode  int    `json:"error_code"`
}

// Snapshot captures the current state for probes and metrics.
func (s *Stream) Snapshot() Snapshot {
	sec := critical.Enter(s.mask)
	defer sec.Exit()
	snap := Snapshot{
		Name:       s.name,
		Capability: s.caps.String(),
		State:      s.rx.state.String(),
		RxShutdown: s.rx.shutdown,
		TxShutdown: s.tx.shutdown,
		RxBlocked:  s.rx.blocked,
		TxBlocked:  s.tx.blocked,
		Piped:      s.piped,
		Ended:      s.rx.ended,
		Finished:   s.tx.finished,
		RxHeld:     s.rx.buf != nil,
		TxHeld:     s.tx.buf != nil,
		ErrorCode:  -int(s.errCode),
	}
	if s.rx.buf != nil {
		snap.RxBuffered = s.rx.buf.Len()
	}
	if s.tx.buf != nil {
		snap.TxBuffered = s.tx.buf.Len()
	}
	return snap
}

// release hands an empty buffer back to the allocator. It is the only place
// buffers are released and refuses to drop buffered bytes.
func release(buf **pool.ByteBuffer) bool {
	if *buf == nil {
		return true
	}
	if !(*buf).IsEmpty() {
		return false
	}
	(*buf).Release()
	*buf = nil
	return true
}
