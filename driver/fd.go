// File: driver/fd.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// FD is a demand-driven driver: the stream's demand callbacks only record
// what is wanted, and Service performs the non-blocking syscalls when the
// reactor reports readiness. Nothing here blocks.

// Package driver binds streams to OS descriptors.
package driver

import (
	"sync"

	"go.uber.org/zap"

	"github.com/momentics/hioload-stream/reactor"
	"github.com/momentics/hioload-stream/stream"
)

const defaultChunk = 512

// FD drives one stream from one file descriptor.
type FD struct {
	mu sync.Mutex

	fd      int
	flags   int
	s       *stream.Stream
	wanted  int  // bytes requested by the last receive demand
	pending bool // transmit demanded and not yet pulled dry
	eof     bool

	rxBuf []byte
	txBuf []byte
	out   []byte // pulled, not yet written

	log *zap.Logger
}

// Option customizes an FD.
type Option func(*FD)

// WithChunk bounds a single read or write syscall.
func WithChunk(n int) Option {
	return func(d *FD) {
		if n > 0 {
			d.rxBuf = make([]byte, n)
			d.txBuf = make([]byte, n)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *FD) {
		d.log = l
	}
}

func (d *FD) applyOptions(opts []Option) {
	for _, opt := range opts {
		opt(d)
	}
	if d.rxBuf == nil {
		d.rxBuf = make([]byte, defaultChunk)
		d.txBuf = make([]byte, defaultChunk)
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	d.log = d.log.With(zap.String("component", "driver"), zap.Int("fd", d.fd))
}

// Fd returns the descriptor number.
func (d *FD) Fd() int { return d.fd }

// Bind attaches the stream the driver serves. The stream must have been
// created with DemandRx and/or DemandTx as its callbacks.
func (d *FD) Bind(s *stream.Stream) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.s = s
}

// DemandRx implements stream.RxDemand.
func (d *FD) DemandRx(_ *stream.Stream, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wanted = n
}

// DemandTx implements stream.TxDemand.
func (d *FD) DemandTx(_ *stream.Stream) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = true
}

// Interest reports which readiness conditions Service currently needs.
func (d *FD) Interest() reactor.Interest {
	d.mu.Lock()
	defer d.mu.Unlock()
	var in reactor.Interest
	if d.s == nil {
		return in
	}
	if d.s.Capability().CanRead() && d.wanted > 0 && !d.eof && !d.s.RxBlocked() {
		in |= reactor.InterestRead
	}
	if len(d.out) > 0 || d.pending {
		in |= reactor.InterestWrite
	}
	return in
}

// EOF reports whether a read returned end of file.
func (d *FD) EOF() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.eof
}

// rxWant returns how many bytes to read now, 0 when reading is pointless.
func (d *FD) rxWant() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.s
	if s == nil || !s.Capability().CanRead() || d.eof || d.wanted <= 0 || s.RxBlocked() {
		return 0
	}
	space, err := s.RxCacheSpace()
	if err != nil {
		return 0
	}
	return min(d.wanted, space, len(d.rxBuf))
}

func (d *FD) consumed(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wanted -= n
	if d.wanted < 0 {
		d.wanted = 0
	}
}

// nextOut returns the bytes to write, pulling from the stream when the
// previous batch is done.
func (d *FD) nextOut() []byte {
	d.mu.Lock()
	s, out, pending := d.s, d.out, d.pending
	d.mu.Unlock()
	if len(out) > 0 || !pending || s == nil {
		return out
	}

	// Pull may emit finish or drain, which can re-enter DemandTx.
	n := s.Pull(d.txBuf)

	d.mu.Lock()
	defer d.mu.Unlock()
	if n == 0 {
		d.pending = false
		return nil
	}
	d.out = d.txBuf[:n]
	return d.out
}

func (d *FD) wrote(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.out = d.out[n:]
}

// Stream returns the bound stream, or nil.
func (d *FD) Stream() *stream.Stream {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.s
}

// Done reports whether the driver has nothing left to do: the receive side
// hit end of file and the transmit side finished with every pulled byte
// written.
func (d *FD) Done() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.s == nil {
		return false
	}
	caps := d.s.Capability()
	rxDone := !caps.CanRead() || d.eof
	txDone := !caps.CanWrite() || (d.s.Finished() && len(d.out) == 0)
	return rxDone && txDone
}
