// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for drivers, allocators and
// event sinks.

package fake

import (
	"sync"

	"github.com/momentics/hioload-stream/stream"
)

// Device is a scripted driver. It records every demand call and lets tests
// play the hardware side by hand.
type Device struct {
	mu        sync.Mutex
	rxDemands []int
	txDemands int
	sent      []byte
}

// NewDevice creates a device with no recorded activity.
func NewDevice() *Device {
	return &Device{}
}

// DemandRx implements stream.RxDemand.
func (d *Device) DemandRx(_ *stream.Stream, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rxDemands = append(d.rxDemands, n)
}

// DemandTx implements stream.TxDemand.
func (d *Device) DemandTx(_ *stream.Stream) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.txDemands++
}

// RxDemands returns a copy of the requested sizes, oldest first.
func (d *Device) RxDemands() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]int, len(d.rxDemands))
	copy(out, d.rxDemands)
	return out
}

// LastRxDemand returns the most recent request and whether there was one.
func (d *Device) LastRxDemand() (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.rxDemands) == 0 {
		return 0, false
	}
	return d.rxDemands[len(d.rxDemands)-1], true
}

// TxDemands returns how many times transmission was triggered.
func (d *Device) TxDemands() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.txDemands
}

// Reset forgets recorded demands and sent bytes.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rxDemands = d.rxDemands[:0]
	d.txDemands = 0
	d.sent = d.sent[:0]
}

// Drain pulls from s in chunks of chunk bytes until nothing is left and
// keeps the bytes as "sent".
func (d *Device) Drain(s *stream.Stream, chunk int) int {
	buf := make([]byte, chunk)
	total := 0
	for {
		n := s.Pull(buf)
		if n == 0 {
			return total
		}
		d.mu.Lock()
		d.sent = append(d.sent, buf[:n]...)
		d.mu.Unlock()
		total += n
	}
}

// Sent returns a copy of everything Drain pulled.
func (d *Device) Sent() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]byte, len(d.sent))
	copy(out, d.sent)
	return out
}
