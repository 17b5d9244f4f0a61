// File: internal/critical/section.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package critical provides the scoped interrupt guard used around every
// mutation of stream and buffer state.
package critical

import (
	"sync"

	"github.com/momentics/hioload-stream/api"
)

// Section is an entered critical section. Obtain it with Enter and always
// leave it with a deferred Exit:
//
//	sec := critical.Enter(mask)
//	defer sec.Exit()
type Section struct {
	mask  api.InterruptMask
	state uint32
}

// Enter disables the interrupt source behind mask. A nil mask yields a no-op
// section.
func Enter(mask api.InterruptMask) Section {
	if mask == nil {
		return Section{}
	}
	return Section{mask: mask, state: mask.Disable()}
}

// Exit restores the state captured by Enter.
func (s Section) Exit() {
	if s.mask != nil {
		s.mask.Restore(s.state)
	}
}

// MutexMask stands in for an interrupt controller on hosted builds, where the
// "ISR" is another goroutine. The zero value is ready to use. It is not
// reentrant.
type MutexMask struct {
	mu sync.Mutex
}

// Disable implements api.InterruptMask.
func (m *MutexMask) Disable() uint32 {
	m.mu.Lock()
	return 0
}

// Restore implements api.InterruptMask.
func (m *MutexMask) Restore(uint32) {
	m.mu.Unlock()
}

// NopMask is for strictly single-threaded use, e.g. tests and tools that never
// push from another context.
type NopMask struct{}

func (NopMask) Disable() uint32 { return 0 }
func (NopMask) Restore(uint32)  {}

var (
	_ api.InterruptMask = (*MutexMask)(nil)
	_ api.InterruptMask = NopMask{}
)
