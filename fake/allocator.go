// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"

	"github.com/momentics/hioload-stream/api"
)

// Allocator is a heap allocator whose failures are scripted.
type Allocator struct {
	mu       sync.Mutex
	failNext int
	stats    api.AllocatorStats
}

// FailNext makes the next n Alloc calls return nil.
func (a *Allocator) FailNext(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failNext = n
}

func (a *Allocator) Alloc(size int) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failNext > 0 {
		a.failNext--
		a.stats.Failures++
		return nil
	}
	a.stats.TotalAlloc++
	a.stats.InUse += int64(size)
	return make([]byte, size)
}

func (a *Allocator) Free(b []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.TotalFree++
	a.stats.InUse -= int64(cap(b))
}

func (a *Allocator) Stats() api.AllocatorStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

var _ api.Allocator = (*Allocator)(nil)
