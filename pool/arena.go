// File: pool/arena.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Byte-budgeted allocator with size-class reuse.

package pool

import (
	"sync"

	"github.com/eapache/queue"
	"golang.org/x/sys/cpu"

	"github.com/momentics/hioload-stream/api"
)

// maxCachedPerClass bounds how many released blocks of one size are kept.
const maxCachedPerClass = 64

// Arena models the device heap: at most budget bytes may be handed out at a
// time. Released blocks are parked per exact size and reused before any new
// allocation. A zero budget means unbounded.
type Arena struct {
	mu     sync.Mutex
	budget int64
	free   map[int]*queue.Queue

	_ cpu.CacheLinePad

	inUse      int64
	totalAlloc int64
	totalFree  int64
	failures   int64
}

// NewArena creates an arena limited to budget bytes (0 = unbounded).
func NewArena(budget int) *Arena {
	if budget < 0 {
		budget = 0
	}
	return &Arena{
		budget: int64(budget),
		free:   make(map[int]*queue.Queue),
	}
}

// Alloc returns a zero-length-safe block of size bytes or nil when the budget
// would be exceeded.
func (a *Arena) Alloc(size int) []byte {
	if size < 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.budget > 0 && a.inUse+int64(size) > a.budget {
		a.failures++
		return nil
	}
	var b []byte
	if q, ok := a.free[size]; ok && q.Length() > 0 {
		b = q.Remove().([]byte)
	} else {
		b = make([]byte, size)
	}
	a.inUse += int64(size)
	a.totalAlloc++
	return b
}

// Free returns b to the arena.
func (a *Arena) Free(b []byte) {
	if b == nil {
		return
	}
	size := cap(b)
	a.mu.Lock()
	defer a.mu.Unlock()

	a.inUse -= int64(size)
	a.totalFree++
	q, ok := a.free[size]
	if !ok {
		q = queue.New()
		a.free[size] = q
	}
	if q.Length() < maxCachedPerClass {
		q.Add(b[:size])
	}
}

// Stats implements api.Allocator.
func (a *Arena) Stats() api.AllocatorStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return api.AllocatorStats{
		TotalAlloc: a.totalAlloc,
		TotalFree:  a.totalFree,
		Failures:   a.failures,
		InUse:      a.inUse,
		Budget:     a.budget,
	}
}

var _ api.Allocator = (*Arena)(nil)

var (
	defaultOnce  sync.Once
	defaultArena *Arena
)

// DefaultArena returns the process-wide unbounded arena used when a stream is
// built without an explicit allocator.
func DefaultArena() *Arena {
	defaultOnce.Do(func() {
		defaultArena = NewArena(0)
	})
	return defaultArena
}
