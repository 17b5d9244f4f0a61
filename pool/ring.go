// File: pool/ring.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-capacity circular slot allocator over caller-supplied storage.
// This is the only place that does index arithmetic; higher layers use the
// four end operations and address elements through Slot.

package pool

import "github.com/momentics/hioload-stream/api"

// SlotRing tracks which slots of storage hold live elements, in circular
// order starting at head. It is not safe for concurrent use; callers guard it
// with a critical section.
type SlotRing[T any] struct {
	slots []T
	head  int
	count int
}

// Ensure compile-time compliance.
var _ api.SlotAllocator = (*SlotRing[byte])(nil)

// NewSlotRing returns a ring over storage; capacity is len(storage).
func NewSlotRing[T any](storage []T) *SlotRing[T] {
	r := &SlotRing[T]{}
	r.Init(storage)
	return r
}

// Init (re)binds the ring to storage and empties it.
func (r *SlotRing[T]) Init(storage []T) {
	r.slots = storage
	r.head = 0
	r.count = 0
}

// RemoveHead releases the oldest slot and returns its index, or api.NoSlot.
func (r *SlotRing[T]) RemoveHead() int {
	if r.count == 0 {
		return api.NoSlot
	}
	idx := r.head
	r.head++
	if r.head == len(r.slots) {
		r.head = 0
	}
	r.count--
	return idx
}

// InsertHead claims the slot before the oldest one, or api.NoSlot when full.
func (r *SlotRing[T]) InsertHead() int {
	if r.count == len(r.slots) {
		return api.NoSlot
	}
	if r.head == 0 {
		r.head = len(r.slots)
	}
	r.head--
	r.count++
	return r.head
}

// InsertTail claims the slot after the newest one, or api.NoSlot when full.
func (r *SlotRing[T]) InsertTail() int {
	if r.count == len(r.slots) {
		return api.NoSlot
	}
	idx := r.wrap(r.head + r.count)
	r.count++
	return idx
}

// RemoveTail releases the newest slot and returns its index, or api.NoSlot.
func (r *SlotRing[T]) RemoveTail() int {
	if r.count == 0 {
		return api.NoSlot
	}
	r.count--
	return r.wrap(r.head + r.count)
}

// Slot addresses element idx of the backing storage.
func (r *SlotRing[T]) Slot(idx int) *T {
	return &r.slots[idx]
}

// Head returns the index of the oldest slot; meaningless when empty.
func (r *SlotRing[T]) Head() int { return r.head }

// Len returns the number of live slots.
func (r *SlotRing[T]) Len() int { return r.count }

// Cap returns the fixed capacity.
func (r *SlotRing[T]) Cap() int { return len(r.slots) }

// IsEmpty reports whether no slot is live.
func (r *SlotRing[T]) IsEmpty() bool { return r.count == 0 }

// IsFull reports whether every slot is live. A zero-capacity ring is both
// empty and full.
func (r *SlotRing[T]) IsFull() bool { return r.count == len(r.slots) }

// Storage returns the backing storage the ring was bound to.
func (r *SlotRing[T]) Storage() []T { return r.slots }

func (r *SlotRing[T]) wrap(i int) int {
	if i >= len(r.slots) {
		i -= len(r.slots)
	}
	return i
}
