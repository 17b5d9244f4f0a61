// Package api
// Author: momentics@gmail.com
//
// Slot allocation contract for fixed-capacity circular storage.

package api

// NoSlot is returned by SlotAllocator operations when the ring is empty
// (removal) or full (insertion).
const NoSlot = -1

// SlotAllocator hands out indices into caller-owned storage in circular order.
// It never touches element contents.
type SlotAllocator interface {
	// RemoveHead releases the oldest slot.
	RemoveHead() int
	// InsertHead claims a slot in front of the oldest one.
	InsertHead() int
	// InsertTail claims a slot after the newest one.
	InsertTail() int
	// RemoveTail releases the newest slot.
	RemoveTail() int

	Len() int
	Cap() int
	IsEmpty() bool
	IsFull() bool
}
