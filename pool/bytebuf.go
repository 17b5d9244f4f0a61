// File: pool/bytebuf.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Byte FIFO with fixed capacity, built on SlotRing. Storage comes from an
// api.Allocator so the buffer can be created on first use and handed back
// once drained.

package pool

import (
	"github.com/momentics/hioload-stream/api"
)

// ByteBuffer is a fixed-capacity byte FIFO. Not safe for concurrent use.
type ByteBuffer struct {
	ring  SlotRing[byte]
	alloc api.Allocator
}

// AllocateByteBuffer obtains capacity bytes from alloc. It fails with
// api.ErrOutOfMemory when the allocator refuses the request.
func AllocateByteBuffer(alloc api.Allocator, capacity int) (*ByteBuffer, error) {
	if alloc == nil || capacity < 0 {
		return nil, api.ErrInvalidArgument
	}
	mem := alloc.Alloc(capacity)
	if mem == nil && capacity > 0 {
		return nil, api.ErrOutOfMemory
	}
	b := &ByteBuffer{alloc: alloc}
	b.ring.Init(mem)
	return b, nil
}

// Give copies as many bytes of data as fit and returns how many were stored.
func (b *ByteBuffer) Give(data []byte) int {
	n := 0
	for _, c := range data {
		idx := b.ring.InsertTail()
		if idx == api.NoSlot {
			break
		}
		*b.ring.Slot(idx) = c
		n++
	}
	return n
}

// Take moves up to len(out) bytes, oldest first, into out.
func (b *ByteBuffer) Take(out []byte) int {
	n := 0
	for n < len(out) {
		idx := b.ring.RemoveHead()
		if idx == api.NoSlot {
			break
		}
		out[n] = *b.ring.Slot(idx)
		n++
	}
	return n
}

// Peek copies up to len(out) bytes without removing them.
func (b *ByteBuffer) Peek(out []byte) int {
	n := min(len(out), b.ring.Len())
	idx := b.ring.Head()
	for i := 0; i < n; i++ {
		out[i] = *b.ring.Slot(idx)
		idx++
		if idx == b.ring.Cap() {
			idx = 0
		}
	}
	return n
}

// Unshift puts c back in front of the oldest byte. It reports false when the
// buffer is full.
func (b *ByteBuffer) Unshift(c byte) bool {
	idx := b.ring.InsertHead()
	if idx == api.NoSlot {
		return false
	}
	*b.ring.Slot(idx) = c
	return true
}

// Release hands the storage back to the allocator. The caller must ensure
// Len() == 0; releasing a non-empty buffer discards its bytes and is a usage
// bug. The buffer must not be used afterwards.
func (b *ByteBuffer) Release() {
	if b.alloc != nil {
		b.alloc.Free(b.ring.Storage())
	}
	b.ring.Init(nil)
	b.alloc = nil
}

// Len returns the number of bytes held.
func (b *ByteBuffer) Len() int { return b.ring.Len() }

// Space returns Cap() - Len().
func (b *ByteBuffer) Space() int { return b.ring.Cap() - b.ring.Len() }

// Cap returns the fixed capacity.
func (b *ByteBuffer) Cap() int { return b.ring.Cap() }

// IsEmpty reports Len() == 0.
func (b *ByteBuffer) IsEmpty() bool { return b.ring.IsEmpty() }

// IsFull reports Space() == 0.
func (b *ByteBuffer) IsFull() bool { return b.ring.IsFull() }
