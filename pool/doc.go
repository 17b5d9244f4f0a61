// Package pool
// Author: momentics <momentics@gmail.com>
//
// Memory layer for hioload-stream.
// Implements the circular slot allocator, the fixed-capacity byte FIFO built on
// it, and the byte-budgeted arena that backs lazily created stream buffers.
// See ring.go, bytebuf.go, arena.go for implementation details.
package pool
