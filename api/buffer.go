// Package api
// Author: momentics
//
// Fixed-budget memory for stream buffers. On a device the allocator is the
// board heap; hosted builds bound it the same way so OutOfMemory paths are real.

package api

// Allocator hands out backing storage for byte buffers.
type Allocator interface {
	// Alloc returns a slice of exactly size bytes, or nil when the budget
	// cannot satisfy the request.
	Alloc(size int) []byte

	// Free returns storage obtained from Alloc. The slice must not be used
	// afterwards.
	Free(b []byte)

	// Stats exposes accounting for observability.
	Stats() AllocatorStats
}

// AllocatorStats aggregates allocation accounting.
type AllocatorStats struct {
	TotalAlloc int64 // successful Alloc calls
	TotalFree  int64 // Free calls
	Failures   int64 // Alloc calls refused for lack of budget
	InUse      int64 // bytes currently handed out
	Budget     int64 // byte budget, 0 when unbounded
}
