// Package stream
// Author: momentics <momentics@gmail.com>
//
// Flow-controlled byte streams for device I/O (serial lines, USB endpoints,
// sockets, console).
//
// A Stream sits between a driver and the application. The driver answers
// demand callbacks: RxDemand asks it to Push up to n received bytes, TxDemand
// asks it to Pull queued bytes for transmission. The application uses Read,
// Write, Pause, Resume and Pipe. Neither side ever blocks; continuation is
// signalled through demand calls and through events sent to an api.Emitter:
//
//	data    receive buffer went from empty to non-empty while Flowing
//	drain   a short Write can be retried
//	end     receive side shut down and fully read
//	finish  transmit side shut down and fully pulled
//	error   SetError recorded a non-zero code
//
// Buffers are taken from an api.Allocator on first Push or Write, with the
// capacity fixed at construction, and given back once drained after shutdown.
package stream
