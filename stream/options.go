// File: stream/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package stream

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-stream/api"
)

// Option customizes stream initialization.
type Option func(*Stream)

// WithEmitter sets the event sink. The stream does not own it; without one,
// events are dropped.
func WithEmitter(e api.Emitter) Option {
	return func(s *Stream) {
		s.emitter = e
	}
}

// WithEventBase offsets emitted codes so streams can share one sink.
func WithEventBase(base api.EventCode) Option {
	return func(s *Stream) {
		s.base = base
	}
}

// WithAllocator sets where buffers are allocated from. Defaults to
// pool.DefaultArena().
func WithAllocator(a api.Allocator) Option {
	return func(s *Stream) {
		s.alloc = a
	}
}

// WithInterruptMask sets the guard for state mutation. Defaults to a
// per-stream mutex.
func WithInterruptMask(m api.InterruptMask) Option {
	return func(s *Stream) {
		s.mask = m
	}
}

// WithObserver attaches transfer and lifecycle hooks.
func WithObserver(o Observer) Option {
	return func(s *Stream) {
		s.obs = o
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Stream) {
		s.log = l
	}
}

// WithName labels the stream in logs, probes and metrics.
func WithName(name string) Option {
	return func(s *Stream) {
		s.name = name
	}
}
