// File: event/loop.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Emit only enqueues, so it is safe from a driver context; handlers run later
// on the cooperative loop that calls Dispatch.

// Package event implements the event sink consumed by streams.
package event

import (
	"sync"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/momentics/hioload-stream/api"
)

// Handler reacts to one dispatched event code.
type Handler func(code api.EventCode)

// Loop queues emitted codes and dispatches them to registered handlers.
type Loop struct {
	mu       sync.Mutex
	pending  *queue.Queue
	handlers map[api.EventCode][]Handler
	any      []Handler
	log      *zap.Logger
}

// Option customizes a Loop.
type Option func(*Loop)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(el *Loop) {
		el.log = l
	}
}

// NewLoop creates an empty loop.
func NewLoop(opts ...Option) *Loop {
	el := &Loop{
		pending:  queue.New(),
		handlers: make(map[api.EventCode][]Handler),
	}
	for _, opt := range opts {
		opt(el)
	}
	if el.log == nil {
		el.log = zap.NewNop()
	}
	el.log = el.log.With(zap.String("component", "event"))
	return el
}

// Emit implements api.Emitter.
func (el *Loop) Emit(code api.EventCode) {
	el.mu.Lock()
	el.pending.Add(code)
	el.mu.Unlock()
}

// On registers h for code. Handlers for a code run in registration order.
func (el *Loop) On(code api.EventCode, h Handler) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.handlers[code] = append(el.handlers[code], h)
}

// OnAny registers h for every code, after code-specific handlers.
func (el *Loop) OnAny(h Handler) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.any = append(el.any, h)
}

// Off removes every handler registered for code.
func (el *Loop) Off(code api.EventCode) {
	el.mu.Lock()
	defer el.mu.Unlock()
	delete(el.handlers, code)
}

// Pending returns the number of queued codes.
func (el *Loop) Pending() int {
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.pending.Length()
}

// Dispatch delivers up to limit queued codes (all when limit <= 0) and returns
// how many were delivered. Codes emitted by handlers are delivered in the
// same call if the limit allows.
func (el *Loop) Dispatch(limit int) int {
	count := 0
	for limit <= 0 || count < limit {
		el.mu.Lock()
		if el.pending.Length() == 0 {
			el.mu.Unlock()
			break
		}
		code := el.pending.Remove().(api.EventCode)
		hs := el.handlers[code]
		anys := el.any
		el.mu.Unlock()

		if len(hs) == 0 && len(anys) == 0 {
			el.log.Debug("event without handler", zap.Uint16("code", uint16(code)))
		}
		for _, h := range hs {
			h(code)
		}
		for _, h := range anys {
			h(code)
		}
		count++
	}
	return count
}

var _ api.Emitter = (*Loop)(nil)
