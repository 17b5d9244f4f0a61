// File: api/events.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stream event codes and the event sink contract.

package api

import "strconv"

// EventCode identifies an event delivered to an Emitter. Streams emit
// base+EventData .. base+EventError, where base is chosen by the owner so
// several streams can share one sink.
type EventCode uint16

const (
	EventData EventCode = iota
	EventDrain
	EventEnd
	EventFinish
	EventError

	// EventCount is the number of codes a stream reserves above its base.
	EventCount
)

func (c EventCode) String() string {
	switch c {
	case EventData:
		return "data"
	case EventDrain:
		return "drain"
	case EventEnd:
		return "end"
	case EventFinish:
		return "finish"
	case EventError:
		return "error"
	default:
		return "event(" + strconv.Itoa(int(c)) + ")"
	}
}

// Emitter is the event sink. Emit is fire-and-forget and must not call back
// into the emitting stream synchronously.
type Emitter interface {
	Emit(code EventCode)
}

// EmitterFunc adapts a plain function to Emitter.
type EmitterFunc func(code EventCode)

// Emit implements Emitter.
func (f EmitterFunc) Emit(code EventCode) { f(code) }
