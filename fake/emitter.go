// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"

	"github.com/momentics/hioload-stream/api"
)

// Recorder is an api.Emitter that keeps every code it receives.
type Recorder struct {
	mu    sync.Mutex
	codes []api.EventCode
}

func (r *Recorder) Emit(code api.EventCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = append(r.codes, code)
}

// Codes returns a copy of the received codes in order.
func (r *Recorder) Codes() []api.EventCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]api.EventCode, len(r.codes))
	copy(out, r.codes)
	return out
}

// Count returns how many times code was received.
func (r *Recorder) Count(code api.EventCode) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.codes {
		if c == code {
			n++
		}
	}
	return n
}

// Reset forgets received codes.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = r.codes[:0]
}

var _ api.Emitter = (*Recorder)(nil)
