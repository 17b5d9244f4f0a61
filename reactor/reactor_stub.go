//go:build !linux
// +build !linux

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package reactor

import "github.com/momentics/hioload-stream/api"

// NewReactor returns api.ErrNotSupported on platforms without epoll.
func NewReactor() (EventReactor, error) {
	return nil, api.ErrNotSupported
}
