//go:build !unix

// File: driver/fd_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package driver

import "github.com/momentics/hioload-stream/api"

// NewFD is not available without POSIX descriptors.
func NewFD(fd int, opts ...Option) (*FD, error) {
	return nil, api.ErrNotSupported
}

// Service is not available without POSIX descriptors.
func (d *FD) Service() (int, error) {
	return 0, api.ErrNotSupported
}

// Close does nothing.
func (d *FD) Close() error { return nil }
