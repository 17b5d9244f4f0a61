//go:build !linux

// File: cmd/streamcat/rawmode_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"golang.org/x/term"

	"github.com/momentics/hioload-stream/api"
)

// enterRawMode switches a terminal fd to raw mode.
func enterRawMode(fd int) (func(), error) {
	if !term.IsTerminal(fd) {
		return nil, api.ErrNotSupported
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() { _ = term.Restore(fd, old) }, nil
}
