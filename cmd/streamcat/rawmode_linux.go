//go:build linux

// File: cmd/streamcat/rawmode_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/momentics/hioload-stream/api"
)

// enterRawMode switches a terminal fd to raw mode but keeps signal
// generation, so Ctrl-C still interrupts.
func enterRawMode(fd int) (func(), error) {
	if !term.IsTerminal(fd) {
		return nil, api.ErrNotSupported
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	restore := func() { _ = term.Restore(fd, old) }

	tio, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		restore()
		return nil, err
	}
	tio.Lflag |= unix.ISIG
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, tio); err != nil {
		restore()
		return nil, err
	}
	return restore, nil
}
