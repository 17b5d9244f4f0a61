//go:build unix

// File: driver/fd_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package driver

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/stream"
)

// NewFD switches fd to non-blocking mode and wraps it. The original file
// status flags are restored by Close.
func NewFD(fd int, opts ...Option) (*FD, error) {
	if fd < 0 {
		return nil, api.ErrInvalidArgument
	}
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return nil, fmt.Errorf("fcntl getfl: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, fmt.Errorf("set nonblock: %w", err)
	}
	d := &FD{fd: fd, flags: flags}
	d.applyOptions(opts)
	return d, nil
}

// Service performs at most one read and one write, whichever the stream
// currently wants, and returns the number of bytes moved. End of file shuts
// the receive direction down. Descriptor errors are recorded on the stream
// with SetError and returned.
func (d *FD) Service() (int, error) {
	d.mu.Lock()
	s := d.s
	d.mu.Unlock()
	if s == nil {
		return 0, api.ErrInvalidArgument
	}

	moved := 0
	if n := d.rxWant(); n > 0 {
		k, err := unix.Read(d.fd, d.rxBuf[:n])
		switch {
		case errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR):
		case err != nil:
			return moved, d.fail(s, "read", err)
		case k == 0:
			d.mu.Lock()
			d.eof = true
			d.mu.Unlock()
			d.log.Debug("end of file")
			s.Shutdown(stream.Readable)
		default:
			d.consumed(k)
			p, perr := s.Push(d.rxBuf[:k])
			if perr != nil || p < k {
				d.log.Warn("receive bytes dropped", zap.Int("count", k-p), zap.Error(perr))
			}
			moved += p
		}
	}

	if out := d.nextOut(); len(out) > 0 {
		k, err := unix.Write(d.fd, out)
		switch {
		case errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR):
		case err != nil:
			return moved, d.fail(s, "write", err)
		default:
			d.wrote(k)
			moved += k
		}
	}
	return moved, nil
}

func (d *FD) fail(s *stream.Stream, op string, err error) error {
	code := uint8(unix.EIO)
	var errno unix.Errno
	if errors.As(err, &errno) && errno > 0 && errno < 256 {
		code = uint8(errno)
	}
	d.log.Warn("descriptor error", zap.String("op", op), zap.Error(err))
	s.SetError(code)
	return fmt.Errorf("%s fd %d: %w", op, d.fd, err)
}

// Close restores the descriptor's original file status flags. Descriptors
// above stderr are closed as well.
func (d *FD) Close() error {
	var errs []error
	if _, err := unix.FcntlInt(uintptr(d.fd), unix.F_SETFL, d.flags); err != nil {
		errs = append(errs, fmt.Errorf("fcntl setfl: %w", err))
	}
	if d.fd > 2 {
		if err := unix.Close(d.fd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
