// File: driver/poller.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Poller is the cooperative loop around a set of FD drivers: wait for
// readiness, service, forward pipes, dispatch events.

package driver

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/event"
	"github.com/momentics/hioload-stream/pump"
	"github.com/momentics/hioload-stream/reactor"
)

const defaultIdle = 50 * time.Millisecond

type entry struct {
	fd       *FD
	interest reactor.Interest
	polled   bool // registered with the reactor; otherwise serviced every step
}

// Poller services registered drivers from a single goroutine.
type Poller struct {
	re      reactor.EventReactor
	entries []*entry
	events  []reactor.Event
	ready   map[int]bool

	loop *event.Loop
	pump *pump.Pump
	idle time.Duration
	log  *zap.Logger
}

// PollerOption customizes a Poller.
type PollerOption func(*Poller)

// WithLoop dispatches loop after every step.
func WithLoop(l *event.Loop) PollerOption {
	return func(p *Poller) { p.loop = l }
}

// WithPump ticks pm after every step.
func WithPump(pm *pump.Pump) PollerOption {
	return func(p *Poller) { p.pump = pm }
}

// WithIdle bounds how long Run waits when nothing is ready.
func WithIdle(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.idle = d
		}
	}
}

// WithPollerLogger sets the logger.
func WithPollerLogger(l *zap.Logger) PollerOption {
	return func(p *Poller) { p.log = l }
}

// NewPoller creates a poller over re. A nil reactor services every driver on
// every step.
func NewPoller(re reactor.EventReactor, opts ...PollerOption) *Poller {
	p := &Poller{
		re:     re,
		events: make([]reactor.Event, 16),
		ready:  make(map[int]bool),
		idle:   defaultIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	p.log = p.log.With(zap.String("component", "poller"))
	return p
}

// Add registers a bound driver.
func (p *Poller) Add(fd *FD) error {
	if fd == nil || fd.Stream() == nil {
		return api.ErrInvalidArgument
	}
	e := &entry{fd: fd, interest: fd.Interest()}
	if p.re != nil {
		err := p.re.Register(fd.Fd(), e.interest)
		switch {
		case err == nil:
			e.polled = true
		case errors.Is(err, api.ErrNotSupported):
			p.log.Debug("descriptor not pollable, servicing every step", zap.Int("fd", fd.Fd()))
		default:
			return err
		}
	}
	p.entries = append(p.entries, e)
	return nil
}

// Remove stops servicing fd. The descriptor itself is left open.
func (p *Poller) Remove(fd *FD) {
	for i, e := range p.entries {
		if e.fd == fd {
			p.unpoll(e)
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			return
		}
	}
}

// Len returns the number of drivers still being serviced.
func (p *Poller) Len() int { return len(p.entries) }

func (p *Poller) unpoll(e *entry) {
	if !e.polled {
		return
	}
	if err := p.re.Unregister(e.fd.Fd()); err != nil {
		p.log.Debug("unregister failed", zap.Int("fd", e.fd.Fd()), zap.Error(err))
	}
	e.polled = false
}

// Step runs one iteration, waiting up to timeout for readiness, and returns
// the number of bytes moved by drivers and the pump.
func (p *Poller) Step(timeout time.Duration) (int, error) {
	busy, polled := false, false
	for _, e := range p.entries {
		in := e.fd.Interest()
		if e.polled && in != e.interest {
			if err := p.re.Modify(e.fd.Fd(), in); err != nil {
				return 0, err
			}
		}
		e.interest = in
		if e.polled {
			polled = true
		} else if in != 0 {
			busy = true
		}
	}
	if busy {
		timeout = 0
	}

	clear(p.ready)
	if polled {
		n, err := p.re.Wait(p.events, timeout)
		if err != nil {
			return 0, err
		}
		for _, ev := range p.events[:n] {
			p.ready[ev.Fd] = true
			if ev.Hangup {
				// Hangup is reported regardless of interest; service the
				// descriptor every step until it reports EOF or an error.
				if e := p.lookup(ev.Fd); e != nil && e.interest == 0 {
					p.unpoll(e)
				}
			}
		}
	} else if !busy && timeout > 0 {
		time.Sleep(timeout)
	}

	moved := 0
	for _, e := range append([]*entry(nil), p.entries...) {
		if !p.ready[e.fd.Fd()] && (e.polled || e.interest == 0) {
			continue
		}
		n, err := e.fd.Service()
		moved += n
		if err != nil {
			p.log.Warn("driver failed, removing", zap.Int("fd", e.fd.Fd()), zap.Error(err))
			p.Remove(e.fd)
		}
	}

	if p.pump != nil {
		moved += p.pump.Tick()
	}
	if p.loop != nil {
		p.loop.Dispatch(0)
	}

	for _, e := range append([]*entry(nil), p.entries...) {
		if e.fd.Done() {
			p.log.Debug("driver done", zap.Int("fd", e.fd.Fd()))
			p.Remove(e.fd)
		}
	}
	return moved, nil
}

func (p *Poller) lookup(fd int) *entry {
	for _, e := range p.entries {
		if e.fd.Fd() == fd {
			return e
		}
	}
	return nil
}

// Run steps until ctx is cancelled or every driver is done.
func (p *Poller) Run(ctx context.Context) error {
	for p.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if _, err := p.Step(p.idle); err != nil {
			return err
		}
	}
	return nil
}

// Close stops polling every driver.
func (p *Poller) Close() {
	for _, e := range p.entries {
		p.unpoll(e)
	}
	p.entries = nil
}
