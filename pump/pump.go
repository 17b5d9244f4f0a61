// File: pump/pump.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stream.Pipe only records the producer -> consumer relation. The Pump owns
// the forwarding: each Tick reads what the consumer can take from every
// attached producer and writes it downstream. Call Tick from the cooperative
// loop, typically on the producer's data and the consumer's drain events.

// Package pump forwards bytes along stream pipes.
package pump

import (
	"sync"

	"go.uber.org/zap"

	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/stream"
)

const defaultChunk = 64

// Pump moves bytes from piped producers to their consumers.
type Pump struct {
	mu        sync.Mutex
	producers []*stream.Stream
	scratch   []byte
	log       *zap.Logger
}

// Option customizes a Pump.
type Option func(*Pump)

// WithChunk bounds how many bytes one producer forwards per Tick.
func WithChunk(n int) Option {
	return func(p *Pump) {
		if n > 0 {
			p.scratch = make([]byte, n)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pump) {
		p.log = l
	}
}

// NewPump creates a pump with no attached producers.
func NewPump(opts ...Option) *Pump {
	p := &Pump{}
	for _, opt := range opts {
		opt(p)
	}
	if p.scratch == nil {
		p.scratch = make([]byte, defaultChunk)
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	p.log = p.log.With(zap.String("component", "pump"))
	return p
}

// Attach starts forwarding for producer, which must already be piped.
func (p *Pump) Attach(producer *stream.Stream) error {
	if producer == nil || !producer.Piped() {
		return api.ErrInvalidArgument
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.producers {
		if s == producer {
			return api.ErrInvalidArgument
		}
	}
	p.producers = append(p.producers, producer)
	return nil
}

// Detach stops forwarding for producer. The pipe relation itself is left
// alone.
func (p *Pump) Detach(producer *stream.Stream) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, s := range p.producers {
		if s == producer {
			p.producers = append(p.producers[:i], p.producers[i+1:]...)
			return
		}
	}
}

// Len returns the number of attached producers.
func (p *Pump) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.producers)
}

// Tick forwards once for every attached producer and returns the total number
// of bytes delivered to consumers. A producer that has ended shuts its
// consumer's transmit side down and is detached; one that was unpiped is
// detached.
func (p *Pump) Tick() int {
	p.mu.Lock()
	producers := append([]*stream.Stream(nil), p.producers...)
	p.mu.Unlock()

	total := 0
	for _, src := range producers {
		dst := src.PipeTarget()
		if dst == nil {
			p.Detach(src)
			continue
		}
		total += p.forward(src, dst)

		if src.Ended() {
			p.log.Debug("producer ended", zap.String("producer", src.Name()), zap.String("consumer", dst.Name()))
			dst.Shutdown(stream.Writable)
			_ = src.Unpipe()
			p.Detach(src)
		}
	}
	return total
}

func (p *Pump) forward(src, dst *stream.Stream) int {
	if dst.TxBlocked() {
		return 0
	}
	room := min(dst.Writable(), len(p.scratch))
	if room == 0 {
		return 0
	}
	buf := p.scratch[:room]
	n, err := src.Read(buf)
	if err != nil || n == 0 {
		return 0
	}
	w, err := dst.Write(buf[:n])
	if err != nil {
		p.log.Warn("consumer write failed", zap.String("consumer", dst.Name()), zap.Error(err))
		w = 0
	}
	if w < n {
		// Give back what the consumer refused, last byte first.
		for i := n - 1; i >= w; i-- {
			if k, _ := src.Unshift(buf[i]); k == 0 {
				p.log.Warn("dropped bytes on push-back", zap.String("producer", src.Name()), zap.Int("count", i-w+1))
				break
			}
		}
	}
	return w
}
