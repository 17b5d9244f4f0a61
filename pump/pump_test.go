package pump_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/fake"
	"github.com/momentics/hioload-stream/pump"
	"github.com/momentics/hioload-stream/stream"
)

type pair struct {
	src, dst *stream.Stream
	srcDev   *fake.Device
	dstDev   *fake.Device
	events   *fake.Recorder
}

func newPair(t *testing.T, rxCap, txCap int, opts ...stream.Option) pair {
	t.Helper()
	p := pair{srcDev: fake.NewDevice(), dstDev: fake.NewDevice(), events: &fake.Recorder{}}
	var err error
	p.src, err = stream.NewReadable(rxCap, p.srcDev.DemandRx, stream.WithName("src"), stream.WithEmitter(p.events))
	require.NoError(t, err)
	p.dst, err = stream.NewWritable(txCap, p.dstDev.DemandTx,
		append([]stream.Option{stream.WithName("dst"), stream.WithEmitter(p.events), stream.WithEventBase(api.EventCount)}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, p.src.Pipe(p.dst))
	return p
}

func TestAttach_RequiresPipe(t *testing.T) {
	dev := fake.NewDevice()
	s, err := stream.NewReadable(4, dev.DemandRx)
	require.NoError(t, err)

	pm := pump.NewPump()
	assert.ErrorIs(t, pm.Attach(s), api.ErrInvalidArgument)
	assert.ErrorIs(t, pm.Attach(nil), api.ErrInvalidArgument)

	p := newPair(t, 4, 4)
	require.NoError(t, pm.Attach(p.src))
	assert.ErrorIs(t, pm.Attach(p.src), api.ErrInvalidArgument)
	assert.Equal(t, 1, pm.Len())
	pm.Detach(p.src)
	assert.Zero(t, pm.Len())
}

func TestTick_ForwardsWithinConsumerRoom(t *testing.T) {
	p := newPair(t, 8, 4)
	pm := pump.NewPump(pump.WithChunk(16))
	require.NoError(t, pm.Attach(p.src))

	n, _ := p.src.Push([]byte("hello"))
	require.Equal(t, 5, n)
	assert.Equal(t, 1, p.events.Count(api.EventData), "pipe forces flowing")

	assert.Equal(t, 4, pm.Tick())
	assert.Equal(t, 1, p.src.Readable())
	assert.Equal(t, 1, p.dstDev.TxDemands())

	assert.Zero(t, pm.Tick(), "consumer full")
	p.dstDev.Drain(p.dst, 2)
	assert.Equal(t, 1, pm.Tick())
	p.dstDev.Drain(p.dst, 2)
	assert.Equal(t, "hello", string(p.dstDev.Sent()))
}

func TestTick_EmptyProducerRearmsDemand(t *testing.T) {
	p := newPair(t, 8, 4)
	pm := pump.NewPump()
	require.NoError(t, pm.Attach(p.src))

	assert.Zero(t, pm.Tick())
	last, ok := p.srcDev.LastRxDemand()
	assert.True(t, ok)
	assert.Equal(t, 4, last)
}

func TestTick_EndPropagatesToConsumer(t *testing.T) {
	p := newPair(t, 8, 8)
	pm := pump.NewPump()
	require.NoError(t, pm.Attach(p.src))

	_, _ = p.src.Push([]byte("bye"))
	p.src.Shutdown(stream.Readable)

	assert.Equal(t, 3, pm.Tick())
	assert.True(t, p.src.Ended())
	assert.False(t, p.src.Piped())
	assert.Zero(t, pm.Len())
	assert.Zero(t, p.dst.Writable(), "consumer transmit side shut down")

	p.dstDev.Drain(p.dst, 8)
	assert.Equal(t, "bye", string(p.dstDev.Sent()))
	assert.Equal(t, 1, p.events.Count(api.EventCount+api.EventFinish))
}

func TestTick_RefusedBytesGoBack(t *testing.T) {
	alloc := &fake.Allocator{}
	p := newPair(t, 8, 8, stream.WithAllocator(alloc))
	pm := pump.NewPump()
	require.NoError(t, pm.Attach(p.src))

	_, _ = p.src.Push([]byte("abc"))
	alloc.FailNext(1)
	assert.Zero(t, pm.Tick())
	assert.Equal(t, 3, p.src.Readable())

	assert.Equal(t, 3, pm.Tick())
	p.dstDev.Drain(p.dst, 8)
	assert.Equal(t, "abc", string(p.dstDev.Sent()))
}

func TestTick_DetachesUnpiped(t *testing.T) {
	p := newPair(t, 8, 8)
	pm := pump.NewPump()
	require.NoError(t, pm.Attach(p.src))
	require.NoError(t, p.src.Unpipe())
	pm.Tick()
	assert.Zero(t, pm.Len())
}
