//go:build linux

package reactor_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/reactor"
)

func pipe(t *testing.T) (r, w int) {
	t.Helper()
	var fds [2]int
	require.NoError(t, unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC))
	t.Cleanup(func() {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestReactor_ReadReadiness(t *testing.T) {
	re, err := reactor.NewReactor()
	require.NoError(t, err)
	defer re.Close()

	r, w := pipe(t)
	require.NoError(t, re.Register(r, reactor.InterestRead))

	events := make([]reactor.Event, 4)
	n, err := re.Wait(events, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing written yet")

	_, err = unix.Write(w, []byte("x"))
	require.NoError(t, err)
	n, err = re.Wait(events, time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, r, events[0].Fd)
	assert.True(t, events[0].Readable)

	require.NoError(t, re.Unregister(r))
	n, err = re.Wait(events, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReactor_ModifyInterest(t *testing.T) {
	re, err := reactor.NewReactor()
	require.NoError(t, err)
	defer re.Close()

	_, w := pipe(t)
	require.NoError(t, re.Register(w, 0))

	events := make([]reactor.Event, 4)
	n, err := re.Wait(events, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, re.Modify(w, reactor.InterestWrite))
	n, err = re.Wait(events, time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.True(t, events[0].Writable)
}

func TestReactor_HangupOnWriterClose(t *testing.T) {
	re, err := reactor.NewReactor()
	require.NoError(t, err)
	defer re.Close()

	var fds [2]int
	require.NoError(t, unix.Pipe2(fds[:], unix.O_NONBLOCK))
	defer unix.Close(fds[0])
	require.NoError(t, re.Register(fds[0], reactor.InterestRead))
	require.NoError(t, unix.Close(fds[1]))

	events := make([]reactor.Event, 1)
	n, err := re.Wait(events, time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.True(t, events[0].Hangup)
}

func TestReactor_RegularFileNotPollable(t *testing.T) {
	re, err := reactor.NewReactor()
	require.NoError(t, err)
	defer re.Close()

	f, err := os.Create(filepath.Join(t.TempDir(), "plain"))
	require.NoError(t, err)
	defer f.Close()

	assert.ErrorIs(t, re.Register(int(f.Fd()), reactor.InterestRead), api.ErrNotSupported)
}

func TestReactor_WaitNeedsRoom(t *testing.T) {
	re, err := reactor.NewReactor()
	require.NoError(t, err)
	defer re.Close()
	_, err = re.Wait(nil, 0)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}
