//go:build linux

package affinity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-stream/affinity"
	"github.com/momentics/hioload-stream/api"
)

func TestPin_ToAllowedCPU(t *testing.T) {
	cpus, err := affinity.CurrentCPUs()
	require.NoError(t, err)
	require.NotEmpty(t, cpus)

	done := make(chan struct{})
	go func() {
		defer close(done)
		unlock, err := affinity.Pin(cpus[0])
		if !assert.NoError(t, err) {
			return
		}
		defer unlock()
		got, err := affinity.CurrentCPUs()
		assert.NoError(t, err)
		assert.Equal(t, []int{cpus[0]}, got)
	}()
	<-done
}

func TestPin_NegativeOnlyLocks(t *testing.T) {
	unlock, err := affinity.Pin(-1)
	require.NoError(t, err)
	unlock()
}

func TestSetAffinity_Rejects(t *testing.T) {
	assert.ErrorIs(t, affinity.SetAffinity(-3), api.ErrInvalidArgument)
}
