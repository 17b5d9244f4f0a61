package pool_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/hioload-stream/pool"
)

func TestArena_BudgetAndReuse(t *testing.T) {
	a := pool.NewArena(100)

	b1 := a.Alloc(60)
	assert.Len(t, b1, 60)
	assert.Nil(t, a.Alloc(41), "over budget")
	b2 := a.Alloc(40)
	assert.Len(t, b2, 40)

	a.Free(b1)
	b3 := a.Alloc(60)
	assert.Len(t, b3, 60)
	assert.Same(t, &b1[0], &b3[0], "freed block of the same size is reused")

	st := a.Stats()
	assert.Equal(t, int64(3), st.TotalAlloc)
	assert.Equal(t, int64(1), st.TotalFree)
	assert.Equal(t, int64(1), st.Failures)
	assert.Equal(t, int64(100), st.InUse)
	assert.Equal(t, int64(100), st.Budget)

	assert.Nil(t, a.Alloc(-1))
	a.Free(nil)
}

func TestArena_Unbounded(t *testing.T) {
	a := pool.NewArena(0)
	assert.Len(t, a.Alloc(1<<20), 1<<20)
	assert.Same(t, pool.DefaultArena(), pool.DefaultArena())
}

func TestArena_Concurrent(t *testing.T) {
	a := pool.NewArena(64 * 16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				if b := a.Alloc(64); b != nil {
					a.Free(b)
				}
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, a.Stats().InUse)
}
