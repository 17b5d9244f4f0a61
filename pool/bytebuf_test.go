package pool_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/pool"
)

func TestByteBuffer_GiveTake(t *testing.T) {
	b, err := pool.AllocateByteBuffer(pool.NewArena(0), 4)
	require.NoError(t, err)
	assert.Zero(t, b.Len())
	assert.Equal(t, 4, b.Space())

	assert.Equal(t, 4, b.Give([]byte("abcdef")), "partial acceptance")
	assert.True(t, b.IsFull())
	assert.Zero(t, b.Give([]byte("x")))

	out := make([]byte, 3)
	assert.Equal(t, 3, b.Take(out))
	assert.Equal(t, "abc", string(out))

	assert.Equal(t, 3, b.Give([]byte("efg")), "wraps around")
	peek := make([]byte, 8)
	assert.Equal(t, 4, b.Peek(peek))
	assert.Equal(t, "defg", string(peek[:4]))
	assert.Equal(t, 4, b.Len(), "peek does not consume")

	all := make([]byte, 8)
	assert.Equal(t, 4, b.Take(all))
	assert.Equal(t, "defg", string(all[:4]))
	assert.Zero(t, b.Take(all))
}

func TestByteBuffer_Unshift(t *testing.T) {
	b, err := pool.AllocateByteBuffer(pool.NewArena(0), 2)
	require.NoError(t, err)

	assert.True(t, b.Unshift('b'))
	assert.True(t, b.Unshift('a'))
	assert.False(t, b.Unshift('z'))

	out := make([]byte, 2)
	b.Take(out)
	assert.Equal(t, "ab", string(out))
}

func TestByteBuffer_AllocationFailure(t *testing.T) {
	arena := pool.NewArena(6)
	b1, err := pool.AllocateByteBuffer(arena, 4)
	require.NoError(t, err)

	_, err = pool.AllocateByteBuffer(arena, 4)
	assert.ErrorIs(t, err, api.ErrOutOfMemory)

	b1.Release()
	b2, err := pool.AllocateByteBuffer(arena, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, b2.Cap())

	_, err = pool.AllocateByteBuffer(nil, 4)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

// TestByteBuffer_FIFORoundTrip: bytes given without overflow come back in order.
func TestByteBuffer_FIFORoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 64).Draw(t, "capacity")
		chunks := rapid.SliceOf(rapid.SliceOfN(rapid.Byte(), 0, 16)).Draw(t, "chunks")

		b, err := pool.AllocateByteBuffer(pool.NewArena(0), capacity)
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}

		var given []byte
		for _, c := range chunks {
			if len(given)+len(c) > capacity {
				break
			}
			if n := b.Give(c); n != len(c) {
				t.Fatalf("give accepted %d of %d with room", n, len(c))
			}
			given = append(given, c...)
		}

		var taken []byte
		buf := make([]byte, rapid.IntRange(1, 8).Draw(t, "take"))
		for len(taken) < len(given) {
			n := b.Take(buf)
			if n == 0 {
				t.Fatalf("take returned 0 with %d bytes outstanding", len(given)-len(taken))
			}
			taken = append(taken, buf[:n]...)
		}
		if !bytes.Equal(given, taken) {
			t.Fatalf("round trip mismatch: %q != %q", given, taken)
		}
	})
}

// TestByteBuffer_CapacityInvariant: Len()+Space()==Cap() after every operation.
func TestByteBuffer_CapacityInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(0, 32).Draw(t, "capacity")
		b, err := pool.AllocateByteBuffer(pool.NewArena(0), capacity)
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
		steps := rapid.IntRange(1, 100).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				b.Give(rapid.SliceOfN(rapid.Byte(), 0, 12).Draw(t, "data"))
			case 1:
				b.Take(make([]byte, rapid.IntRange(0, 12).Draw(t, "n")))
			case 2:
				b.Unshift(rapid.Byte().Draw(t, "byte"))
			}
			if b.Len()+b.Space() != b.Cap() || b.Cap() != capacity {
				t.Fatalf("len %d + space %d != cap %d", b.Len(), b.Space(), b.Cap())
			}
		}
	})
}
