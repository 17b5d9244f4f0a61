package pool_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/pool"
)

// TestSlotRing_EndOperations checks the four operations against their ends.
func TestSlotRing_EndOperations(t *testing.T) {
	storage := make([]int, 4)
	r := pool.NewSlotRing(storage)

	if !r.IsEmpty() || r.IsFull() {
		t.Fatal("new ring must be empty")
	}
	if r.RemoveHead() != api.NoSlot || r.RemoveTail() != api.NoSlot {
		t.Fatal("removal from empty ring must fail")
	}

	for i := 1; i <= 3; i++ {
		*r.Slot(r.InsertTail()) = i
	}
	*r.Slot(r.InsertHead()) = 0
	if !r.IsFull() {
		t.Fatal("expected ring full")
	}
	if r.InsertTail() != api.NoSlot || r.InsertHead() != api.NoSlot {
		t.Fatal("insertion into full ring must fail")
	}

	if got := *r.Slot(r.RemoveHead()); got != 0 {
		t.Errorf("RemoveHead = %d, want 0", got)
	}
	if got := *r.Slot(r.RemoveTail()); got != 3 {
		t.Errorf("RemoveTail = %d, want 3", got)
	}
	if got := *r.Slot(r.RemoveHead()); got != 1 {
		t.Errorf("RemoveHead = %d, want 1", got)
	}
	if got := *r.Slot(r.RemoveHead()); got != 2 {
		t.Errorf("RemoveHead = %d, want 2", got)
	}
	if !r.IsEmpty() {
		t.Error("expected ring empty after full cycle")
	}
}

func TestSlotRing_ZeroCapacity(t *testing.T) {
	r := pool.NewSlotRing[byte](nil)
	if !r.IsEmpty() || !r.IsFull() {
		t.Fatal("zero-capacity ring is both empty and full")
	}
	for _, op := range []func() int{r.RemoveHead, r.InsertHead, r.InsertTail, r.RemoveTail} {
		if op() != api.NoSlot {
			t.Fatal("every operation must fail on a zero-capacity ring")
		}
	}
}

// TestSlotRing_Invariants drives random operation sequences and checks the
// count/index invariants against a slice model.
func TestSlotRing_Invariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("ring behaves like a bounded deque", prop.ForAll(
		func(capacity int, ops []int) bool {
			r := pool.NewSlotRing(make([]int, capacity))
			var model []int
			next := 0

			for _, op := range ops {
				switch op {
				case 0:
					idx := r.InsertTail()
					if len(model) == capacity {
						if idx != api.NoSlot {
							return false
						}
						continue
					}
					next++
					*r.Slot(idx) = next
					model = append(model, next)
				case 1:
					idx := r.InsertHead()
					if len(model) == capacity {
						if idx != api.NoSlot {
							return false
						}
						continue
					}
					next++
					*r.Slot(idx) = next
					model = append([]int{next}, model...)
				case 2:
					idx := r.RemoveHead()
					if len(model) == 0 {
						if idx != api.NoSlot {
							return false
						}
						continue
					}
					if *r.Slot(idx) != model[0] {
						return false
					}
					model = model[1:]
				case 3:
					idx := r.RemoveTail()
					if len(model) == 0 {
						if idx != api.NoSlot {
							return false
						}
						continue
					}
					if *r.Slot(idx) != model[len(model)-1] {
						return false
					}
					model = model[:len(model)-1]
				}

				if r.Len() != len(model) || r.Len() < 0 || r.Len() > r.Cap() {
					return false
				}
				if capacity > 0 && (r.Head() < 0 || r.Head() >= capacity) {
					return false
				}
				if r.IsEmpty() != (len(model) == 0) || r.IsFull() != (len(model) == capacity) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 16),
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}
