// File: api/irq.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// InterruptMask disables the interrupt source that may call into a stream
// (typically the peripheral ISR that pushes received bytes) and restores it.
// Disable returns the prior state; Restore must receive that value.
type InterruptMask interface {
	Disable() uint32
	Restore(state uint32)
}
