// Package api
// Author: momentics
//
// Live introspection of streams and devices.

package api

// Probe produces a point-in-time value for diagnostics.
type Probe func() any

// Debug exposes runtime introspection.
type Debug interface {
	// DumpState emits a snapshot of every registered probe.
	DumpState() map[string]any

	// RegisterProbe registers or replaces a named probe.
	RegisterProbe(name string, fn func() any)

	// UnregisterProbe removes a probe; unknown names are ignored.
	UnregisterProbe(name string)
}
