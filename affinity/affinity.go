// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations
// live in affinity_linux.go and affinity_stub.go.

package affinity

import (
	"runtime"

	"github.com/momentics/hioload-stream/api"
)

// SetAffinity pins the current OS thread to a logical CPU. The calling
// goroutine should hold runtime.LockOSThread for the pin to stick.
func SetAffinity(cpuID int) error {
	if cpuID < 0 {
		return api.ErrInvalidArgument
	}
	return setAffinityPlatform(cpuID)
}

// Pin locks the calling goroutine to its OS thread and pins that thread to
// cpuID. The returned func undoes the thread lock; the pin dies with the
// thread. A negative cpuID only locks the thread.
func Pin(cpuID int) (func(), error) {
	runtime.LockOSThread()
	if cpuID < 0 {
		return runtime.UnlockOSThread, nil
	}
	if err := SetAffinity(cpuID); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	return runtime.UnlockOSThread, nil
}
