//go:build !darwin

package platform

import "syscall"

// nativeSignal uses the generic Linux numbering, which is the engine's own.
func nativeSignal(sig Signal) (syscall.Signal, bool) {
	if !sig.Valid() {
		return 0, false
	}
	return syscall.Signal(sig), true
}
