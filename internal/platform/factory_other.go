//go:build !linux && !darwin && !windows

package platform

import "github.com/go-logr/logr"

// newNative creates the fallback backend for unsupported systems.
func newNative(logger logr.Logger) (Backend, error) {
	return newUnknownBackend(), nil
}
