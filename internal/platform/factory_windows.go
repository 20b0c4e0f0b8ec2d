//go:build windows

package platform

import "github.com/go-logr/logr"

// newNative creates the Windows backend.
func newNative(logger logr.Logger) (Backend, error) {
	return newWindowsBackend(logger), nil
}
