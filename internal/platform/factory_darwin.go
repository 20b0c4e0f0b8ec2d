//go:build darwin

package platform

import "github.com/go-logr/logr"

// newNative creates the macOS backend.
func newNative(logger logr.Logger) (Backend, error) {
	return newGopsutilBackend("darwin", logger), nil
}
