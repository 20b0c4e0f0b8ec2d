package sysinfo

import (
	"errors"
	"fmt"

	"github.com/opd-ai/go-sysinfo/internal/platform"
)

var (
	// ErrInvalidSignal is returned for signal numbers outside 1..31.
	ErrInvalidSignal = errors.New("invalid signal")

	// ErrInvalidPid is returned for malformed or non-positive process ids.
	ErrInvalidPid = errors.New("invalid pid")

	// ErrProcessNotFound is returned when the target process does not exist.
	ErrProcessNotFound = errors.New("process not found")

	// ErrUnsupported is returned for operations the platform cannot perform.
	ErrUnsupported = platform.ErrUnsupported
)

// ErrorSource identifies which sub-table or operation produced an error.
type ErrorSource string

const (
	ErrorSourceBootstrap ErrorSource = "bootstrap"
	ErrorSourceCPU       ErrorSource = "cpu"
	ErrorSourceMemory    ErrorSource = "memory"
	ErrorSourceProcess   ErrorSource = "process"
	ErrorSourceNetwork   ErrorSource = "network"
	ErrorSourceComponent ErrorSource = "component"
	ErrorSourceUser      ErrorSource = "user"
	ErrorSourceDisk      ErrorSource = "disk"
	ErrorSourceCounters  ErrorSource = "counters"
	ErrorSourceSignal    ErrorSource = "signal"
)

// ComponentError wraps an error with source information.
// It preserves the original error for inspection via errors.Is/errors.As.
type ComponentError struct {
	Source ErrorSource
	Err    error
}

// Error implements the error interface.
func (e *ComponentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *ComponentError) Unwrap() error {
	return e.Err
}

// NewComponentError creates a new ComponentError.
func NewComponentError(source ErrorSource, err error) *ComponentError {
	return &ComponentError{Source: source, Err: err}
}

// IsComponentError returns true if err wraps or is a ComponentError with the given source.
func IsComponentError(err error, source ErrorSource) bool {
	var ce *ComponentError
	for errors.As(err, &ce) {
		if ce.Source == source {
			return true
		}
		err = ce.Err
	}
	return false
}
