// Package platform provides cross-platform system acquisition abstractions.
// It defines the Backend interface implemented once per operating system and
// the plain sample types backends produce.
package platform

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by backends for data the platform cannot provide.
var ErrUnsupported = errors.New("not supported on this platform")

// ErrNoProcess is returned when a process does not exist (anymore).
var ErrNoProcess = errors.New("no such process")

// Backend is the acquisition capability of one platform.
//
// Backends are stateless with respect to deltas: they return cumulative
// counters and leave rate computation to the caller. Methods may be called
// concurrently with each other except Close. Process in particular is called
// from several goroutines during a full process refresh.
type Backend interface {
	// Name returns the backend identifier (e.g., "linux", "windows", "darwin").
	Name() string

	// Bootstrap runs the minimal startup query (CPU count, static processor
	// information). An error means the platform cannot be used at all.
	Bootstrap(ctx context.Context) (BootInfo, error)

	// Processors returns cumulative busy/total counters for the machine and
	// for every logical processor.
	Processors(ctx context.Context) (CPUSample, error)

	// Memory returns physical memory and swap figures.
	Memory(ctx context.Context) (MemorySample, error)

	// LoadAverage returns the 1, 5 and 15 minute load averages.
	LoadAverage(ctx context.Context) (LoadAverage, error)

	// BootTime returns the boot time in seconds since the epoch.
	BootTime(ctx context.Context) (uint64, error)

	// PIDs lists the identifiers of all running processes.
	PIDs(ctx context.Context) ([]int, error)

	// Process reads one process. It returns an error wrapping ErrNoProcess
	// when the process has exited.
	Process(ctx context.Context, pid int) (ProcessSample, error)

	// Networks returns cumulative counters keyed by interface name.
	Networks(ctx context.Context) (map[string]NetworkSample, error)

	// Components returns temperature sensor readings.
	Components(ctx context.Context) ([]ComponentSample, error)

	// Users returns the local user accounts.
	Users(ctx context.Context) ([]UserSample, error)

	// Disks returns mounted fixed disks.
	Disks(ctx context.Context) ([]DiskSample, error)

	// Signal asks the OS to deliver sig to pid.
	Signal(ctx context.Context, pid int, sig Signal) error

	// FoldCase reports whether process names compare case-insensitively on
	// this platform.
	FoldCase() bool

	// Close releases native handles held by the backend.
	Close() error
}
