package sysinfo

import (
	"github.com/go-logr/logr"

	"github.com/opd-ai/go-sysinfo/internal/platform"
)

// Option configures a System.
type Option func(*options)

type options struct {
	logger  logr.Logger
	backend platform.Backend
	workers int
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger logr.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithBackend replaces the native backend of the current OS, for example
// with a remote or gopsutil backend. The System takes ownership and closes it
// in Close.
func WithBackend(b platform.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithWorkers bounds the number of processes read concurrently during a
// full process refresh. Zero or less means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}
