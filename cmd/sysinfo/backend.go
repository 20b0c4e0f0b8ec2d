package main

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/opd-ai/go-sysinfo/internal/config"
	"github.com/opd-ai/go-sysinfo/internal/platform"
)

// newBackend creates the backend selected by cfg. A nil backend with a nil
// error means the native backend, which the System creates itself.
func newBackend(ctx context.Context, cfg *config.Config, logger logr.Logger) (platform.Backend, error) {
	switch cfg.Backend {
	case config.BackendNative:
		return nil, nil
	case config.BackendGopsutil:
		return platform.NewGopsutil(logger.WithName("platform")), nil
	case config.BackendRemote:
		rc, err := cfg.Remote.Platform()
		if err != nil {
			return nil, err
		}
		b, err := platform.NewRemote(ctx, rc, logger.WithName("platform"))
		if err != nil {
			return nil, fmt.Errorf("remote backend: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
