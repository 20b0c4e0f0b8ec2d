//go:build windows

package platform

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"golang.org/x/sys/windows"

	"github.com/opd-ai/go-sysinfo/internal/counters"
)

// windowsBackend implements Backend for Windows. Processes, networks,
// sensors and load come from gopsutil; processor counters are read through
// localized PDH counters, memory through GlobalMemoryStatusEx and accounts
// through netapi32.
type windowsBackend struct {
	*gopsutilBackend

	// resolver is owned by this backend; independent engines never share a
	// translation table.
	resolver *counters.Resolver

	mu   sync.Mutex
	cpus int
	set  *counters.Set
}

func newWindowsBackend(logger logr.Logger) *windowsBackend {
	g := newGopsutilBackend("windows", logger)
	b := &windowsBackend{
		gopsutilBackend: g,
		resolver:        counters.NewResolver(counters.RegistrySource{}, counters.PDHTranslator{}, g.logger),
	}
	g.users = b.localUsers
	return b
}

func (b *windowsBackend) FoldCase() bool {
	return true
}

func (b *windowsBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.set == nil {
		return nil
	}
	err := b.set.Close()
	b.set = nil
	return err
}

// Signal supports Kill only; Windows has no other signal delivery.
func (b *windowsBackend) Signal(ctx context.Context, pid int, sig Signal) error {
	if sig != SigKill {
		return fmt.Errorf("signal %s: %w", sig, ErrUnsupported)
	}
	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		if errors.Is(err, windows.ERROR_INVALID_PARAMETER) {
			return fmt.Errorf("pid %d: %w", pid, ErrNoProcess)
		}
		return fmt.Errorf("opening process %d: %w", pid, err)
	}
	defer windows.CloseHandle(h)
	if err := windows.TerminateProcess(h, 1); err != nil {
		return fmt.Errorf("terminating process %d: %w", pid, err)
	}
	return nil
}
