//go:build linux

package platform

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"golang.org/x/sys/unix"
)

// newNative creates the /proc backend for the local host.
func newNative(logger logr.Logger) (Backend, error) {
	b := newLinuxBackend("linux", hostFS{root: "/"}, logger)
	b.pageSize = uint64(os.Getpagesize())
	b.kill = killLocal
	b.statfs = statfsLocal
	return b, nil
}

// killLocal delivers sig. Engine numbers are the generic Linux numbers.
func killLocal(_ context.Context, pid int, sig Signal) error {
	err := unix.Kill(pid, unix.Signal(sig))
	if errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("pid %d: %w", pid, ErrNoProcess)
	}
	if err != nil {
		return fmt.Errorf("kill %d %s: %w", pid, sig, err)
	}
	return nil
}

func statfsLocal(_ context.Context, mountPoint string) (total, avail uint64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(mountPoint, &st); err != nil {
		return 0, 0, fmt.Errorf("statfs %s: %w", mountPoint, err)
	}
	bsize := uint64(st.Bsize)
	return st.Blocks * bsize, st.Bavail * bsize, nil
}
