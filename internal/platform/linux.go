package platform

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-logr/logr"
)

// FS is a read-only view of a Linux host's root filesystem. Names are
// slash-separated and relative to the root, e.g. "proc/stat".
type FS interface {
	fs.ReadFileFS
	fs.ReadDirFS
}

// LinkFS is implemented by filesystems that can resolve symbolic links.
type LinkFS interface {
	ReadLink(name string) (string, error)
}

// hostFS is the local root filesystem.
type hostFS struct {
	root string
}

func (h hostFS) path(op, name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	return filepath.Join(h.root, filepath.FromSlash(name)), nil
}

func (h hostFS) Open(name string) (fs.File, error) {
	p, err := h.path("open", name)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func (h hostFS) ReadFile(name string) ([]byte, error) {
	p, err := h.path("read", name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

func (h hostFS) ReadDir(name string) ([]fs.DirEntry, error) {
	p, err := h.path("readdir", name)
	if err != nil {
		return nil, err
	}
	return os.ReadDir(p)
}

func (h hostFS) ReadLink(name string) (string, error) {
	p, err := h.path("readlink", name)
	if err != nil {
		return "", err
	}
	return os.Readlink(p)
}

// linuxBackend implements Backend for Linux by reading /proc and /sys.
// It only parses files, so it serves both the local host and remote hosts
// whose filesystem is reached over SSH.
type linuxBackend struct {
	name   string
	fsys   FS
	logger logr.Logger

	// clkTck is USER_HZ, the unit of the /proc time counters.
	clkTck uint64
	// pageSize is in bytes.
	pageSize uint64

	kill   func(ctx context.Context, pid int, sig Signal) error
	statfs func(ctx context.Context, mountPoint string) (total, avail uint64, err error)
	closer func() error

	bootMu   sync.Mutex
	bootTime uint64
}

func newLinuxBackend(name string, fsys FS, logger logr.Logger) *linuxBackend {
	return &linuxBackend{
		name:     name,
		fsys:     fsys,
		logger:   logger.WithName(name),
		clkTck:   100,
		pageSize: 4096,
	}
}

func (b *linuxBackend) Name() string {
	return b.name
}

func (b *linuxBackend) FoldCase() bool {
	return false
}

func (b *linuxBackend) Signal(ctx context.Context, pid int, sig Signal) error {
	if !sig.Valid() {
		return fmt.Errorf("signal %d: %w", int(sig), ErrUnsupported)
	}
	if b.kill == nil {
		return fmt.Errorf("sending signals: %w", ErrUnsupported)
	}
	return b.kill(ctx, pid, sig)
}

func (b *linuxBackend) Close() error {
	if b.closer != nil {
		return b.closer()
	}
	return nil
}

// ticksToNanos converts /proc clock ticks to nanoseconds.
func (b *linuxBackend) ticksToNanos(ticks uint64) uint64 {
	return ticks * (1e9 / b.clkTck)
}
