package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsOnChange(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sysinfo.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("output:\n  processes: 1\n"), 0o644))

	var latest atomic.Pointer[Config]
	var lastError atomic.Value

	w, err := Watch(configPath, 50*time.Millisecond,
		func(c *Config) { latest.Store(c) },
		func(err error) { lastError.Store(err) },
	)
	require.NoError(t, err)
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(configPath, []byte("output:\n  processes: 9\n"), 0o644))

	require.Eventually(t, func() bool {
		c := latest.Load()
		return c != nil && c.Output.Processes == 9
	}, 2*time.Second, 20*time.Millisecond)
	assert.Nil(t, lastError.Load())
}

func TestWatch_DebouncesBursts(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sysinfo.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(""), 0o644))

	var reloads atomic.Int32
	w, err := Watch(configPath, 150*time.Millisecond, func(*Config) { reloads.Add(1) }, nil)
	require.NoError(t, err)
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(configPath, []byte("workers: "+string(rune('1'+i))+"\n"), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return reloads.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load())
}

func TestWatch_InvalidFileReportsError(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sysinfo.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(""), 0o644))

	var reloads atomic.Int32
	errs := make(chan error, 4)
	w, err := Watch(configPath, 30*time.Millisecond,
		func(*Config) { reloads.Add(1) },
		func(err error) { errs <- err },
	)
	require.NoError(t, err)
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(configPath, []byte("backend: bsd\n"), 0o644))

	select {
	case err := <-errs:
		assert.ErrorContains(t, err, "unknown backend")
	case <-time.After(2 * time.Second):
		t.Fatal("no error reported")
	}
	assert.Zero(t, reloads.Load())
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "sysinfo.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(""), 0o644))

	var reloads atomic.Int32
	w, err := Watch(configPath, 30*time.Millisecond, func(*Config) { reloads.Add(1) }, nil)
	require.NoError(t, err)
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, reloads.Load())
}

func TestWatch_StopIsIdempotent(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sysinfo.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(""), 0o644))

	w, err := Watch(configPath, 0, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultWatchDebounce, w.debounce)
	w.Stop()
	w.Stop()
}

func TestWatch_MissingDirectory(t *testing.T) {
	_, err := Watch(filepath.Join(t.TempDir(), "nope", "sysinfo.yaml"), 0, nil, nil)
	assert.Error(t, err)
}
