package profiling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{CPUProfilePath: "cpu.prof"}.Enabled())
	assert.True(t, Config{MemProfilePath: "mem.prof"}.Enabled())
}

func TestSession_WritesProfiles(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		CPUProfilePath: filepath.Join(dir, "cpu.prof"),
		MemProfilePath: filepath.Join(dir, "mem.prof"),
	}

	s, err := Start(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop(), "second Stop is a no-op")

	for _, path := range []string{cfg.CPUProfilePath, cfg.MemProfilePath} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Size(), path)
	}
}

func TestSession_Disabled(t *testing.T) {
	s, err := Start(Config{})
	require.NoError(t, err)
	assert.NoError(t, s.Stop())
}

func TestStart_BadPath(t *testing.T) {
	_, err := Start(Config{CPUProfilePath: filepath.Join(t.TempDir(), "missing", "cpu.prof")})
	assert.ErrorContains(t, err, "failed to create CPU profile file")
}

func TestSession_BadMemPath(t *testing.T) {
	s, err := Start(Config{MemProfilePath: filepath.Join(t.TempDir(), "missing", "mem.prof")})
	require.NoError(t, err)
	assert.ErrorContains(t, s.Stop(), "failed to create memory profile file")
}
