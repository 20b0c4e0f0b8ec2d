package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-sysinfo/internal/config"
	"github.com/opd-ai/go-sysinfo/internal/platform"
	"github.com/opd-ai/go-sysinfo/pkg/sysinfo"
)

func TestVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"-v"}, &stdout, &stderr))
	assert.Equal(t, "sysinfo version "+Version+"\n", stdout.String())
}

func TestRun_Signals(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-signals"}, &stdout, &stderr))

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	require.Len(t, lines, 31)
	assert.Equal(t, " 1 Hangup", lines[0])
	assert.Equal(t, " 9 Kill", lines[8])
	assert.Equal(t, "31 Sys", lines[30])
}

func TestRun_BadFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run([]string{"-no-such-flag"}, &stdout, &stderr))
	assert.Equal(t, 2, run([]string{"extra"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "unexpected arguments: extra")
}

func TestRun_InvalidOverrides(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"-backend", "bsd"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "unknown backend")
}

func TestApplyFlags(t *testing.T) {
	f, err := parseFlags([]string{"-backend", "gopsutil", "-n", "0", "-interval", "250ms"}, &bytes.Buffer{})
	require.NoError(t, err)

	cfg := config.Defaults()
	require.NoError(t, applyFlags(&cfg, f))
	assert.Equal(t, config.BackendGopsutil, cfg.Backend)
	assert.Equal(t, 0, cfg.Refresh.Count)
	assert.Equal(t, 250*time.Millisecond, cfg.Refresh.Interval)

	f, err = parseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)
	cfg = config.Defaults()
	require.NoError(t, applyFlags(&cfg, f))
	assert.Equal(t, config.Defaults(), cfg, "unset flags leave the configuration alone")
}

func TestParseKillArg(t *testing.T) {
	tests := []struct {
		arg     string
		pid     sysinfo.Pid
		sig     sysinfo.Signal
		wantErr error
	}{
		{"42", 42, sysinfo.SignalTerm, nil},
		{"42:9", 42, sysinfo.SignalKill, nil},
		{"42:kill", 42, sysinfo.SignalKill, nil},
		{"42:SIGHUP", 42, sysinfo.SignalHangup, nil},
		{"0:9", 0, 0, sysinfo.ErrInvalidPid},
		{"abc", 0, 0, sysinfo.ErrInvalidPid},
		{"42:64", 0, 0, sysinfo.ErrInvalidSignal},
		{"42:", 0, 0, sysinfo.ErrInvalidSignal},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			pid, sig, err := parseKillArg(tt.arg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pid, pid)
			assert.Equal(t, tt.sig, sig)
		})
	}
}

func TestSortProcesses(t *testing.T) {
	procs := func() []sysinfo.Process {
		return []sysinfo.Process{
			{Pid: 3, Name: "b", CPUUsage: 5, Memory: 100},
			{Pid: 1, Name: "c", CPUUsage: 50, Memory: 10},
			{Pid: 2, Name: "a", CPUUsage: 20, Memory: 1000},
		}
	}
	pids := func(ps []sysinfo.Process) []sysinfo.Pid {
		out := make([]sysinfo.Pid, len(ps))
		for i, p := range ps {
			out[i] = p.Pid
		}
		return out
	}

	tests := []struct {
		order string
		want  []sysinfo.Pid
	}{
		{config.SortCPU, []sysinfo.Pid{1, 2, 3}},
		{config.SortMemory, []sysinfo.Pid{2, 3, 1}},
		{config.SortName, []sysinfo.Pid{2, 3, 1}},
		{config.SortPid, []sysinfo.Pid{1, 2, 3}},
		{"", []sysinfo.Pid{1, 2, 3}},
	}
	for _, tt := range tests {
		ps := procs()
		sortProcesses(ps, tt.order)
		assert.Equal(t, tt.want, pids(ps), "order %q", tt.order)
	}
}

func TestRenderProcesses_Limit(t *testing.T) {
	procs := []sysinfo.Process{
		{Pid: 1, Name: "init", Status: sysinfo.StatusSleep},
		{Pid: 2, Name: "kthreadd", Status: sysinfo.StatusSleep},
		{Pid: 3, Name: "worker", Status: sysinfo.StatusRun, CPUUsage: 12.5},
	}
	got := renderProcesses(procs, config.SortCPU, 2)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "pid")
	assert.Contains(t, lines[1], "worker")
	assert.Contains(t, lines[1], "Running")
	assert.Contains(t, lines[1], "12.5")
}

func TestRenderProcess(t *testing.T) {
	p := sysinfo.Process{
		Pid:       77,
		Parent:    1,
		HasParent: true,
		Name:      "sleep",
		Cmd:       []string{"sleep", "60"},
		Status:    sysinfo.StatusSleep,
		Memory:    2048,
		CPUTime:   1500 * time.Millisecond,
	}
	got := renderProcess(p, newStyles(true))
	assert.Contains(t, got, "Process 77")
	assert.Contains(t, got, "sleep 60")
	assert.Contains(t, got, "2.0 MiB")
	assert.Contains(t, got, "1.5s")
	assert.Contains(t, got, "Sleeping")
}

func TestRenderReport_UnknownBackend(t *testing.T) {
	sys := sysinfo.New(sysinfo.WithBackend(platform.NewUnknown()))
	defer sys.Close()
	sys.RefreshAll()

	out := config.Defaults().Output
	got := renderReport(sys, out, newStyles(true), time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	assert.Contains(t, got, "sysinfo (unknown)")
	assert.Contains(t, got, "Tue Jan 2 03:04:05 UTC 2024")
	assert.Contains(t, got, "CPU")
	assert.Contains(t, got, "Memory")
	assert.Contains(t, got, "Processes")
	assert.NotContains(t, got, "Networks", "empty tables are omitted")

	out.Processes = 0
	got = renderReport(sys, out, newStyles(true), time.Now())
	assert.NotContains(t, got, "Processes")
}

func TestGaugeBar(t *testing.T) {
	assert.Equal(t, "[░░░░]   0.0%", gaugeBar(-3, 4))
	assert.Equal(t, "[██░░]  50.0%", gaugeBar(50, 4))
	assert.Equal(t, "[████] 100.0%", gaugeBar(130, 4))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "1.0 GiB", formatBytes(1<<30))
	assert.Equal(t, "4.0 MiB", formatKB(4096))

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "long…", truncate("longer-name", 5))

	assert.Equal(t, float32(25), percent(1, 4))
	assert.Zero(t, percent(1, 0))

	assert.Equal(t, "1h2m3s", formatUptime(3723))
	assert.Equal(t, "2d 1h0m0s", formatUptime(2*86400+3600+30))
	assert.Equal(t, "-", formatStart(0))
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{config.LogFormatConsole, config.LogFormatJSON, config.LogFormatSlog} {
		t.Run(format, func(t *testing.T) {
			logger, flush, err := newLogger(config.LogConfig{Level: "debug", Format: format}, &bytes.Buffer{})
			require.NoError(t, err)
			defer flush()
			assert.True(t, logger.V(1).Enabled())
			assert.False(t, logger.V(2).Enabled())
		})
	}

	var buf bytes.Buffer
	logger, _, err := newLogger(config.LogConfig{Level: "info", Format: config.LogFormatSlog}, &buf)
	require.NoError(t, err)
	assert.False(t, logger.V(1).Enabled())
	logger.Info("hello", "key", "value")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "key=value")
}
