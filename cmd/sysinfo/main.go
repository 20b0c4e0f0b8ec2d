// Package main provides the sysinfo command, which prints a report of the
// local or a remote machine's processors, memory, processes, networks,
// components, disks and users.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-logr/logr"

	"github.com/opd-ai/go-sysinfo/internal/config"
	"github.com/opd-ai/go-sysinfo/internal/profiling"
	"github.com/opd-ai/go-sysinfo/pkg/sysinfo"
)

// Version is the current version of sysinfo.
// This default value can be overridden at build time using:
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type flags struct {
	configPath string
	version    bool
	pid        string
	kill       string
	signals    bool
	watch      bool
	backend    string
	count      int
	interval   time.Duration
	cpuProfile string
	memProfile string
}

func parseFlags(args []string, stderr io.Writer) (*flags, error) {
	f := &flags{count: -1}
	fs := flag.NewFlagSet("sysinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "", "Path to a YAML configuration file")
	fs.BoolVar(&f.version, "v", false, "Print version and exit")
	fs.StringVar(&f.pid, "pid", "", "Show a single process")
	fs.StringVar(&f.kill, "kill", "", "Send a signal, as pid:signal")
	fs.BoolVar(&f.signals, "signals", false, "List the supported signals and exit")
	fs.BoolVar(&f.watch, "watch", false, "Reload the configuration file when it changes")
	fs.StringVar(&f.backend, "backend", "", "Override the backend (native, gopsutil, remote)")
	fs.IntVar(&f.count, "n", -1, "Number of reports, 0 for unlimited")
	fs.DurationVar(&f.interval, "interval", 0, "Time between reports")
	fs.StringVar(&f.cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	fs.StringVar(&f.memProfile, "memprofile", "", "Write memory profile to file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return f, nil
}

// applyFlags overrides cfg with the command-line values that were set.
func applyFlags(cfg *config.Config, f *flags) error {
	if f.backend != "" {
		cfg.Backend = f.backend
	}
	if f.count >= 0 {
		cfg.Refresh.Count = f.count
	}
	if f.interval != 0 {
		cfg.Refresh.Interval = f.interval
	}
	return config.Validate(cfg).Error()
}

func run(args []string, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	if f.version {
		fmt.Fprintf(stdout, "sysinfo version %s\n", Version)
		return 0
	}
	if f.signals {
		for _, sig := range sysinfo.Signals() {
			fmt.Fprintf(stdout, "%2d %s\n", int(sig), sig)
		}
		return 0
	}

	cfg, err := config.Load(f.configPath, nil)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	if err := applyFlags(cfg, f); err != nil {
		fmt.Fprintf(stderr, "Invalid options: %v\n", err)
		return 1
	}

	logger, flush, err := newLogger(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer flush()

	prof, err := profiling.Start(profiling.Config{CPUProfilePath: f.cpuProfile, MemProfilePath: f.memProfile})
	if err != nil {
		logger.Error(err, "failed to start profiling")
		return 1
	}
	defer func() {
		if err := prof.Stop(); err != nil {
			logger.Error(err, "failed to write profiles")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := newBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error(err, "failed to create backend", "backend", cfg.Backend)
		return 1
	}
	opts := []sysinfo.Option{sysinfo.WithLogger(logger), sysinfo.WithWorkers(cfg.Workers)}
	if backend != nil {
		opts = append(opts, sysinfo.WithBackend(backend))
	}
	sys := sysinfo.New(opts...)
	defer func() {
		if err := sys.Close(); err != nil {
			logger.Error(err, "failed to close backend")
		}
	}()

	switch {
	case f.kill != "":
		return runKill(sys, f.kill, stdout, stderr)
	case f.pid != "":
		return runProcess(ctx, sys, f.pid, cfg, stdout, stderr)
	}

	var reloads <-chan *config.Config
	if f.watch {
		if f.configPath == "" {
			fmt.Fprintln(stderr, "-watch requires -config")
			return 1
		}
		ch := make(chan *config.Config, 1)
		w, err := config.Watch(f.configPath, 0,
			func(c *config.Config) {
				if err := applyFlags(c, f); err != nil {
					logger.Error(err, "ignoring reloaded configuration")
					return
				}
				select {
				case ch <- c:
				default:
				}
			},
			func(err error) { logger.Error(err, "configuration reload failed") },
		)
		if err != nil {
			logger.Error(err, "failed to watch configuration", "path", f.configPath)
			return 1
		}
		defer w.Stop()
		reloads = ch
	}

	return runReports(ctx, sys, cfg, reloads, stdout, logger)
}

// runReports prints cfg.Refresh.Count reports, or until ctx is done when the
// count is zero. Every report is preceded by one interval so that usage
// figures cover a full sampling period.
func runReports(ctx context.Context, sys *sysinfo.System, cfg *config.Config, reloads <-chan *config.Config, stdout io.Writer, logger logr.Logger) int {
	refresh := func() {
		sys.RefreshAll()
		sys.RefreshNetworks()
		sys.RefreshUsersList()
		sys.RefreshDisks()
	}
	refresh()

	out := cfg.Output
	st := newStyles(out.NoColor)
	interval := cfg.Refresh.Interval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for printed := 0; cfg.Refresh.Count == 0 || printed < cfg.Refresh.Count; {
		select {
		case <-ctx.Done():
			return 0
		case c := <-reloads:
			if c.Backend != cfg.Backend {
				logger.Info("backend change takes effect after a restart", "backend", c.Backend)
			}
			out = c.Output
			st = newStyles(out.NoColor)
			if c.Refresh.Interval != interval {
				interval = c.Refresh.Interval
				ticker.Reset(interval)
			}
			logger.V(1).Info("configuration reloaded", "interval", interval)
		case now := <-ticker.C:
			refresh()
			if printed > 0 {
				fmt.Fprintln(stdout)
			}
			fmt.Fprintln(stdout, renderReport(sys, out, st, now))
			printed++
		}
	}
	return 0
}

// runProcess samples one process twice, one interval apart, and prints it.
func runProcess(ctx context.Context, sys *sysinfo.System, arg string, cfg *config.Config, stdout, stderr io.Writer) int {
	pid, err := sysinfo.ParsePid(arg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	sys.RefreshCPU()
	if !sys.RefreshProcess(pid) {
		fmt.Fprintf(stderr, "process %d not found\n", pid)
		return 1
	}
	select {
	case <-ctx.Done():
		return 0
	case <-time.After(cfg.Refresh.Interval):
	}
	sys.RefreshCPU()
	if !sys.RefreshProcess(pid) {
		fmt.Fprintf(stderr, "process %d exited\n", pid)
		return 1
	}
	p, _ := sys.Process(pid)
	fmt.Fprintln(stdout, renderProcess(p, newStyles(cfg.Output.NoColor)))
	return 0
}

func runKill(sys *sysinfo.System, arg string, stdout, stderr io.Writer) int {
	pid, sig, err := parseKillArg(arg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if err := sys.KillErr(pid, sig); err != nil {
		fmt.Fprintf(stderr, "kill %d: %v\n", pid, err)
		return 1
	}
	fmt.Fprintf(stdout, "sent %s to %d\n", sig, pid)
	return 0
}

// parseKillArg splits "pid:signal". The signal defaults to Term.
func parseKillArg(arg string) (sysinfo.Pid, sysinfo.Signal, error) {
	pidPart, sigPart, found := strings.Cut(arg, ":")
	pid, err := sysinfo.ParsePid(pidPart)
	if err != nil {
		return 0, 0, err
	}
	if !found {
		return pid, sysinfo.SignalTerm, nil
	}
	sig, err := sysinfo.ParseSignal(sigPart)
	if err != nil {
		return 0, 0, err
	}
	return pid, sig, nil
}
