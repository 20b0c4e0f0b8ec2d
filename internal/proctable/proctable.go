// Package proctable keeps the process table of a System across refreshes.
//
// A full refresh lists every pid, loads each one on a bounded worker pool and
// merges the results once all workers are done: new pids are inserted,
// known pids are updated in place and pids that were not listed are removed.
// A single-pid refresh only ever inserts or updates.
package proctable

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/go-sysinfo/internal/delta"
	"github.com/opd-ai/go-sysinfo/internal/platform"
)

// Lister enumerates running processes.
type Lister interface {
	PIDs(ctx context.Context) ([]int, error)
}

// Loader reads one process.
type Loader interface {
	Process(ctx context.Context, pid int) (platform.ProcessSample, error)
}

// Entry is one process record plus the state needed to derive its CPU usage.
type Entry struct {
	platform.ProcessSample

	// CPUUsage is the share of the whole machine's processor time consumed
	// since the previous sample, in percent.
	CPUUsage float32

	prevCPU   time.Duration
	prevTotal uint64
	prevAt    time.Time
}

// Stats summarizes one full refresh.
type Stats struct {
	Listed  int
	Added   int
	Updated int
	Removed int
	// Failed holds the errors of listed processes that could not be read.
	// Processes that exited between listing and loading are not failures.
	Failed []error
}

// Table maps pids to entries. It is not safe for concurrent use.
type Table struct {
	logger  logr.Logger
	workers int
	cpus    int
	now     func() time.Time
	entries map[int]*Entry
}

// New creates an empty table. workers bounds the number of processes loaded
// concurrently (GOMAXPROCS when <= 0); cpus is the logical processor count
// used when no machine-wide CPU total is available.
func New(logger logr.Logger, workers, cpus int) *Table {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if cpus <= 0 {
		cpus = 1
	}
	return &Table{
		logger:  logger.WithName("proctable"),
		workers: workers,
		cpus:    cpus,
		now:     time.Now,
		entries: make(map[int]*Entry),
	}
}

type loadResult struct {
	sample platform.ProcessSample
	err    error
}

// Refresh reloads the whole table.
//
// baseline is the machine-wide cumulative processor total (nanoseconds) read
// for this refresh; 0 means unknown, in which case wall time multiplied by
// the processor count stands in. When listing fails the table is left as is.
func (t *Table) Refresh(ctx context.Context, lister Lister, loader Loader, baseline uint64) (Stats, error) {
	pids, err := lister.PIDs(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("listing processes: %w", err)
	}

	results := make([]loadResult, len(pids))
	var g errgroup.Group
	g.SetLimit(t.workers)
	for i, pid := range pids {
		g.Go(func() error {
			s, err := loader.Process(ctx, pid)
			results[i] = loadResult{sample: s, err: err}
			return nil
		})
	}
	_ = g.Wait()

	now := t.now()
	stats := Stats{Listed: len(pids)}
	seen := make(map[int]struct{}, len(pids))
	for i, r := range results {
		pid := pids[i]
		if r.err != nil {
			if errors.Is(r.err, platform.ErrNoProcess) {
				continue
			}
			// Listed but unreadable: keep whatever we had.
			seen[pid] = struct{}{}
			t.logger.V(1).Info("reading process failed", "pid", pid, "error", r.err)
			stats.Failed = append(stats.Failed, fmt.Errorf("pid %d: %w", pid, r.err))
			continue
		}
		seen[pid] = struct{}{}
		r.sample.PID = pid
		if t.commit(r.sample, baseline, now) {
			stats.Added++
		} else {
			stats.Updated++
		}
	}

	for pid := range t.entries {
		if _, ok := seen[pid]; !ok {
			delete(t.entries, pid)
			stats.Removed++
		}
	}
	return stats, nil
}

// RefreshOne reloads a single pid, inserting it when it is not known yet.
// It reports false and leaves the table untouched when the process cannot be
// read.
func (t *Table) RefreshOne(ctx context.Context, pid int, loader Loader, baseline uint64) bool {
	s, err := loader.Process(ctx, pid)
	if err != nil {
		t.logger.V(1).Info("reading process failed", "pid", pid, "error", err)
		return false
	}
	s.PID = pid
	t.commit(s, baseline, t.now())
	return true
}

// commit stores s and reports whether it created a new entry.
func (t *Table) commit(s platform.ProcessSample, baseline uint64, now time.Time) bool {
	e, ok := t.entries[s.PID]
	if !ok || reused(e, s) {
		t.entries[s.PID] = &Entry{
			ProcessSample: s,
			prevCPU:       s.CPUTime,
			prevTotal:     baseline,
			prevAt:        now,
		}
		return true
	}

	procDelta, _ := delta.Uint64(uint64(e.prevCPU), uint64(s.CPUTime))
	e.CPUUsage = delta.Share(procDelta, t.whole(e, baseline, now), e.CPUUsage)
	e.ProcessSample = s
	e.prevCPU = s.CPUTime
	e.prevTotal = baseline
	e.prevAt = now
	return false
}

// whole is the machine processor time elapsed since e was last sampled.
func (t *Table) whole(e *Entry, baseline uint64, now time.Time) uint64 {
	if baseline != 0 && e.prevTotal != 0 {
		d, _ := delta.Uint64(e.prevTotal, baseline)
		return d
	}
	elapsed := now.Sub(e.prevAt)
	if elapsed <= 0 {
		return 0
	}
	return uint64(elapsed) * uint64(t.cpus)
}

// reused reports whether the pid now belongs to a different process.
func reused(e *Entry, s platform.ProcessSample) bool {
	return e.StartTime != 0 && s.StartTime != 0 && e.StartTime != s.StartTime
}

// Get returns the entry for pid.
func (t *Table) Get(pid int) (*Entry, bool) {
	e, ok := t.entries[pid]
	return e, ok
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns all entries ordered by pid.
func (t *Table) Entries() []*Entry {
	out := make([]*Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}
