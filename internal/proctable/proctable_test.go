package proctable

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-sysinfo/internal/platform"
)

type fakeSource struct {
	mu      sync.Mutex
	pids    []int
	samples map[int]platform.ProcessSample
	errs    map[int]error
	listErr error
	delay   time.Duration

	active    atomic.Int32
	maxActive atomic.Int32
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		samples: map[int]platform.ProcessSample{},
		errs:    map[int]error{},
	}
}

func (f *fakeSource) set(pid int, name string, cpu time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples[pid] = platform.ProcessSample{PID: pid, Name: name, CPUTime: cpu, StartTime: 1000}
	for _, p := range f.pids {
		if p == pid {
			return
		}
	}
	f.pids = append(f.pids, pid)
}

func (f *fakeSource) drop(pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.samples, pid)
	for i, p := range f.pids {
		if p == pid {
			f.pids = append(f.pids[:i], f.pids[i+1:]...)
			return
		}
	}
}

func (f *fakeSource) PIDs(context.Context) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]int(nil), f.pids...), nil
}

func (f *fakeSource) Process(_ context.Context, pid int) (platform.ProcessSample, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxActive.Load()
		if n <= m || f.maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[pid]; ok {
		return platform.ProcessSample{}, err
	}
	s, ok := f.samples[pid]
	if !ok {
		return platform.ProcessSample{}, platform.ErrNoProcess
	}
	return s, nil
}

func TestRefresh_LifecycleInsertUpdateRemove(t *testing.T) {
	src := newFakeSource()
	src.set(1, "init", 0)
	src.set(2, "worker", 0)

	table := New(testr.New(t), 4, 2)
	ctx := context.Background()

	stats, err := table.Refresh(ctx, src, src, 1000)
	require.NoError(t, err)
	assert.Equal(t, Stats{Listed: 2, Added: 2}, stats)
	assert.Equal(t, 2, table.Len())

	src.set(3, "new", 0)
	src.drop(2)
	stats, err = table.Refresh(ctx, src, src, 2000)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 1, stats.Removed)

	_, ok := table.Get(2)
	assert.False(t, ok, "unobserved pid is removed")

	var pids []int
	for _, e := range table.Entries() {
		pids = append(pids, e.PID)
	}
	assert.Equal(t, []int{1, 3}, pids)
}

func TestRefresh_FirstSampleIsZeroThenShare(t *testing.T) {
	src := newFakeSource()
	src.set(7, "busy", 100)
	table := New(testr.New(t), 0, 4)
	ctx := context.Background()

	_, err := table.Refresh(ctx, src, src, 10_000)
	require.NoError(t, err)
	e, ok := table.Get(7)
	require.True(t, ok)
	assert.Zero(t, e.CPUUsage)

	src.set(7, "busy", 100+250)
	_, err = table.Refresh(ctx, src, src, 11_000)
	require.NoError(t, err)
	e, _ = table.Get(7)
	assert.InDelta(t, 25.0, e.CPUUsage, 0.001)
	assert.Equal(t, time.Duration(350), e.CPUTime)

	// No machine time elapsed: the previous value stays.
	_, err = table.Refresh(ctx, src, src, 11_000)
	require.NoError(t, err)
	e, _ = table.Get(7)
	assert.InDelta(t, 25.0, e.CPUUsage, 0.001)

	// CPU time going backwards floors at zero.
	src.set(7, "busy", 10)
	_, err = table.Refresh(ctx, src, src, 12_000)
	require.NoError(t, err)
	e, _ = table.Get(7)
	assert.Zero(t, e.CPUUsage)
}

func TestRefresh_WallClockFallback(t *testing.T) {
	src := newFakeSource()
	src.set(5, "p", 0)
	table := New(testr.New(t), 1, 2)
	clock := time.Unix(100, 0)
	table.now = func() time.Time { return clock }
	ctx := context.Background()

	_, err := table.Refresh(ctx, src, src, 0)
	require.NoError(t, err)

	clock = clock.Add(time.Second)
	src.set(5, "p", 500*time.Millisecond)
	_, err = table.Refresh(ctx, src, src, 0)
	require.NoError(t, err)

	e, _ := table.Get(5)
	assert.InDelta(t, 25.0, e.CPUUsage, 0.001, "half a core of two for one second")
}

func TestRefresh_UsageIsClamped(t *testing.T) {
	src := newFakeSource()
	src.set(9, "hog", 0)
	table := New(testr.New(t), 1, 1)
	ctx := context.Background()

	_, err := table.Refresh(ctx, src, src, 100)
	require.NoError(t, err)
	src.set(9, "hog", 1_000)
	_, err = table.Refresh(ctx, src, src, 200)
	require.NoError(t, err)

	e, _ := table.Get(9)
	assert.Equal(t, float32(100), e.CPUUsage)
}

func TestRefresh_ListingFailureLeavesTable(t *testing.T) {
	src := newFakeSource()
	src.set(1, "init", 0)
	table := New(testr.New(t), 1, 1)
	ctx := context.Background()

	_, err := table.Refresh(ctx, src, src, 0)
	require.NoError(t, err)

	src.listErr = errors.New("permission denied")
	_, err = table.Refresh(ctx, src, src, 0)
	assert.ErrorContains(t, err, "listing processes")
	assert.Equal(t, 1, table.Len())
}

func TestRefresh_UnreadableProcessIsKept(t *testing.T) {
	src := newFakeSource()
	src.set(1, "init", 0)
	src.set(2, "secret", 0)
	table := New(testr.New(t), 2, 1)
	ctx := context.Background()

	_, err := table.Refresh(ctx, src, src, 0)
	require.NoError(t, err)

	src.errs[2] = errors.New("access denied")
	stats, err := table.Refresh(ctx, src, src, 0)
	require.NoError(t, err)
	require.Len(t, stats.Failed, 1)
	assert.ErrorContains(t, stats.Failed[0], "pid 2")

	e, ok := table.Get(2)
	require.True(t, ok)
	assert.Equal(t, "secret", e.Name)
}

func TestRefresh_ExitedBetweenListAndLoad(t *testing.T) {
	src := newFakeSource()
	src.set(1, "init", 0)
	src.pids = append(src.pids, 66)
	table := New(testr.New(t), 2, 1)

	stats, err := table.Refresh(context.Background(), src, src, 0)
	require.NoError(t, err)
	assert.Empty(t, stats.Failed)
	assert.Equal(t, 1, table.Len())
}

func TestRefresh_PidReuseResetsEntry(t *testing.T) {
	src := newFakeSource()
	src.set(4, "old", 0)
	table := New(testr.New(t), 1, 1)
	ctx := context.Background()

	_, err := table.Refresh(ctx, src, src, 100)
	require.NoError(t, err)
	src.set(4, "old", 50)
	_, err = table.Refresh(ctx, src, src, 200)
	require.NoError(t, err)
	e, _ := table.Get(4)
	require.NotZero(t, e.CPUUsage)

	src.mu.Lock()
	src.samples[4] = platform.ProcessSample{PID: 4, Name: "new", CPUTime: 5, StartTime: 2000}
	src.mu.Unlock()
	stats, err := table.Refresh(ctx, src, src, 300)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Added)

	e, _ = table.Get(4)
	assert.Equal(t, "new", e.Name)
	assert.Zero(t, e.CPUUsage)
}

func TestRefresh_BoundedWorkers(t *testing.T) {
	src := newFakeSource()
	for pid := 1; pid <= 32; pid++ {
		src.set(pid, "p", 0)
	}
	src.delay = 2 * time.Millisecond
	table := New(testr.New(t), 3, 1)

	stats, err := table.Refresh(context.Background(), src, src, 0)
	require.NoError(t, err)
	assert.Equal(t, 32, stats.Added)
	assert.LessOrEqual(t, src.maxActive.Load(), int32(3))
}

func TestRefreshOne(t *testing.T) {
	src := newFakeSource()
	src.set(1, "init", 0)
	src.set(2, "other", 0)
	table := New(testr.New(t), 1, 1)
	ctx := context.Background()

	assert.True(t, table.RefreshOne(ctx, 2, src, 100))
	assert.Equal(t, 1, table.Len(), "only the requested pid is inserted")

	src.set(2, "other", 30)
	assert.True(t, table.RefreshOne(ctx, 2, src, 200))
	e, _ := table.Get(2)
	assert.InDelta(t, 30.0, e.CPUUsage, 0.001)

	src.drop(2)
	assert.False(t, table.RefreshOne(ctx, 2, src, 300))
	e, ok := table.Get(2)
	require.True(t, ok, "a failed single refresh never removes")
	assert.InDelta(t, 30.0, e.CPUUsage, 0.001)

	assert.False(t, table.RefreshOne(ctx, 999, src, 300))
	_, ok = table.Get(999)
	assert.False(t, ok)
}

func TestRefreshOne_ThenFullRefreshUsesEntryBaseline(t *testing.T) {
	src := newFakeSource()
	src.set(3, "p", 0)
	table := New(testr.New(t), 1, 1)
	ctx := context.Background()

	_, err := table.Refresh(ctx, src, src, 1000)
	require.NoError(t, err)

	src.set(3, "p", 100)
	require.True(t, table.RefreshOne(ctx, 3, src, 1500))

	src.set(3, "p", 150)
	_, err = table.Refresh(ctx, src, src, 2000)
	require.NoError(t, err)

	e, _ := table.Get(3)
	assert.InDelta(t, 10.0, e.CPUUsage, 0.001, "50 of the 500 elapsed since the single refresh")
}

func TestNew_Defaults(t *testing.T) {
	table := New(testr.New(t), 0, 0)
	assert.Positive(t, table.workers)
	assert.Equal(t, 1, table.cpus)
	assert.Zero(t, table.Len())
	assert.Empty(t, table.Entries())
}
