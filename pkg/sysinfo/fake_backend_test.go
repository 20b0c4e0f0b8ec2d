package sysinfo

import (
	"context"
	"sync"

	"github.com/opd-ai/go-sysinfo/internal/platform"
)

// fakeBackend serves canned samples. Zero-valued error fields mean success.
type fakeBackend struct {
	mu sync.Mutex

	name     string
	foldCase bool

	boot       platform.BootInfo
	bootErr    error
	cpu        platform.CPUSample
	cpuErr     error
	cpuReads   int
	memory     platform.MemorySample
	memoryErr  error
	load       platform.LoadAverage
	bootTime   uint64
	processes  map[int]platform.ProcessSample
	pidsErr    error
	networks   map[string]platform.NetworkSample
	components []platform.ComponentSample
	users      []platform.UserSample
	disks      []platform.DiskSample

	signals   []sentSignal
	signalErr error
	closed    bool
}

type sentSignal struct {
	pid int
	sig platform.Signal
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		name: "fake",
		boot: platform.BootInfo{
			CPUs: 2,
			Processors: []platform.CPUInfo{
				{VendorID: "GenuineIntel", Brand: "Test CPU", FrequencyMHz: 2400},
				{VendorID: "GenuineIntel", Brand: "Test CPU", FrequencyMHz: 2400},
			},
		},
		bootTime:  1_700_000_000,
		processes: map[int]platform.ProcessSample{},
		networks:  map[string]platform.NetworkSample{},
	}
}

func (f *fakeBackend) setCPU(busy, total uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cpu = platform.CPUSample{
		Global: platform.CPUTimes{Busy: busy, Total: total},
		PerCPU: []platform.CPUTimes{
			{Busy: busy / 2, Total: total / 2},
			{Busy: busy - busy/2, Total: total - total/2},
		},
	}
}

func (f *fakeBackend) setProcess(p platform.ProcessSample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processes[p.PID] = p
}

func (f *fakeBackend) Name() string   { return f.name }
func (f *fakeBackend) FoldCase() bool { return f.foldCase }

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func (f *fakeBackend) Bootstrap(context.Context) (platform.BootInfo, error) {
	return f.boot, f.bootErr
}

func (f *fakeBackend) Processors(context.Context) (platform.CPUSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cpuReads++
	return f.cpu, f.cpuErr
}

func (f *fakeBackend) Memory(context.Context) (platform.MemorySample, error) {
	return f.memory, f.memoryErr
}

func (f *fakeBackend) LoadAverage(context.Context) (platform.LoadAverage, error) {
	return f.load, nil
}

func (f *fakeBackend) BootTime(context.Context) (uint64, error) {
	if f.bootTime == 0 {
		return 0, platform.ErrUnsupported
	}
	return f.bootTime, nil
}

func (f *fakeBackend) PIDs(context.Context) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pidsErr != nil {
		return nil, f.pidsErr
	}
	pids := make([]int, 0, len(f.processes))
	for pid := range f.processes {
		pids = append(pids, pid)
	}
	return pids, nil
}

func (f *fakeBackend) Process(_ context.Context, pid int) (platform.ProcessSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.processes[pid]
	if !ok {
		return platform.ProcessSample{}, platform.ErrNoProcess
	}
	return p, nil
}

func (f *fakeBackend) Networks(context.Context) (map[string]platform.NetworkSample, error) {
	out := make(map[string]platform.NetworkSample, len(f.networks))
	for k, v := range f.networks {
		out[k] = v
	}
	return out, nil
}

func (f *fakeBackend) Components(context.Context) ([]platform.ComponentSample, error) {
	return f.components, nil
}

func (f *fakeBackend) Users(context.Context) ([]platform.UserSample, error) {
	return f.users, nil
}

func (f *fakeBackend) Disks(context.Context) ([]platform.DiskSample, error) {
	return f.disks, nil
}

func (f *fakeBackend) Signal(_ context.Context, pid int, sig platform.Signal) error {
	f.signals = append(f.signals, sentSignal{pid: pid, sig: sig})
	return f.signalErr
}
