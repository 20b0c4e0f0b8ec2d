package platform

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/shirou/gopsutil/v4/sensors"
)

// gopsutilBackend implements Backend on top of gopsutil. It is the macOS
// backend and the base the Windows backend extends.
type gopsutilBackend struct {
	name   string
	logger logr.Logger
	// users lists local accounts; gopsutil only knows logged-in sessions.
	users func(ctx context.Context) ([]UserSample, error)
}

func newGopsutilBackend(name string, logger logr.Logger) *gopsutilBackend {
	return &gopsutilBackend{
		name:   name,
		logger: logger.WithName(name),
		users: func(context.Context) ([]UserSample, error) {
			return readUsers(hostFS{root: "/"})
		},
	}
}

func (g *gopsutilBackend) Name() string {
	return g.name
}

func (g *gopsutilBackend) FoldCase() bool {
	return false
}

func (g *gopsutilBackend) Close() error {
	return nil
}

func (g *gopsutilBackend) Bootstrap(ctx context.Context) (BootInfo, error) {
	n, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return BootInfo{}, fmt.Errorf("counting processors: %w", err)
	}
	info := BootInfo{CPUs: n}

	stats, err := cpu.InfoWithContext(ctx)
	if err != nil {
		g.logger.V(1).Info("processor info unavailable", "error", err)
		return info, nil
	}
	for _, s := range stats {
		info.Processors = append(info.Processors, CPUInfo{
			VendorID:     s.VendorID,
			Brand:        strings.TrimSpace(s.ModelName),
			FrequencyMHz: uint64(s.Mhz),
		})
	}
	// Some platforms describe the package once for all logical processors.
	if len(info.Processors) == 1 && n > 1 {
		for i := 1; i < n; i++ {
			info.Processors = append(info.Processors, info.Processors[0])
		}
	}
	return info, nil
}

func secondsToNanos(s float64) uint64 {
	if s <= 0 || math.IsNaN(s) {
		return 0
	}
	return uint64(s * float64(time.Second))
}

func timesFromStat(t cpu.TimesStat) CPUTimes {
	busy := t.User + t.Nice + t.System + t.Irq + t.Softirq + t.Steal
	return CPUTimes{
		Busy:  secondsToNanos(busy),
		Total: secondsToNanos(busy + t.Idle + t.Iowait),
	}
}

func (g *gopsutilBackend) Processors(ctx context.Context) (CPUSample, error) {
	perCPU, err := cpu.TimesWithContext(ctx, true)
	if err != nil {
		return CPUSample{}, fmt.Errorf("reading processor times: %w", err)
	}
	var sample CPUSample
	for _, t := range perCPU {
		ct := timesFromStat(t)
		sample.PerCPU = append(sample.PerCPU, ct)
		sample.Global.Busy += ct.Busy
		sample.Global.Total += ct.Total
	}
	return sample, nil
}

func (g *gopsutilBackend) Memory(ctx context.Context) (MemorySample, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemorySample{}, fmt.Errorf("reading memory: %w", err)
	}
	m := MemorySample{
		Total:     vm.Total / 1024,
		Free:      vm.Free / 1024,
		Available: vm.Available / 1024,
		Used:      vm.Used / 1024,
	}
	if sw, err := mem.SwapMemoryWithContext(ctx); err == nil {
		m.SwapTotal = sw.Total / 1024
		m.SwapFree = sw.Free / 1024
	} else {
		g.logger.V(1).Info("swap unavailable", "error", err)
	}
	return m, nil
}

func (g *gopsutilBackend) LoadAverage(ctx context.Context) (LoadAverage, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return LoadAverage{}, fmt.Errorf("reading load average: %w", err)
	}
	return LoadAverage{One: avg.Load1, Five: avg.Load5, Fifteen: avg.Load15}, nil
}

func (g *gopsutilBackend) BootTime(ctx context.Context) (uint64, error) {
	return host.BootTimeWithContext(ctx)
}

func (g *gopsutilBackend) PIDs(ctx context.Context) ([]int, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	out := make([]int, 0, len(pids))
	for _, pid := range pids {
		out = append(out, int(pid))
	}
	return out, nil
}

// processStates maps gopsutil status strings.
var processStates = map[string]ProcessState{
	process.Running: StateRunning,
	process.Sleep:   StateSleeping,
	process.Idle:    StateSleeping,
	process.Wait:    StateWaiting,
	process.Blocked: StateWaiting,
	process.Lock:    StateWaiting,
	process.Stop:    StateStopped,
	process.Zombie:  StateZombie,
}

func (g *gopsutilBackend) Process(ctx context.Context, pid int) (ProcessSample, error) {
	if pid <= 0 || pid > math.MaxInt32 {
		return ProcessSample{}, fmt.Errorf("pid %d: %w", pid, ErrNoProcess)
	}
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return ProcessSample{}, fmt.Errorf("pid %d: %w", pid, ErrNoProcess)
		}
		return ProcessSample{}, fmt.Errorf("pid %d: %w", pid, err)
	}

	s := ProcessSample{PID: pid}
	name, err := p.NameWithContext(ctx)
	if err != nil {
		if ok, _ := p.IsRunningWithContext(ctx); !ok {
			return ProcessSample{}, fmt.Errorf("pid %d: %w", pid, ErrNoProcess)
		}
	}
	s.Name = name

	// Everything else is best effort: access to other users' processes is
	// restricted on most systems.
	if ppid, err := p.PpidWithContext(ctx); err == nil && ppid > 0 {
		s.Parent, s.HasParent = int(ppid), true
	}
	s.Exe, _ = p.ExeWithContext(ctx)
	s.Cmd, _ = p.CmdlineSliceWithContext(ctx)
	s.Environ, _ = p.EnvironWithContext(ctx)
	s.Cwd, _ = p.CwdWithContext(ctx)
	if status, err := p.StatusWithContext(ctx); err == nil && len(status) > 0 {
		s.State = processStates[status[0]]
	}
	if mi, err := p.MemoryInfoWithContext(ctx); err == nil {
		s.Memory = mi.RSS / 1024
		s.VirtualMemory = mi.VMS / 1024
	}
	if t, err := p.TimesWithContext(ctx); err == nil {
		s.CPUTime = time.Duration(secondsToNanos(t.User + t.System))
	}
	if ms, err := p.CreateTimeWithContext(ctx); err == nil && ms > 0 {
		s.StartTime = uint64(ms / 1000)
	}
	return s, nil
}

func (g *gopsutilBackend) Networks(ctx context.Context) (map[string]NetworkSample, error) {
	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("reading network counters: %w", err)
	}
	out := make(map[string]NetworkSample, len(counters))
	for _, c := range counters {
		out[c.Name] = NetworkSample{
			RxBytes:   c.BytesRecv,
			TxBytes:   c.BytesSent,
			RxPackets: c.PacketsRecv,
			TxPackets: c.PacketsSent,
			RxErrors:  c.Errin,
			TxErrors:  c.Errout,
		}
	}
	return out, nil
}

func (g *gopsutilBackend) Components(ctx context.Context) ([]ComponentSample, error) {
	temps, err := sensors.TemperaturesWithContext(ctx)
	if err != nil && len(temps) == 0 {
		return nil, fmt.Errorf("reading temperatures: %w", err)
	}
	out := make([]ComponentSample, 0, len(temps))
	for _, t := range temps {
		c := ComponentSample{Label: t.SensorKey, Temperature: float32(t.Temperature)}
		if t.Critical > 0 {
			c.Critical, c.HasCritical = float32(t.Critical), true
		}
		out = append(out, c)
	}
	return out, nil
}

func (g *gopsutilBackend) Users(ctx context.Context) ([]UserSample, error) {
	return g.users(ctx)
}

func (g *gopsutilBackend) Disks(ctx context.Context) ([]DiskSample, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}
	var disks []DiskSample
	for _, p := range parts {
		d := DiskSample{Name: p.Device, MountPoint: p.Mountpoint, FileSystem: p.Fstype}
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			g.logger.V(1).Info("disk usage unavailable", "mountPoint", p.Mountpoint, "error", err)
			continue
		}
		d.Total, d.Available = usage.Total, usage.Free
		disks = append(disks, d)
	}
	return disks, nil
}

func (g *gopsutilBackend) Signal(ctx context.Context, pid int, sig Signal) error {
	native, ok := nativeSignal(sig)
	if !ok {
		return fmt.Errorf("signal %s: %w", sig, ErrUnsupported)
	}
	if pid <= 0 || pid > math.MaxInt32 {
		return fmt.Errorf("pid %d: %w", pid, ErrNoProcess)
	}
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return fmt.Errorf("pid %d: %w", pid, ErrNoProcess)
	}
	if err := p.SendSignalWithContext(ctx, native); err != nil {
		return fmt.Errorf("kill %d %s: %w", pid, sig, err)
	}
	return nil
}
