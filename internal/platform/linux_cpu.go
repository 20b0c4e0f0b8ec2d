package platform

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const (
	procStat    = "proc/stat"
	procCPUInfo = "proc/cpuinfo"
	procLoadavg = "proc/loadavg"
)

// cpuTimes stores raw CPU time values from /proc/stat in clock ticks.
type cpuTimes struct {
	user    uint64
	nice    uint64
	system  uint64
	idle    uint64
	iowait  uint64
	irq     uint64
	softirq uint64
	steal   uint64
}

// busy excludes idle and iowait. Guest time is already part of user.
func (t cpuTimes) busy() uint64 {
	return t.user + t.nice + t.system + t.irq + t.softirq + t.steal
}

func (t cpuTimes) total() uint64 {
	return t.busy() + t.idle + t.iowait
}

// parseCPULine parses one "cpu" or "cpuN" line of /proc/stat.
func parseCPULine(fields []string) (cpuTimes, bool) {
	if len(fields) < 5 {
		return cpuTimes{}, false
	}
	var vals [8]uint64
	for i := 0; i < len(vals) && i+1 < len(fields); i++ {
		vals[i] = parseUint64(fields[i+1])
	}
	return cpuTimes{
		user:    vals[0],
		nice:    vals[1],
		system:  vals[2],
		idle:    vals[3],
		iowait:  vals[4],
		irq:     vals[5],
		softirq: vals[6],
		steal:   vals[7],
	}, true
}

// procStatSnapshot is the parsed content of /proc/stat.
type procStatSnapshot struct {
	global   cpuTimes
	perCPU   []cpuTimes
	bootTime uint64
}

func parseProcStat(lines []string) (procStatSnapshot, error) {
	var snap procStatSnapshot
	var sawGlobal bool
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch {
		case fields[0] == "cpu":
			if t, ok := parseCPULine(fields); ok {
				snap.global = t
				sawGlobal = true
			}
		case strings.HasPrefix(fields[0], "cpu"):
			if _, err := strconv.Atoi(strings.TrimPrefix(fields[0], "cpu")); err != nil {
				continue
			}
			if t, ok := parseCPULine(fields); ok {
				snap.perCPU = append(snap.perCPU, t)
			}
		case fields[0] == "btime" && len(fields) > 1:
			snap.bootTime = parseUint64(fields[1])
		}
	}
	if !sawGlobal {
		return snap, fmt.Errorf("unexpected format in %s", procStat)
	}
	return snap, nil
}

func (b *linuxBackend) readProcStat() (procStatSnapshot, error) {
	lines, err := readLines(b.fsys, procStat)
	if err != nil {
		return procStatSnapshot{}, err
	}
	return parseProcStat(lines)
}

// parseCPUInfo parses /proc/cpuinfo into one entry per "processor" block.
func parseCPUInfo(lines []string) []CPUInfo {
	var infos []CPUInfo
	cur := -1
	for _, line := range lines {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if key == "processor" {
			infos = append(infos, CPUInfo{})
			cur = len(infos) - 1
			continue
		}
		if cur < 0 {
			continue
		}
		switch key {
		case "vendor_id", "CPU implementer":
			if infos[cur].VendorID == "" {
				infos[cur].VendorID = value
			}
		case "model name", "Processor":
			infos[cur].Brand = value
		case "cpu MHz":
			if mhz, err := strconv.ParseFloat(value, 64); err == nil {
				infos[cur].FrequencyMHz = uint64(mhz)
			}
		}
	}
	return infos
}

func (b *linuxBackend) Bootstrap(ctx context.Context) (BootInfo, error) {
	snap, err := b.readProcStat()
	if err != nil {
		return BootInfo{}, err
	}
	info := BootInfo{CPUs: len(snap.perCPU)}

	lines, err := readLines(b.fsys, procCPUInfo)
	if err != nil {
		b.logger.V(1).Info("cpuinfo unavailable", "error", err)
	} else {
		info.Processors = parseCPUInfo(lines)
	}
	if info.CPUs == 0 {
		info.CPUs = len(info.Processors)
	}
	if len(info.Processors) > info.CPUs {
		info.Processors = info.Processors[:info.CPUs]
	}
	return info, nil
}

func (b *linuxBackend) Processors(ctx context.Context) (CPUSample, error) {
	snap, err := b.readProcStat()
	if err != nil {
		return CPUSample{}, err
	}
	sample := CPUSample{
		Global: b.toCPUTimes(snap.global),
		PerCPU: make([]CPUTimes, len(snap.perCPU)),
	}
	for i, t := range snap.perCPU {
		sample.PerCPU[i] = b.toCPUTimes(t)
	}

	if lines, err := readLines(b.fsys, procCPUInfo); err == nil {
		for _, info := range parseCPUInfo(lines) {
			sample.FrequencyMHz = append(sample.FrequencyMHz, info.FrequencyMHz)
		}
	}
	return sample, nil
}

func (b *linuxBackend) toCPUTimes(t cpuTimes) CPUTimes {
	return CPUTimes{
		Busy:  b.ticksToNanos(t.busy()),
		Total: b.ticksToNanos(t.total()),
	}
}

// parseLoadAverage parses the content of /proc/loadavg.
func parseLoadAverage(output string) (LoadAverage, error) {
	fields := strings.Fields(output)
	if len(fields) < 3 {
		return LoadAverage{}, fmt.Errorf("unexpected %s format: %q", procLoadavg, output)
	}
	var vals [3]float64
	for i := range vals {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return LoadAverage{}, fmt.Errorf("parsing load average %q: %w", fields[i], err)
		}
		vals[i] = v
	}
	return LoadAverage{One: vals[0], Five: vals[1], Fifteen: vals[2]}, nil
}

func (b *linuxBackend) LoadAverage(ctx context.Context) (LoadAverage, error) {
	data, err := b.fsys.ReadFile(procLoadavg)
	if err != nil {
		return LoadAverage{}, fmt.Errorf("reading %s: %w", procLoadavg, err)
	}
	return parseLoadAverage(string(data))
}

// BootTime is cached after the first successful read; it does not change
// while the host is up.
func (b *linuxBackend) BootTime(ctx context.Context) (uint64, error) {
	b.bootMu.Lock()
	defer b.bootMu.Unlock()
	if b.bootTime != 0 {
		return b.bootTime, nil
	}
	snap, err := b.readProcStat()
	if err != nil {
		return 0, err
	}
	if snap.bootTime == 0 {
		return 0, fmt.Errorf("no btime in %s", procStat)
	}
	b.bootTime = snap.bootTime
	return b.bootTime, nil
}
