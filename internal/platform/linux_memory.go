package platform

import (
	"context"
	"strconv"
	"strings"
)

const procMeminfo = "proc/meminfo"

// parseMemInfo parses /proc/meminfo. Values stay in KB.
func parseMemInfo(lines []string) MemorySample {
	values := make(map[string]uint64, 8)
	for _, line := range lines {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		valueStr := strings.TrimSuffix(strings.TrimSpace(parts[1]), " kB")
		value, err := strconv.ParseUint(valueStr, 10, 64)
		if err != nil {
			continue
		}
		values[strings.TrimSpace(parts[0])] = value
	}

	m := MemorySample{
		Total:     values["MemTotal"],
		Free:      values["MemFree"],
		SwapTotal: values["SwapTotal"],
		SwapFree:  values["SwapFree"],
	}
	m.Available, m.Used = availableAndUsed(m.Total, m.Free, values)
	return m
}

// availableAndUsed prefers MemAvailable. Kernels older than 3.14 lack it,
// in which case reclaimable caches count as available.
func availableAndUsed(total, free uint64, values map[string]uint64) (available, used uint64) {
	reclaimable := values["Buffers"] + values["Cached"] + values["SReclaimable"]
	if shmem := values["Shmem"]; reclaimable >= shmem {
		reclaimable -= shmem
	}

	available, ok := values["MemAvailable"]
	if !ok {
		available = free + reclaimable
	}
	if available > total {
		available = total
	}

	if total >= free+reclaimable {
		used = total - free - reclaimable
	}
	return available, used
}

func (b *linuxBackend) Memory(ctx context.Context) (MemorySample, error) {
	lines, err := readLines(b.fsys, procMeminfo)
	if err != nil {
		return MemorySample{}, err
	}
	return parseMemInfo(lines), nil
}
