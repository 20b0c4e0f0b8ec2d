package platform

import (
	"context"
	"strings"
)

const procNetDev = "proc/net/dev"

// parseNetDev parses /proc/net/dev. The first two lines are headers.
func parseNetDev(lines []string) map[string]NetworkSample {
	stats := make(map[string]NetworkSample)
	for i, line := range lines {
		if i < 2 {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		fields := strings.Fields(parts[1])
		if name == "" || len(fields) < 16 {
			continue
		}
		stats[name] = NetworkSample{
			RxBytes:   parseUint64(fields[0]),
			RxPackets: parseUint64(fields[1]),
			RxErrors:  parseUint64(fields[2]),
			TxBytes:   parseUint64(fields[8]),
			TxPackets: parseUint64(fields[9]),
			TxErrors:  parseUint64(fields[10]),
		}
	}
	return stats
}

func (b *linuxBackend) Networks(ctx context.Context) (map[string]NetworkSample, error) {
	lines, err := readLines(b.fsys, procNetDev)
	if err != nil {
		return nil, err
	}
	return parseNetDev(lines), nil
}
