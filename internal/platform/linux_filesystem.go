package platform

import (
	"context"
	"path"
	"strconv"
	"strings"
)

const procMounts = "proc/mounts"

type mountEntry struct {
	device     string
	mountPoint string
	fsType     string
}

// parseMounts parses /proc/mounts and keeps block-device backed mounts.
// A device mounted several times is reported once, at its first mount point.
func parseMounts(lines []string) []mountEntry {
	var mounts []mountEntry
	seen := make(map[string]bool)
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		device := fields[0]
		fsType := fields[2]
		if isVirtualFS(fsType) || !strings.HasPrefix(device, "/dev/") || seen[device] {
			continue
		}
		seen[device] = true
		mounts = append(mounts, mountEntry{
			device:     device,
			mountPoint: unescapeMountPath(fields[1]),
			fsType:     fsType,
		})
	}
	return mounts
}

// unescapeMountPath unescapes octal sequences in mount paths from /proc/mounts.
func unescapeMountPath(p string) string {
	// /proc/mounts escapes spaces and other characters as octal sequences (e.g., \040 for space)
	var result strings.Builder
	for i := 0; i < len(p); i++ {
		if p[i] == '\\' && i+4 <= len(p) {
			if val, err := strconv.ParseUint(p[i+1:i+4], 8, 8); err == nil {
				result.WriteByte(byte(val))
				i += 3
				continue
			}
		}
		result.WriteByte(p[i])
	}
	return result.String()
}

var virtualFS = map[string]bool{
	"proc":       true,
	"sysfs":      true,
	"devtmpfs":   true,
	"devpts":     true,
	"tmpfs":      true,
	"cgroup":     true,
	"cgroup2":    true,
	"pstore":     true,
	"bpf":        true,
	"debugfs":    true,
	"tracefs":    true,
	"securityfs": true,
	"fusectl":    true,
	"configfs":   true,
	"mqueue":     true,
	"hugetlbfs":  true,
	"autofs":     true,
	"rpc_pipefs": true,
	"squashfs":   true,
	"overlay":    true,
}

// isVirtualFS checks if a filesystem type has no physical backing.
func isVirtualFS(fsType string) bool {
	return virtualFS[fsType]
}

// isRemovable reports whether the block device behind dev is removable.
// Partitions are resolved to their parent disk through sysfs.
func (b *linuxBackend) isRemovable(dev string) bool {
	name := path.Base(dev)
	if v, ok := readString(b.fsys, path.Join("sys/block", name, "removable")); ok {
		return v == "1"
	}
	parent := strings.TrimRightFunc(name, func(r rune) bool { return r >= '0' && r <= '9' })
	// nvme0n1p1, mmcblk0p1
	if n := len(parent); n > 1 && parent[n-1] == 'p' && parent[n-2] >= '0' && parent[n-2] <= '9' {
		parent = parent[:n-1]
	}
	if v, ok := readString(b.fsys, path.Join("sys/block", parent, "removable")); ok {
		return v == "1"
	}
	return false
}

func (b *linuxBackend) Disks(ctx context.Context) ([]DiskSample, error) {
	lines, err := readLines(b.fsys, procMounts)
	if err != nil {
		return nil, err
	}

	var disks []DiskSample
	for _, m := range parseMounts(lines) {
		d := DiskSample{
			Name:       m.device,
			MountPoint: m.mountPoint,
			FileSystem: m.fsType,
			Removable:  b.isRemovable(m.device),
		}
		if b.statfs != nil {
			total, avail, err := b.statfs(ctx, m.mountPoint)
			if err != nil {
				b.logger.V(1).Info("statfs failed", "mountPoint", m.mountPoint, "error", err)
				continue
			}
			d.Total, d.Available = total, avail
		}
		disks = append(disks, d)
	}
	return disks, nil
}
