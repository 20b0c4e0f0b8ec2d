// Package platform implements the acquisition backends behind the sysinfo
// facade.
//
// Each backend satisfies the Backend interface and returns raw, cumulative
// samples: processor busy/total counters in nanoseconds, memory in KB,
// network byte and packet counters, per-process CPU time. Rates and
// percentages are derived by the caller from consecutive samples.
//
// # Backends
//
//   - linux: parses /proc and /sys. Parsing goes through an FS so the same
//     code serves the local host, fixtures in tests and remote hosts.
//   - windows: PDH performance counters resolved through the localized
//     counter table (see package counters), GlobalMemoryStatusEx, netapi32
//     accounts and gopsutil for processes and networks.
//   - darwin: gopsutil.
//   - remote: a Linux host reached over SSH; files are read with cat, ls and
//     readlink.
//   - unknown: every query fails with ErrUnsupported.
//
// # Usage
//
//	b, err := platform.New(logger)
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
//
//	info, err := b.Bootstrap(ctx)
//	sample, err := b.Processors(ctx)
//
// # Thread Safety
//
// Backends are safe for concurrent use except Close.
package platform
