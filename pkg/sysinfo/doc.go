// Package sysinfo provides a uniform, stateful view of a host's processors,
// memory, processes, network interfaces, temperature sensors, users and
// disks.
//
// # Basic Usage
//
//	sys := sysinfo.NewAll()
//	defer sys.Close()
//
//	time.Sleep(time.Second)
//	sys.RefreshCPU()
//	fmt.Printf("cpu: %.1f%%\n", sys.GlobalProcessor().CPUUsage)
//
// # Refresh Model
//
// Nothing is read in the background. Each Refresh method queries the
// backend and updates its own table only. Rates such as CPU usage and
// network throughput are derived from the previous sample of the same
// entity, so the first refresh of anything reports zero.
//
// Refresh methods do not return errors. Failures leave the affected table
// as it was and are available through [System.LastErrors].
//
// # Signals
//
// [System.Kill] delivers one of 31 portable signals. Windows only supports
// [SignalKill]; other signals fail with [ErrUnsupported].
//
// # Thread Safety
//
// A System is not safe for concurrent use. Callers must serialize access.
package sysinfo
