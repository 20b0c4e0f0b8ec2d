package platform

import "time"

// BootInfo is the result of a backend bootstrap.
type BootInfo struct {
	// CPUs is the number of logical processors.
	CPUs int
	// Processors holds static information per logical processor.
	// It may be shorter than CPUs when the platform does not expose it.
	Processors []CPUInfo
}

// CPUInfo is static information about one logical processor.
type CPUInfo struct {
	VendorID     string
	Brand        string
	FrequencyMHz uint64
}

// CPUTimes is a pair of cumulative processor counters in nanoseconds.
// Busy excludes idle and I/O wait time.
type CPUTimes struct {
	Busy  uint64
	Total uint64
}

// CPUSample is one reading of the processor counters.
type CPUSample struct {
	// Global aggregates all processors.
	Global CPUTimes
	// PerCPU holds one entry per logical processor.
	PerCPU []CPUTimes
	// FrequencyMHz optionally updates the current frequency per processor.
	FrequencyMHz []uint64
}

// MemorySample reports memory in KB.
type MemorySample struct {
	Total     uint64
	Free      uint64
	Available uint64
	Used      uint64
	SwapTotal uint64
	SwapFree  uint64
}

// LoadAverage holds the 1, 5 and 15 minute load averages.
type LoadAverage struct {
	One     float64
	Five    float64
	Fifteen float64
}

// ProcessState is the scheduler state of a process.
type ProcessState int

// Process states. The numbering is shared with the public API.
const (
	StateUnknown ProcessState = iota
	StateRunning
	StateSleeping
	StateWaiting
	StateZombie
	StateStopped
	StateDead
)

// ProcessSample is one reading of a process.
type ProcessSample struct {
	PID       int
	Parent    int
	HasParent bool
	Name      string
	Exe       string
	Cmd       []string
	Environ   []string
	Cwd       string
	Root      string
	State     ProcessState
	// Memory and VirtualMemory are in KB.
	Memory        uint64
	VirtualMemory uint64
	// StartTime is in seconds since the epoch.
	StartTime uint64
	// CPUTime is the cumulative user+system time.
	CPUTime time.Duration
}

// NetworkSample holds cumulative counters of one interface.
type NetworkSample struct {
	RxBytes   uint64
	TxBytes   uint64
	RxPackets uint64
	TxPackets uint64
	RxErrors  uint64
	TxErrors  uint64
}

// ComponentSample is one temperature sensor reading in degrees Celsius.
type ComponentSample struct {
	Label       string
	Temperature float32
	Max         float32
	HasMax      bool
	Critical    float32
	HasCritical bool
}

// UserSample is one local user account.
type UserSample struct {
	Name   string
	UID    uint32
	GID    uint32
	Groups []string
}

// DiskSample is one mounted disk. Sizes are in bytes.
type DiskSample struct {
	Name       string
	MountPoint string
	FileSystem string
	Total      uint64
	Available  uint64
	Removable  bool
}
