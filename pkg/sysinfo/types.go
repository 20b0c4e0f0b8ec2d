package sysinfo

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/opd-ai/go-sysinfo/internal/platform"
	"github.com/opd-ai/go-sysinfo/internal/proctable"
)

// Pid is a process identifier.
type Pid int

// ParsePid parses a decimal process identifier.
func ParsePid(s string) (Pid, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPid, s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPid, n)
	}
	return Pid(n), nil
}

// ProcessStatus is the scheduler state of a process.
type ProcessStatus int

// Process states.
const (
	StatusUnknown ProcessStatus = iota
	StatusRun
	StatusSleep
	StatusIdle
	StatusZombie
	StatusStop
	StatusDead
)

var statusNames = [...]string{
	StatusUnknown: "Unknown",
	StatusRun:     "Running",
	StatusSleep:   "Sleeping",
	StatusIdle:    "Waiting",
	StatusZombie:  "Zombie",
	StatusStop:    "Stopped",
	StatusDead:    "Dead",
}

func (s ProcessStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return statusNames[StatusUnknown]
	}
	return statusNames[s]
}

// Processor is one logical processor, or the aggregate of all of them.
type Processor struct {
	Name         string
	VendorID     string
	Brand        string
	FrequencyMHz uint64
	// CPUUsage is the busy share of the interval between the last two
	// refreshes, in percent. It is 0 after the first refresh.
	CPUUsage float32
}

// Process is a snapshot of one process as of its last refresh.
type Process struct {
	Pid       Pid
	Parent    Pid
	HasParent bool
	Name      string
	Exe       string
	Cmd       []string
	Environ   []string
	Cwd       string
	Root      string
	Status    ProcessStatus
	// Memory and VirtualMemory are in KB.
	Memory        uint64
	VirtualMemory uint64
	// StartTime is in seconds since the epoch.
	StartTime uint64
	// CPUTime is the cumulative user and system time.
	CPUTime time.Duration
	// CPUUsage is the share of the whole machine used since the previous
	// refresh of this process, in percent.
	CPUUsage float32
}

func processFromEntry(e *proctable.Entry) Process {
	return Process{
		Pid:           Pid(e.PID),
		Parent:        Pid(e.Parent),
		HasParent:     e.HasParent,
		Name:          e.Name,
		Exe:           e.Exe,
		Cmd:           append([]string(nil), e.Cmd...),
		Environ:       append([]string(nil), e.Environ...),
		Cwd:           e.Cwd,
		Root:          e.Root,
		Status:        ProcessStatus(e.State),
		Memory:        e.Memory,
		VirtualMemory: e.VirtualMemory,
		StartTime:     e.StartTime,
		CPUTime:       e.CPUTime,
		CPUUsage:      e.CPUUsage,
	}
}

// NetworkData holds the counters of one network interface. Plain counts are
// the change since the previous network refresh; Total counts are cumulative.
type NetworkData struct {
	Name string

	Received    uint64
	Transmitted uint64

	TotalReceived    uint64
	TotalTransmitted uint64

	PacketsReceived    uint64
	PacketsTransmitted uint64

	TotalPacketsReceived    uint64
	TotalPacketsTransmitted uint64

	ErrorsOnReceived    uint64
	ErrorsOnTransmitted uint64

	TotalErrorsOnReceived    uint64
	TotalErrorsOnTransmitted uint64

	// ReceiveRate and TransmitRate are in bytes per second.
	ReceiveRate  float64
	TransmitRate float64
}

// Component is a temperature sensor. Temperatures are in degrees Celsius.
type Component struct {
	Label       string
	Temperature float32
	// Max is the highest temperature seen by this System or reported by the
	// sensor.
	Max         float32
	Critical    float32
	HasCritical bool
}

// User is a local user account.
type User struct {
	Name   string
	UID    uint32
	GID    uint32
	Groups []string
}

// Disk is a mounted disk. Sizes are in bytes.
type Disk struct {
	Name       string
	MountPoint string
	FileSystem string
	Total      uint64
	Available  uint64
	Removable  bool
}

// LoadAverage holds the 1, 5 and 15 minute load averages.
type LoadAverage struct {
	One     float64
	Five    float64
	Fifteen float64
}

func loadAverageFrom(l platform.LoadAverage) LoadAverage {
	return LoadAverage{One: l.One, Five: l.Five, Fifteen: l.Fifteen}
}
