//go:build windows

package platform

import (
	"context"
	"fmt"
	"strconv"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/opd-ai/go-sysinfo/internal/counters"
)

var (
	modKernel32       = windows.NewLazySystemDLL("kernel32.dll")
	procGetSystemInfo = modKernel32.NewProc("GetSystemInfo")
)

// systemInfo matches the Windows SYSTEM_INFO structure.
type systemInfo struct {
	wProcessorArchitecture      uint16
	wReserved                   uint16
	dwPageSize                  uint32
	lpMinimumApplicationAddress uintptr
	lpMaximumApplicationAddress uintptr
	dwActiveProcessorMask       uintptr
	dwNumberOfProcessors        uint32
	dwProcessorType             uint32
	dwAllocationGranularity     uint32
	wProcessorLevel             uint16
	wProcessorRevision          uint16
}

const centralProcessorKey = `HARDWARE\DESCRIPTION\System\CentralProcessor\`

// Counter names are the English names of the "Counter 009" table.
const (
	processorObject      = "Processor"
	processorTimeCounter = "% Processor Time"
)

func (b *windowsBackend) Bootstrap(ctx context.Context) (BootInfo, error) {
	var si systemInfo
	procGetSystemInfo.Call(uintptr(unsafe.Pointer(&si)))
	n := int(si.dwNumberOfProcessors)
	if n == 0 {
		return BootInfo{}, fmt.Errorf("GetSystemInfo reported no processors")
	}

	info := BootInfo{CPUs: n, Processors: make([]CPUInfo, n)}
	for i := range info.Processors {
		info.Processors[i] = readProcessorKey(i)
	}

	b.mu.Lock()
	b.cpus = n
	b.mu.Unlock()
	return info, nil
}

// readProcessorKey reads static processor information from the registry.
func readProcessorKey(i int) CPUInfo {
	var info CPUInfo
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, centralProcessorKey+strconv.Itoa(i), registry.QUERY_VALUE)
	if err != nil {
		return info
	}
	defer k.Close()
	info.Brand, _, _ = k.GetStringValue("ProcessorNameString")
	info.VendorID, _, _ = k.GetStringValue("VendorIdentifier")
	if mhz, _, err := k.GetIntegerValue("~MHz"); err == nil {
		info.FrequencyMHz = mhz
	}
	return info
}

// counterSet opens the PDH query and registers one counter per processor.
// Callers hold b.mu.
func (b *windowsBackend) counterSet() (*counters.Set, error) {
	if b.set != nil {
		return b.set, nil
	}
	if b.cpus == 0 {
		return nil, fmt.Errorf("processor counters before bootstrap")
	}
	q, err := counters.OpenPDHQuery()
	if err != nil {
		return nil, err
	}
	set := counters.NewSet(b.resolver, q)
	for i := 0; i < b.cpus; i++ {
		if _, err := set.Add(cpuCounterID(i), processorObject, strconv.Itoa(i), processorTimeCounter); err != nil {
			_ = set.Close()
			return nil, fmt.Errorf("adding processor %d counter: %w", i, err)
		}
	}
	b.set = set
	return set, nil
}

func cpuCounterID(i int) string {
	return "cpu" + strconv.Itoa(i)
}

// Processors reads "% Processor Time" raw values. The counter is an inverse
// 100ns timer: the first value accumulates idle time and the second is the
// timestamp, so busy is their difference.
func (b *windowsBackend) Processors(ctx context.Context) (CPUSample, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, err := b.counterSet()
	if err != nil {
		return CPUSample{}, err
	}
	if err := set.Collect(); err != nil {
		return CPUSample{}, err
	}

	sample := CPUSample{PerCPU: make([]CPUTimes, b.cpus)}
	for i := range sample.PerCPU {
		raw, err := set.Raw(cpuCounterID(i))
		if err != nil {
			return CPUSample{}, fmt.Errorf("processor %d: %w", i, err)
		}
		ct := rawProcessorTimes(raw)
		sample.PerCPU[i] = ct
		sample.Global.Busy += ct.Busy
		sample.Global.Total += ct.Total
	}
	return sample, nil
}

func rawProcessorTimes(raw counters.RawValue) CPUTimes {
	if raw.Second <= 0 || raw.First < 0 {
		return CPUTimes{}
	}
	idle := uint64(raw.First)
	total := uint64(raw.Second)
	if idle > total {
		idle = total
	}
	return CPUTimes{Busy: (total - idle) * 100, Total: total * 100}
}
