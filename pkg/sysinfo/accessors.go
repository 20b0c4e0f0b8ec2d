package sysinfo

import (
	"sort"
	"strings"
)

// Backend returns the name of the backend serving this System.
func (s *System) Backend() string {
	return s.backend.Name()
}

// Process returns the process with the given pid as of its last refresh.
func (s *System) Process(pid Pid) (Process, bool) {
	e, ok := s.procs.Get(int(pid))
	if !ok {
		return Process{}, false
	}
	return processFromEntry(e), true
}

// Processes returns every known process ordered by pid.
func (s *System) Processes() []Process {
	entries := s.procs.Entries()
	out := make([]Process, 0, len(entries))
	for _, e := range entries {
		out = append(out, processFromEntry(e))
	}
	return out
}

// ProcessesByName returns the processes whose name contains name, ordered by
// pid. The match ignores case on platforms with case-insensitive process
// names.
func (s *System) ProcessesByName(name string) []Process {
	fold := s.backend.FoldCase()
	if fold {
		name = strings.ToLower(name)
	}
	var out []Process
	for _, e := range s.procs.Entries() {
		candidate := e.Name
		if fold {
			candidate = strings.ToLower(candidate)
		}
		if strings.Contains(candidate, name) {
			out = append(out, processFromEntry(e))
		}
	}
	return out
}

// GlobalProcessor returns the aggregate of all logical processors.
func (s *System) GlobalProcessor() Processor {
	return s.global.Processor
}

// Processors returns the aggregate processor at index 0 followed by every
// logical processor.
func (s *System) Processors() []Processor {
	out := make([]Processor, 0, len(s.processors)+1)
	out = append(out, s.global.Processor)
	for _, p := range s.processors {
		out = append(out, p.Processor)
	}
	return out
}

// TotalMemory returns the physical memory in KB.
func (s *System) TotalMemory() uint64 { return s.memory.Total }

// UsedMemory returns the used physical memory in KB.
func (s *System) UsedMemory() uint64 { return s.memory.Used }

// FreeMemory returns the unused physical memory in KB.
func (s *System) FreeMemory() uint64 { return s.memory.Free }

// AvailableMemory returns the memory in KB that can be given to new
// allocations without swapping.
func (s *System) AvailableMemory() uint64 { return s.memory.Available }

// TotalSwap returns the swap size in KB.
func (s *System) TotalSwap() uint64 { return s.memory.SwapTotal }

// FreeSwap returns the unused swap in KB.
func (s *System) FreeSwap() uint64 { return s.memory.SwapFree }

// UsedSwap returns the used swap in KB.
func (s *System) UsedSwap() uint64 {
	if s.memory.SwapFree > s.memory.SwapTotal {
		return 0
	}
	return s.memory.SwapTotal - s.memory.SwapFree
}

// LoadAverage returns the load average read by the last RefreshCPU.
func (s *System) LoadAverage() LoadAverage {
	return s.load
}

// BootTime returns the boot time in seconds since the epoch, or 0 when
// unknown.
func (s *System) BootTime() uint64 {
	return s.bootTime
}

// Uptime returns the seconds elapsed since boot, or 0 when the boot time is
// unknown.
func (s *System) Uptime() uint64 {
	if s.bootTime == 0 {
		return 0
	}
	now := s.now().Unix()
	if now < int64(s.bootTime) {
		return 0
	}
	return uint64(now) - s.bootTime
}

// Components returns the temperature sensors.
func (s *System) Components() []Component {
	return append([]Component(nil), s.components...)
}

// Users returns the user accounts.
func (s *System) Users() []User {
	out := make([]User, len(s.users))
	for i, u := range s.users {
		u.Groups = append([]string(nil), u.Groups...)
		out[i] = u
	}
	return out
}

// Disks returns the mounted disks.
func (s *System) Disks() []Disk {
	return append([]Disk(nil), s.disks...)
}

// Networks returns the network interfaces ordered by name.
func (s *System) Networks() []NetworkData {
	out := make([]NetworkData, 0, len(s.networks))
	for name := range s.networks {
		n, _ := s.Network(name)
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Network returns one network interface.
func (s *System) Network(name string) (NetworkData, bool) {
	st, ok := s.networks[name]
	if !ok {
		return NetworkData{}, false
	}
	return NetworkData{
		Name:                     name,
		Received:                 st.rxBytes.Delta(),
		Transmitted:              st.txBytes.Delta(),
		TotalReceived:            st.rxBytes.Total(),
		TotalTransmitted:         st.txBytes.Total(),
		PacketsReceived:          st.rxPackets.Delta(),
		PacketsTransmitted:       st.txPackets.Delta(),
		TotalPacketsReceived:     st.rxPackets.Total(),
		TotalPacketsTransmitted:  st.txPackets.Total(),
		ErrorsOnReceived:         st.rxErrors.Delta(),
		ErrorsOnTransmitted:      st.txErrors.Delta(),
		TotalErrorsOnReceived:    st.rxErrors.Total(),
		TotalErrorsOnTransmitted: st.txErrors.Total(),
		ReceiveRate:              st.rxRate,
		TransmitRate:             st.txRate,
	}, true
}
