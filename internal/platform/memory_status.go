package platform

// memoryStatusEx matches the Windows MEMORYSTATUSEX structure.
type memoryStatusEx struct {
	dwLength                uint32
	dwMemoryLoad            uint32
	ullTotalPhys            uint64
	ullAvailPhys            uint64
	ullTotalPageFile        uint64
	ullAvailPageFile        uint64
	ullTotalVirtual         uint64
	ullAvailVirtual         uint64
	ullAvailExtendedVirtual uint64
}

// sample converts the byte counts to a MemorySample in KB. The page file
// limit includes physical memory, so swap is the part beyond it.
func (st memoryStatusEx) sample() MemorySample {
	m := MemorySample{
		Total:     st.ullTotalPhys / 1024,
		Free:      st.ullAvailPhys / 1024,
		Available: st.ullAvailPhys / 1024,
	}
	if st.ullTotalPhys >= st.ullAvailPhys {
		m.Used = (st.ullTotalPhys - st.ullAvailPhys) / 1024
	}
	if st.ullTotalPageFile > st.ullTotalPhys {
		m.SwapTotal = (st.ullTotalPageFile - st.ullTotalPhys) / 1024
	}
	if st.ullAvailPageFile > st.ullAvailPhys {
		m.SwapFree = (st.ullAvailPageFile - st.ullAvailPhys) / 1024
	}
	if m.SwapFree > m.SwapTotal {
		m.SwapFree = m.SwapTotal
	}
	return m
}
