//go:build windows

package platform

import (
	"context"
	"fmt"
	"unsafe"
)

var procGlobalMemoryStatusEx = modKernel32.NewProc("GlobalMemoryStatusEx")

func (b *windowsBackend) Memory(ctx context.Context) (MemorySample, error) {
	var st memoryStatusEx
	st.dwLength = uint32(unsafe.Sizeof(st))
	ret, _, err := procGlobalMemoryStatusEx.Call(uintptr(unsafe.Pointer(&st)))
	if ret == 0 {
		return MemorySample{}, fmt.Errorf("GlobalMemoryStatusEx failed: %w", err)
	}
	return st.sample(), nil
}
