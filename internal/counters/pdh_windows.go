//go:build windows

package counters

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

var (
	modPdh                        = windows.NewLazySystemDLL("pdh.dll")
	procPdhLookupPerfNameByIndexW = modPdh.NewProc("PdhLookupPerfNameByIndexW")
	procPdhOpenQueryW             = modPdh.NewProc("PdhOpenQueryW")
	procPdhAddCounterW            = modPdh.NewProc("PdhAddCounterW")
	procPdhRemoveCounter          = modPdh.NewProc("PdhRemoveCounter")
	procPdhCollectQueryData       = modPdh.NewProc("PdhCollectQueryData")
	procPdhGetRawCounterValue     = modPdh.NewProc("PdhGetRawCounterValue")
	procPdhCloseQuery             = modPdh.NewProc("PdhCloseQuery")
)

const (
	pdhMoreData       = 0x800007D2
	pdhCstatusValid   = 0x00000000
	pdhCstatusNewData = 0x00000001
	maxBlobSize       = 64 << 20
)

// pdhRawCounter matches PDH_RAW_COUNTER.
type pdhRawCounter struct {
	CStatus     uint32
	TimeStamp   windows.Filetime
	FirstValue  int64
	SecondValue int64
	MultiCount  uint32
}

// RegistrySource reads counter names from HKEY_PERFORMANCE_DATA.
type RegistrySource struct{}

// ReadBlob returns the value stored under key as NUL-separated UTF-8.
func (RegistrySource) ReadBlob(key string) ([]byte, error) {
	// The performance key does not report the size it needs; grow until the
	// value fits.
	for size := 64 << 10; size <= maxBlobSize; size *= 2 {
		buf := make([]byte, size)
		n, _, err := registry.PERFORMANCE_DATA.GetValue(key, buf)
		if errors.Is(err, registry.ErrShortBuffer) || errors.Is(err, windows.ERROR_MORE_DATA) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", key, err)
		}
		return utf16BytesToUTF8(buf[:n]), nil
	}
	return nil, fmt.Errorf("reading %q: value larger than %d bytes", key, maxBlobSize)
}

func utf16BytesToUTF8(b []byte) []byte {
	u := make([]uint16, len(b)/2)
	for i := range u {
		u[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
	}
	return []byte(string(utf16.Decode(u)))
}

// PDHTranslator resolves indices with PdhLookupPerfNameByIndexW.
type PDHTranslator struct{}

// LookupName returns the display name of index in the session language.
func (PDHTranslator) LookupName(index uint32) (string, error) {
	var size uint32
	ret, _, _ := procPdhLookupPerfNameByIndexW.Call(0, uintptr(index), 0, uintptr(unsafe.Pointer(&size)))
	if ret != 0 && ret != pdhMoreData {
		return "", fmt.Errorf("PdhLookupPerfNameByIndex(%d) failed with status 0x%x", index, ret)
	}
	if size == 0 {
		return "", nil
	}

	buf := make([]uint16, size)
	ret, _, _ = procPdhLookupPerfNameByIndexW.Call(0, uintptr(index),
		uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)))
	if ret != 0 {
		return "", fmt.Errorf("PdhLookupPerfNameByIndex(%d) failed with status 0x%x", index, ret)
	}
	return windows.UTF16ToString(buf), nil
}

// PDHQuery is a PDH query handle.
type PDHQuery struct {
	handle uintptr
}

// OpenPDHQuery opens a new real-time PDH query.
func OpenPDHQuery() (*PDHQuery, error) {
	var h uintptr
	ret, _, _ := procPdhOpenQueryW.Call(0, 0, uintptr(unsafe.Pointer(&h)))
	if ret != 0 {
		return nil, fmt.Errorf("PdhOpenQuery failed with status 0x%x", ret)
	}
	return &PDHQuery{handle: h}, nil
}

// AddCounter implements Query.
func (q *PDHQuery) AddCounter(path string) (uintptr, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	var counter uintptr
	ret, _, _ := procPdhAddCounterW.Call(q.handle, uintptr(unsafe.Pointer(p)), 0, uintptr(unsafe.Pointer(&counter)))
	if ret != 0 {
		return 0, fmt.Errorf("PdhAddCounter failed with status 0x%x", ret)
	}
	return counter, nil
}

// RemoveCounter implements Query.
func (q *PDHQuery) RemoveCounter(handle uintptr) error {
	ret, _, _ := procPdhRemoveCounter.Call(handle)
	if ret != 0 {
		return fmt.Errorf("PdhRemoveCounter failed with status 0x%x", ret)
	}
	return nil
}

// Collect implements Query.
func (q *PDHQuery) Collect() error {
	ret, _, _ := procPdhCollectQueryData.Call(q.handle)
	if ret != 0 {
		return fmt.Errorf("PdhCollectQueryData failed with status 0x%x", ret)
	}
	return nil
}

// Raw implements Query.
func (q *PDHQuery) Raw(handle uintptr) (RawValue, error) {
	var raw pdhRawCounter
	var counterType uint32
	ret, _, _ := procPdhGetRawCounterValue.Call(handle, uintptr(unsafe.Pointer(&counterType)), uintptr(unsafe.Pointer(&raw)))
	if ret != 0 {
		return RawValue{}, fmt.Errorf("PdhGetRawCounterValue failed with status 0x%x", ret)
	}
	if raw.CStatus != pdhCstatusValid && raw.CStatus != pdhCstatusNewData {
		return RawValue{}, fmt.Errorf("counter status 0x%x", raw.CStatus)
	}
	return RawValue{First: raw.FirstValue, Second: raw.SecondValue}, nil
}

// Close implements Query.
func (q *PDHQuery) Close() error {
	if q.handle == 0 {
		return nil
	}
	ret, _, _ := procPdhCloseQuery.Call(q.handle)
	q.handle = 0
	if ret != 0 {
		return fmt.Errorf("PdhCloseQuery failed with status 0x%x", ret)
	}
	return nil
}
