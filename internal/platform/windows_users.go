//go:build windows

package platform

import (
	"context"
	"fmt"
	"sort"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modNetapi32               = windows.NewLazySystemDLL("netapi32.dll")
	procNetUserEnum           = modNetapi32.NewProc("NetUserEnum")
	procNetUserGetLocalGroups = modNetapi32.NewProc("NetUserGetLocalGroups")
)

const (
	filterNormalAccount = 0x0002
	lgIncludeIndirect   = 0x0001
	maxPreferredLength  = 0xFFFFFFFF
	nerrSuccess         = 0
)

// localUsers lists normal local accounts and their local groups.
func (b *windowsBackend) localUsers(ctx context.Context) ([]UserSample, error) {
	var users []UserSample
	var resume uint32
	for {
		var buf *byte
		var read, total uint32
		ret, _, _ := procNetUserEnum.Call(
			0, 0, filterNormalAccount,
			uintptr(unsafe.Pointer(&buf)),
			maxPreferredLength,
			uintptr(unsafe.Pointer(&read)),
			uintptr(unsafe.Pointer(&total)),
			uintptr(unsafe.Pointer(&resume)),
		)
		if ret != nerrSuccess && windows.Errno(ret) != windows.ERROR_MORE_DATA {
			return nil, fmt.Errorf("NetUserEnum failed: %w", windows.Errno(ret))
		}
		if buf != nil {
			// USER_INFO_0 holds a single name pointer.
			for _, name := range unsafe.Slice((**uint16)(unsafe.Pointer(buf)), read) {
				u := UserSample{Name: windows.UTF16PtrToString(name)}
				u.Groups = localGroups(name)
				users = append(users, u)
			}
			windows.NetApiBufferFree(buf)
		}
		if windows.Errno(ret) != windows.ERROR_MORE_DATA {
			break
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func localGroups(user *uint16) []string {
	var buf *byte
	var read, total uint32
	ret, _, _ := procNetUserGetLocalGroups.Call(
		0,
		uintptr(unsafe.Pointer(user)),
		0, lgIncludeIndirect,
		uintptr(unsafe.Pointer(&buf)),
		maxPreferredLength,
		uintptr(unsafe.Pointer(&read)),
		uintptr(unsafe.Pointer(&total)),
	)
	if buf != nil {
		defer windows.NetApiBufferFree(buf)
	}
	if ret != nerrSuccess || buf == nil {
		return nil
	}
	// LOCALGROUP_USERS_INFO_0 holds a single name pointer.
	var groups []string
	for _, name := range unsafe.Slice((**uint16)(unsafe.Pointer(buf)), read) {
		groups = append(groups, windows.UTF16PtrToString(name))
	}
	return groups
}
