//go:build windows

package platform

import (
	"context"
	"fmt"

	"golang.org/x/sys/windows"
)

// Disks reports fixed and removable drives by letter.
func (b *windowsBackend) Disks(ctx context.Context) ([]DiskSample, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, fmt.Errorf("GetLogicalDrives failed: %w", err)
	}

	var disks []DiskSample
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		root := string(rune('A'+i)) + ":\\"
		rootPtr, err := windows.UTF16PtrFromString(root)
		if err != nil {
			continue
		}
		driveType := windows.GetDriveType(rootPtr)
		if driveType != windows.DRIVE_FIXED && driveType != windows.DRIVE_REMOVABLE {
			continue
		}

		d := DiskSample{
			Name:       root,
			MountPoint: root,
			Removable:  driveType == windows.DRIVE_REMOVABLE,
		}
		var volumeName, fsName [windows.MAX_PATH + 1]uint16
		if err := windows.GetVolumeInformation(rootPtr, &volumeName[0], uint32(len(volumeName)),
			nil, nil, nil, &fsName[0], uint32(len(fsName))); err == nil {
			d.FileSystem = windows.UTF16ToString(fsName[:])
			if name := windows.UTF16ToString(volumeName[:]); name != "" {
				d.Name = name
			}
		}

		var free, total, totalFree uint64
		if err := windows.GetDiskFreeSpaceEx(rootPtr, &free, &total, &totalFree); err != nil {
			// empty card readers and ejected media
			b.logger.V(1).Info("drive not ready", "drive", root, "error", err)
			continue
		}
		d.Total, d.Available = total, free
		disks = append(disks, d)
	}
	return disks, nil
}
