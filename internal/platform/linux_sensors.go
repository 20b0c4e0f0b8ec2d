package platform

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
)

const hwmonPath = "sys/class/hwmon"

func (b *linuxBackend) Components(ctx context.Context) ([]ComponentSample, error) {
	entries, err := b.fsys.ReadDir(hwmonPath)
	if err != nil {
		if isNotExist(err) {
			return nil, nil // no hwmon support
		}
		return nil, fmt.Errorf("reading %s: %w", hwmonPath, err)
	}

	var readings []ComponentSample
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "hwmon") {
			continue
		}
		devicePath := path.Join(hwmonPath, entry.Name())
		deviceReadings, err := b.readTemperatureSensors(devicePath)
		if err != nil {
			b.logger.V(1).Info("skipping hwmon device", "device", devicePath, "error", err)
			continue
		}
		readings = append(readings, deviceReadings...)
	}
	return readings, nil
}

// readTemperatureSensors reads all temperature sensors from a hwmon device.
// Values are in millidegrees Celsius.
func (b *linuxBackend) readTemperatureSensors(devicePath string) ([]ComponentSample, error) {
	deviceName, ok := readString(b.fsys, path.Join(devicePath, "name"))
	if !ok {
		deviceName = path.Base(devicePath)
	}

	entries, err := b.fsys.ReadDir(devicePath)
	if err != nil {
		return nil, fmt.Errorf("reading device directory: %w", err)
	}

	var readings []ComponentSample
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "temp") || !strings.HasSuffix(name, "_input") {
			continue
		}
		sensor := strings.TrimSuffix(name, "_input")

		milli, ok := readInt64(b.fsys, path.Join(devicePath, name))
		if !ok {
			continue
		}
		label, ok := readString(b.fsys, path.Join(devicePath, sensor+"_label"))
		if !ok || label == "" {
			label = sensor
		}

		c := ComponentSample{
			Label:       deviceName + " " + label,
			Temperature: milliToCelsius(milli),
		}
		if v, ok := readInt64(b.fsys, path.Join(devicePath, sensor+"_max")); ok {
			c.Max, c.HasMax = milliToCelsius(v), true
		}
		if v, ok := readInt64(b.fsys, path.Join(devicePath, sensor+"_crit")); ok {
			c.Critical, c.HasCritical = milliToCelsius(v), true
		}
		readings = append(readings, c)
	}
	sort.Slice(readings, func(i, j int) bool { return readings[i].Label < readings[j].Label })
	return readings, nil
}

func milliToCelsius(v int64) float32 {
	return float32(v) / 1000
}
