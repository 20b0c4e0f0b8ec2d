package platform

import (
	"math"
	"testing"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/stretchr/testify/assert"
)

func TestTimesFromStat(t *testing.T) {
	ct := timesFromStat(cpu.TimesStat{User: 1.5, System: 0.5, Idle: 7, Iowait: 1})
	assert.Equal(t, CPUTimes{Busy: 2e9, Total: 10e9}, ct)
}

func TestSecondsToNanos(t *testing.T) {
	assert.Equal(t, uint64(0), secondsToNanos(-1))
	assert.Equal(t, uint64(0), secondsToNanos(math.NaN()))
	assert.Equal(t, uint64(250e6), secondsToNanos(0.25))
}

func TestProcessStates(t *testing.T) {
	assert.Equal(t, StateRunning, processStates[process.Running])
	assert.Equal(t, StateSleeping, processStates[process.Idle])
	assert.Equal(t, StateZombie, processStates[process.Zombie])
	assert.Equal(t, StateUnknown, processStates["bogus"])
}
