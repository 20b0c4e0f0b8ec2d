package platform

import "fmt"

// Signal is an engine signal number in the range 1..31. The numbering
// follows Linux; backends translate to their native numbers.
type Signal int

// Signals understood by the engine.
const (
	SigHangup Signal = iota + 1
	SigInterrupt
	SigQuit
	SigIllegal
	SigTrap
	SigAbort
	SigBus
	SigFloatingPointException
	SigKill
	SigUser1
	SigSegv
	SigUser2
	SigPipe
	SigAlarm
	SigTerm
	SigStklft
	SigChild
	SigContinue
	SigStop
	SigTSTP
	SigTTIN
	SigTTOU
	SigUrgent
	SigXCPU
	SigXFSZ
	SigVirtualAlarm
	SigProfiling
	SigWinch
	SigIO
	SigPower
	SigSys
)

// NumSignals is the number of defined signals.
const NumSignals = 31

var signalNames = [NumSignals + 1]string{
	"", "Hangup", "Interrupt", "Quit", "Illegal", "Trap", "Abort", "Bus",
	"FloatingPointException", "Kill", "User1", "Segv", "User2", "Pipe",
	"Alarm", "Term", "Stklft", "Child", "Continue", "Stop", "TSTP", "TTIN",
	"TTOU", "Urgent", "XCPU", "XFSZ", "VirtualAlarm", "Profiling", "Winch",
	"IO", "Power", "Sys",
}

// Valid reports whether s is one of the defined signals.
func (s Signal) Valid() bool {
	return s >= SigHangup && s <= SigSys
}

func (s Signal) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Signal(%d)", int(s))
	}
	return signalNames[s]
}
