package sysinfo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opd-ai/go-sysinfo/internal/platform"
)

// Signal is a process signal. Values are numbered 1 to 31 and follow the
// Linux numbering; other platforms translate them or refuse them.
type Signal int

// Supported signals.
const (
	SignalHangup Signal = iota + 1
	SignalInterrupt
	SignalQuit
	SignalIllegal
	SignalTrap
	SignalAbort
	SignalBus
	SignalFloatingPointException
	SignalKill
	SignalUser1
	SignalSegv
	SignalUser2
	SignalPipe
	SignalAlarm
	SignalTerm
	SignalStklft
	SignalChild
	SignalContinue
	SignalStop
	SignalTSTP
	SignalTTIN
	SignalTTOU
	SignalUrgent
	SignalXCPU
	SignalXFSZ
	SignalVirtualAlarm
	SignalProfiling
	SignalWinch
	SignalIO
	SignalPower
	SignalSys
)

// SignalFromNumber validates n and returns the corresponding Signal.
func SignalFromNumber(n int) (Signal, error) {
	s := Signal(n)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSignal, n)
	}
	return s, nil
}

// ParseSignal accepts a signal number or a case-insensitive name such as
// "Term", "kill" or "SIGHUP".
func ParseSignal(s string) (Signal, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return SignalFromNumber(n)
	}
	name := strings.TrimPrefix(strings.ToUpper(s), "SIG")
	for _, sig := range Signals() {
		if strings.ToUpper(sig.String()) == name {
			return sig, nil
		}
	}
	if short, ok := shortSignalNames[name]; ok {
		return short, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSignal, s)
}

// shortSignalNames holds the POSIX abbreviations that differ from the
// descriptive names.
var shortSignalNames = map[string]Signal{
	"HUP":    SignalHangup,
	"INT":    SignalInterrupt,
	"ILL":    SignalIllegal,
	"ABRT":   SignalAbort,
	"FPE":    SignalFloatingPointException,
	"USR1":   SignalUser1,
	"USR2":   SignalUser2,
	"ALRM":   SignalAlarm,
	"STKFLT": SignalStklft,
	"CHLD":   SignalChild,
	"CONT":   SignalContinue,
	"URG":    SignalUrgent,
	"VTALRM": SignalVirtualAlarm,
	"PROF":   SignalProfiling,
	"PWR":    SignalPower,
}

// Signals returns every supported signal in numeric order.
func Signals() []Signal {
	out := make([]Signal, 0, platform.NumSignals)
	for s := SignalHangup; s <= SignalSys; s++ {
		out = append(out, s)
	}
	return out
}

// Valid reports whether s is one of the defined signals.
func (s Signal) Valid() bool {
	return platform.Signal(s).Valid()
}

func (s Signal) String() string {
	return platform.Signal(s).String()
}
