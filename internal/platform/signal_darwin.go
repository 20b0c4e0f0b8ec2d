//go:build darwin

package platform

import "syscall"

// darwinSignals maps engine signals to BSD numbers. Stklft and Power have
// no macOS equivalent.
var darwinSignals = map[Signal]syscall.Signal{
	SigHangup:                 syscall.SIGHUP,
	SigInterrupt:              syscall.SIGINT,
	SigQuit:                   syscall.SIGQUIT,
	SigIllegal:                syscall.SIGILL,
	SigTrap:                   syscall.SIGTRAP,
	SigAbort:                  syscall.SIGABRT,
	SigBus:                    syscall.SIGBUS,
	SigFloatingPointException: syscall.SIGFPE,
	SigKill:                   syscall.SIGKILL,
	SigUser1:                  syscall.SIGUSR1,
	SigSegv:                   syscall.SIGSEGV,
	SigUser2:                  syscall.SIGUSR2,
	SigPipe:                   syscall.SIGPIPE,
	SigAlarm:                  syscall.SIGALRM,
	SigTerm:                   syscall.SIGTERM,
	SigChild:                  syscall.SIGCHLD,
	SigContinue:               syscall.SIGCONT,
	SigStop:                   syscall.SIGSTOP,
	SigTSTP:                   syscall.SIGTSTP,
	SigTTIN:                   syscall.SIGTTIN,
	SigTTOU:                   syscall.SIGTTOU,
	SigUrgent:                 syscall.SIGURG,
	SigXCPU:                   syscall.SIGXCPU,
	SigXFSZ:                   syscall.SIGXFSZ,
	SigVirtualAlarm:           syscall.SIGVTALRM,
	SigProfiling:              syscall.SIGPROF,
	SigWinch:                  syscall.SIGWINCH,
	SigIO:                     syscall.SIGIO,
	SigSys:                    syscall.SIGSYS,
}

func nativeSignal(sig Signal) (syscall.Signal, bool) {
	s, ok := darwinSignals[sig]
	return s, ok
}
