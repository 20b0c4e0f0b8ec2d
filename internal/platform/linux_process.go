package platform

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
)

// Field indices in /proc/[pid]/stat, relative to the fields after the
// command name. Field numbers in comments are from proc(5).
const (
	// statMinFields is the minimum number of fields required after comm.
	statMinFields = 22
	// statFieldState is the process state (field 3).
	statFieldState = 0
	// statFieldPpid is the parent pid (field 4).
	statFieldPpid = 1
	// statFieldUtime is user mode CPU time in clock ticks (field 14).
	statFieldUtime = 11
	// statFieldStime is kernel mode CPU time in clock ticks (field 15).
	statFieldStime = 12
	// statFieldStarttime is start time in clock ticks after boot (field 22).
	statFieldStarttime = 19
	// statFieldVsize is virtual memory size in bytes (field 23).
	statFieldVsize = 20
	// statFieldRss is resident set size in pages (field 24).
	statFieldRss = 21
)

// pidStat is the parsed content of /proc/[pid]/stat.
type pidStat struct {
	comm      string
	state     ProcessState
	ppid      int
	utime     uint64
	stime     uint64
	starttime uint64
	vsize     uint64
	rss       uint64
}

// parseProcessStat parses /proc/[pid]/stat content.
// The format is: pid (comm) state ppid pgrp session tty_nr tpgid flags
// minflt cminflt majflt cmajflt utime stime cutime cstime priority nice
// num_threads itrealvalue starttime vsize rss ...
func parseProcessStat(content string) (pidStat, error) {
	var st pidStat

	// comm may itself contain parentheses and spaces
	openParen := strings.IndexByte(content, '(')
	closeParen := strings.LastIndexByte(content, ')')
	if openParen == -1 || closeParen == -1 || closeParen <= openParen {
		return st, fmt.Errorf("invalid stat format: missing parentheses")
	}
	st.comm = content[openParen+1 : closeParen]

	fields := strings.Fields(content[closeParen+1:])
	if len(fields) < statMinFields {
		return st, fmt.Errorf("invalid stat format: not enough fields (got %d, need %d)", len(fields), statMinFields)
	}

	st.state = parseProcessState(fields[statFieldState])
	ppid, err := strconv.Atoi(fields[statFieldPpid])
	if err != nil {
		return st, fmt.Errorf("parsing ppid: %w", err)
	}
	st.ppid = ppid

	for _, f := range []struct {
		dst  *uint64
		idx  int
		name string
	}{
		{&st.utime, statFieldUtime, "utime"},
		{&st.stime, statFieldStime, "stime"},
		{&st.starttime, statFieldStarttime, "starttime"},
		{&st.vsize, statFieldVsize, "vsize"},
		{&st.rss, statFieldRss, "rss"},
	} {
		v, err := strconv.ParseUint(fields[f.idx], 10, 64)
		if err != nil {
			return st, fmt.Errorf("parsing %s: %w", f.name, err)
		}
		*f.dst = v
	}
	return st, nil
}

// parseProcessState maps the one-letter state of proc(5).
func parseProcessState(s string) ProcessState {
	if s == "" {
		return StateUnknown
	}
	switch s[0] {
	case 'R':
		return StateRunning
	case 'S', 'I':
		return StateSleeping
	case 'D', 'W', 'P':
		return StateWaiting
	case 'Z':
		return StateZombie
	case 'T', 't':
		return StateStopped
	case 'X', 'x':
		return StateDead
	default:
		return StateUnknown
	}
}

func (b *linuxBackend) PIDs(ctx context.Context) ([]int, error) {
	entries, err := b.fsys.ReadDir("proc")
	if err != nil {
		return nil, fmt.Errorf("reading proc: %w", err)
	}
	pids := make([]int, 0, len(entries))
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

func (b *linuxBackend) Process(ctx context.Context, pid int) (ProcessSample, error) {
	dir := path.Join("proc", strconv.Itoa(pid))

	data, err := b.fsys.ReadFile(path.Join(dir, "stat"))
	if err != nil {
		if isNotExist(err) {
			return ProcessSample{}, fmt.Errorf("pid %d: %w", pid, ErrNoProcess)
		}
		return ProcessSample{}, fmt.Errorf("reading %s/stat: %w", dir, err)
	}
	st, err := parseProcessStat(string(data))
	if err != nil {
		return ProcessSample{}, fmt.Errorf("pid %d: %w", pid, err)
	}

	p := ProcessSample{
		PID:           pid,
		Parent:        st.ppid,
		HasParent:     st.ppid > 0,
		Name:          st.comm,
		State:         st.state,
		Memory:        st.rss * b.pageSize / 1024,
		VirtualMemory: st.vsize / 1024,
		CPUTime:       time.Duration(b.ticksToNanos(st.utime + st.stime)),
	}
	if boot, err := b.BootTime(ctx); err == nil {
		p.StartTime = boot + st.starttime/b.clkTck
	}

	// The remaining files are optional: kernel threads have no cmdline and
	// other users' environ and links are unreadable without privileges.
	if data, err := b.fsys.ReadFile(path.Join(dir, "cmdline")); err == nil {
		p.Cmd = splitNul(data)
	}
	if data, err := b.fsys.ReadFile(path.Join(dir, "environ")); err == nil {
		p.Environ = splitNul(data)
	}
	p.Exe, _ = readLink(b.fsys, path.Join(dir, "exe"))
	p.Cwd, _ = readLink(b.fsys, path.Join(dir, "cwd"))
	p.Root, _ = readLink(b.fsys, path.Join(dir, "root"))

	// comm is truncated to 15 bytes; prefer the executable's base name.
	if len(p.Cmd) > 0 && len(st.comm) == 15 {
		if base := path.Base(p.Cmd[0]); strings.HasPrefix(base, st.comm) {
			p.Name = base
		}
	}
	return p, nil
}
