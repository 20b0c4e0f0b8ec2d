package sysinfo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-logr/logr"

	"github.com/opd-ai/go-sysinfo/internal/counters"
	"github.com/opd-ai/go-sysinfo/internal/delta"
	"github.com/opd-ai/go-sysinfo/internal/platform"
	"github.com/opd-ai/go-sysinfo/internal/proctable"
)

// System is the root of the engine. It owns every table and the backend.
//
// A System is not safe for concurrent use; callers serialize access.
type System struct {
	backend platform.Backend
	logger  logr.Logger
	now     func() time.Time

	global     processorState
	processors []processorState

	memory   platform.MemorySample
	load     LoadAverage
	bootTime uint64
	// cpuTotal is the machine-wide total of the last successful RefreshCPU,
	// 0 after a failure.
	cpuTotal uint64

	procs      *proctable.Table
	networks   map[string]*networkState
	netAt      time.Time
	components []Component
	users      []User
	disks      []Disk

	errs map[ErrorSource]*ComponentError
}

type processorState struct {
	Processor
	ratio delta.Ratio
}

type networkState struct {
	rxBytes, txBytes     delta.Counter
	rxPackets, txPackets delta.Counter
	rxErrors, txErrors   delta.Counter
	rxRate, txRate       float64
}

// New creates a System and runs the backend bootstrap, but refreshes
// nothing: every table starts empty.
//
// New never fails. When the backend cannot be created or bootstrapped the
// failure is logged and recorded in LastErrors, and the System stays empty
// but usable.
func New(opts ...Option) *System {
	o := options{logger: logr.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.WithName("sysinfo")

	backend := o.backend
	var backendErr error
	if backend == nil {
		backend, backendErr = platform.New(o.logger.WithName("platform"))
		if backendErr != nil {
			logger.Error(backendErr, "native backend unavailable")
			backend = platform.NewUnknown()
		}
	}

	s := &System{
		backend:  backend,
		logger:   logger,
		now:      time.Now,
		global:   processorState{Processor: Processor{Name: "cpu"}},
		networks: make(map[string]*networkState),
		errs:     make(map[ErrorSource]*ComponentError),
	}
	if backendErr != nil {
		s.fail(ErrorSourceBootstrap, backendErr)
	}

	ctx := context.Background()
	info, err := backend.Bootstrap(ctx)
	if err != nil {
		logger.Info("bootstrap failed, continuing without processor information", "backend", backend.Name(), "error", err)
		s.fail(ErrorSourceBootstrap, err)
	}
	s.setProcessors(info)
	s.procs = proctable.New(o.logger, o.workers, max(info.CPUs, 1))
	s.readBootTime(ctx)

	logger.V(1).Info("initialized", "backend", backend.Name(), "cpus", info.CPUs)
	return s
}

// NewAll creates a System and refreshes every table.
func NewAll(opts ...Option) *System {
	s := New(opts...)
	s.RefreshAll()
	s.RefreshNetworks()
	s.RefreshUsersList()
	s.RefreshDisks()
	return s
}

func (s *System) setProcessors(info platform.BootInfo) {
	s.processors = make([]processorState, info.CPUs)
	for i := range s.processors {
		p := Processor{Name: fmt.Sprintf("cpu%d", i)}
		if i < len(info.Processors) {
			p.VendorID = info.Processors[i].VendorID
			p.Brand = info.Processors[i].Brand
			p.FrequencyMHz = info.Processors[i].FrequencyMHz
		}
		s.processors[i].Processor = p
	}
	if len(info.Processors) > 0 {
		s.global.VendorID = info.Processors[0].VendorID
		s.global.Brand = info.Processors[0].Brand
		s.global.FrequencyMHz = info.Processors[0].FrequencyMHz
	}
}

func (s *System) readBootTime(ctx context.Context) {
	if s.bootTime != 0 {
		return
	}
	bt, err := s.backend.BootTime(ctx)
	if err != nil {
		s.logger.V(1).Info("reading boot time failed", "error", err)
		return
	}
	s.bootTime = bt
}

// fail records err as the latest failure of source.
func (s *System) fail(source ErrorSource, err error) {
	if source != ErrorSourceBootstrap && isCounterError(err) {
		source = ErrorSourceCounters
	}
	s.errs[source] = NewComponentError(source, err)
	s.logger.V(1).Info("refresh failed", "source", string(source), "error", err)
}

// succeed clears the recorded failure of source.
func (s *System) succeed(source ErrorSource) {
	delete(s.errs, source)
	if source == ErrorSourceCPU {
		delete(s.errs, ErrorSourceCounters)
	}
}

func isCounterError(err error) bool {
	return errors.Is(err, counters.ErrNotFound) ||
		errors.Is(err, counters.ErrNoTranslation) ||
		errors.Is(err, counters.ErrUnknownKey)
}

// RefreshAll refreshes processors, memory, processes and components, in
// that order.
func (s *System) RefreshAll() {
	s.RefreshCPU()
	s.RefreshMemory()
	baseline := s.cpuTotal
	if baseline == 0 {
		baseline = s.processBaseline(context.Background())
	}
	s.refreshProcesses(baseline)
	s.RefreshComponents()
}

// RefreshSystem refreshes processors, memory and components.
func (s *System) RefreshSystem() {
	s.RefreshCPU()
	s.RefreshMemory()
	s.RefreshComponents()
}

// RefreshCPU refreshes processor usage, frequencies and the load average.
func (s *System) RefreshCPU() {
	ctx := context.Background()
	s.readBootTime(ctx)

	if load, err := s.backend.LoadAverage(ctx); err == nil {
		s.load = loadAverageFrom(load)
	} else if !errors.Is(err, ErrUnsupported) {
		s.logger.V(1).Info("reading load average failed", "error", err)
	}

	sample, err := s.backend.Processors(ctx)
	if err != nil {
		s.cpuTotal = 0
		s.fail(ErrorSourceCPU, err)
		return
	}
	s.cpuTotal = sample.Global.Total
	s.global.CPUUsage = s.global.ratio.Update(delta.Sample{Busy: sample.Global.Busy, Total: sample.Global.Total})

	for len(s.processors) < len(sample.PerCPU) {
		s.processors = append(s.processors, processorState{
			Processor: Processor{Name: fmt.Sprintf("cpu%d", len(s.processors))},
		})
	}
	for i, t := range sample.PerCPU {
		p := &s.processors[i]
		p.CPUUsage = p.ratio.Update(delta.Sample{Busy: t.Busy, Total: t.Total})
		if i < len(sample.FrequencyMHz) && sample.FrequencyMHz[i] > 0 {
			p.FrequencyMHz = sample.FrequencyMHz[i]
		}
	}
	if len(sample.FrequencyMHz) > 0 && sample.FrequencyMHz[0] > 0 {
		s.global.FrequencyMHz = sample.FrequencyMHz[0]
	}
	s.succeed(ErrorSourceCPU)
}

// RefreshMemory refreshes memory and swap figures.
func (s *System) RefreshMemory() {
	m, err := s.backend.Memory(context.Background())
	if err != nil {
		s.fail(ErrorSourceMemory, err)
		return
	}
	s.memory = m
	s.succeed(ErrorSourceMemory)
}

// processBaseline reads the machine-wide processor total used to turn
// process CPU time into a share. It is 0 when unavailable.
func (s *System) processBaseline(ctx context.Context) uint64 {
	sample, err := s.backend.Processors(ctx)
	if err != nil {
		return 0
	}
	return sample.Global.Total
}

// RefreshProcesses reloads the whole process table. Processes that are gone
// are removed.
func (s *System) RefreshProcesses() {
	s.refreshProcesses(s.processBaseline(context.Background()))
}

// refreshProcesses reloads the process table against the given processor
// total.
func (s *System) refreshProcesses(baseline uint64) {
	ctx := context.Background()
	start := s.now()
	stats, err := s.procs.Refresh(ctx, s.backend, s.backend, baseline)
	if err != nil {
		s.fail(ErrorSourceProcess, err)
		return
	}
	s.logger.V(1).Info("processes refreshed",
		"listed", stats.Listed, "added", stats.Added, "updated", stats.Updated,
		"removed", stats.Removed, "failed", len(stats.Failed), "duration", s.now().Sub(start))

	if len(stats.Failed) > 0 {
		s.fail(ErrorSourceProcess, fmt.Errorf("%d processes could not be read: %w", len(stats.Failed), errors.Join(stats.Failed...)))
		return
	}
	s.succeed(ErrorSourceProcess)
}

// RefreshProcess refreshes, or adds, a single process. It reports whether
// the process could be read; on failure the table is unchanged.
func (s *System) RefreshProcess(pid Pid) bool {
	if pid <= 0 {
		return false
	}
	ctx := context.Background()
	return s.procs.RefreshOne(ctx, int(pid), s.backend, s.processBaseline(ctx))
}

// RefreshComponents refreshes the temperature sensors. The maximum of each
// component is kept across refreshes.
func (s *System) RefreshComponents() {
	samples, err := s.backend.Components(context.Background())
	if err != nil {
		s.fail(ErrorSourceComponent, err)
		return
	}

	previous := make(map[string]float32, len(s.components))
	for _, c := range s.components {
		previous[c.Label] = c.Max
	}

	components := make([]Component, 0, len(samples))
	for _, cs := range samples {
		c := Component{
			Label:       cs.Label,
			Temperature: cs.Temperature,
			Max:         max(cs.Temperature, previous[cs.Label]),
			Critical:    cs.Critical,
			HasCritical: cs.HasCritical,
		}
		if cs.HasMax {
			c.Max = max(c.Max, cs.Max)
		}
		components = append(components, c)
	}
	s.components = components
	s.succeed(ErrorSourceComponent)
}

// RefreshNetworks refreshes the interface counters. Interfaces that
// disappeared are dropped.
func (s *System) RefreshNetworks() {
	samples, err := s.backend.Networks(context.Background())
	if err != nil {
		s.fail(ErrorSourceNetwork, err)
		return
	}

	now := s.now()
	var elapsed time.Duration
	if !s.netAt.IsZero() {
		elapsed = now.Sub(s.netAt)
	}
	s.netAt = now

	for name := range s.networks {
		if _, ok := samples[name]; !ok {
			delete(s.networks, name)
		}
	}
	for name, ns := range samples {
		st, ok := s.networks[name]
		if !ok {
			st = &networkState{}
			s.networks[name] = st
		}
		rx := st.rxBytes.Update(ns.RxBytes)
		tx := st.txBytes.Update(ns.TxBytes)
		st.rxPackets.Update(ns.RxPackets)
		st.txPackets.Update(ns.TxPackets)
		st.rxErrors.Update(ns.RxErrors)
		st.txErrors.Update(ns.TxErrors)
		if ok {
			st.rxRate = delta.PerSecond(rx, elapsed, st.rxRate)
			st.txRate = delta.PerSecond(tx, elapsed, st.txRate)
		}
	}
	s.succeed(ErrorSourceNetwork)
}

// RefreshUsersList replaces the user list.
func (s *System) RefreshUsersList() {
	samples, err := s.backend.Users(context.Background())
	if err != nil {
		s.fail(ErrorSourceUser, err)
		return
	}
	users := make([]User, 0, len(samples))
	for _, u := range samples {
		users = append(users, User{
			Name:   u.Name,
			UID:    u.UID,
			GID:    u.GID,
			Groups: append([]string(nil), u.Groups...),
		})
	}
	s.users = users
	s.succeed(ErrorSourceUser)
}

// RefreshDisks replaces the disk list.
func (s *System) RefreshDisks() {
	samples, err := s.backend.Disks(context.Background())
	if err != nil {
		s.fail(ErrorSourceDisk, err)
		return
	}
	disks := make([]Disk, 0, len(samples))
	for _, d := range samples {
		disks = append(disks, Disk(d))
	}
	s.disks = disks
	s.succeed(ErrorSourceDisk)
}

// Kill sends sig to pid and reports whether it was delivered.
func (s *System) Kill(pid Pid, sig Signal) bool {
	return s.KillErr(pid, sig) == nil
}

// KillErr sends sig to pid. Invalid arguments are rejected before any OS
// call with ErrInvalidPid or ErrInvalidSignal.
func (s *System) KillErr(pid Pid, sig Signal) error {
	if !sig.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidSignal, int(sig))
	}
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPid, int(pid))
	}
	err := s.backend.Signal(context.Background(), int(pid), platform.Signal(sig))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, platform.ErrNoProcess):
		return NewComponentError(ErrorSourceSignal, fmt.Errorf("%w: %w", ErrProcessNotFound, err))
	default:
		return NewComponentError(ErrorSourceSignal, err)
	}
}

// LastErrors returns the failures recorded by the most recent refresh of
// each table, ordered by source. A successful refresh clears its entry.
func (s *System) LastErrors() []*ComponentError {
	out := make([]*ComponentError, 0, len(s.errs))
	for _, e := range s.errs {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// Close releases the backend.
func (s *System) Close() error {
	return s.backend.Close()
}
