package platform

import "context"

// unknownBackend serves systems without a native backend. Every query
// fails with ErrUnsupported, which leaves the engine empty but usable.
type unknownBackend struct{}

func newUnknownBackend() unknownBackend {
	return unknownBackend{}
}

func (unknownBackend) Name() string   { return "unknown" }
func (unknownBackend) FoldCase() bool { return false }
func (unknownBackend) Close() error   { return nil }

func (unknownBackend) Bootstrap(context.Context) (BootInfo, error) {
	return BootInfo{}, ErrUnsupported
}

func (unknownBackend) Processors(context.Context) (CPUSample, error) {
	return CPUSample{}, ErrUnsupported
}

func (unknownBackend) Memory(context.Context) (MemorySample, error) {
	return MemorySample{}, ErrUnsupported
}

func (unknownBackend) LoadAverage(context.Context) (LoadAverage, error) {
	return LoadAverage{}, ErrUnsupported
}

func (unknownBackend) BootTime(context.Context) (uint64, error) {
	return 0, ErrUnsupported
}

func (unknownBackend) PIDs(context.Context) ([]int, error) {
	return nil, ErrUnsupported
}

func (unknownBackend) Process(context.Context, int) (ProcessSample, error) {
	return ProcessSample{}, ErrUnsupported
}

func (unknownBackend) Networks(context.Context) (map[string]NetworkSample, error) {
	return nil, ErrUnsupported
}

func (unknownBackend) Components(context.Context) ([]ComponentSample, error) {
	return nil, ErrUnsupported
}

func (unknownBackend) Users(context.Context) ([]UserSample, error) {
	return nil, ErrUnsupported
}

func (unknownBackend) Disks(context.Context) ([]DiskSample, error) {
	return nil, ErrUnsupported
}

func (unknownBackend) Signal(context.Context, int, Signal) error {
	return ErrUnsupported
}
