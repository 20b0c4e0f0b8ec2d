package counters

import (
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuery struct {
	next     uintptr
	paths    map[uintptr]string
	values   map[string]RawValue
	collects int
	closed   bool
	failAdd  bool
}

func newFakeQuery() *fakeQuery {
	return &fakeQuery{paths: make(map[uintptr]string), values: make(map[string]RawValue)}
}

func (q *fakeQuery) AddCounter(path string) (uintptr, error) {
	if q.failAdd {
		return 0, errors.New("bad path")
	}
	q.next++
	q.paths[q.next] = path
	return q.next, nil
}

func (q *fakeQuery) RemoveCounter(h uintptr) error {
	if _, ok := q.paths[h]; !ok {
		return errors.New("unknown handle")
	}
	delete(q.paths, h)
	return nil
}

func (q *fakeQuery) Collect() error { q.collects++; return nil }

func (q *fakeQuery) Raw(h uintptr) (RawValue, error) {
	path, ok := q.paths[h]
	if !ok {
		return RawValue{}, errors.New("unknown handle")
	}
	return q.values[path], nil
}

func (q *fakeQuery) Close() error { q.closed = true; return nil }

func newTestSet(t *testing.T) (*Set, *fakeQuery) {
	t.Helper()
	src := &fakeSource{blob: blob("238", "Processor", "6", "% Processor Time")}
	tr := &fakeTranslator{names: map[uint32]string{238: "Procesador", 6: "% de tiempo de procesador"}}
	q := newFakeQuery()
	return NewSet(NewResolver(src, tr, logr.Discard()), q), q
}

func TestSet_AddCollectRaw(t *testing.T) {
	set, q := newTestSet(t)

	key, err := set.Add("cpu0", "Processor", "0", "% Processor Time")
	require.NoError(t, err)
	assert.Equal(t, "cpu0", key.ID)
	assert.Equal(t, `\Procesador(0)\% de tiempo de procesador`, key.Path)

	q.values[key.Path] = RawValue{First: 300, Second: 1000}
	require.NoError(t, set.Collect())
	assert.Equal(t, 1, q.collects)

	raw, err := set.Raw("cpu0")
	require.NoError(t, err)
	assert.Equal(t, RawValue{First: 300, Second: 1000}, raw)
}

func TestSet_AddReplacesExistingID(t *testing.T) {
	set, q := newTestSet(t)

	_, err := set.Add("cpu", "Processor", "0", "% Processor Time")
	require.NoError(t, err)
	_, err = set.Add("cpu", "Processor", "1", "% Processor Time")
	require.NoError(t, err)

	assert.Len(t, q.paths, 1)
	_, err = set.Raw("cpu")
	assert.NoError(t, err)
}

func TestSet_AddUnresolvable(t *testing.T) {
	set, q := newTestSet(t)

	_, err := set.Add("disk", "PhysicalDisk", "0 C:", "% Disk Time")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, q.paths)

	q.failAdd = true
	_, err = set.Add("cpu0", "Processor", "0", "% Processor Time")
	assert.Error(t, err)
	_, err = set.Raw("cpu0")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestSet_ReleaseAndClose(t *testing.T) {
	set, q := newTestSet(t)

	_, err := set.Add("cpu0", "Processor", "0", "% Processor Time")
	require.NoError(t, err)
	_, err = set.Add("cpu1", "Processor", "1", "% Processor Time")
	require.NoError(t, err)

	require.NoError(t, set.Release("cpu0"))
	assert.Len(t, q.paths, 1)
	assert.ErrorIs(t, set.Release("cpu0"), ErrUnknownKey)

	_, err = set.Raw("cpu0")
	assert.ErrorIs(t, err, ErrUnknownKey)

	require.NoError(t, set.Close())
	assert.True(t, q.closed)
	_, err = set.Raw("cpu1")
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Error(t, set.Collect())
	require.NoError(t, set.Close(), "second close is a no-op")
}
