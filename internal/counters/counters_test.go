package counters

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	blob  []byte
	err   error
	reads int
	keys  []string
}

func (f *fakeSource) ReadBlob(key string) ([]byte, error) {
	f.reads++
	f.keys = append(f.keys, key)
	return f.blob, f.err
}

type fakeTranslator struct {
	names   map[uint32]string
	lookups int
}

func (f *fakeTranslator) LookupName(index uint32) (string, error) {
	f.lookups++
	name, ok := f.names[index]
	if !ok {
		return "", fmt.Errorf("no name for %d", index)
	}
	return name, nil
}

func blob(parts ...string) []byte {
	return []byte(strings.Join(parts, "\x00") + "\x00\x00")
}

func TestParseBlob(t *testing.T) {
	tests := []struct {
		name        string
		in          []byte
		want        []Pair
		wantDropped int
	}{
		{
			name: "well formed",
			in:   blob("1", "1847", "2", "System", "238", "Processor", "6", "% Processor Time"),
			want: []Pair{
				{1, "1847"}, {2, "System"}, {238, "Processor"}, {6, "% Processor Time"},
			},
		},
		{
			name: "empty fragments discarded",
			in:   []byte("\x00\x002\x00\x00System\x00\x00"),
			want: []Pair{{2, "System"}},
		},
		{
			name:        "non numeric index dropped",
			in:          blob("x", "Bogus", "4", "Memory"),
			want:        []Pair{{4, "Memory"}},
			wantDropped: 1,
		},
		{
			name:        "negative and overflowing index dropped",
			in:          blob("-1", "Neg", "4294967296", "Big", "10", "Ok"),
			want:        []Pair{{10, "Ok"}},
			wantDropped: 2,
		},
		{
			name:        "trailing fragment dropped",
			in:          blob("2", "System", "4"),
			want:        []Pair{{2, "System"}},
			wantDropped: 1,
		},
		{
			name: "empty",
			in:   nil,
			want: []Pair{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dropped := ParseBlob(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDropped, dropped)
		})
	}
}

func TestTable(t *testing.T) {
	table := NewTable([]Pair{{238, "Processor"}, {6, "% Processor Time"}, {240, "Processor"}})

	idx, ok := table.Index("Processor")
	require.True(t, ok)
	assert.Equal(t, uint32(240), idx, "last index wins")

	name, ok := table.Name(6)
	require.True(t, ok)
	assert.Equal(t, "% Processor Time", name)

	_, ok = table.Index("Nope")
	assert.False(t, ok)
	assert.Equal(t, 2, table.Len())

	var nilTable *Table
	_, ok = nilTable.Index("Processor")
	assert.False(t, ok)
	assert.Zero(t, nilTable.Len())
}

func TestResolver_BootstrapRunsOnce(t *testing.T) {
	src := &fakeSource{blob: blob("238", "Processor", "6", "% Processor Time")}
	r := NewResolver(src, nil, testr.New(t))

	first := r.Table()
	second := r.Table()

	assert.Same(t, first, second)
	assert.Equal(t, 1, src.reads)
	assert.Equal(t, 1, r.Bootstraps())
	assert.Equal(t, []string{EnglishKey}, src.keys)

	idx, ok := second.Index("Processor")
	require.True(t, ok)
	assert.Equal(t, uint32(238), idx)
}

func TestResolver_BootstrapFailureDegradesToEmptyTable(t *testing.T) {
	src := &fakeSource{err: errors.New("access denied")}
	r := NewResolver(src, &fakeTranslator{}, testr.New(t))

	assert.Zero(t, r.Table().Len())
	assert.Zero(t, r.Table().Len())
	assert.Equal(t, 1, src.reads, "failure is not retried")

	_, err := r.Translate("Processor")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolver_NilSource(t *testing.T) {
	r := NewResolver(nil, nil, testr.New(t))
	assert.Zero(t, r.Table().Len())
}

func TestResolver_TranslateUsesLiveLookup(t *testing.T) {
	src := &fakeSource{blob: blob("238", "Processor", "6", "% Processor Time")}
	tr := &fakeTranslator{names: map[uint32]string{238: "Processeur", 6: "% temps processeur"}}
	r := NewResolver(src, tr, testr.New(t))

	name, err := r.Translate("Processor")
	require.NoError(t, err)
	assert.Equal(t, "Processeur", name)

	// Session language changed: the lookup is made again, not cached.
	tr.names[238] = "Prozessor"
	name, err = r.Translate("Processor")
	require.NoError(t, err)
	assert.Equal(t, "Prozessor", name)
	assert.Equal(t, 2, tr.lookups)
	assert.Equal(t, 1, src.reads)
}

func TestResolver_TranslateErrors(t *testing.T) {
	src := &fakeSource{blob: blob("238", "Processor", "7", "Empty")}
	tr := &fakeTranslator{names: map[uint32]string{7: ""}}
	r := NewResolver(src, tr, testr.New(t))

	_, err := r.Translate("Processor")
	assert.Error(t, err)

	_, err = r.Translate("Empty")
	assert.ErrorIs(t, err, ErrNoTranslation)
}

func TestResolver_CounterPath(t *testing.T) {
	src := &fakeSource{blob: blob("238", "Processor", "6", "% Processor Time", "2", "System", "44", "Processor Queue Length")}
	tr := &fakeTranslator{names: map[uint32]string{
		238: "Processeur", 6: "% temps processeur", 2: "Système", 44: "Longueur de la file du processeur",
	}}
	r := NewResolver(src, tr, testr.New(t))

	path, err := r.CounterPath("Processor", "0", "% Processor Time")
	require.NoError(t, err)
	assert.Equal(t, `\Processeur(0)\% temps processeur`, path)

	path, err = r.CounterPath("System", "", "Processor Queue Length")
	require.NoError(t, err)
	assert.Equal(t, `\Système\Longueur de la file du processeur`, path)

	_, err = r.CounterPath("PhysicalDisk", "_Total", "% Disk Time")
	assert.ErrorIs(t, err, ErrNotFound)
}
