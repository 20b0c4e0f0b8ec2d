// Package counters resolves localized performance-counter names.
//
// Some platforms expose metrics only through a symbolic table whose display
// names depend on the session language. The engine knows every counter by
// its English name; to open a live query it must map that name to the
// stable numeric index the OS uses, then ask the OS for the index's current
// display name, and finally build the counter path the query API expects.
//
// The index table is read from a single blob (the "Counter 009" value) the
// first time it is needed and cached for the lifetime of the Resolver. The
// index to display-name translation is not cached: it is cheap and must
// reflect the language of the running session.
//
// A Resolver is an ordinary value owned by one backend. There is no package
// level state, so independent engines never share a table.
package counters

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-logr/logr"
)

// EnglishKey is the language-neutral key holding index/name pairs.
const EnglishKey = "Counter 009"

var (
	// ErrNotFound is returned when a name has no index in the table.
	ErrNotFound = errors.New("counter name not found")
	// ErrNoTranslation is returned when the OS has no display name for an index.
	ErrNoTranslation = errors.New("counter index has no display name")
)

// Source reads the raw counter-name blob stored under key.
type Source interface {
	ReadBlob(key string) ([]byte, error)
}

// Translator returns the current display name for a counter index.
type Translator interface {
	LookupName(index uint32) (string, error)
}

// Pair is one index/name entry of the counter table.
type Pair struct {
	Index uint32
	Name  string
}

// ParseBlob splits a counter blob into index/name pairs.
//
// The blob is a sequence of NUL-terminated strings alternating index and
// name. Empty fragments are discarded and the rest grouped two by two. A
// group whose first element is not an unsigned integer, or a trailing
// fragment without a partner, is dropped; dropped reports how many groups
// were discarded.
func ParseBlob(blob []byte) (pairs []Pair, dropped int) {
	var fragments [][]byte
	for _, f := range bytes.Split(blob, []byte{0}) {
		if len(f) > 0 {
			fragments = append(fragments, f)
		}
	}

	pairs = make([]Pair, 0, len(fragments)/2)
	for i := 0; i < len(fragments); i += 2 {
		if i+1 >= len(fragments) {
			dropped++
			break
		}
		index, err := strconv.ParseUint(string(fragments[i]), 10, 32)
		if err != nil {
			dropped++
			continue
		}
		pairs = append(pairs, Pair{Index: uint32(index), Name: string(fragments[i+1])})
	}
	return pairs, dropped
}

// Table maps counter names to indices and back.
type Table struct {
	byName  map[string]uint32
	byIndex map[uint32]string
}

// NewTable builds a table from pairs. When a name appears more than once
// the last index wins, matching the order the OS lists them in.
func NewTable(pairs []Pair) *Table {
	t := &Table{
		byName:  make(map[string]uint32, len(pairs)),
		byIndex: make(map[uint32]string, len(pairs)),
	}
	for _, p := range pairs {
		t.byName[p.Name] = p.Index
		t.byIndex[p.Index] = p.Name
	}
	return t
}

// Index returns the numeric index for name.
func (t *Table) Index(name string) (uint32, bool) {
	if t == nil {
		return 0, false
	}
	idx, ok := t.byName[name]
	return idx, ok
}

// Name returns the table name stored for index.
func (t *Table) Name(index uint32) (string, bool) {
	if t == nil {
		return "", false
	}
	name, ok := t.byIndex[index]
	return name, ok
}

// Len returns the number of names in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byName)
}

// Resolver owns one counter table and resolves English counter names into
// live, localized counter paths.
type Resolver struct {
	source     Source
	translator Translator
	logger     logr.Logger

	once       sync.Once
	table      *Table
	bootstraps int
}

// NewResolver creates a Resolver. Nothing is read until the table is first
// needed.
func NewResolver(source Source, translator Translator, logger logr.Logger) *Resolver {
	return &Resolver{
		source:     source,
		translator: translator,
		logger:     logger.WithName("counters"),
	}
}

// Table returns the cached table, reading and parsing the blob on first use.
// A failed read yields an empty table; it is never retried.
func (r *Resolver) Table() *Table {
	r.once.Do(r.bootstrap)
	return r.table
}

func (r *Resolver) bootstrap() {
	r.bootstraps++
	r.table = NewTable(nil)
	if r.source == nil {
		r.logger.Info("no counter source, counter table left empty")
		return
	}

	blob, err := r.source.ReadBlob(EnglishKey)
	if err != nil {
		r.logger.Error(err, "reading counter table, continuing without counters", "key", EnglishKey)
		return
	}

	pairs, dropped := ParseBlob(blob)
	r.table = NewTable(pairs)
	if dropped > 0 {
		r.logger.V(1).Info("skipped malformed counter pairs", "dropped", dropped, "kept", len(pairs))
	}
	r.logger.V(1).Info("counter table loaded", "names", r.table.Len())
}

// Bootstraps reports how many times the table has been read from the source.
func (r *Resolver) Bootstraps() int {
	return r.bootstraps
}

// Translate returns the current display name of the counter whose English
// name is name.
func (r *Resolver) Translate(name string) (string, error) {
	index, ok := r.Table().Index(name)
	if !ok {
		return "", fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if r.translator == nil {
		// Without a live translator the English name is the best we have.
		return name, nil
	}
	display, err := r.translator.LookupName(index)
	if err != nil {
		return "", fmt.Errorf("translating counter %d (%q): %w", index, name, err)
	}
	if display == "" {
		return "", fmt.Errorf("counter %d (%q): %w", index, name, ErrNoTranslation)
	}
	return display, nil
}

// CounterPath builds the localized path `\object(instance)\counter` from
// English object and counter names. An empty instance omits the
// parenthesised qualifier.
func (r *Resolver) CounterPath(object, instance, counter string) (string, error) {
	obj, err := r.Translate(object)
	if err != nil {
		return "", err
	}
	ctr, err := r.Translate(counter)
	if err != nil {
		return "", err
	}
	if instance == "" {
		return fmt.Sprintf(`\%s\%s`, obj, ctr), nil
	}
	return fmt.Sprintf(`\%s(%s)\%s`, obj, instance, ctr), nil
}
