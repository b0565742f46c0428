// Package xmlfield precomputes, per record type, the mapping from XML
// qualified names to declared field names (spec.md §3.3/§4.2), and
// interns the result so repeated decodes of the same record type reuse it.
package xmlfield

import (
	"reflect"
	"strings"
	"sync"

	"github.com/corvantis/xmlserde/xmltag"
)

// Field is one declared field, with its parsed rename descriptor.
type Field struct {
	xmltag.Descriptor
}

// Table is the immutable, shareable result of precomputing a field list.
// It is safe for concurrent read access and is cached by identity (see
// Intern below), matching spec §3.3/§5.
type Table struct {
	Fields        []Field
	NumValueSinks int
	// InnerValue is true when at least one value sink exists;
	// MatchElement hands out "$value"/"$valueN" sink names for unmatched
	// elements only while it is set.
	InnerValue bool
}

// Build computes a Table from a raw declared-name list. Callers that want
// caching should go through Intern/InternByType instead of calling Build
// directly on every decode.
func Build(declared []string) *Table {
	fields := make([]Field, len(declared))
	numValue := 0
	for i, d := range declared {
		fields[i] = Field{xmltag.Parse(d)}
		if fields[i].IsValueSink {
			numValue++
		}
	}
	return &Table{Fields: fields, NumValueSinks: numValue, InnerValue: numValue >= 1}
}

var cache sync.Map // key -> *Table

// Intern returns the cached Table for key, building it with build() on a
// cache miss. key must be comparable. This is the process-global,
// append-only, mutex-free (sync.Map) interning cache of spec §5.
func Intern(key any, build func() *Table) *Table {
	if t, ok := cache.Load(key); ok {
		return t.(*Table)
	}
	t := build()
	actual, _ := cache.LoadOrStore(key, t)
	return actual.(*Table)
}

// InternByType interns a Table keyed by a reflect.Type, which is a stable,
// comparable, process-wide identity for "the field list of this record
// type" — the Go analogue of the Rust original's literal-array pointer
// identity (see SPEC_FULL.md §5 and DESIGN.md).
func InternByType(t reflect.Type, declared []string) *Table {
	return Intern(t, func() *Table { return Build(declared) })
}

// InternBySlice interns a Table keyed by the backing-array address of a
// raw []string field list, reproducing the Rust original's pointer-identity
// scheme exactly for callers that hand-build a field list outside of
// xmlreflect's struct-tag walk.
func InternBySlice(declared []string) *Table {
	if len(declared) == 0 {
		return Build(declared)
	}
	key := reflect.ValueOf(declared).Pointer()
	return Intern(key, func() *Table { return Build(declared) })
}

// State tracks the per-decode mutable progress (value-sink counter) over
// an otherwise-immutable, shared Table. A fresh State must be created for
// each record being materialized or emitted.
type State struct {
	table      *Table
	valuesUsed int
}

// NewState begins a fresh match session against table.
func NewState(table *Table) *State { return &State{table: table} }

// MatchElement resolves an element qualified name to a declared name,
// synthesizing a "$value"/"$valueK" sink name or a synthetic unknown-
// element name as spec §4.2 describes.
func (s *State) MatchElement(q xmltag.QName) string {
	for _, f := range s.table.Fields {
		if !f.IsAttribute && f.Matches(q) {
			return f.Declared
		}
	}
	if s.table.InnerValue && s.valuesUsed < s.table.NumValueSinks {
		s.valuesUsed++
		if s.table.NumValueSinks == 1 {
			return "$value"
		}
		return valueSinkName(s.valuesUsed)
	}
	return q.Synthetic()
}

// MatchAttribute resolves an attribute qualified name to a declared name,
// wrapped with the "$attr:" marker (spec §4.2). f.Declared already carries
// the "$attr:" prefix for attribute fields (xmltag.Parse keeps the raw
// input string), so it is stripped before the marker is re-added —
// otherwise a field declared "$attr:id" would match as "$attr:$attr:id".
func (s *State) MatchAttribute(q xmltag.QName) string {
	for _, f := range s.table.Fields {
		if f.IsAttribute && f.Matches(q) {
			return "$attr:" + strings.TrimPrefix(f.Declared, "$attr:")
		}
	}
	return "$attr:" + q.Synthetic()
}

func valueSinkName(n int) string {
	const digits = "0123456789"
	if n < 10 {
		return "$value" + string(digits[n])
	}
	// Value-sink counts beyond 9 are pathological but handled generically.
	buf := []byte{}
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}
	return "$value" + string(buf)
}
