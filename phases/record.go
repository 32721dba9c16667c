package phases

import (
	"fmt"
	"sort"
	"strings"
)

// Record is an open-ended set of named values passed between phases.
//
// The orchestrator never hands out its own copy of a Record: every phase gets a freshly built
// map, so a phase that modifies what it receives cannot affect any other phase.
type Record map[string]interface{}

// Merge returns a new Record containing the keys of all the given records. If the same key
// appears more than once, the last record wins. The result is never nil.
func Merge(records ...Record) Record {
	size := 0
	for _, r := range records {
		size += len(r)
	}
	ret := make(Record, size)
	for _, r := range records {
		for k, v := range r {
			ret[k] = v
		}
	}
	return ret
}

// Get returns the value for a key, and whether it was present.
func (r Record) Get(key string) (interface{}, bool) {
	v, ok := r[key]
	return v, ok
}

// Has returns true if the key is present, even if its value is nil.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Keys returns the record's keys in sorted order.
func (r Record) Keys() []string {
	ret := make([]string, 0, len(r))
	for k := range r {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// String describes the record by its keys only. Values can be anything, including live
// resources, so they are not printed.
func (r Record) String() string {
	return "{" + strings.Join(r.Keys(), ", ") + "}"
}

// Value returns the value for a key converted to type T. The second return value is false if
// the key is missing or holds a value of some other type.
func Value[T any](r Record, key string) (T, bool) {
	v, ok := r[key].(T)
	return v, ok
}

// MustValue is like Value, but panics if the key is missing or has the wrong type. It is
// meant for use inside phases, where a panic is treated like any other phase failure.
func MustValue[T any](r Record, key string) T {
	raw, present := r[key]
	if !present {
		panic(fmt.Sprintf("record has no key %q; keys are %s", key, r))
	}
	v, ok := raw.(T)
	if !ok {
		var zero T
		panic(fmt.Sprintf("record key %q holds %T, not %T", key, raw, zero))
	}
	return v
}
