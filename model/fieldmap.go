// Copyright (C) Firelite, Inc. 2021-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package model

import "sort"

// FieldMapEntry is one key/value pair of a FieldMap.
type FieldMapEntry struct {
	Key   string
	Value Value
}

// FieldMap is an immutable mapping from field names to values, kept sorted by
// key for deterministic iteration and comparison. Insert returns a new
// logical version; prior versions remain valid and are never mutated.
type FieldMap struct {
	entries []FieldMapEntry
}

// Insert returns a new FieldMap containing the given key/value pair. An
// existing entry for the same key is replaced (last write wins).
func (m FieldMap) Insert(key string, value Value) FieldMap {
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].Key >= key })

	if i < len(m.entries) && m.entries[i].Key == key {
		out := make([]FieldMapEntry, len(m.entries))
		copy(out, m.entries)
		out[i].Value = value
		return FieldMap{entries: out}
	}

	out := make([]FieldMapEntry, 0, len(m.entries)+1)
	out = append(out, m.entries[:i]...)
	out = append(out, FieldMapEntry{Key: key, Value: value})
	out = append(out, m.entries[i:]...)
	return FieldMap{entries: out}
}

// Get returns the value stored under key and whether it was present.
func (m FieldMap) Get(key string) (Value, bool) {
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].Key >= key })
	if i < len(m.entries) && m.entries[i].Key == key {
		return m.entries[i].Value, true
	}
	return Value{}, false
}

// Len returns the number of entries.
func (m FieldMap) Len() int { return len(m.entries) }

// Range calls fn for each entry in ascending key order until fn returns
// false.
func (m FieldMap) Range(fn func(key string, value Value) bool) {
	for _, e := range m.entries {
		if !fn(e.Key, e.Value) {
			return
		}
	}
}

// Equal reports whether two maps hold equal entries.
func (m FieldMap) Equal(other FieldMap) bool {
	if len(m.entries) != len(other.entries) {
		return false
	}
	for i := range m.entries {
		if m.entries[i].Key != other.entries[i].Key {
			return false
		}
		if !m.entries[i].Value.Equal(other.entries[i].Value) {
			return false
		}
	}
	return true
}
