// Copyright (C) Firelite, Inc. 2021-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package query

import "github.com/firelite-db/firelite-go/model"

// Bound restricts a query to start or end at a position in the ordered result
// set. Position holds one component per order-by clause; Before controls
// whether documents sorting exactly at the position are included. A Bound
// with an empty Position is the canonical "no bound" sentinel.
type Bound struct {
	Position []model.Value
	Before   bool
}

// IsEmpty reports whether the bound is the absent sentinel.
func (b Bound) IsEmpty() bool { return len(b.Position) == 0 }

// Equal reports whether two bounds are equivalent.
func (b Bound) Equal(other Bound) bool {
	if b.Before != other.Before || len(b.Position) != len(other.Position) {
		return false
	}
	for i := range b.Position {
		if !b.Position[i].Equal(other.Position[i]) {
			return false
		}
	}
	return true
}

// NoLimit marks a target without a result count limit.
const NoLimit int32 = -1

// LimitType describes which end of the ordered result set a limit applies to.
// It is advisory metadata for the query executor; Last means the
// server-materialized order is reversed before the limit applies.
type LimitType int

const (
	// LimitTypeNone marks a query without limit semantics.
	LimitTypeNone LimitType = iota
	// LimitTypeFirst limits from the start of the result set.
	LimitTypeFirst
	// LimitTypeLast limits from the end of the result set.
	LimitTypeLast
)

func (t LimitType) String() string {
	switch t {
	case LimitTypeFirst:
		return "first"
	case LimitTypeLast:
		return "last"
	}
	return "none"
}

// Target is the normalized representation of a collection or collection-group
// query. A collection-group target has an empty Path and a non-empty
// CollectionGroup; a plain collection target has a non-empty Path and no
// group. The two are mutually exclusive by construction.
type Target struct {
	Path            model.ResourcePath
	CollectionGroup string
	Filters         FilterList
	OrderBys        OrderByList
	Limit           int32
	StartAt         *Bound
	EndAt           *Bound
}

// IsCollectionGroupQuery reports whether the target addresses a collection
// group rather than a single collection.
func (t Target) IsCollectionGroupQuery() bool { return t.CollectionGroup != "" }

// HasLimit reports whether the target carries a result count limit.
func (t Target) HasLimit() bool { return t.Limit != NoLimit }

// Equal reports whether two targets are equivalent.
func (t Target) Equal(other Target) bool {
	if !t.Path.Equal(other.Path) || t.CollectionGroup != other.CollectionGroup {
		return false
	}
	if !t.Filters.Equal(other.Filters) || !t.OrderBys.Equal(other.OrderBys) {
		return false
	}
	if t.Limit != other.Limit {
		return false
	}
	return boundPtrEqual(t.StartAt, other.StartAt) && boundPtrEqual(t.EndAt, other.EndAt)
}

func boundPtrEqual(a, b *Bound) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
