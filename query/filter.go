// Copyright (C) Firelite, Inc. 2021-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package query

import (
	"fmt"

	"github.com/firelite-db/firelite-go/model"
)

// Operator is a field filter comparison operator.
type Operator int

// The supported filter operators.
const (
	OperatorLessThan Operator = iota
	OperatorLessThanOrEqual
	OperatorEqual
	OperatorNotEqual
	OperatorGreaterThan
	OperatorGreaterThanOrEqual
	OperatorArrayContains
	OperatorIn
	OperatorArrayContainsAny
	OperatorNotIn
)

func (op Operator) String() string {
	switch op {
	case OperatorLessThan:
		return "<"
	case OperatorLessThanOrEqual:
		return "<="
	case OperatorEqual:
		return "=="
	case OperatorNotEqual:
		return "!="
	case OperatorGreaterThan:
		return ">"
	case OperatorGreaterThanOrEqual:
		return ">="
	case OperatorArrayContains:
		return "array_contains"
	case OperatorIn:
		return "in"
	case OperatorArrayContainsAny:
		return "array_contains_any"
	case OperatorNotIn:
		return "not_in"
	}

	return "invalid"
}

// Filter is one constraint of a query's where clause. FieldFilter is the only
// constructible variant; a FilterList combines filters with an implicit AND.
type Filter interface {
	fmt.Stringer

	// EqualFilter reports whether two filters are equivalent.
	EqualFilter(Filter) bool

	filterNode()
}

// FieldFilter constrains a single field by comparing it to a value. The zero
// FieldFilter (empty path, ==, null value) is the canonical placeholder
// returned by decoders that detected a failure; it is never surfaced to a
// caller that observes a healthy decode.
type FieldFilter struct {
	Field model.FieldPath
	Op    Operator
	Value model.Value
}

func (f FieldFilter) filterNode() {}

// EqualFilter implements Filter.
func (f FieldFilter) EqualFilter(other Filter) bool {
	o, ok := other.(FieldFilter)
	if !ok {
		return false
	}
	return f.Field.Equal(o.Field) && f.Op == o.Op && f.Value.Equal(o.Value)
}

func (f FieldFilter) String() string {
	return fmt.Sprintf("%s %s %s", f.Field, f.Op, f.Value)
}

// FilterList is an ordered conjunction of filters. Push returns a new list;
// prior versions remain valid.
type FilterList []Filter

// Push returns a new list with f appended.
func (l FilterList) Push(f Filter) FilterList {
	out := make(FilterList, 0, len(l)+1)
	out = append(out, l...)
	out = append(out, f)
	return out
}

// Equal reports whether two lists hold equivalent filters in the same order.
func (l FilterList) Equal(other FilterList) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if !l[i].EqualFilter(other[i]) {
			return false
		}
	}
	return true
}
