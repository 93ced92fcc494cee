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

// Direction is a sort direction.
type Direction int

const (
	// Ascending sorts smallest values first.
	Ascending Direction = iota
	// Descending sorts largest values first.
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// OrderBy sorts query results by a single field.
type OrderBy struct {
	Field model.FieldPath
	Dir   Direction
}

func (o OrderBy) String() string { return fmt.Sprintf("%s %s", o.Field, o.Dir) }

// OrderByList is an ordered list of sort clauses; earlier entries take
// precedence. Push returns a new list; prior versions remain valid.
type OrderByList []OrderBy

// Push returns a new list with o appended.
func (l OrderByList) Push(o OrderBy) OrderByList {
	out := make(OrderByList, 0, len(l)+1)
	out = append(out, l...)
	out = append(out, o)
	return out
}

// Equal reports whether two lists hold the same clauses in the same order.
func (l OrderByList) Equal(other OrderByList) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if !l[i].Field.Equal(other[i].Field) || l[i].Dir != other[i].Dir {
			return false
		}
	}
	return true
}
