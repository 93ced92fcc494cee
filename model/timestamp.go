// Copyright (C) Firelite, Inc. 2021-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package model

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// The representable timestamp range: 0001-01-01T00:00:00Z to
// 9999-12-31T23:59:59.999999999Z, matching the backend's constraint.
const (
	minTimestampSeconds = -62135596800
	maxTimestampSeconds = 253402300799
)

// Timestamp is a point in time with nanosecond precision, seconds since the
// Unix epoch plus a nanosecond offset in [0, 1e9).
type Timestamp struct {
	Seconds int64
	Nanos   int32
}

// NewTimestamp builds a Timestamp from untrusted seconds and nanos. A nanos
// component outside [0, 1e9) is carried into the seconds component before the
// range check, so e.g. (5, -1) normalizes to (4, 999999999).
func NewTimestamp(seconds int64, nanos int64) (Timestamp, error) {
	seconds += nanos / 1e9
	nanos %= 1e9
	if nanos < 0 {
		seconds--
		nanos += 1e9
	}

	if seconds < minTimestampSeconds || seconds > maxTimestampSeconds {
		return Timestamp{}, errors.Errorf("timestamp seconds out of range: %d", seconds)
	}
	return Timestamp{Seconds: seconds, Nanos: int32(nanos)}, nil
}

// TimestampFromTime converts a time.Time, validating the representable range.
func TimestampFromTime(t time.Time) (Timestamp, error) {
	return NewTimestamp(t.Unix(), int64(t.Nanosecond()))
}

// Time converts the timestamp to a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Seconds, int64(t.Nanos)).UTC()
}

// Compare orders two timestamps chronologically, returning -1, 0 or 1.
func (t Timestamp) Compare(other Timestamp) int {
	switch {
	case t.Seconds < other.Seconds:
		return -1
	case t.Seconds > other.Seconds:
		return 1
	case t.Nanos < other.Nanos:
		return -1
	case t.Nanos > other.Nanos:
		return 1
	}
	return 0
}

func (t Timestamp) String() string {
	return fmt.Sprintf("Timestamp(seconds=%d, nanos=%d)", t.Seconds, t.Nanos)
}

// SnapshotVersion is a document version, implemented as a server timestamp.
type SnapshotVersion struct {
	Timestamp Timestamp
}

// Compare orders two versions chronologically.
func (v SnapshotVersion) Compare(other SnapshotVersion) int {
	return v.Timestamp.Compare(other.Timestamp)
}

func (v SnapshotVersion) String() string {
	return fmt.Sprintf("SnapshotVersion(%s)", v.Timestamp)
}
