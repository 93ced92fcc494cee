// Copyright (C) Firelite, Inc. 2021-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package model

import (
	"bytes"
	"fmt"
	"math"
)

// Type represents the type of a field Value.
type Type byte

// The field value types supported by the engine.
const (
	TypeNull      Type = 0x00
	TypeBoolean   Type = 0x01
	TypeInteger   Type = 0x02
	TypeDouble    Type = 0x03
	TypeTimestamp Type = 0x04
	TypeString    Type = 0x05
	TypeBytes     Type = 0x06
	TypeReference Type = 0x07
	TypeGeoPoint  Type = 0x08
	TypeArray     Type = 0x09
	TypeMap       Type = 0x0A
)

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeInteger:
		return "integer"
	case TypeDouble:
		return "double"
	case TypeTimestamp:
		return "timestamp"
	case TypeString:
		return "string"
	case TypeBytes:
		return "bytes"
	case TypeReference:
		return "reference"
	case TypeGeoPoint:
		return "geopoint"
	case TypeArray:
		return "array"
	case TypeMap:
		return "map"
	}

	return "invalid"
}

// GeoPoint represents a geographic point.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// Reference is a pointer to a document in a specific database.
type Reference struct {
	Database DatabaseID
	Key      DocumentKey
}

// Value represents one field value of a document. It is a tagged union over
// the supported field types; the zero Value is of TypeNull. Values are
// immutable once constructed.
type Value struct {
	t   Type
	b   bool
	i64 int64
	f64 float64
	str string
	ts  Timestamp
	byt []byte
	ref Reference
	geo GeoPoint
	arr []Value
	m   FieldMap
}

// Null returns the null value.
func Null() Value { return Value{} }

// NaN returns a double value holding IEEE 754 NaN.
func NaN() Value { return FromDouble(math.NaN()) }

// FromBoolean constructs a boolean value.
func FromBoolean(b bool) Value { return Value{t: TypeBoolean, b: b} }

// FromInteger constructs a 64-bit integer value.
func FromInteger(i int64) Value { return Value{t: TypeInteger, i64: i} }

// FromDouble constructs a double value.
func FromDouble(f float64) Value { return Value{t: TypeDouble, f64: f} }

// FromTimestamp constructs a timestamp value.
func FromTimestamp(ts Timestamp) Value { return Value{t: TypeTimestamp, ts: ts} }

// FromString constructs a string value.
func FromString(s string) Value { return Value{t: TypeString, str: s} }

// FromBytes constructs a bytes value. The slice is not copied; callers must
// not mutate it afterwards.
func FromBytes(b []byte) Value { return Value{t: TypeBytes, byt: b} }

// FromReference constructs a reference value.
func FromReference(ref Reference) Value { return Value{t: TypeReference, ref: ref} }

// FromGeoPoint constructs a geopoint value.
func FromGeoPoint(gp GeoPoint) Value { return Value{t: TypeGeoPoint, geo: gp} }

// FromArray constructs an array value. The slice is not copied; callers must
// not mutate it afterwards.
func FromArray(values []Value) Value { return Value{t: TypeArray, arr: values} }

// FromMap constructs a map value from a FieldMap.
func FromMap(m FieldMap) Value { return Value{t: TypeMap, m: m} }

// Type returns the type tag of this value.
func (v Value) Type() Type { return v.t }

// Boolean returns the boolean held by this value. It is only valid for
// TypeBoolean values.
func (v Value) Boolean() bool { return v.b }

// Integer returns the int64 held by this value.
func (v Value) Integer() int64 { return v.i64 }

// Double returns the float64 held by this value.
func (v Value) Double() float64 { return v.f64 }

// Timestamp returns the timestamp held by this value.
func (v Value) Timestamp() Timestamp { return v.ts }

// StringValue returns the string held by this value.
func (v Value) StringValue() string { return v.str }

// Bytes returns the byte slice held by this value. Callers must not mutate
// the returned slice.
func (v Value) Bytes() []byte { return v.byt }

// Reference returns the document reference held by this value.
func (v Value) Reference() Reference { return v.ref }

// GeoPoint returns the geopoint held by this value.
func (v Value) GeoPoint() GeoPoint { return v.geo }

// Array returns the element slice held by this value. Callers must not
// mutate the returned slice.
func (v Value) Array() []Value { return v.arr }

// Map returns the FieldMap held by this value.
func (v Value) Map() FieldMap { return v.m }

// Equal reports whether two values are of the same type and hold equal
// contents. Doubles are compared bitwise, so NaN equals NaN.
func (v Value) Equal(other Value) bool {
	if v.t != other.t {
		return false
	}

	switch v.t {
	case TypeNull:
		return true
	case TypeBoolean:
		return v.b == other.b
	case TypeInteger:
		return v.i64 == other.i64
	case TypeDouble:
		return math.Float64bits(v.f64) == math.Float64bits(other.f64)
	case TypeTimestamp:
		return v.ts == other.ts
	case TypeString:
		return v.str == other.str
	case TypeBytes:
		return bytes.Equal(v.byt, other.byt)
	case TypeReference:
		return v.ref.Database == other.ref.Database && v.ref.Key.Equal(other.ref.Key)
	case TypeGeoPoint:
		return v.geo == other.geo
	case TypeArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case TypeMap:
		return v.m.Equal(other.m)
	}

	return false
}

func (v Value) String() string {
	switch v.t {
	case TypeNull:
		return "null"
	case TypeBoolean:
		return fmt.Sprintf("%v", v.b)
	case TypeInteger:
		return fmt.Sprintf("%d", v.i64)
	case TypeDouble:
		return fmt.Sprintf("%g", v.f64)
	case TypeTimestamp:
		return v.ts.String()
	case TypeString:
		return fmt.Sprintf("%q", v.str)
	case TypeBytes:
		return fmt.Sprintf("bytes(%d)", len(v.byt))
	case TypeReference:
		return v.ref.Key.String()
	case TypeGeoPoint:
		return fmt.Sprintf("geo(%g, %g)", v.geo.Latitude, v.geo.Longitude)
	case TypeArray:
		return fmt.Sprintf("array(%d)", len(v.arr))
	case TypeMap:
		return fmt.Sprintf("map(%d)", v.m.Len())
	}

	return "invalid"
}
