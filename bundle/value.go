// Copyright (C) Firelite, Inc. 2021-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bundle

import (
	"encoding/base64"
	"time"

	"github.com/firelite-db/firelite-go/model"
)

// maxNestingDepth bounds how deeply arrays and maps may nest. Untrusted
// bundles would otherwise drive unbounded recursion.
const maxNestingDepth = 128

// decodeValue decodes one JSON-encoded field value. Dispatch is keyed on
// which discriminator field is present; an unrecognized shape records a
// failure and returns the null placeholder.
func (s *Serializer) decodeValue(r *JSONReader, value interface{}, depth int) model.Value {
	object, ok := value.(map[string]interface{})
	if !ok {
		r.Fail("value is not encoded as a JSON object")
		return model.Null()
	}
	if depth > maxNestingDepth {
		r.Fail("value exceeds the maximum supported nesting depth")
		return model.Null()
	}

	switch {
	case hasKey(object, "nullValue"):
		return model.Null()

	case hasKey(object, "booleanValue"):
		b, ok := object["booleanValue"].(bool)
		if !ok {
			r.Fail("'booleanValue' is not encoded as a valid boolean")
			return model.Null()
		}
		return model.FromBoolean(b)

	case hasKey(object, "integerValue"):
		return model.FromInteger(r.RequireInt("integerValue", object))

	case hasKey(object, "doubleValue"):
		return model.FromDouble(r.RequireDouble("doubleValue", object))

	case hasKey(object, "timestampValue"):
		return model.FromTimestamp(s.decodeTimestamp(r, object["timestampValue"]))

	case hasKey(object, "stringValue"):
		return model.FromString(r.RequireString("stringValue", object))

	case hasKey(object, "bytesValue"):
		return s.decodeBytesValue(r, r.RequireString("bytesValue", object))

	case hasKey(object, "referenceValue"):
		return s.decodeReferenceValue(r, r.RequireString("referenceValue", object))

	case hasKey(object, "geoPointValue"):
		return s.decodeGeoPointValue(r, object["geoPointValue"])

	case hasKey(object, "arrayValue"):
		return s.decodeArrayValue(r, object["arrayValue"], depth)

	case hasKey(object, "mapValue"):
		return s.decodeMapValue(r, object["mapValue"], depth)
	}

	r.Fail("failed to decode value, no type is recognized")
	return model.Null()
}

// decodeTimestamp accepts either an RFC 3339 string or an object with
// separate seconds/nanos fields. Both forms funnel through the model's
// range-validated constructors.
func (s *Serializer) decodeTimestamp(r *JSONReader, value interface{}) model.Timestamp {
	if str, ok := value.(string); ok {
		t, err := time.Parse(time.RFC3339Nano, str)
		if err != nil {
			r.Failf("parsing timestamp failed with error: %v", err)
			return model.Timestamp{}
		}
		ts, err := model.TimestampFromTime(t)
		if err != nil {
			r.FailError(err)
			return model.Timestamp{}
		}
		return ts
	}

	object, ok := value.(map[string]interface{})
	if !ok {
		r.Fail("timestamp is not encoded as a string or an object")
		return model.Timestamp{}
	}

	seconds := r.RequireInt("seconds", object)
	nanos := r.RequireInt("nanos", object)
	ts, err := model.NewTimestamp(seconds, nanos)
	if err != nil {
		r.FailError(err)
		return model.Timestamp{}
	}
	return ts
}

func (s *Serializer) decodeSnapshotVersion(r *JSONReader, value interface{}) model.SnapshotVersion {
	return model.SnapshotVersion{Timestamp: s.decodeTimestamp(r, value)}
}

func (s *Serializer) decodeBytesValue(r *JSONReader, encoded string) model.Value {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// The backend emits unpadded base64 for some blob sizes.
		decoded, err = base64.RawStdEncoding.DecodeString(encoded)
	}
	if err != nil {
		r.Fail("failed to decode bytesValue string into binary form")
		return model.Null()
	}
	return model.FromBytes(decoded)
}

func (s *Serializer) decodeReferenceValue(r *JSONReader, refString string) model.Value {
	// refString is empty when RequireString already failed; keep the first
	// recorded failure instead of reporting a bogus reference error.
	if !r.OK() {
		return model.Null()
	}

	ref, err := s.remote.DecodeReference(refString)
	if err != nil {
		r.FailError(err)
		return model.Null()
	}
	return model.FromReference(ref)
}

// decodeGeoPointValue is lenient about absence: latitude and longitude each
// default to 0 when the key is missing. A present key of the wrong type is
// still a failure.
func (s *Serializer) decodeGeoPointValue(r *JSONReader, value interface{}) model.Value {
	var gp model.GeoPoint
	object, ok := value.(map[string]interface{})
	if !ok {
		return model.FromGeoPoint(gp)
	}

	if hasKey(object, "latitude") {
		gp.Latitude = r.RequireDouble("latitude", object)
	}
	if hasKey(object, "longitude") {
		gp.Longitude = r.RequireDouble("longitude", object)
	}
	return model.FromGeoPoint(gp)
}

func (s *Serializer) decodeArrayValue(r *JSONReader, value interface{}, depth int) model.Value {
	object, ok := value.(map[string]interface{})
	if !ok {
		r.Fail("arrayValue is not encoded as a JSON object")
		return model.Null()
	}

	values := r.RequireArray("values", object)
	elements := make([]model.Value, 0, len(values))
	for _, v := range values {
		elements = append(elements, s.decodeValue(r, v, depth+1))
	}
	if !r.OK() {
		return model.Null()
	}
	return model.FromArray(elements)
}

// decodeMapValue decodes a nested map value, which must carry its fields
// under an explicit 'fields' object.
func (s *Serializer) decodeMapValue(r *JSONReader, value interface{}, depth int) model.Value {
	object, ok := value.(map[string]interface{})
	if !ok {
		r.Fail("mapValue is not a valid map")
		return model.Null()
	}
	fields, ok := object["fields"]
	if !ok {
		r.Fail("mapValue is not a valid map")
		return model.Null()
	}
	fieldsObject, ok := fields.(map[string]interface{})
	if !ok {
		r.Fail("mapValue's 'fields' is not a valid map")
		return model.Null()
	}

	return model.FromMap(s.decodeFields(r, fieldsObject, depth+1))
}

func (s *Serializer) decodeFields(r *JSONReader, fields map[string]interface{}, depth int) model.FieldMap {
	m := model.FieldMap{}
	for name, value := range fields {
		m = m.Insert(name, s.decodeValue(r, value, depth))
	}
	return m
}

func hasKey(object map[string]interface{}, name string) bool {
	_, ok := object[name]
	return ok
}
