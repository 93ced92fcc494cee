// Copyright (C) Firelite, Inc. 2021-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bundle

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/pretty"

	"github.com/firelite-db/firelite-go/model"
	"github.com/firelite-db/firelite-go/query"
	"github.com/firelite-db/firelite-go/remote"
)

var testDatabaseID = model.NewDatabaseID("test-project", "(default)")

const testDocumentsPrefix = "projects/test-project/databases/(default)/documents"

func newTestSerializer() *Serializer {
	return NewSerializer(remote.NewSerializer(testDatabaseID))
}

// decodeTestQuery wraps a structuredQuery into a bundledQuery object rooted
// at the database and decodes it. outerExtra is appended to the outer object
// (e.g. a limitType key).
func decodeTestQuery(t *testing.T, structuredQuery, outerExtra string) (BundledQuery, *JSONReader) {
	t.Helper()
	s := newTestSerializer()
	r := NewJSONReader()
	outer := `{"parent":"` + testDocumentsPrefix + `","structuredQuery":` + structuredQuery + outerExtra + `}`
	return s.decodeBundledQuery(r, parseAny(t, outer)), r
}

func mustTimestamp(t *testing.T, seconds int64, nanos int64) model.Timestamp {
	t.Helper()
	ts, err := model.NewTimestamp(seconds, nanos)
	require.NoError(t, err)
	return ts
}

func TestDecodeBundleMetadata(t *testing.T) {
	s := newTestSerializer()

	t.Run("native numbers", func(t *testing.T) {
		r := NewJSONReader()
		md := s.DecodeBundleMetadata(r,
			`{"id":"b1","version":1,"createTime":{"seconds":1615802400,"nanos":42},"totalDocuments":99,"totalBytes":2048}`)
		require.NoError(t, r.Err())

		want := BundleMetadata{
			ID:             "b1",
			Version:        1,
			CreateTime:     model.SnapshotVersion{Timestamp: mustTimestamp(t, 1615802400, 42)},
			TotalDocuments: 99,
			TotalBytes:     2048,
		}
		assert.Equal(t, "", cmp.Diff(want, md))
	})

	t.Run("numeric strings decode equal", func(t *testing.T) {
		r := NewJSONReader()
		fromStrings := s.DecodeBundleMetadata(r,
			`{"id":"b1","version":"1","createTime":"2021-03-15T10:00:00.000000042Z","totalDocuments":"99","totalBytes":"2048"}`)
		require.NoError(t, r.Err())

		r = NewJSONReader()
		fromNumbers := s.DecodeBundleMetadata(r,
			`{"id":"b1","version":1,"createTime":{"seconds":1615802400,"nanos":42},"totalDocuments":99,"totalBytes":2048}`)
		require.NoError(t, r.Err())

		assert.Equal(t, "", cmp.Diff(fromNumbers, fromStrings))
	})

	t.Run("parse failure", func(t *testing.T) {
		r := NewJSONReader()
		md := s.DecodeBundleMetadata(r, `{"id": nope}`)
		assert.False(t, r.OK())
		assert.Contains(t, r.Message(), "failed to parse string into json")
		assert.Equal(t, BundleMetadata{}, md)
	})

	t.Run("missing field", func(t *testing.T) {
		r := NewJSONReader()
		s.DecodeBundleMetadata(r,
			`{"id":"b1","version":1,"createTime":{"seconds":1,"nanos":0},"totalDocuments":3}`)
		assert.False(t, r.OK())
		assert.Contains(t, r.Message(), "totalBytes")
	})
}

func TestDecodeNamedQuery(t *testing.T) {
	fixture := `
	{
	  "name": "greatest-rooms",
	  "readTime": "2021-03-15T10:00:00Z",
	  "bundledQuery": {
	    "parent": "` + testDocumentsPrefix + `",
	    "limitType": "LAST",
	    "structuredQuery": {
	      "from": [{"collectionId": "rooms"}],
	      "where": {"compositeFilter": {"op": "AND", "filters": [
	        {"fieldFilter": {"field": {"fieldPath": "capacity"}, "op": "GREATER_THAN", "value": {"integerValue": "100"}}},
	        {"fieldFilter": {"field": {"fieldPath": "open"}, "op": "EQUAL", "value": {"booleanValue": true}}}
	      ]}},
	      "orderBy": [
	        {"field": {"fieldPath": "capacity"}, "direction": "DESCENDING"},
	        {"field": {"fieldPath": "name"}}
	      ],
	      "startAt": {"before": true, "values": [{"integerValue": "500"}]},
	      "limit": 10
	    }
	  }
	}`

	s := newTestSerializer()
	r := NewJSONReader()
	nq := s.DecodeNamedQuery(r, string(pretty.Ugly([]byte(fixture))))
	require.NoError(t, r.Err())

	assert.Equal(t, "greatest-rooms", nq.Name)
	assert.Equal(t, mustTimestamp(t, 1615802400, 0), nq.ReadTime.Timestamp)

	want := BundledQuery{
		Target: query.Target{
			Path: model.NewResourcePath("rooms"),
			Filters: query.FilterList{
				query.FieldFilter{
					Field: model.NewFieldPath("capacity"),
					Op:    query.OperatorGreaterThan,
					Value: model.FromInteger(100),
				},
				query.FieldFilter{
					Field: model.NewFieldPath("open"),
					Op:    query.OperatorEqual,
					Value: model.FromBoolean(true),
				},
			},
			OrderBys: query.OrderByList{
				{Field: model.NewFieldPath("capacity"), Dir: query.Descending},
				{Field: model.NewFieldPath("name"), Dir: query.Ascending},
			},
			Limit:   10,
			StartAt: &query.Bound{Position: []model.Value{model.FromInteger(500)}, Before: true},
		},
		LimitType: query.LimitTypeLast,
	}
	assert.Equal(t, "", cmp.Diff(want, nq.BundledQuery))
}

func TestDecodeCollectionSource(t *testing.T) {
	t.Run("plain collection extends the parent path", func(t *testing.T) {
		bq, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}]}`, "")
		require.NoError(t, r.Err())
		assert.Equal(t, "rooms", bq.Target.Path.CanonicalString())
		assert.Equal(t, "", bq.Target.CollectionGroup)
		assert.False(t, bq.Target.IsCollectionGroupQuery())
	})

	t.Run("allDescendants selects a collection group", func(t *testing.T) {
		bq, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms","allDescendants":true}]}`, "")
		require.NoError(t, r.Err())
		assert.True(t, bq.Target.Path.IsEmpty())
		assert.Equal(t, "rooms", bq.Target.CollectionGroup)
		assert.True(t, bq.Target.IsCollectionGroupQuery())
	})

	t.Run("multiple selectors are unsupported", func(t *testing.T) {
		_, r := decodeTestQuery(t,
			`{"from":[{"collectionId":"a"},{"collectionId":"b"}]}`, "")
		assert.False(t, r.OK())
		assert.Contains(t, r.Message(), "single 'from' clause")
	})

	t.Run("missing from", func(t *testing.T) {
		_, r := decodeTestQuery(t, `{}`, "")
		assert.False(t, r.OK())
		assert.Contains(t, r.Message(), "'from' collection")
	})
}

func TestVerifyStructuredQuery(t *testing.T) {
	t.Run("select is unsupported", func(t *testing.T) {
		_, r := decodeTestQuery(t,
			`{"select":{},"from":[{"collectionId":"rooms"}]}`, "")
		assert.False(t, r.OK())
		assert.Contains(t, r.Message(), "'select'")
	})

	t.Run("offset is unsupported", func(t *testing.T) {
		_, r := decodeTestQuery(t,
			`{"from":[{"collectionId":"rooms"}],"offset":5}`, "")
		assert.False(t, r.OK())
		assert.Contains(t, r.Message(), "'offset'")
	})

	t.Run("not an object", func(t *testing.T) {
		_, r := decodeTestQuery(t, `"rooms"`, "")
		assert.False(t, r.OK())
	})
}

func TestDecodeWhere(t *testing.T) {
	t.Run("absent where is valid", func(t *testing.T) {
		bq, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}]}`, "")
		require.NoError(t, r.Err())
		assert.Empty(t, bq.Target.Filters)
	})

	t.Run("composite AND preserves source order", func(t *testing.T) {
		bq, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}],
			"where":{"compositeFilter":{"op":"AND","filters":[
				{"fieldFilter":{"field":{"fieldPath":"a"},"op":"EQUAL","value":{"integerValue":1}}},
				{"fieldFilter":{"field":{"fieldPath":"b"},"op":"IN","value":{"arrayValue":{"values":[{"integerValue":2}]}}}}
			]}}}`, "")
		require.NoError(t, r.Err())
		require.Len(t, bq.Target.Filters, 2)

		first := bq.Target.Filters[0].(query.FieldFilter)
		second := bq.Target.Filters[1].(query.FieldFilter)
		assert.Equal(t, "a", first.Field.String())
		assert.Equal(t, query.OperatorEqual, first.Op)
		assert.Equal(t, "b", second.Field.String())
		assert.Equal(t, query.OperatorIn, second.Op)
	})

	t.Run("composite OR is unsupported", func(t *testing.T) {
		_, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}],
			"where":{"compositeFilter":{"op":"OR","filters":[]}}}`, "")
		assert.False(t, r.OK())
		assert.Contains(t, r.Message(), "composite filters of type 'AND'")
	})

	t.Run("composite children must be field filters", func(t *testing.T) {
		_, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}],
			"where":{"compositeFilter":{"op":"AND","filters":[
				{"unaryFilter":{"field":{"fieldPath":"a"},"op":"IS_NAN"}}
			]}}}`, "")
		assert.False(t, r.OK())
		assert.Contains(t, r.Message(), "missing child 'fieldFilter'")
	})

	t.Run("single field filter", func(t *testing.T) {
		bq, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}],
			"where":{"fieldFilter":{"field":{"fieldPath":"name"},"op":"NOT_EQUAL","value":{"stringValue":"eros"}}}}`, "")
		require.NoError(t, r.Err())
		require.Len(t, bq.Target.Filters, 1)
		ff := bq.Target.Filters[0].(query.FieldFilter)
		assert.True(t, ff.EqualFilter(query.FieldFilter{
			Field: model.NewFieldPath("name"),
			Op:    query.OperatorNotEqual,
			Value: model.FromString("eros"),
		}))
	})

	t.Run("invalid operator", func(t *testing.T) {
		_, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}],
			"where":{"fieldFilter":{"field":{"fieldPath":"name"},"op":"RESEMBLES","value":{"stringValue":"x"}}}}`, "")
		assert.False(t, r.OK())
		assert.Contains(t, r.Message(), "operator in filter is not valid: RESEMBLES")
	})

	t.Run("unknown filter kind", func(t *testing.T) {
		_, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}],
			"where":{"spatialFilter":{}}}`, "")
		assert.False(t, r.OK())
		assert.Contains(t, r.Message(), "'where' does not have a valid filter")
	})
}

func TestDecodeUnaryFilter(t *testing.T) {
	cases := []struct {
		op    string
		want  query.Operator
		value model.Value
	}{
		{"IS_NAN", query.OperatorEqual, model.NaN()},
		{"IS_NULL", query.OperatorEqual, model.Null()},
		{"IS_NOT_NAN", query.OperatorNotEqual, model.NaN()},
		{"IS_NOT_NULL", query.OperatorNotEqual, model.Null()},
	}

	for _, tc := range cases {
		t.Run(tc.op, func(t *testing.T) {
			bq, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}],
				"where":{"unaryFilter":{"field":{"fieldPath":"f"},"op":"`+tc.op+`"}}}`, "")
			require.NoError(t, r.Err())
			require.Len(t, bq.Target.Filters, 1)
			ff := bq.Target.Filters[0].(query.FieldFilter)
			assert.True(t, ff.EqualFilter(query.FieldFilter{
				Field: model.NewFieldPath("f"),
				Op:    tc.want,
				Value: tc.value,
			}))
		})
	}

	t.Run("unknown operator leaves a failed, discardable decode", func(t *testing.T) {
		_, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}],
			"where":{"unaryFilter":{"field":{"fieldPath":"f"},"op":"BOGUS"}}}`, "")
		assert.False(t, r.OK())
		assert.Contains(t, r.Message(), "unexpected unary filter operator: BOGUS")
	})
}

func TestDecodeOrderBy(t *testing.T) {
	t.Run("direction defaults to ascending", func(t *testing.T) {
		bq, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}],
			"orderBy":[{"field":{"fieldPath":"name"}}]}`, "")
		require.NoError(t, r.Err())
		require.Len(t, bq.Target.OrderBys, 1)
		assert.Equal(t, query.Ascending, bq.Target.OrderBys[0].Dir)
	})

	t.Run("invalid direction fails the whole sequence", func(t *testing.T) {
		bq, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}],
			"orderBy":[
				{"field":{"fieldPath":"a"},"direction":"DESCENDING"},
				{"field":{"fieldPath":"b"},"direction":"SIDEWAYS"}
			]}`, "")
		assert.False(t, r.OK())
		assert.Contains(t, r.Message(), "'direction' value is invalid: SIDEWAYS")
		assert.Empty(t, bq.Target.OrderBys)
	})
}

func TestDecodeLimit(t *testing.T) {
	t.Run("absent means no limit", func(t *testing.T) {
		bq, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}]}`, "")
		require.NoError(t, r.Err())
		assert.Equal(t, query.NoLimit, bq.Target.Limit)
		assert.False(t, bq.Target.HasLimit())
	})

	t.Run("native integer", func(t *testing.T) {
		bq, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}],"limit":25}`, "")
		require.NoError(t, r.Err())
		assert.Equal(t, int32(25), bq.Target.Limit)
	})

	t.Run("numeric strings are rejected here", func(t *testing.T) {
		_, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}],"limit":"25"}`, "")
		assert.False(t, r.OK())
		assert.Contains(t, r.Message(), "'limit' is not encoded as a valid integer")
	})

	t.Run("fractional numbers are rejected", func(t *testing.T) {
		_, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}],"limit":2.5}`, "")
		assert.False(t, r.OK())
	})
}

func TestDecodeLimitType(t *testing.T) {
	t.Run("defaults to first", func(t *testing.T) {
		bq, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}]}`, "")
		require.NoError(t, r.Err())
		assert.Equal(t, query.LimitTypeFirst, bq.LimitType)
	})

	t.Run("last", func(t *testing.T) {
		bq, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}]}`, `,"limitType":"LAST"`)
		require.NoError(t, r.Err())
		assert.Equal(t, query.LimitTypeLast, bq.LimitType)
	})

	t.Run("unrecognized value fails", func(t *testing.T) {
		bq, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}]}`, `,"limitType":"MIDDLE"`)
		assert.False(t, r.OK())
		assert.Equal(t, query.LimitTypeNone, bq.LimitType)
	})
}

func TestDecodeBounds(t *testing.T) {
	t.Run("startAt with values", func(t *testing.T) {
		bq, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}],
			"startAt":{"before":true,"values":[{"integerValue":7}]}}`, "")
		require.NoError(t, r.Err())
		require.NotNil(t, bq.Target.StartAt)
		assert.True(t, bq.Target.StartAt.Equal(query.Bound{
			Position: []model.Value{model.FromInteger(7)},
			Before:   true,
		}))
		assert.Nil(t, bq.Target.EndAt)
	})

	t.Run("empty values behaves like an absent bound", func(t *testing.T) {
		withEmpty, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}],
			"startAt":{"values":[]}}`, "")
		require.NoError(t, r.Err())

		without, r2 := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}]}`, "")
		require.NoError(t, r2.Err())

		assert.Nil(t, withEmpty.Target.StartAt)
		assert.Equal(t, "", cmp.Diff(without.Target, withEmpty.Target))
	})

	t.Run("endAt defaults before to false", func(t *testing.T) {
		bq, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}],
			"endAt":{"values":[{"stringValue":"z"}]}}`, "")
		require.NoError(t, r.Err())
		require.NotNil(t, bq.Target.EndAt)
		assert.False(t, bq.Target.EndAt.Before)
	})

	t.Run("missing values array fails", func(t *testing.T) {
		_, r := decodeTestQuery(t, `{"from":[{"collectionId":"rooms"}],
			"startAt":{"before":true}}`, "")
		assert.False(t, r.OK())
	})
}

func TestDecodeDocumentMetadata(t *testing.T) {
	s := newTestSerializer()

	t.Run("full record", func(t *testing.T) {
		r := NewJSONReader()
		md := s.DecodeDocumentMetadata(r,
			`{"name":"`+testDocumentsPrefix+`/rooms/eros",
			  "readTime":"2021-03-15T10:00:00Z","exists":true,"queries":["q1","q2"]}`)
		require.NoError(t, r.Err())

		assert.Equal(t, "rooms/eros", md.Key.String())
		assert.Equal(t, mustTimestamp(t, 1615802400, 0), md.ReadTime.Timestamp)
		assert.True(t, md.Exists)
		assert.Equal(t, []string{"q1", "q2"}, md.Queries)
	})

	t.Run("foreign name is fatal for the record", func(t *testing.T) {
		r := NewJSONReader()
		md := s.DecodeDocumentMetadata(r,
			`{"name":"projects/elsewhere/databases/(default)/documents/rooms/eros",
			  "readTime":"2021-03-15T10:00:00Z","exists":true,"queries":[]}`)
		assert.False(t, r.OK())
		assert.Equal(t, BundledDocumentMetadata{}, md)
	})

	t.Run("non-string query name", func(t *testing.T) {
		r := NewJSONReader()
		md := s.DecodeDocumentMetadata(r,
			`{"name":"`+testDocumentsPrefix+`/rooms/eros",
			  "readTime":"2021-03-15T10:00:00Z","exists":true,"queries":["q1",7]}`)
		assert.False(t, r.OK())
		assert.Contains(t, r.Message(), "query name should be encoded as a string")
		assert.Equal(t, BundledDocumentMetadata{}, md)
	})
}

func TestDecodeDocument(t *testing.T) {
	s := newTestSerializer()

	t.Run("fields wrapper", func(t *testing.T) {
		r := NewJSONReader()
		doc := s.DecodeDocument(r,
			`{"name":"`+testDocumentsPrefix+`/rooms/eros",
			  "updateTime":{"seconds":1615802400,"nanos":0},
			  "fields":{"a":{"stringValue":"x"},"n":{"integerValue":"3"}}}`)
		require.NoError(t, r.Err())

		assert.Equal(t, "rooms/eros", doc.Document.Key.String())
		assert.Equal(t, model.DocumentStateSynced, doc.Document.State)

		want := model.FieldMap{}.
			Insert("a", model.FromString("x")).
			Insert("n", model.FromInteger(3))
		assert.True(t, doc.Document.Fields.Equal(want))
	})

	t.Run("top-level fields without a wrapper decode equivalently", func(t *testing.T) {
		r := NewJSONReader()
		bare := s.DecodeDocument(r,
			`{"name":"`+testDocumentsPrefix+`/rooms/eros",
			  "updateTime":"2021-03-15T10:00:00Z",
			  "a":{"stringValue":"x"}}`)
		require.NoError(t, r.Err())

		r = NewJSONReader()
		wrapped := s.DecodeDocument(r,
			`{"name":"`+testDocumentsPrefix+`/rooms/eros",
			  "updateTime":"2021-03-15T10:00:00Z",
			  "fields":{"a":{"stringValue":"x"}}}`)
		require.NoError(t, r.Err())

		assert.True(t, bare.Document.Fields.Equal(wrapped.Document.Fields))
		_, hasName := bare.Document.Fields.Get("name")
		assert.False(t, hasName, "envelope keys must not leak into the field map")
	})

	t.Run("invalid name never builds a key", func(t *testing.T) {
		r := NewJSONReader()
		doc := s.DecodeDocument(r,
			`{"name":"`+testDocumentsPrefix+`/rooms",
			  "updateTime":"2021-03-15T10:00:00Z","fields":{}}`)
		assert.False(t, r.OK())
		assert.Equal(t, BundleDocument{}, doc)
	})

	t.Run("malformed field value discards the record", func(t *testing.T) {
		r := NewJSONReader()
		doc := s.DecodeDocument(r,
			`{"name":"`+testDocumentsPrefix+`/rooms/eros",
			  "updateTime":"2021-03-15T10:00:00Z",
			  "fields":{"blob":{"bytesValue":"!!!"}}}`)
		assert.False(t, r.OK())
		assert.Equal(t, BundleDocument{}, doc)
	})
}
