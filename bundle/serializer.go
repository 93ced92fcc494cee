// Copyright (C) Firelite, Inc. 2021-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bundle decodes the portable bundle format: a sequence of
// independent JSON records (metadata, named queries, document metadata,
// documents) that seed the local cache without a network round trip.
//
// Each top-level decode takes its own JSONReader. Decode functions never
// abort; they record the first failure on the reader and keep returning
// typed placeholder values, so callers check the reader once when the record
// decode returns and discard the record if it failed.
package bundle

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/firelite-db/firelite-go/model"
	"github.com/firelite-db/firelite-go/query"
	"github.com/firelite-db/firelite-go/remote"
)

// Resource names decoded from a bundle carry the five segment
// projects/{p}/databases/{d}/documents header, which is verified against the
// local database and stripped.
const resourceNameHeaderSegments = 5

// Serializer decodes bundle records into model types. It holds only the
// remote serializer's immutable identity data and is safe to share across
// concurrent decodes, provided each decode uses its own JSONReader.
type Serializer struct {
	remote *remote.Serializer
}

// NewSerializer constructs a bundle Serializer on top of the wire serializer
// that owns the local database identity.
func NewSerializer(rs *remote.Serializer) *Serializer {
	return &Serializer{remote: rs}
}

// parse turns one record's text into a JSON object tree. Numbers are kept as
// json.Number so integer and double fields can be told apart.
func (s *Serializer) parse(r *JSONReader, data string) map[string]interface{} {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()

	var root interface{}
	if err := dec.Decode(&root); err != nil || dec.More() {
		r.Failf("failed to parse string into json: %s", data)
		return nil
	}

	object, ok := root.(map[string]interface{})
	if !ok {
		r.Failf("failed to parse string into json: %s", data)
		return nil
	}
	return object
}

// DecodeBundleMetadata decodes a bundle's metadata record.
func (s *Serializer) DecodeBundleMetadata(r *JSONReader, metadata string) BundleMetadata {
	object := s.parse(r, metadata)
	if object == nil {
		return BundleMetadata{}
	}

	return BundleMetadata{
		ID:             r.RequireString("id", object),
		Version:        uint32(r.RequireInt("version", object)),
		CreateTime:     s.decodeSnapshotVersion(r, r.Require("createTime", object)),
		TotalDocuments: uint32(r.RequireInt("totalDocuments", object)),
		TotalBytes:     uint64(r.RequireInt("totalBytes", object)),
	}
}

// DecodeNamedQuery decodes a named query record.
func (s *Serializer) DecodeNamedQuery(r *JSONReader, namedQuery string) NamedQuery {
	object := s.parse(r, namedQuery)
	if object == nil {
		return NamedQuery{}
	}

	return NamedQuery{
		Name:         r.RequireString("name", object),
		BundledQuery: s.decodeBundledQuery(r, r.Require("bundledQuery", object)),
		ReadTime:     s.decodeSnapshotVersion(r, r.Require("readTime", object)),
	}
}

// DecodeDocumentMetadata decodes a document existence record.
func (s *Serializer) DecodeDocumentMetadata(r *JSONReader, documentMetadata string) BundledDocumentMetadata {
	object := s.parse(r, documentMetadata)
	if object == nil {
		return BundledDocumentMetadata{}
	}

	path := s.decodeName(r, r.Require("name", object))
	// Return early if the name failed; a key is never built from an invalid
	// path.
	if !r.OK() {
		return BundledDocumentMetadata{}
	}
	key, err := model.DocumentKeyFromPath(path)
	if err != nil {
		r.FailError(err)
		return BundledDocumentMetadata{}
	}

	readTime := s.decodeSnapshotVersion(r, r.Require("readTime", object))
	exists := r.OptionalBool("exists", object)

	var queries []string
	for _, q := range r.RequireArray("queries", object) {
		name, ok := q.(string)
		if !ok {
			r.Fail("query name should be encoded as a string")
			return BundledDocumentMetadata{}
		}
		queries = append(queries, name)
	}

	return BundledDocumentMetadata{
		Key:      key,
		ReadTime: readTime,
		Exists:   exists,
		Queries:  queries,
	}
}

// DecodeDocument decodes a document record. The record is its own field map
// plus a name/updateTime envelope; an explicit 'fields' wrapper is accepted
// but not required at this level.
func (s *Serializer) DecodeDocument(r *JSONReader, document string) BundleDocument {
	object := s.parse(r, document)
	if object == nil {
		return BundleDocument{}
	}

	path := s.decodeName(r, r.Require("name", object))
	if !r.OK() {
		return BundleDocument{}
	}
	key, err := model.DocumentKeyFromPath(path)
	if err != nil {
		r.FailError(err)
		return BundleDocument{}
	}

	updateTime := s.decodeSnapshotVersion(r, r.Require("updateTime", object))
	fields := s.decodeDocumentFields(r, object)
	if !r.OK() {
		return BundleDocument{}
	}

	return BundleDocument{Document: model.Document{
		Key:     key,
		Version: updateTime,
		Fields:  fields,
		State:   model.DocumentStateSynced,
	}}
}

// decodeDocumentFields reads a document's field map. A 'fields' object is
// used when present; otherwise the document object itself is the field map,
// with the envelope keys skipped.
func (s *Serializer) decodeDocumentFields(r *JSONReader, document map[string]interface{}) model.FieldMap {
	if fields, ok := document["fields"]; ok {
		fieldsObject, ok := fields.(map[string]interface{})
		if !ok {
			r.Fail("document 'fields' is not a valid map")
			return model.FieldMap{}
		}
		return s.decodeFields(r, fieldsObject, 0)
	}

	m := model.FieldMap{}
	for name, value := range document {
		switch name {
		case "name", "createTime", "updateTime":
			continue
		}
		m = m.Insert(name, s.decodeValue(r, value, 0))
	}
	return m
}

// decodeName validates a fully qualified document name against the local
// database identity and strips the resource name header.
func (s *Serializer) decodeName(r *JSONReader, documentName interface{}) model.ResourcePath {
	name, ok := documentName.(string)
	if !ok {
		r.Fail("document name is not a string")
		return model.ResourcePath{}
	}

	path, err := model.ResourcePathFromString(name)
	if err != nil {
		r.FailError(err)
		return model.ResourcePath{}
	}
	if !s.remote.IsLocalResourceName(path) {
		r.Failf("resource name is not valid for current instance: %s", path.CanonicalString())
		return model.ResourcePath{}
	}
	return path.PopFirst(resourceNameHeaderSegments)
}

// decodeBundledQuery decodes the bundledQuery object of a named query
// record: the parent path, the reduced structuredQuery grammar, and the
// sibling limitType.
func (s *Serializer) decodeBundledQuery(r *JSONReader, value interface{}) BundledQuery {
	object, ok := value.(map[string]interface{})
	if !ok {
		r.Fail("'bundledQuery' is not encoded as a JSON object")
		return BundledQuery{}
	}

	structuredQuery := r.Require("structuredQuery", object)
	verifyStructuredQuery(r, structuredQuery)
	if !r.OK() {
		return BundledQuery{}
	}
	sq := structuredQuery.(map[string]interface{})

	parent := s.decodeName(r, r.Require("parent", object))
	parent, collectionGroup := s.decodeCollectionSource(r, sq["from"], parent)

	filters := s.decodeWhere(r, sq)
	orderBys := s.decodeOrderBy(r, sq)

	var startAt, endAt *query.Bound
	if b := s.decodeBound(r, sq, "startAt"); !b.IsEmpty() {
		startAt = &b
	}
	if b := s.decodeBound(r, sq, "endAt"); !b.IsEmpty() {
		endAt = &b
	}

	limit := s.decodeLimit(r, sq)
	limitType := s.decodeLimitType(r, object)

	return BundledQuery{
		Target: query.Target{
			Path:            parent,
			CollectionGroup: collectionGroup,
			Filters:         filters,
			OrderBys:        orderBys,
			Limit:           limit,
			StartAt:         startAt,
			EndAt:           endAt,
		},
		LimitType: limitType,
	}
}

// verifyStructuredQuery rejects the query features bundles do not support
// before any of the object is consumed.
func verifyStructuredQuery(r *JSONReader, value interface{}) {
	object, ok := value.(map[string]interface{})
	if !ok {
		r.Fail("'structuredQuery' is not an object as expected")
		return
	}
	if hasKey(object, "select") {
		r.Fail("queries with 'select' statements are not supported in bundles")
		return
	}
	if !hasKey(object, "from") {
		r.Fail("query does not have a 'from' collection")
		return
	}
	if hasKey(object, "offset") {
		r.Fail("queries with 'offset' are not supported in bundles")
		return
	}
}

// decodeCollectionSource consumes the single collection selector of the
// 'from' clause. allDescendants routes the collection id into the group
// slot; otherwise it extends the parent path. The two outcomes are mutually
// exclusive.
func (s *Serializer) decodeCollectionSource(r *JSONReader, from interface{}, parent model.ResourcePath) (model.ResourcePath, string) {
	selectors, ok := from.([]interface{})
	if !ok {
		r.Fail("query's 'from' clause is not an array")
		return parent, ""
	}
	if len(selectors) != 1 {
		r.Fail("only queries with a single 'from' clause are supported by the SDK")
		return parent, ""
	}
	selector, ok := selectors[0].(map[string]interface{})
	if !ok {
		r.Fail("'from' collection selector is not an object")
		return parent, ""
	}

	collectionID := r.RequireString("collectionId", selector)
	if r.OptionalBool("allDescendants", selector) {
		return parent, collectionID
	}
	return parent.Append(collectionID), ""
}

// decodeWhere decodes the optional 'where' clause into a filter list. The
// supported grammar is exactly: a compositeFilter of AND-ed fieldFilters, a
// single fieldFilter, or a single unaryFilter.
func (s *Serializer) decodeWhere(r *JSONReader, structuredQuery map[string]interface{}) query.FilterList {
	// Absent 'where' is a valid case.
	where, ok := structuredQuery["where"]
	if !ok {
		return nil
	}

	object, ok := where.(map[string]interface{})
	if !ok {
		r.Fail("query's 'where' clause is not a json object")
		return nil
	}

	var result query.FilterList
	switch {
	case hasKey(object, "compositeFilter"):
		return s.decodeCompositeFilter(r, object["compositeFilter"])
	case hasKey(object, "fieldFilter"):
		return result.Push(s.decodeFieldFilter(r, object["fieldFilter"]))
	case hasKey(object, "unaryFilter"):
		return result.Push(s.decodeUnaryFilter(r, object["unaryFilter"]))
	}

	r.Fail("'where' does not have a valid filter")
	return nil
}

// invalidFilter is the placeholder returned when a filter cannot be decoded.
// There is no constructible empty Filter, so the zero FieldFilter stands in;
// the sticky failure recorded alongside it guarantees it is never surfaced.
func invalidFilter() query.Filter {
	return query.FieldFilter{}
}

func (s *Serializer) decodeFieldFilter(r *JSONReader, value interface{}) query.Filter {
	object, ok := value.(map[string]interface{})
	if !ok {
		r.Fail("filter is not encoded as a JSON object")
		return invalidFilter()
	}

	path := s.decodeFieldReference(r, r.Require("field", object))
	op := decodeFieldFilterOperator(r, r.RequireString("op", object))
	filterValue := s.decodeValue(r, r.Require("value", object), 0)

	// Return early if the decode failed; the placeholder must not carry
	// partially decoded pieces.
	if !r.OK() {
		return invalidFilter()
	}
	return query.FieldFilter{Field: path, Op: op, Value: filterValue}
}

func (s *Serializer) decodeCompositeFilter(r *JSONReader, value interface{}) query.FilterList {
	object, ok := value.(map[string]interface{})
	if !ok {
		r.Fail("compositeFilter is not encoded as a JSON object")
		return nil
	}

	if r.RequireString("op", object) != "AND" {
		r.Fail("the SDK only supports composite filters of type 'AND'")
		return nil
	}

	var result query.FilterList
	for _, f := range r.RequireArray("filters", object) {
		child, ok := f.(map[string]interface{})
		if !ok {
			r.Fail("filter is not encoded as a JSON object")
			return nil
		}
		result = result.Push(s.decodeFieldFilter(r, r.Require("fieldFilter", child)))
		if !r.OK() {
			return nil
		}
	}
	return result
}

// decodeUnaryFilter maps the four unary operators onto field filters against
// a NaN or Null literal.
func (s *Serializer) decodeUnaryFilter(r *JSONReader, value interface{}) query.Filter {
	object, ok := value.(map[string]interface{})
	if !ok {
		r.Fail("unaryFilter is not encoded as a JSON object")
		return invalidFilter()
	}

	path := s.decodeFieldReference(r, r.Require("field", object))
	op := r.RequireString("op", object)
	if !r.OK() {
		return invalidFilter()
	}

	switch op {
	case "IS_NAN":
		return query.FieldFilter{Field: path, Op: query.OperatorEqual, Value: model.NaN()}
	case "IS_NULL":
		return query.FieldFilter{Field: path, Op: query.OperatorEqual, Value: model.Null()}
	case "IS_NOT_NAN":
		return query.FieldFilter{Field: path, Op: query.OperatorNotEqual, Value: model.NaN()}
	case "IS_NOT_NULL":
		return query.FieldFilter{Field: path, Op: query.OperatorNotEqual, Value: model.Null()}
	}

	r.Failf("unexpected unary filter operator: %s", op)
	return invalidFilter()
}

func (s *Serializer) decodeFieldReference(r *JSONReader, value interface{}) model.FieldPath {
	object, ok := value.(map[string]interface{})
	if !ok {
		r.Fail("'field' should be a JSON object, but it is not")
		return model.FieldPath{}
	}

	path, err := model.FieldPathFromServerFormat(r.RequireString("fieldPath", object))
	if err != nil {
		r.FailError(err)
		return model.FieldPath{}
	}
	return path
}

func decodeFieldFilterOperator(r *JSONReader, op string) query.Operator {
	switch op {
	case "LESS_THAN":
		return query.OperatorLessThan
	case "LESS_THAN_OR_EQUAL":
		return query.OperatorLessThanOrEqual
	case "EQUAL":
		return query.OperatorEqual
	case "NOT_EQUAL":
		return query.OperatorNotEqual
	case "GREATER_THAN":
		return query.OperatorGreaterThan
	case "GREATER_THAN_OR_EQUAL":
		return query.OperatorGreaterThanOrEqual
	case "ARRAY_CONTAINS":
		return query.OperatorArrayContains
	case "IN":
		return query.OperatorIn
	case "ARRAY_CONTAINS_ANY":
		return query.OperatorArrayContainsAny
	case "NOT_IN":
		return query.OperatorNotIn
	}

	r.Failf("operator in filter is not valid: %s", op)
	// Something has to be returned; the recorded failure suppresses it.
	return query.OperatorEqual
}

// decodeOrderBy decodes the optional orderBy clause. A bad direction string
// fails the whole sequence.
func (s *Serializer) decodeOrderBy(r *JSONReader, structuredQuery map[string]interface{}) query.OrderByList {
	if !hasKey(structuredQuery, "orderBy") {
		return nil
	}

	var result query.OrderByList
	for _, entry := range r.RequireArray("orderBy", structuredQuery) {
		object, ok := entry.(map[string]interface{})
		if !ok {
			r.Fail("orderBy entry is not encoded as a JSON object")
			return nil
		}

		path := s.decodeFieldReference(r, r.Require("field", object))

		direction := "ASCENDING"
		if hasKey(object, "direction") {
			direction = r.RequireString("direction", object)
		}
		if direction != "ASCENDING" && direction != "DESCENDING" {
			r.Failf("'direction' value is invalid: %s", direction)
			return nil
		}

		dir := query.Ascending
		if direction == "DESCENDING" {
			dir = query.Descending
		}
		result = result.Push(query.OrderBy{Field: path, Dir: dir})
	}
	return result
}

// decodeLimit reads the optional limit, which must be a native integer JSON
// number; numeric strings are not accepted here.
func (s *Serializer) decodeLimit(r *JSONReader, structuredQuery map[string]interface{}) int32 {
	value, ok := structuredQuery["limit"]
	if !ok {
		return query.NoLimit
	}

	number, ok := value.(json.Number)
	if !ok || !isJSONInteger(number) {
		r.Fail("'limit' is not encoded as a valid integer")
		return query.NoLimit
	}
	limit, err := strconv.ParseInt(string(number), 10, 32)
	if err != nil {
		r.Fail("'limit' is not encoded as a valid integer")
		return query.NoLimit
	}
	return int32(limit)
}

// decodeLimitType reads the limitType from the outer bundledQuery object,
// defaulting to FIRST.
func (s *Serializer) decodeLimitType(r *JSONReader, object map[string]interface{}) query.LimitType {
	limitType := "FIRST"
	if hasKey(object, "limitType") {
		limitType = r.RequireString("limitType", object)
	}

	switch limitType {
	case "FIRST":
		return query.LimitTypeFirst
	case "LAST":
		return query.LimitTypeLast
	}

	r.Fail("'limitType' is not encoded as a recognizable value")
	return query.LimitTypeNone
}

// decodeBound decodes a startAt/endAt bound. Emptiness of the decoded
// position list is the only signal for "no bound".
func (s *Serializer) decodeBound(r *JSONReader, structuredQuery map[string]interface{}, name string) query.Bound {
	value, ok := structuredQuery[name]
	if !ok {
		return query.Bound{}
	}

	object, ok := value.(map[string]interface{})
	if !ok {
		r.Failf("'%s' is not encoded as a JSON object", name)
		return query.Bound{}
	}

	before := r.OptionalBool("before", object)
	var position []model.Value
	for _, v := range r.RequireArray("values", object) {
		position = append(position, s.decodeValue(r, v, 0))
	}
	return query.Bound{Position: position, Before: before}
}
