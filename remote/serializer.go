// Copyright (C) Firelite, Inc. 2021-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package remote implements the translation between the engine's model types
// and their wire representation. Only the pieces consumed by bundle decoding
// live here: the database identity check and reference decoding.
package remote

import (
	"github.com/pkg/errors"

	"github.com/firelite-db/firelite-go/model"
)

// Fully qualified resource names carry a five segment header:
// projects/{project}/databases/{database}/documents.
const databaseRootSegments = 5

// Serializer converts between model types and their wire form for one
// database. It holds only immutable identity data and is safe to share
// across concurrent decodes.
type Serializer struct {
	databaseID model.DatabaseID
}

// NewSerializer constructs a Serializer for the given database.
func NewSerializer(databaseID model.DatabaseID) *Serializer {
	return &Serializer{databaseID: databaseID}
}

// DatabaseID returns the database this serializer encodes for.
func (s *Serializer) DatabaseID() model.DatabaseID { return s.databaseID }

// EncodedDatabaseID returns the canonical resource name prefix of the
// database, without the trailing "documents" segment.
func (s *Serializer) EncodedDatabaseID() string { return s.databaseID.String() }

// IsLocalResourceName reports whether the given fully qualified resource path
// belongs to this serializer's database: it must carry the five segment
// header and name this project and database.
func (s *Serializer) IsLocalResourceName(path model.ResourcePath) bool {
	if path.Size() < databaseRootSegments {
		return false
	}
	return path.Segment(0) == "projects" &&
		path.Segment(1) == s.databaseID.ProjectID &&
		path.Segment(2) == "databases" &&
		path.Segment(3) == s.databaseID.DatabaseID &&
		path.Segment(4) == "documents"
}

// DecodeReference turns a fully qualified reference string into a document
// reference, verifying that it addresses this database and that the local
// part is a valid document path. The returned key has the five segment
// header stripped.
func (s *Serializer) DecodeReference(ref string) (model.Reference, error) {
	path, err := model.ResourcePathFromString(ref)
	if err != nil {
		return model.Reference{}, errors.Wrap(err, "invalid reference")
	}
	if !s.IsLocalResourceName(path) {
		return model.Reference{}, errors.Errorf(
			"resource name is not valid for current instance: %s", path.CanonicalString())
	}

	key, err := model.DocumentKeyFromPath(path.PopFirst(databaseRootSegments))
	if err != nil {
		return model.Reference{}, errors.Wrapf(err, "reference does not name a document: %s", ref)
	}
	return model.Reference{Database: s.databaseID, Key: key}, nil
}
