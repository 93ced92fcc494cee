// Copyright (C) Firelite, Inc. 2021-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package model

import "github.com/pkg/errors"

// DatabaseID identifies a database within a project.
type DatabaseID struct {
	ProjectID  string
	DatabaseID string
}

// NewDatabaseID constructs a DatabaseID.
func NewDatabaseID(projectID, databaseID string) DatabaseID {
	return DatabaseID{ProjectID: projectID, DatabaseID: databaseID}
}

func (d DatabaseID) String() string {
	return "projects/" + d.ProjectID + "/databases/" + d.DatabaseID
}

// DocumentKey addresses a document by its resource path relative to the
// database root. A key's path always has an even, non-zero number of
// segments: alternating collection ids and document ids.
type DocumentKey struct {
	path ResourcePath
}

// DocumentKeyFromPath wraps a resource path into a key, rejecting paths that
// do not address a document. Keys are only ever constructed from valid paths.
func DocumentKeyFromPath(path ResourcePath) (DocumentKey, error) {
	if path.IsEmpty() || path.Size()%2 != 0 {
		return DocumentKey{}, errors.Errorf("invalid document key path: %q", path.CanonicalString())
	}
	return DocumentKey{path: path}, nil
}

// Path returns the key's resource path.
func (k DocumentKey) Path() ResourcePath { return k.path }

// CollectionID returns the id of the collection containing the document.
func (k DocumentKey) CollectionID() string { return k.path.Segment(k.path.Size() - 2) }

// DocumentID returns the document's id within its collection.
func (k DocumentKey) DocumentID() string { return k.path.LastSegment() }

// Equal reports whether two keys address the same document.
func (k DocumentKey) Equal(other DocumentKey) bool { return k.path.Equal(other.path) }

func (k DocumentKey) String() string { return k.path.CanonicalString() }

// DocumentState describes how up to date a locally stored document is.
type DocumentState int

const (
	// DocumentStateSynced marks a document whose local version matches the
	// version the server last reported.
	DocumentStateSynced DocumentState = iota
	// DocumentStateLocalMutations marks a document with unacknowledged local
	// writes applied on top of the synced version.
	DocumentStateLocalMutations
	// DocumentStateCommittedMutations marks a document with acknowledged
	// writes not yet reflected in a server snapshot.
	DocumentStateCommittedMutations
)

// Document is one materialized document: a key, the version it was read at,
// and its field map. Documents are immutable values.
type Document struct {
	Key     DocumentKey
	Version SnapshotVersion
	Fields  FieldMap
	State   DocumentState
}

// Field returns the value stored under the given top-level field name.
func (d Document) Field(name string) (Value, bool) { return d.Fields.Get(name) }
