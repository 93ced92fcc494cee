// Copyright (C) Firelite, Inc. 2021-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bundle

import (
	"github.com/firelite-db/firelite-go/model"
	"github.com/firelite-db/firelite-go/query"
)

// BundleMetadata describes a bundle as a whole: its id, schema version, the
// snapshot time it was created at, and the declared totals the loader uses
// for progress reporting.
type BundleMetadata struct {
	ID             string
	Version        uint32
	CreateTime     model.SnapshotVersion
	TotalDocuments uint32
	TotalBytes     uint64
}

// BundledQuery is a query stored in a bundle: the normalized target plus the
// limit direction the executor applies when materializing results.
type BundledQuery struct {
	Target    query.Target
	LimitType query.LimitType
}

// NamedQuery associates a client-visible name with a bundled query and the
// consistency point its results were read at.
type NamedQuery struct {
	Name         string
	BundledQuery BundledQuery
	ReadTime     model.SnapshotVersion
}

// BundledDocumentMetadata describes one document's membership in the bundle:
// whether it exists, when it was read, and which named queries returned it.
type BundledDocumentMetadata struct {
	Key      model.DocumentKey
	ReadTime model.SnapshotVersion
	Exists   bool
	Queries  []string
}

// BundleDocument is one materialized document carried by a bundle.
type BundleDocument struct {
	Document model.Document
}
