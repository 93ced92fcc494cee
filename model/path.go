// Copyright (C) Firelite, Inc. 2021-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package model

import (
	"strings"

	"github.com/pkg/errors"
)

// ResourcePath is an immutable slash-separated path addressing a document or
// collection, e.g. "rooms/firelite/messages". The zero value is the empty
// path.
type ResourcePath struct {
	segments []string
}

// NewResourcePath constructs a path from the given segments. The slice is not
// copied; callers must not mutate it afterwards.
func NewResourcePath(segments ...string) ResourcePath {
	return ResourcePath{segments: segments}
}

// ResourcePathFromString parses a slash-separated path. Empty segments
// (consecutive slashes) are rejected; the empty string parses to the empty
// path.
func ResourcePathFromString(path string) (ResourcePath, error) {
	if path == "" {
		return ResourcePath{}, nil
	}

	segments := strings.Split(path, "/")
	for _, s := range segments {
		if s == "" {
			return ResourcePath{}, errors.Errorf("invalid path %q: paths must not contain empty segments", path)
		}
	}
	return ResourcePath{segments: segments}, nil
}

// Append returns a new path with segment added at the end. The receiver is
// unchanged; the underlying storage is never shared with a path that could
// observe the mutation.
func (p ResourcePath) Append(segment string) ResourcePath {
	out := make([]string, 0, len(p.segments)+1)
	out = append(out, p.segments...)
	out = append(out, segment)
	return ResourcePath{segments: out}
}

// PopFirst returns the path with the first n segments removed.
func (p ResourcePath) PopFirst(n int) ResourcePath {
	if n >= len(p.segments) {
		return ResourcePath{}
	}
	return ResourcePath{segments: p.segments[n:]}
}

// Size returns the number of segments.
func (p ResourcePath) Size() int { return len(p.segments) }

// IsEmpty reports whether the path has no segments.
func (p ResourcePath) IsEmpty() bool { return len(p.segments) == 0 }

// Segment returns the i-th segment.
func (p ResourcePath) Segment(i int) string { return p.segments[i] }

// LastSegment returns the final segment. The path must not be empty.
func (p ResourcePath) LastSegment() string { return p.segments[len(p.segments)-1] }

// CanonicalString returns the slash-separated form of the path.
func (p ResourcePath) CanonicalString() string { return strings.Join(p.segments, "/") }

// Equal reports whether two paths hold the same segments.
func (p ResourcePath) Equal(other ResourcePath) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

func (p ResourcePath) String() string { return p.CanonicalString() }

// FieldPath is an immutable dot-separated path addressing a field within a
// document, e.g. "address.city". The zero value is the empty path.
type FieldPath struct {
	segments []string
}

// NewFieldPath constructs a field path from the given segments. The slice is
// not copied; callers must not mutate it afterwards.
func NewFieldPath(segments ...string) FieldPath {
	return FieldPath{segments: segments}
}

// FieldPathFromServerFormat parses the server's field path wire format:
// dot-separated segments, where a segment may be quoted with backticks and a
// backslash escapes the next character inside a quoted segment.
func FieldPathFromServerFormat(path string) (FieldPath, error) {
	var segments []string
	var segment strings.Builder
	inBackticks := false

	finish := func() error {
		if segment.Len() == 0 {
			return errors.Errorf("invalid field path %q: empty segment", path)
		}
		segments = append(segments, segment.String())
		segment.Reset()
		return nil
	}

	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case c == '\\':
			if i+1 == len(path) {
				return FieldPath{}, errors.Errorf("invalid field path %q: trailing escape character", path)
			}
			i++
			segment.WriteByte(path[i])
		case c == '`':
			inBackticks = !inBackticks
		case c == '.' && !inBackticks:
			if err := finish(); err != nil {
				return FieldPath{}, err
			}
		default:
			segment.WriteByte(c)
		}
	}

	if inBackticks {
		return FieldPath{}, errors.Errorf("invalid field path %q: unterminated backtick quote", path)
	}
	if err := finish(); err != nil {
		return FieldPath{}, err
	}
	return FieldPath{segments: segments}, nil
}

// Size returns the number of segments.
func (p FieldPath) Size() int { return len(p.segments) }

// IsEmpty reports whether the path has no segments.
func (p FieldPath) IsEmpty() bool { return len(p.segments) == 0 }

// Segment returns the i-th segment.
func (p FieldPath) Segment(i int) string { return p.segments[i] }

// Equal reports whether two field paths hold the same segments.
func (p FieldPath) Equal(other FieldPath) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

func (p FieldPath) String() string { return strings.Join(p.segments, ".") }
