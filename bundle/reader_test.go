// Copyright (C) Firelite, Inc. 2021-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bundle

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func parseObject(t *testing.T, data string) map[string]interface{} {
	t.Helper()

	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	var root interface{}
	require.NoError(t, dec.Decode(&root))

	object, ok := root.(map[string]interface{})
	require.True(t, ok, "fixture is not a JSON object: %s", data)
	return object
}

func TestJSONReaderStickyFirstFailure(t *testing.T) {
	r := NewJSONReader()
	require.True(t, r.OK())
	require.NoError(t, r.Err())

	r.Fail("first failure")
	r.Fail("second failure")
	r.FailCode(codes.NotFound, "third failure")

	assert.False(t, r.OK())
	assert.Equal(t, codes.InvalidArgument, r.Code())
	assert.Equal(t, "first failure", r.Message())

	err := r.Err()
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, err.Error(), "first failure")
}

func TestJSONReaderFailError(t *testing.T) {
	t.Run("plain error defaults to InvalidArgument", func(t *testing.T) {
		r := NewJSONReader()
		r.FailError(errors.New("boom"))
		assert.Equal(t, codes.InvalidArgument, r.Code())
		assert.Equal(t, "boom", r.Message())
	})

	t.Run("status error keeps its code", func(t *testing.T) {
		r := NewJSONReader()
		r.FailError(status.Error(codes.OutOfRange, "too big"))
		assert.Equal(t, codes.OutOfRange, r.Code())
	})
}

func TestJSONReaderRequireString(t *testing.T) {
	object := parseObject(t, `{"name":"rooms","count":1}`)

	r := NewJSONReader()
	assert.Equal(t, "rooms", r.RequireString("name", object))
	assert.True(t, r.OK())

	r = NewJSONReader()
	assert.Equal(t, "", r.RequireString("count", object))
	assert.False(t, r.OK())
	assert.Contains(t, r.Message(), "'count' is missing or is not a string")

	r = NewJSONReader()
	assert.Equal(t, "", r.RequireString("missing", object))
	assert.False(t, r.OK())
}

func TestJSONReaderRequireInt(t *testing.T) {
	cases := []struct {
		name  string
		json  string
		want  int64
		fails bool
	}{
		{"native integer", `{"v":42}`, 42, false},
		{"numeric string", `{"v":"42"}`, 42, false},
		{"negative string", `{"v":"-7"}`, -7, false},
		{"float number", `{"v":1.5}`, 0, true},
		{"exponent number", `{"v":1e3}`, 0, true},
		{"bad string", `{"v":"forty-two"}`, 0, true},
		{"boolean", `{"v":true}`, 0, true},
		{"missing", `{}`, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewJSONReader()
			got := r.RequireInt("v", parseObject(t, tc.json))
			assert.Equal(t, tc.want, got)
			assert.Equal(t, !tc.fails, r.OK())
		})
	}
}

func TestJSONReaderRequireDouble(t *testing.T) {
	cases := []struct {
		name  string
		json  string
		want  float64
		fails bool
	}{
		{"native double", `{"v":3.25}`, 3.25, false},
		{"native integer", `{"v":4}`, 4, false},
		{"exponent", `{"v":1e2}`, 100, false},
		{"decimal string", `{"v":"3.25"}`, 3.25, false},
		{"bad string", `{"v":"wide"}`, 0, true},
		{"array", `{"v":[]}`, 0, true},
		{"missing", `{}`, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewJSONReader()
			got := r.RequireDouble("v", parseObject(t, tc.json))
			assert.Equal(t, tc.want, got)
			assert.Equal(t, !tc.fails, r.OK())
		})
	}
}

func TestJSONReaderRequireArray(t *testing.T) {
	object := parseObject(t, `{"values":[1,2],"name":"x"}`)

	r := NewJSONReader()
	assert.Len(t, r.RequireArray("values", object), 2)
	assert.True(t, r.OK())

	r = NewJSONReader()
	assert.Nil(t, r.RequireArray("name", object))
	assert.False(t, r.OK())
	assert.Contains(t, r.Message(), "'name' is missing or is not an array")
}

func TestJSONReaderOptionalBool(t *testing.T) {
	object := parseObject(t, `{"yes":true,"no":false,"notBool":"true"}`)

	r := NewJSONReader()
	assert.True(t, r.OptionalBool("yes", object))
	assert.False(t, r.OptionalBool("no", object))
	assert.False(t, r.OptionalBool("notBool", object))
	assert.False(t, r.OptionalBool("missing", object))
	assert.True(t, r.OK())
}

func TestJSONReaderRequire(t *testing.T) {
	object := parseObject(t, `{"child":{"a":1}}`)

	r := NewJSONReader()
	assert.NotNil(t, r.Require("child", object))
	assert.True(t, r.OK())

	r = NewJSONReader()
	assert.Nil(t, r.Require("orphan", object))
	assert.False(t, r.OK())
	assert.Contains(t, r.Message(), "missing child 'orphan'")
}
