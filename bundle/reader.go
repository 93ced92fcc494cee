// Copyright (C) Firelite, Inc. 2021-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bundle

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// JSONReader accumulates the outcome of one record decode. The first
// recorded failure is sticky: later failures are dropped, and decode
// functions keep returning typed placeholder values so that a full decode
// composes without per-step error checks. Callers check OK (or Err) once,
// after the top-level decode returns, and discard the record if it failed.
//
// A JSONReader must not be shared across concurrent decodes.
type JSONReader struct {
	code codes.Code
	msg  string
}

// NewJSONReader returns a healthy reader for one record decode.
func NewJSONReader() *JSONReader {
	return &JSONReader{code: codes.OK}
}

// OK reports whether no failure has been recorded.
func (r *JSONReader) OK() bool { return r.code == codes.OK }

// Fail records a failure with codes.InvalidArgument. It is a no-op if a
// failure is already recorded.
func (r *JSONReader) Fail(msg string) {
	r.FailCode(codes.InvalidArgument, msg)
}

// Failf records a formatted failure with codes.InvalidArgument.
func (r *JSONReader) Failf(format string, args ...interface{}) {
	r.Fail(fmt.Sprintf(format, args...))
}

// FailCode records a failure with an explicit status code. It is a no-op if
// a failure is already recorded.
func (r *JSONReader) FailCode(code codes.Code, msg string) {
	if r.code != codes.OK {
		return
	}
	if code == codes.OK {
		code = codes.Unknown
	}
	r.code = code
	r.msg = msg
}

// FailError records the given error, preserving its status code if it
// carries one and classifying it as InvalidArgument otherwise.
func (r *JSONReader) FailError(err error) {
	code := codes.InvalidArgument
	if s, ok := status.FromError(err); ok {
		code = s.Code()
	}
	r.FailCode(code, err.Error())
}

// Code returns the recorded failure code, or codes.OK.
func (r *JSONReader) Code() codes.Code { return r.code }

// Message returns the recorded failure message.
func (r *JSONReader) Message() string { return r.msg }

// Err materializes the recorded failure as a status error, or nil if the
// decode succeeded.
func (r *JSONReader) Err() error {
	if r.code == codes.OK {
		return nil
	}
	return status.Error(r.code, r.msg)
}

// Require returns the named child of the object, recording a failure when it
// is absent.
func (r *JSONReader) Require(name string, object map[string]interface{}) interface{} {
	child, ok := object[name]
	if !ok {
		r.Failf("missing child '%s'", name)
		return nil
	}
	return child
}

// RequireString returns the named child as a string, recording a failure
// when it is absent or of the wrong type.
func (r *JSONReader) RequireString(name string, object map[string]interface{}) string {
	if child, ok := object[name]; ok {
		if s, ok := child.(string); ok {
			return s
		}
	}

	r.Failf("'%s' is missing or is not a string", name)
	return ""
}

// RequireArray returns the named child as an array, recording a failure when
// it is absent or of the wrong type.
func (r *JSONReader) RequireArray(name string, object map[string]interface{}) []interface{} {
	if child, ok := object[name]; ok {
		if a, ok := child.([]interface{}); ok {
			return a
		}
	}

	r.Failf("'%s' is missing or is not an array", name)
	return nil
}

// OptionalBool returns the named child if it is present and a boolean, and
// false otherwise. Absence and wrong types are not failures.
func (r *JSONReader) OptionalBool(name string, object map[string]interface{}) bool {
	b, ok := object[name].(bool)
	return ok && b
}

// RequireInt returns the named child as an int64. It accepts a native JSON
// integer or a base-10 numeric string; anything else records a failure and
// returns 0.
func (r *JSONReader) RequireInt(name string, object map[string]interface{}) int64 {
	if child, ok := object[name]; ok {
		switch v := child.(type) {
		case json.Number:
			if isJSONInteger(v) {
				i, err := strconv.ParseInt(string(v), 10, 64)
				if err != nil {
					r.Failf("failed to parse '%s' into an integer: %s", name, string(v))
					return 0
				}
				return i
			}
		case string:
			i, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				r.Failf("failed to parse '%s' into an integer: %s", name, v)
				return 0
			}
			return i
		}
	}

	r.Failf("'%s' is missing or is not an integer", name)
	return 0
}

// RequireDouble returns the named child as a float64. It accepts any native
// JSON number or a decimal numeric string; anything else records a failure
// and returns 0.
func (r *JSONReader) RequireDouble(name string, object map[string]interface{}) float64 {
	if child, ok := object[name]; ok {
		switch v := child.(type) {
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				r.Failf("failed to parse '%s' into a double: %s", name, string(v))
				return 0
			}
			return f
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				r.Failf("failed to parse '%s' into a double: %s", name, v)
				return 0
			}
			return f
		}
	}

	r.Failf("'%s' is missing or is not a double", name)
	return 0
}

// isJSONInteger reports whether the number literal has no fraction or
// exponent part.
func isJSONInteger(n json.Number) bool {
	return !strings.ContainsAny(string(n), ".eE")
}
