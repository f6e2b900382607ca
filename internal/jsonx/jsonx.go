// Package jsonx wraps decoded JSON objects and arrays with typed accessors.
// Accessors return a Lookup that tells an absent value apart from one of the
// wrong type; the *Or variants fall back to a default and log the reason.
package jsonx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	ErrAbsent    = errors.New("value is absent")
	ErrWrongType = errors.New("value has the wrong type")
	ErrMalformed = errors.New("malformed JSON")
)

// Lookup is the result of a typed access.
type Lookup[T any] struct {
	Value T
	Err   error
}

// OK reports whether the value was found with the requested type.
func (l Lookup[T]) OK() bool {
	return l.Err == nil
}

// Or returns the value, or def if the lookup failed.
func (l Lookup[T]) Or(def T) T {
	if l.Err != nil {
		return def
	}
	return l.Value
}

func found[T any](v T) Lookup[T] {
	return Lookup[T]{Value: v}
}

func failed[T any](err error) Lookup[T] {
	return Lookup[T]{Err: err}
}

func decode(s string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformed)
	}
	return v, nil
}

// ParseValue decodes any single JSON value. Numbers are json.Number.
func ParseValue(s string) (any, error) {
	return decode(s)
}

func wrongType(want string, v any) error {
	return fmt.Errorf("%w: want %s, have %T", ErrWrongType, want, v)
}

func asString(v any) Lookup[string] {
	if s, ok := v.(string); ok {
		return found(s)
	}
	return failed[string](wrongType("string", v))
}

func asBool(v any) Lookup[bool] {
	if b, ok := v.(bool); ok {
		return found(b)
	}
	return failed[bool](wrongType("bool", v))
}

func asLong(v any) Lookup[int64] {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return found(i)
		}
	case int:
		return found(int64(n))
	case int32:
		return found(int64(n))
	case int64:
		return found(n)
	case float64:
		if n == math.Trunc(n) && math.Abs(n) <= math.MaxInt64 {
			return found(int64(n))
		}
	}
	return failed[int64](wrongType("integer", v))
}

func asInt(v any) Lookup[int] {
	l := asLong(v)
	if l.Err != nil {
		return failed[int](l.Err)
	}
	if l.Value < math.MinInt32 || l.Value > math.MaxInt32 {
		return failed[int](fmt.Errorf("%w: %d overflows int", ErrWrongType, l.Value))
	}
	return found(int(l.Value))
}

func asFloat(v any) Lookup[float64] {
	switch n := v.(type) {
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return found(f)
		}
	case int:
		return found(float64(n))
	case int32:
		return found(float64(n))
	case int64:
		return found(float64(n))
	case float64:
		return found(n)
	}
	return failed[float64](wrongType("number", v))
}

// unwrap turns wrappers stored as values back into plain JSON values.
func unwrap(v any) any {
	switch x := v.(type) {
	case *Object:
		return x.m
	case *Array:
		return x.a
	default:
		return v
	}
}
