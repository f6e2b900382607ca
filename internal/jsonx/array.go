package jsonx

import (
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// Array is a JSON array.
type Array struct {
	a      []any
	logger *zap.Logger
}

// NewArray creates an empty array.
func NewArray(logger *zap.Logger) *Array {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Array{a: []any{}, logger: logger}
}

// ParseArray decodes s, which must be a JSON array.
func ParseArray(s string, logger *zap.Logger) (*Array, error) {
	v, err := decode(s)
	if err != nil {
		return nil, err
	}
	a, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %T", ErrMalformed, v)
	}
	arr := NewArray(logger)
	arr.a = a
	return arr, nil
}

func (a *Array) Len() int {
	return len(a.a)
}

// LastIndex returns Len()-1, or -1 for an empty array.
func (a *Array) LastIndex() int {
	return len(a.a) - 1
}

// Remove deletes the element at i.
func (a *Array) Remove(i int) error {
	if i < 0 || i >= len(a.a) {
		a.logger.Warn("Cannot remove, index out of range",
			zap.Int("index", i),
			zap.Int("last_index", a.LastIndex()))
		return fmt.Errorf("%w: index %d, last index %d", ErrAbsent, i, a.LastIndex())
	}
	a.a = append(a.a[:i], a.a[i+1:]...)
	return nil
}

// Append adds v at the end.
func (a *Array) Append(v any) *Array {
	a.a = append(a.a, unwrap(v))
	return a
}

// Insert places v at i, shifting later elements. i == Len() appends.
func (a *Array) Insert(i int, v any) error {
	if i < 0 || i > len(a.a) {
		return fmt.Errorf("%w: index %d, length %d", ErrAbsent, i, len(a.a))
	}
	a.a = append(a.a, nil)
	copy(a.a[i+1:], a.a[i:])
	a.a[i] = unwrap(v)
	return nil
}

func (a *Array) lookup(i int) (any, error) {
	if i < 0 || i >= len(a.a) {
		return nil, fmt.Errorf("%w: index %d, last index %d", ErrAbsent, i, a.LastIndex())
	}
	return a.a[i], nil
}

func (a *Array) String(i int) Lookup[string] {
	v, err := a.lookup(i)
	if err != nil {
		return failed[string](err)
	}
	return asString(v)
}

func (a *Array) Bool(i int) Lookup[bool] {
	v, err := a.lookup(i)
	if err != nil {
		return failed[bool](err)
	}
	return asBool(v)
}

func (a *Array) Int(i int) Lookup[int] {
	v, err := a.lookup(i)
	if err != nil {
		return failed[int](err)
	}
	return asInt(v)
}

func (a *Array) Long(i int) Lookup[int64] {
	v, err := a.lookup(i)
	if err != nil {
		return failed[int64](err)
	}
	return asLong(v)
}

func (a *Array) Float(i int) Lookup[float64] {
	v, err := a.lookup(i)
	if err != nil {
		return failed[float64](err)
	}
	return asFloat(v)
}

func (a *Array) Object(i int) Lookup[*Object] {
	v, err := a.lookup(i)
	if err != nil {
		return failed[*Object](err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return failed[*Object](wrongType("object", v))
	}
	return found(&Object{m: m, logger: a.logger})
}

func (a *Array) Array(i int) Lookup[*Array] {
	v, err := a.lookup(i)
	if err != nil {
		return failed[*Array](err)
	}
	inner, ok := v.([]any)
	if !ok {
		return failed[*Array](wrongType("array", v))
	}
	return found(&Array{a: inner, logger: a.logger})
}

func (a *Array) StringOr(i int, def string) string {
	return orDefault(a.logger, strconv.Itoa(i), a.String(i), def)
}

func (a *Array) BoolOr(i int, def bool) bool {
	return orDefault(a.logger, strconv.Itoa(i), a.Bool(i), def)
}

func (a *Array) IntOr(i int, def int) int {
	return orDefault(a.logger, strconv.Itoa(i), a.Int(i), def)
}

func (a *Array) LongOr(i int, def int64) int64 {
	return orDefault(a.logger, strconv.Itoa(i), a.Long(i), def)
}

func (a *Array) FloatOr(i int, def float64) float64 {
	return orDefault(a.logger, strconv.Itoa(i), a.Float(i), def)
}

func (a *Array) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.a)
}

// Encode renders the array as compact JSON.
func (a *Array) Encode() string {
	b, err := a.MarshalJSON()
	if err != nil {
		a.logger.Warn("Failed to encode JSON array", zap.Error(err))
		return "[]"
	}
	return string(b)
}
