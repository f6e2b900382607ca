package jsonx

import (
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Object is a JSON object.
type Object struct {
	m      map[string]any
	logger *zap.Logger
}

// NewObject creates an empty object.
func NewObject(logger *zap.Logger) *Object {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Object{m: make(map[string]any), logger: logger}
}

// ParseObject decodes s, which must be a JSON object.
func ParseObject(s string, logger *zap.Logger) (*Object, error) {
	v, err := decode(s)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected object, got %T", ErrMalformed, v)
	}
	o := NewObject(logger)
	o.m = m
	return o, nil
}

// Map returns the underlying map. Changes to it are visible through o.
func (o *Object) Map() map[string]any {
	return o.m
}

func (o *Object) Has(key string) bool {
	_, ok := o.m[key]
	return ok
}

// Remove deletes key if present.
func (o *Object) Remove(key string) {
	delete(o.m, key)
}

func (o *Object) Len() int {
	return len(o.m)
}

// Keys returns the keys in sorted order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.m))
	for k := range o.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set stores v under key. *Object and *Array values are stored by content.
func (o *Object) Set(key string, v any) *Object {
	o.m[key] = unwrap(v)
	return o
}

func (o *Object) lookup(key string) (any, error) {
	v, ok := o.m[key]
	if !ok {
		return nil, fmt.Errorf("%w: key %q", ErrAbsent, key)
	}
	return v, nil
}

func (o *Object) String(key string) Lookup[string] {
	v, err := o.lookup(key)
	if err != nil {
		return failed[string](err)
	}
	return asString(v)
}

func (o *Object) Bool(key string) Lookup[bool] {
	v, err := o.lookup(key)
	if err != nil {
		return failed[bool](err)
	}
	return asBool(v)
}

func (o *Object) Int(key string) Lookup[int] {
	v, err := o.lookup(key)
	if err != nil {
		return failed[int](err)
	}
	return asInt(v)
}

func (o *Object) Long(key string) Lookup[int64] {
	v, err := o.lookup(key)
	if err != nil {
		return failed[int64](err)
	}
	return asLong(v)
}

func (o *Object) Float(key string) Lookup[float64] {
	v, err := o.lookup(key)
	if err != nil {
		return failed[float64](err)
	}
	return asFloat(v)
}

// Object returns the nested object under key. It shares storage with o.
func (o *Object) Object(key string) Lookup[*Object] {
	v, err := o.lookup(key)
	if err != nil {
		return failed[*Object](err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return failed[*Object](wrongType("object", v))
	}
	return found(&Object{m: m, logger: o.logger})
}

// Array returns the nested array under key. Appends to the result are not
// reflected in o; store it back with Set.
func (o *Object) Array(key string) Lookup[*Array] {
	v, err := o.lookup(key)
	if err != nil {
		return failed[*Array](err)
	}
	a, ok := v.([]any)
	if !ok {
		return failed[*Array](wrongType("array", v))
	}
	return found(&Array{a: a, logger: o.logger})
}

func (o *Object) StringOr(key, def string) string {
	return orDefault(o.logger, key, o.String(key), def)
}

func (o *Object) BoolOr(key string, def bool) bool {
	return orDefault(o.logger, key, o.Bool(key), def)
}

func (o *Object) IntOr(key string, def int) int {
	return orDefault(o.logger, key, o.Int(key), def)
}

func (o *Object) LongOr(key string, def int64) int64 {
	return orDefault(o.logger, key, o.Long(key), def)
}

func (o *Object) FloatOr(key string, def float64) float64 {
	return orDefault(o.logger, key, o.Float(key), def)
}

func (o *Object) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.m)
}

// Encode renders the object as compact JSON.
func (o *Object) Encode() string {
	b, err := o.MarshalJSON()
	if err != nil {
		o.logger.Warn("Failed to encode JSON object", zap.Error(err))
		return "{}"
	}
	return string(b)
}

func orDefault[T any](logger *zap.Logger, where string, l Lookup[T], def T) T {
	if l.Err != nil {
		logger.Warn("JSON lookup failed, using default",
			zap.String("at", where),
			zap.Error(l.Err))
		return def
	}
	return l.Value
}
