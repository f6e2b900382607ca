package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// Op is the kind of a Write.
type Op int

const (
	// OpSet creates or overwrites a document.
	OpSet Op = iota
	// OpUpdate merges into an existing document.
	OpUpdate
	// OpDelete removes a document.
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpSet:
		return "set"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Write is a single document mutation. Transforms run after Fields are applied.
type Write struct {
	Op         Op
	Collection string
	ID         string
	Fields     map[string]any
	Transforms []Transform
}

// TransformKind selects a field transform.
type TransformKind int

const (
	TransformArrayUnion TransformKind = iota
	TransformArrayRemove
	TransformIncrement
)

// Transform is an atomic server-side field change.
type Transform struct {
	Kind   TransformKind
	Field  string
	Values []any
	Delta  int64
}

func ArrayUnion(field string, values ...any) Transform {
	return Transform{Kind: TransformArrayUnion, Field: field, Values: values}
}

func ArrayRemove(field string, values ...any) Transform {
	return Transform{Kind: TransformArrayRemove, Field: field, Values: values}
}

func Increment(field string, delta int64) Transform {
	return Transform{Kind: TransformIncrement, Field: field, Delta: delta}
}

// Apply computes the document that results from w. current is nil when the
// document does not exist. It returns nil when the document is deleted.
func Apply(current map[string]any, exists bool, w Write) (map[string]any, error) {
	var doc map[string]any

	switch w.Op {
	case OpDelete:
		return nil, nil
	case OpSet:
		doc = make(map[string]any, len(w.Fields))
	case OpUpdate:
		if !exists {
			return nil, ErrNotFound
		}
		doc = make(map[string]any, len(current)+len(w.Fields))
		for k, v := range current {
			doc[k] = v
		}
	default:
		return nil, fmt.Errorf("unknown write op %d", int(w.Op))
	}

	fields, err := normalizeMap(w.Fields)
	if err != nil {
		return nil, err
	}
	for k, v := range fields {
		doc[k] = v
	}

	for _, t := range w.Transforms {
		if err := applyTransform(doc, t); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func applyTransform(doc map[string]any, t Transform) error {
	switch t.Kind {
	case TransformArrayUnion, TransformArrayRemove:
		values, err := normalizeSlice(t.Values)
		if err != nil {
			return err
		}
		arr, _ := doc[t.Field].([]any)
		if t.Kind == TransformArrayUnion {
			doc[t.Field] = union(arr, values)
		} else {
			doc[t.Field] = remove(arr, values)
		}
	case TransformIncrement:
		doc[t.Field] = increment(doc[t.Field], t.Delta)
	default:
		return fmt.Errorf("unknown transform %d", int(t.Kind))
	}
	return nil
}

func union(arr, values []any) []any {
	out := append([]any{}, arr...)
	for _, v := range values {
		if indexOf(out, v) < 0 {
			out = append(out, v)
		}
	}
	return out
}

func remove(arr, values []any) []any {
	out := make([]any, 0, len(arr))
	for _, e := range arr {
		if indexOf(values, e) < 0 {
			out = append(out, e)
		}
	}
	return out
}

func indexOf(arr []any, v any) int {
	for i, e := range arr {
		if reflect.DeepEqual(e, v) {
			return i
		}
	}
	return -1
}

// increment treats a missing or non-numeric field as 0.
func increment(current any, delta int64) any {
	switch n := current.(type) {
	case int64:
		return n + delta
	case float64:
		return n + float64(delta)
	default:
		return delta
	}
}

// normalize converts v to the JSON value model used for stored documents so
// comparisons behave the same before and after a round trip through a backend.
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("value is not JSON-encodable: %w", err)
	}
	return decodeValue(raw)
}

func normalizeMap(m map[string]any) (map[string]any, error) {
	if len(m) == 0 {
		return map[string]any{}, nil
	}
	out, err := normalize(m)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

func normalizeSlice(s []any) ([]any, error) {
	out := make([]any, len(s))
	for i, v := range s {
		n, err := normalize(v)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// decodeValue parses JSON keeping integral numbers as int64.
func decodeValue(raw []byte) (any, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return fixNumbers(v), nil
}

// decodeDocument parses a stored JSON object.
func decodeDocument(raw []byte) (map[string]any, error) {
	v, err := decodeValue(raw)
	if err != nil {
		return nil, err
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("stored document is %T, not an object", v)
	}
	return doc, nil
}

func fixNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return f
	case map[string]any:
		for k, e := range x {
			x[k] = fixNumbers(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = fixNumbers(e)
		}
		return x
	default:
		return v
	}
}
