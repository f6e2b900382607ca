package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	existing := map[string]any{
		"name":  "list",
		"items": []any{"a", "b"},
		"count": int64(2),
	}

	tests := []struct {
		name    string
		current map[string]any
		exists  bool
		write   Write
		want    map[string]any
		wantErr error
	}{
		{
			name:   "Set overwrites",
			exists: true, current: existing,
			write: Write{Op: OpSet, Fields: map[string]any{"x": 1}},
			want:  map[string]any{"x": int64(1)},
		},
		{
			name:  "Set creates",
			write: Write{Op: OpSet, Fields: map[string]any{"ratio": 0.5}},
			want:  map[string]any{"ratio": 0.5},
		},
		{
			name:   "Update merges",
			exists: true, current: existing,
			write: Write{Op: OpUpdate, Fields: map[string]any{"name": "renamed"}},
			want:  map[string]any{"name": "renamed", "items": []any{"a", "b"}, "count": int64(2)},
		},
		{
			name:    "Update missing",
			write:   Write{Op: OpUpdate, Fields: map[string]any{"x": 1}},
			wantErr: ErrNotFound,
		},
		{
			name:   "Array union skips duplicates",
			exists: true, current: existing,
			write: Write{Op: OpUpdate, Transforms: []Transform{ArrayUnion("items", "b", "c")}},
			want:  map[string]any{"name": "list", "items": []any{"a", "b", "c"}, "count": int64(2)},
		},
		{
			name:   "Array union on missing field",
			exists: true, current: map[string]any{},
			write: Write{Op: OpUpdate, Transforms: []Transform{ArrayUnion("tags", 7)}},
			want:  map[string]any{"tags": []any{int64(7)}},
		},
		{
			name:   "Array remove",
			exists: true, current: existing,
			write: Write{Op: OpUpdate, Transforms: []Transform{ArrayRemove("items", "a", "zzz")}},
			want:  map[string]any{"name": "list", "items": []any{"b"}, "count": int64(2)},
		},
		{
			name:   "Increment",
			exists: true, current: existing,
			write: Write{Op: OpUpdate, Transforms: []Transform{Increment("count", -5)}},
			want:  map[string]any{"name": "list", "items": []any{"a", "b"}, "count": int64(-3)},
		},
		{
			name:   "Increment non-numeric starts at zero",
			exists: true, current: existing,
			write: Write{Op: OpUpdate, Transforms: []Transform{Increment("name", 3)}},
			want:  map[string]any{"name": int64(3), "items": []any{"a", "b"}, "count": int64(2)},
		},
		{
			name:   "Delete",
			exists: true, current: existing,
			write: Write{Op: OpDelete},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.current, tt.exists, tt.write)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply_DoesNotMutateCurrent(t *testing.T) {
	current := map[string]any{"items": []any{"a"}}
	_, err := Apply(current, true, Write{Op: OpUpdate, Transforms: []Transform{ArrayUnion("items", "b")}})
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, current["items"])
}

func TestApply_StructValuesCompareAfterNormalization(t *testing.T) {
	type member struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	current := map[string]any{"members": []any{map[string]any{"name": "Eva", "age": int64(30)}}}

	got, err := Apply(current, true, Write{Op: OpUpdate, Transforms: []Transform{
		ArrayRemove("members", member{Name: "Eva", Age: 30}),
	}})
	require.NoError(t, err)
	assert.Empty(t, got["members"])
}

func TestApply_UnencodableValue(t *testing.T) {
	_, err := Apply(nil, false, Write{Op: OpSet, Fields: map[string]any{"ch": make(chan int)}})
	assert.Error(t, err)
}
