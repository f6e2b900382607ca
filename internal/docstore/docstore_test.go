package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return New(NewMemory(), nil)
}

func TestDocRef_SetGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	doc := newTestStore().Collection("lists").Doc("groceries")

	_, err := doc.Get(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, doc.Update(ctx, map[string]any{"x": 1}), ErrNotFound)

	require.NoError(t, doc.Set(ctx, map[string]any{"owner": "eva", "items": []string{"milk"}}))
	require.NoError(t, doc.Update(ctx, map[string]any{"shared": true}))

	data, err := doc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"owner": "eva", "items": []any{"milk"}, "shared": true}, data)

	// Returned maps are copies.
	data["owner"] = "mallory"
	again, err := doc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "eva", again["owner"])

	require.NoError(t, doc.Delete(ctx))
	require.NoError(t, doc.Delete(ctx))
	_, err = doc.Get(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocRef_ArrayAndCounterOps(t *testing.T) {
	ctx := context.Background()
	doc := newTestStore().Collection("lists").Doc("groceries")
	require.NoError(t, doc.Set(ctx, map[string]any{"items": []any{}, "visits": 0}))

	require.NoError(t, doc.AddValue(ctx, "items", "milk"))
	require.NoError(t, doc.AddValue(ctx, "items", "bread"))
	require.NoError(t, doc.AddValue(ctx, "items", "milk"))
	require.NoError(t, doc.RemoveValue(ctx, "items", "bread"))
	require.NoError(t, doc.ReplaceValue(ctx, "items", "milk", "oat milk"))

	require.NoError(t, doc.Increase(ctx, "visits", 5))
	require.NoError(t, doc.Decrease(ctx, "visits", 2))

	data, err := doc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{"oat milk"}, data["items"])
	assert.Equal(t, int64(3), data["visits"])

	missing := newTestStore().Collection("lists").Doc("nope")
	assert.ErrorIs(t, missing.AddValue(ctx, "items", "x"), ErrNotFound)
}

func TestBatch_MoveValueIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	todo := s.Collection("boards").Doc("todo")
	done := s.Collection("boards").Doc("done")
	require.NoError(t, todo.Set(ctx, map[string]any{"cards": []any{"a", "b"}}))
	require.NoError(t, done.Set(ctx, map[string]any{"cards": []any{}}))

	b := s.Batch()
	b.MoveValue(todo, done, "cards", "a")
	assert.Equal(t, 2, b.Len())
	require.NoError(t, b.Commit(ctx))
	assert.Equal(t, 0, b.Len())

	got, err := todo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{"b"}, got["cards"])
	got, err = done.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, got["cards"])

	// A failing write rolls back the whole batch.
	ghost := s.Collection("boards").Doc("ghost")
	b = s.Batch()
	b.RemoveFromArray(todo, "cards", "b")
	b.AddToArray(ghost, "cards", "b")
	assert.ErrorIs(t, b.Commit(ctx), ErrNotFound)

	got, err = todo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{"b"}, got["cards"])
}

func TestBatch_SameDocumentOperationsApplyInOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	doc := s.Collection("c").Doc("d")

	b := s.Batch()
	b.Set(doc, map[string]any{"a": []any{1}, "n": 1})
	b.MoveBetweenArrays(doc, "a", "b", 1)
	b.Increase(doc, "n", 1)
	b.MoveAndReplaceValue(doc, "c", "new", doc, "b", 1)
	require.NoError(t, b.Commit(ctx))

	data, err := doc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{}, "b": []any{}, "c": []any{"new"}, "n": int64(2)}, data)

	b = s.Batch()
	b.Update(doc, map[string]any{"n": 10}).Delete(doc)
	require.NoError(t, b.Commit(ctx))
	_, err = doc.Get(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Batch().Commit(ctx))
}

func TestCollection_ListAndGetMany(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	c := s.Collection("people")
	for _, id := range []string{"zoe", "adam", "eva"} {
		require.NoError(t, c.Doc(id).Set(ctx, map[string]any{"name": id}))
	}
	require.NoError(t, s.Collection("other").Doc("x").Set(ctx, map[string]any{}))

	docs, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "adam", docs[0].ID)
	assert.Equal(t, "zoe", docs[2].ID)

	many, err := c.GetMany(ctx, []string{"eva", "missing", "adam"})
	require.NoError(t, err)
	require.Len(t, many, 2)
	assert.Equal(t, "eva", many[0].ID)
	assert.Equal(t, "adam", many[1].ID)
}

func TestCollection_Add(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	c := s.Collection("notes")

	first, err := c.Add(ctx, map[string]any{"text": "a"})
	require.NoError(t, err)
	second, err := c.Add(ctx, map[string]any{"text": "b"})
	require.NoError(t, err)

	assert.Len(t, first.ID(), AutoIDLength)
	assert.NotEqual(t, first.ID(), second.ID())
	data, err := second.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", data["text"])
}

func TestStore_UserDoc(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	_, err := s.UserDoc("settings")
	assert.ErrorIs(t, err, ErrNoUser)

	s.SetUser("uid-42")
	doc, err := s.UserDoc("settings")
	require.NoError(t, err)
	assert.Equal(t, "uid-42/settings", doc.Path())
	require.NoError(t, doc.Set(ctx, map[string]any{"theme": "dark"}))

	data, err := s.Collection("uid-42").Doc("settings").Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", data["theme"])
}

func TestStore_InvalidPath(t *testing.T) {
	err := newTestStore().Collection("").Doc("x").Set(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidPath)
}
