// Package docstore is a document-store client: collections of JSON documents
// addressed by id, with merge updates, atomic field transforms and batched
// writes applied in a single commit.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/username/appkit/internal/metrics"
	"github.com/username/appkit/pkg/random"
)

// AutoIDLength is the length of ids generated by Collection.Add.
const AutoIDLength = 20

var (
	// ErrNotFound indicates a missing document.
	ErrNotFound = errors.New("document not found")
	// ErrNoUser is returned by user-scoped references when no user is signed in.
	ErrNoUser = errors.New("no signed-in user")
	// ErrInvalidPath rejects empty collection or document names.
	ErrInvalidPath = errors.New("collection and document names must not be empty")
)

// Document is a stored document. Numbers are int64 when integral, float64 otherwise.
type Document struct {
	ID   string
	Data map[string]any
}

// Backend persists documents. Commit applies all writes atomically in order.
type Backend interface {
	Get(ctx context.Context, collection, id string) (map[string]any, error)
	List(ctx context.Context, collection string) ([]Document, error)
	Commit(ctx context.Context, writes []Write) error
}

// Store is the entry point for collection and document references.
type Store struct {
	backend Backend
	userID  string
	logger  *zap.Logger
}

// New wraps a backend.
func New(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, logger: logger}
}

// SetUser records the signed-in user id used by UserCollection and UserDoc.
func (s *Store) SetUser(uid string) {
	s.userID = uid
}

// UserID returns the signed-in user id.
func (s *Store) UserID() string {
	return s.userID
}

// Collection references a collection by name.
func (s *Store) Collection(name string) *Collection {
	return &Collection{store: s, name: name}
}

// UserCollection references the collection named after the signed-in user.
func (s *Store) UserCollection() (*Collection, error) {
	if s.userID == "" {
		return nil, ErrNoUser
	}
	return s.Collection(s.userID), nil
}

// UserDoc references a document inside the signed-in user's collection.
func (s *Store) UserDoc(id string) (*DocRef, error) {
	c, err := s.UserCollection()
	if err != nil {
		return nil, err
	}
	return c.Doc(id), nil
}

// Batch starts a batch of writes.
func (s *Store) Batch() *Batch {
	return &Batch{store: s}
}

func (s *Store) commit(ctx context.Context, op string, writes []Write) error {
	for _, w := range writes {
		if w.Collection == "" || w.ID == "" {
			return ErrInvalidPath
		}
	}
	defer observe(ctx, op)()

	if err := s.backend.Commit(ctx, writes); err != nil {
		s.logger.Debug("Document write failed",
			zap.String("operation", op),
			zap.Int("writes", len(writes)),
			zap.Error(err))
		return err
	}
	return nil
}

func observe(ctx context.Context, operation string) func() {
	start := time.Now()
	return func() {
		metrics.ObserveDocstoreLatency(ctx, operation, start)
	}
}

// Collection is a named group of documents.
type Collection struct {
	store *Store
	name  string
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Doc references a document in the collection.
func (c *Collection) Doc(id string) *DocRef {
	return &DocRef{store: c.store, collection: c.name, id: id}
}

// List returns every document in the collection ordered by id.
func (c *Collection) List(ctx context.Context) ([]Document, error) {
	defer observe(ctx, "list")()
	docs, err := c.store.backend.List(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.name, err)
	}
	return docs, nil
}

// Add stores data under a generated id that is not yet used in the collection.
func (c *Collection) Add(ctx context.Context, data map[string]any) (*DocRef, error) {
	docs, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	id, err := random.UniqueString(AutoIDLength, ids)
	if err != nil {
		return nil, fmt.Errorf("generate id in %s: %w", c.name, err)
	}

	ref := c.Doc(id)
	if err := ref.Set(ctx, data); err != nil {
		return nil, err
	}
	return ref, nil
}

// GetMany returns the documents with the given ids that exist, in the order requested.
func (c *Collection) GetMany(ctx context.Context, ids []string) ([]Document, error) {
	defer observe(ctx, "get_many")()

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		data, err := c.store.backend.Get(ctx, c.name, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get %s/%s: %w", c.name, id, err)
		}
		docs = append(docs, Document{ID: id, Data: data})
	}
	return docs, nil
}

// DocRef addresses a single document.
type DocRef struct {
	store      *Store
	collection string
	id         string
}

func (d *DocRef) ID() string         { return d.id }
func (d *DocRef) Collection() string { return d.collection }
func (d *DocRef) Path() string       { return d.collection + "/" + d.id }

// Get returns the document data or ErrNotFound.
func (d *DocRef) Get(ctx context.Context) (map[string]any, error) {
	defer observe(ctx, "get")()
	data, err := d.store.backend.Get(ctx, d.collection, d.id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", d.Path(), err)
	}
	return data, nil
}

// Set creates or overwrites the document.
func (d *DocRef) Set(ctx context.Context, data map[string]any) error {
	return d.write(ctx, "set", d.setWrite(data))
}

// Update merges fields into an existing document.
func (d *DocRef) Update(ctx context.Context, fields map[string]any) error {
	return d.write(ctx, "update", d.updateWrite(fields))
}

// Delete removes the document. Deleting a missing document is not an error.
func (d *DocRef) Delete(ctx context.Context) error {
	return d.write(ctx, "delete", Write{Op: OpDelete, Collection: d.collection, ID: d.id})
}

// AddValue adds value to the array field unless an equal element is present.
func (d *DocRef) AddValue(ctx context.Context, array string, value any) error {
	return d.write(ctx, "array_union", d.transform(ArrayUnion(array, value)))
}

// RemoveValue removes every element equal to value from the array field.
func (d *DocRef) RemoveValue(ctx context.Context, array string, value any) error {
	return d.write(ctx, "array_remove", d.transform(ArrayRemove(array, value)))
}

// Increase adds by to the numeric field.
func (d *DocRef) Increase(ctx context.Context, field string, by int64) error {
	return d.write(ctx, "increment", d.transform(Increment(field, by)))
}

// Decrease subtracts by from the numeric field.
func (d *DocRef) Decrease(ctx context.Context, field string, by int64) error {
	return d.Increase(ctx, field, -by)
}

// ReplaceValue swaps oldValue for newValue in the array field in one commit.
func (d *DocRef) ReplaceValue(ctx context.Context, array string, oldValue, newValue any) error {
	b := d.store.Batch()
	b.ReplaceInArray(d, array, oldValue, newValue)
	return b.Commit(ctx)
}

func (d *DocRef) write(ctx context.Context, op string, w Write) error {
	if err := d.store.commit(ctx, op, []Write{w}); err != nil {
		return fmt.Errorf("%s %s: %w", op, d.Path(), err)
	}
	return nil
}

func (d *DocRef) setWrite(data map[string]any) Write {
	return Write{Op: OpSet, Collection: d.collection, ID: d.id, Fields: data}
}

func (d *DocRef) updateWrite(fields map[string]any) Write {
	return Write{Op: OpUpdate, Collection: d.collection, ID: d.id, Fields: fields}
}

func (d *DocRef) transform(t Transform) Write {
	return Write{Op: OpUpdate, Collection: d.collection, ID: d.id, Transforms: []Transform{t}}
}
