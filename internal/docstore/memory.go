package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

type docKey struct {
	collection string
	id         string
}

// Memory keeps documents in process. Documents are stored encoded so callers
// never share maps with the store.
type Memory struct {
	mu   sync.RWMutex
	docs map[docKey][]byte
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{docs: make(map[docKey][]byte)}
}

func (m *Memory) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	m.mu.RLock()
	raw, ok := m.docs[docKey{collection, id}]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return decodeDocument(raw)
}

func (m *Memory) List(ctx context.Context, collection string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []Document
	for k, raw := range m.docs {
		if k.collection != collection {
			continue
		}
		data, err := decodeDocument(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: k.id, Data: data})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Commit applies writes to a staged copy and swaps it in only if every write succeeds.
func (m *Memory) Commit(ctx context.Context, writes []Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := make(map[docKey][]byte, len(writes))
	deleted := make(map[docKey]bool)

	for _, w := range writes {
		key := docKey{w.Collection, w.ID}

		var current map[string]any
		raw, exists := staged[key]
		if !exists && !deleted[key] {
			raw, exists = m.docs[key]
		}
		if exists {
			var err error
			if current, err = decodeDocument(raw); err != nil {
				return err
			}
		}

		doc, err := Apply(current, exists, w)
		if err != nil {
			return fmt.Errorf("%s %s/%s: %w", w.Op, w.Collection, w.ID, err)
		}
		if doc == nil {
			delete(staged, key)
			deleted[key] = true
			continue
		}

		encoded, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode %s/%s: %w", w.Collection, w.ID, err)
		}
		staged[key] = encoded
		delete(deleted, key)
	}

	for key := range deleted {
		delete(m.docs, key)
	}
	for key, raw := range staged {
		m.docs[key] = raw
	}
	return nil
}
