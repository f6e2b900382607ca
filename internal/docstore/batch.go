package docstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Batch collects writes and applies them with a single Commit.
type Batch struct {
	store  *Store
	writes []Write
}

// Len returns the number of queued writes.
func (b *Batch) Len() int {
	return len(b.writes)
}

func (b *Batch) Set(d *DocRef, data map[string]any) *Batch {
	b.writes = append(b.writes, d.setWrite(data))
	return b
}

func (b *Batch) Update(d *DocRef, fields map[string]any) *Batch {
	b.writes = append(b.writes, d.updateWrite(fields))
	return b
}

func (b *Batch) Delete(d *DocRef) *Batch {
	b.writes = append(b.writes, Write{Op: OpDelete, Collection: d.collection, ID: d.id})
	return b
}

func (b *Batch) AddToArray(d *DocRef, array string, value any) *Batch {
	b.writes = append(b.writes, d.transform(ArrayUnion(array, value)))
	return b
}

func (b *Batch) RemoveFromArray(d *DocRef, array string, value any) *Batch {
	b.writes = append(b.writes, d.transform(ArrayRemove(array, value)))
	return b
}

func (b *Batch) Increase(d *DocRef, field string, by int64) *Batch {
	b.writes = append(b.writes, d.transform(Increment(field, by)))
	return b
}

func (b *Batch) Decrease(d *DocRef, field string, by int64) *Batch {
	return b.Increase(d, field, -by)
}

// MoveAndReplaceValue removes oldValue from fromArray in from and adds
// newValue to toArray in to.
func (b *Batch) MoveAndReplaceValue(to *DocRef, toArray string, newValue any, from *DocRef, fromArray string, oldValue any) *Batch {
	b.RemoveFromArray(from, fromArray, oldValue)
	return b.AddToArray(to, toArray, newValue)
}

// MoveValue moves value between documents that keep it under the same array name.
func (b *Batch) MoveValue(from, to *DocRef, array string, value any) *Batch {
	return b.MoveAndReplaceValue(to, array, value, from, array, value)
}

// MoveBetweenArrays moves value from one array to another in the same document.
func (b *Batch) MoveBetweenArrays(d *DocRef, fromArray, toArray string, value any) *Batch {
	return b.MoveAndReplaceValue(d, toArray, value, d, fromArray, value)
}

// ReplaceInArray swaps oldValue for newValue in one array.
func (b *Batch) ReplaceInArray(d *DocRef, array string, oldValue, newValue any) *Batch {
	return b.MoveAndReplaceValue(d, array, newValue, d, array, oldValue)
}

// Commit applies the queued writes atomically. An empty batch is a no-op.
// The batch is reset on success.
func (b *Batch) Commit(ctx context.Context) error {
	if len(b.writes) == 0 {
		return nil
	}
	if err := b.store.commit(ctx, "batch", b.writes); err != nil {
		return fmt.Errorf("commit batch of %d writes: %w", len(b.writes), err)
	}
	b.store.logger.Debug("Batch committed", zap.Int("writes", len(b.writes)))
	b.writes = nil
	return nil
}
