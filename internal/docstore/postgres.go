package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PgxPool is the subset of pgxpool.Pool used by the PostgreSQL backend.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Postgres stores documents as JSONB rows keyed by (collection, id).
type Postgres struct {
	pool   PgxPool
	closer func()
	logger *zap.Logger
}

// NewPostgres connects to dsn and applies pending migrations.
func NewPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*Postgres, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := ApplyMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("Document store connected")
	return &Postgres{pool: pool, closer: pool.Close, logger: logger}, nil
}

// NewPostgresFromPool wraps an existing pool. Migrations are not applied.
func NewPostgresFromPool(pool PgxPool, logger *zap.Logger) *Postgres {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{pool: pool, logger: logger}
}

// Close releases the pool if it was opened by NewPostgres.
func (p *Postgres) Close() {
	if p.closer != nil {
		p.closer()
	}
}

const (
	selectDocument       = `SELECT data FROM documents WHERE collection=$1 AND id=$2`
	selectDocumentLocked = selectDocument + ` FOR UPDATE`
	listDocuments        = `SELECT id, data FROM documents WHERE collection=$1 ORDER BY id`
	deleteDocument       = `DELETE FROM documents WHERE collection=$1 AND id=$2`
	upsertDocument       = `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)
ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`
)

func (p *Postgres) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	var raw []byte
	if err := p.pool.QueryRow(ctx, selectDocument, collection, id).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select document: %w", err)
	}
	return decodeDocument(raw)
}

func (p *Postgres) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := p.pool.Query(ctx, listDocuments, collection)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		data, err := decodeDocument(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Commit applies writes in one transaction, locking each touched row.
func (p *Postgres) Commit(ctx context.Context, writes []Write) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	for _, w := range writes {
		if err := p.applyInTx(ctx, tx, w); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (p *Postgres) applyInTx(ctx context.Context, tx pgx.Tx, w Write) error {
	var (
		current map[string]any
		exists  = true
		raw     []byte
	)
	if err := tx.QueryRow(ctx, selectDocumentLocked, w.Collection, w.ID).Scan(&raw); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("select %s/%s: %w", w.Collection, w.ID, err)
		}
		exists = false
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
		if _, err := tx.Exec(ctx, deleteDocument, w.Collection, w.ID); err != nil {
			return fmt.Errorf("delete %s/%s: %w", w.Collection, w.ID, err)
		}
		return nil
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", w.Collection, w.ID, err)
	}
	if _, err := tx.Exec(ctx, upsertDocument, w.Collection, w.ID, string(encoded)); err != nil {
		return fmt.Errorf("upsert %s/%s: %w", w.Collection, w.ID, err)
	}
	return nil
}
