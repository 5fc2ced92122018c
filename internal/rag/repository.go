package rag

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

// DB is the subset of *pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PgRepository persists chunk embeddings in Postgres with pgvector, so a
// document indexed once survives restarts and is shared between replicas.
// The tables come from the migrations in internal/db/schema.
type PgRepository struct {
	db DB
}

func NewPgRepository(db DB) *PgRepository {
	return &PgRepository{db: db}
}

func (r *PgRepository) Indexed(ctx context.Context, documentID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM rag_document WHERE id = $1)`, documentID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PgRepository) Store(ctx context.Context, documentID string, chunks []Chunk) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}

	if err := r.store(ctx, tx, documentID, chunks); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *PgRepository) store(ctx context.Context, tx pgx.Tx, documentID string, chunks []Chunk) error {
	if _, err := tx.Exec(ctx, `DELETE FROM rag_document WHERE id = $1`, documentID); err != nil {
		return err
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO rag_document (id, chunk_count)
		VALUES ($1, $2)
	`, documentID, len(chunks))
	if err != nil {
		return err
	}

	for _, c := range chunks {
		_, err = tx.Exec(ctx, `
			INSERT INTO rag_chunk (document_id, chunk_index, content, embedding)
			VALUES ($1, $2, $3, $4)
		`, documentID, c.Index, c.Content, pgvector.NewVector(c.Embedding))
		if err != nil {
			return fmt.Errorf("insert chunk %d: %w", c.Index, err)
		}
	}
	return nil
}

// Search orders by cosine distance; Score is reported as cosine similarity.
func (r *PgRepository) Search(ctx context.Context, documentID string, embedding []float32, limit int) ([]ScoredChunk, error) {
	if limit <= 0 {
		limit = DefaultTopK
	}

	vec := pgvector.NewVector(embedding)

	rows, err := r.db.Query(ctx, `
		SELECT chunk_index, content, 1 - (embedding <=> $2) AS score
		FROM rag_chunk
		WHERE document_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`, documentID, vec, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []ScoredChunk
	for rows.Next() {
		c := ScoredChunk{Chunk: Chunk{DocumentID: documentID}}
		if err := rows.Scan(&c.Index, &c.Content, &c.Score); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}

	return chunks, rows.Err()
}

var _ VectorStore = (*PgRepository)(nil)
