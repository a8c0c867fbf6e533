package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/redrussianarmy/self-rag/rag"
)

// DBPool is the subset of pgxpool.Pool used by PGVectorStore.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PGVectorOptions configures a PGVectorStore.
type PGVectorOptions struct {
	ConnString string
	TableName  string // Default "documents"
	Dimension  int    // Required by InitSchema
}

// PGVectorStore stores document chunks in PostgreSQL using the pgvector
// extension and ranks them by cosine distance.
type PGVectorStore struct {
	pool      DBPool
	embedder  rag.Embedder
	tableName string
	dimension int
}

var _ rag.VectorStore = (*PGVectorStore)(nil)

// NewPGVectorStore connects to Postgres and returns a store.
func NewPGVectorStore(ctx context.Context, embedder rag.Embedder, opts PGVectorOptions) (*PGVectorStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return NewPGVectorStoreWithPool(pool, embedder, opts.TableName, opts.Dimension), nil
}

// NewPGVectorStoreWithPool creates a store over an existing pool.
func NewPGVectorStoreWithPool(pool DBPool, embedder rag.Embedder, tableName string, dimension int) *PGVectorStore {
	if tableName == "" {
		tableName = "documents"
	}
	return &PGVectorStore{
		pool:      pool,
		embedder:  embedder,
		tableName: tableName,
		dimension: dimension,
	}
}

// InitSchema creates the vector extension and the documents table.
func (s *PGVectorStore) InitSchema(ctx context.Context) error {
	if s.dimension <= 0 {
		return fmt.Errorf("pgvector schema needs a positive dimension, got %d", s.dimension)
	}
	query := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			metadata JSONB,
			embedding vector(%d) NOT NULL
		);
	`, s.tableName, s.dimension)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *PGVectorStore) Close() {
	s.pool.Close()
}

// Add embeds and upserts documents.
func (s *PGVectorStore) Add(ctx context.Context, docs []rag.Document) error {
	vectors, err := embedMissing(ctx, s.embedder, docs)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, content, metadata, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding
	`, s.tableName)

	for i, doc := range docs {
		id := doc.ID
		if id == "" {
			id = uuid.NewString()
		}
		metadataJSON, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		if _, err := s.pool.Exec(ctx, query, id, doc.Content, metadataJSON, pgvector.NewVector(vectors[i])); err != nil {
			return fmt.Errorf("failed to insert document %s: %w", id, err)
		}
	}
	return nil
}

// Search returns the k nearest documents with score = 1 - cosine distance.
func (s *PGVectorStore) Search(ctx context.Context, query []float32, k int) ([]rag.DocumentSearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	sql := fmt.Sprintf(`
		SELECT id, content, metadata, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2
	`, s.tableName)

	rows, err := s.pool.Query(ctx, sql, pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var results []rag.DocumentSearchResult
	for rows.Next() {
		var (
			doc          rag.Document
			metadataJSON []byte
			score        float64
		)
		if err := rows.Scan(&doc.ID, &doc.Content, &metadataJSON, &score); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &doc.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		results = append(results, rag.DocumentSearchResult{Document: doc, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return results, nil
}
