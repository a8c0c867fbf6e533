package rag

import (
	"context"
)

// Metadata keys and values shared by loaders, stores and the workflow.
const (
	// MetadataSource names where a document came from: a URL for ingested
	// pages or SourceWebSearch for search results.
	MetadataSource = "source"

	// MetadataTitle holds the page title extracted during ingestion.
	MetadataTitle = "title"

	// SourceWebSearch marks the synthetic document built from web results.
	SourceWebSearch = "web_search"
)

// Document represents a document or document chunk in the RAG system
type Document struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	Embedding []float32      `json:"embedding,omitempty"`
}

// Source returns the "source" metadata value, or "" when it is missing.
func (d Document) Source() string {
	if d.Metadata == nil {
		return ""
	}
	s, _ := d.Metadata[MetadataSource].(string)
	return s
}

// DocumentSearchResult represents a document search result with relevance score
type DocumentSearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// Retriever returns the documents most similar to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Document, error)
}

// Embedder defines the interface for generating embeddings
type Embedder interface {
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	GetDimension() int
}

// VectorStore stores embedded documents and answers nearest-neighbour queries.
type VectorStore interface {
	Add(ctx context.Context, docs []Document) error
	Search(ctx context.Context, query []float32, k int) ([]DocumentSearchResult, error)
}

// DocumentLoader produces raw documents for ingestion.
type DocumentLoader interface {
	Load(ctx context.Context) ([]Document, error)
}

// RetrievalConfig contains configuration for retrieval operations
type RetrievalConfig struct {
	K              int     `json:"k"`
	ScoreThreshold float64 `json:"score_threshold"`
}
