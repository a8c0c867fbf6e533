package retriever

import (
	"context"
	"fmt"

	"github.com/redrussianarmy/self-rag/rag"
)

// VectorRetriever embeds the query and returns the nearest documents from a
// vector store.
type VectorRetriever struct {
	vectorStore rag.VectorStore
	embedder    rag.Embedder
	config      rag.RetrievalConfig
}

var _ rag.Retriever = (*VectorRetriever)(nil)

// NewVectorRetriever creates a new vector retriever. K defaults to 4; a zero
// ScoreThreshold keeps every hit.
func NewVectorRetriever(vectorStore rag.VectorStore, embedder rag.Embedder, config rag.RetrievalConfig) *VectorRetriever {
	if config.K <= 0 {
		config.K = 4
	}

	return &VectorRetriever{
		vectorStore: vectorStore,
		embedder:    embedder,
		config:      config,
	}
}

// Retrieve retrieves documents based on a query
func (r *VectorRetriever) Retrieve(ctx context.Context, query string) ([]rag.Document, error) {
	results, err := r.RetrieveWithConfig(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	docs := make([]rag.Document, len(results))
	for i, result := range results {
		docs[i] = result.Document
	}
	return docs, nil
}

// RetrieveWithConfig retrieves scored documents, overriding the retriever's
// configuration when config is non-nil.
func (r *VectorRetriever) RetrieveWithConfig(ctx context.Context, query string, config *rag.RetrievalConfig) ([]rag.DocumentSearchResult, error) {
	if config == nil {
		config = &r.config
	}
	k := config.K
	if k <= 0 {
		k = r.config.K
	}

	queryEmbedding, err := r.embedder.EmbedDocument(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := r.vectorStore.Search(ctx, queryEmbedding, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	if config.ScoreThreshold > 0 {
		filtered := make([]rag.DocumentSearchResult, 0, len(results))
		for _, result := range results {
			if result.Score >= config.ScoreThreshold {
				filtered = append(filtered, result)
			}
		}
		results = filtered
	}

	return results, nil
}
