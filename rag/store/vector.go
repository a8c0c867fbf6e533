package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/redrussianarmy/self-rag/rag"
)

// InMemoryVectorStore is a simple in-memory vector store implementation
type InMemoryVectorStore struct {
	mu         sync.RWMutex
	documents  []rag.Document
	embeddings [][]float32
	embedder   rag.Embedder
}

var _ rag.VectorStore = (*InMemoryVectorStore)(nil)

// NewInMemoryVectorStore creates a new InMemoryVectorStore
func NewInMemoryVectorStore(embedder rag.Embedder) *InMemoryVectorStore {
	return &InMemoryVectorStore{
		embedder: embedder,
	}
}

// Add embeds documents that carry no embedding and stores them. Documents
// are embedded in one batch call.
func (s *InMemoryVectorStore) Add(ctx context.Context, documents []rag.Document) error {
	vectors, err := embedMissing(ctx, s.embedder, documents)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, doc := range documents {
		if doc.ID == "" {
			doc.ID = fmt.Sprintf("mem_%d", len(s.documents))
		}
		doc.Embedding = nil
		s.documents = append(s.documents, doc)
		s.embeddings = append(s.embeddings, vectors[i])
	}
	return nil
}

// Search performs similarity search
func (s *InMemoryVectorStore) Search(ctx context.Context, queryEmbedding []float32, k int) ([]rag.DocumentSearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]rag.DocumentSearchResult, len(s.documents))
	for i, docEmb := range s.embeddings {
		results[i] = rag.DocumentSearchResult{
			Document: s.documents[i],
			Score:    cosineSimilarity32(queryEmbedding, docEmb),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Len returns the number of stored documents.
func (s *InMemoryVectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// embedMissing returns one vector per document, calling the embedder only for
// documents without a precomputed embedding.
func embedMissing(ctx context.Context, embedder rag.Embedder, documents []rag.Document) ([][]float32, error) {
	vectors := make([][]float32, len(documents))
	var texts []string
	var missing []int
	for i, doc := range documents {
		if len(doc.Embedding) > 0 {
			vectors[i] = doc.Embedding
			continue
		}
		texts = append(texts, doc.Content)
		missing = append(missing, i)
	}
	if len(missing) == 0 {
		return vectors, nil
	}
	if embedder == nil {
		return nil, fmt.Errorf("no embedder configured and %d documents have no embedding", len(missing))
	}

	embedded, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(embedded) != len(missing) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d documents", len(embedded), len(missing))
	}
	for j, i := range missing {
		vectors[i] = embedded[j]
	}
	return vectors, nil
}

// cosineSimilarity32 calculates cosine similarity between two float32 vectors
func cosineSimilarity32(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
