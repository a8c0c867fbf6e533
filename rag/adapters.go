package rag

import (
	"context"
	"fmt"
	"maps"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/tmc/langchaingo/vectorstores"
)

// convertSchemaDocuments converts langchaingo schema.Document to our Document type
func convertSchemaDocuments(schemaDocs []schema.Document) []Document {
	docs := make([]Document, len(schemaDocs))
	for i, schemaDoc := range schemaDocs {
		docs[i] = Document{
			Content:  schemaDoc.PageContent,
			Metadata: convertSchemaMetadata(schemaDoc.Metadata),
		}

		if source, ok := schemaDoc.Metadata[MetadataSource]; ok {
			docs[i].ID = fmt.Sprintf("%v#%d", source, i)
		} else {
			docs[i].ID = fmt.Sprintf("doc_%d", i)
		}
	}
	return docs
}

func convertSchemaMetadata(metadata map[string]any) map[string]any {
	result := make(map[string]any, len(metadata))
	maps.Copy(result, metadata)
	return result
}

func toSchemaDocuments(docs []Document) []schema.Document {
	out := make([]schema.Document, len(docs))
	for i, doc := range docs {
		out[i] = schema.Document{
			PageContent: doc.Content,
			Metadata:    convertSchemaMetadata(doc.Metadata),
		}
	}
	return out
}

// SplitDocuments splits documents with a langchaingo text splitter. Chunks
// inherit a copy of their parent's metadata.
func SplitDocuments(splitter textsplitter.TextSplitter, docs []Document) ([]Document, error) {
	chunks, err := textsplitter.SplitDocuments(splitter, toSchemaDocuments(docs))
	if err != nil {
		return nil, fmt.Errorf("failed to split documents: %w", err)
	}
	return convertSchemaDocuments(chunks), nil
}

// LangChainEmbedder adapts langchaingo's embeddings.Embedder to our Embedder interface
type LangChainEmbedder struct {
	embedder  embeddings.Embedder
	dimension int
}

var _ Embedder = (*LangChainEmbedder)(nil)

// NewLangChainEmbedder creates a new adapter for langchaingo embedders
func NewLangChainEmbedder(embedder embeddings.Embedder) *LangChainEmbedder {
	return &LangChainEmbedder{
		embedder: embedder,
	}
}

// EmbedDocument embeds a single text with the query embedding endpoint.
func (l *LangChainEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	embedding, err := l.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	l.dimension = len(embedding)
	return embedding, nil
}

// EmbedDocuments embeds multiple documents using the underlying langchaingo embedder
func (l *LangChainEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := l.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) > 0 {
		l.dimension = len(vectors[0])
	}
	return vectors, nil
}

// GetDimension returns the embedding dimension seen so far, probing the
// embedder once when nothing has been embedded yet.
func (l *LangChainEmbedder) GetDimension() int {
	if l.dimension > 0 {
		return l.dimension
	}
	sample, err := l.embedder.EmbedQuery(context.Background(), "test")
	if err != nil {
		return 0
	}
	l.dimension = len(sample)
	return l.dimension
}

// LangChainVectorStore adapts a langchaingo vector store for ingestion.
type LangChainVectorStore struct {
	store vectorstores.VectorStore
}

// NewLangChainVectorStore creates a new adapter for langchaingo vector stores
func NewLangChainVectorStore(store vectorstores.VectorStore) *LangChainVectorStore {
	return &LangChainVectorStore{
		store: store,
	}
}

// Add adds documents to the vector store, filling in the IDs it assigns.
func (l *LangChainVectorStore) Add(ctx context.Context, docs []Document) error {
	ids, err := l.store.AddDocuments(ctx, toSchemaDocuments(docs))
	if err != nil {
		return err
	}

	for i, id := range ids {
		if i < len(docs) && docs[i].ID == "" {
			docs[i].ID = id
		}
	}
	return nil
}

// LangChainRetriever adapts langchaingo's vectorstores.VectorStore to our Retriever interface
type LangChainRetriever struct {
	store vectorstores.VectorStore
	topK  int
}

var _ Retriever = (*LangChainRetriever)(nil)

// NewLangChainRetriever creates a new adapter for langchaingo vector stores as a retriever
func NewLangChainRetriever(store vectorstores.VectorStore, topK int) *LangChainRetriever {
	if topK <= 0 {
		topK = 4
	}
	return &LangChainRetriever{
		store: store,
		topK:  topK,
	}
}

// Retrieve retrieves documents based on a query
func (r *LangChainRetriever) Retrieve(ctx context.Context, query string) ([]Document, error) {
	docs, err := r.store.SimilaritySearch(ctx, query, r.topK)
	if err != nil {
		return nil, err
	}
	return convertSchemaDocuments(docs), nil
}
