package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/tmc/langchaingo/vectorstores"
)

type mockLCEmbedder struct {
	calls int
}

func (m *mockLCEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	res := make([][]float32, len(texts))
	for i := range texts {
		res[i] = []float32{0.1, 0.2}
	}
	return res, nil
}

func (m *mockLCEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	return []float32{0.1, 0.2}, nil
}

type mockLCStore struct {
	added []schema.Document
	found []schema.Document
	err   error
	k     int
}

func (m *mockLCStore) AddDocuments(_ context.Context, docs []schema.Document, _ ...vectorstores.Option) ([]string, error) {
	m.added = append(m.added, docs...)
	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = "lc-" + string(rune('a'+i))
	}
	return ids, nil
}

func (m *mockLCStore) SimilaritySearch(_ context.Context, _ string, k int, _ ...vectorstores.Option) ([]schema.Document, error) {
	m.k = k
	if m.err != nil {
		return nil, m.err
	}
	return m.found, nil
}

func TestLangChainEmbedder(t *testing.T) {
	ctx := context.Background()
	lcEmb := &mockLCEmbedder{}
	adapter := NewLangChainEmbedder(lcEmb)

	emb, err := adapter.EmbedDocument(ctx, "test")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, emb)

	embs, err := adapter.EmbedDocuments(ctx, []string{"test"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0.1, 0.2}}, embs)

	calls := lcEmb.calls
	assert.Equal(t, 2, adapter.GetDimension())
	assert.Equal(t, calls, lcEmb.calls, "dimension is cached after the first embedding")
}

func TestLangChainRetriever(t *testing.T) {
	ctx := context.Background()

	t.Run("converts documents", func(t *testing.T) {
		store := &mockLCStore{found: []schema.Document{
			{PageContent: "RAG combines retrieval with generation", Metadata: map[string]any{"source": "https://en.wikipedia.org/wiki/RAG"}},
			{PageContent: "no source"},
		}}
		r := NewLangChainRetriever(store, 0)

		docs, err := r.Retrieve(ctx, "what is rag")
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, 4, store.k)
		assert.Equal(t, "https://en.wikipedia.org/wiki/RAG", docs[0].Source())
		assert.Equal(t, "doc_1", docs[1].ID)
		assert.NotNil(t, docs[1].Metadata)
	})

	t.Run("empty result is not an error", func(t *testing.T) {
		r := NewLangChainRetriever(&mockLCStore{}, 2)
		docs, err := r.Retrieve(ctx, "q")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		boom := errors.New("connection refused")
		r := NewLangChainRetriever(&mockLCStore{err: boom}, 2)
		_, err := r.Retrieve(ctx, "q")
		assert.ErrorIs(t, err, boom)
	})
}

func TestLangChainVectorStore_AddAssignsIDs(t *testing.T) {
	store := &mockLCStore{}
	adapter := NewLangChainVectorStore(store)

	docs := []Document{{Content: "one"}, {ID: "keep", Content: "two"}}
	require.NoError(t, adapter.Add(context.Background(), docs))

	assert.Equal(t, "lc-a", docs[0].ID)
	assert.Equal(t, "keep", docs[1].ID)
	assert.Len(t, store.added, 2)
}

func TestSplitDocuments(t *testing.T) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(20),
		textsplitter.WithChunkOverlap(0),
	)
	docs := []Document{{
		Content:  strings.Repeat("word ", 20),
		Metadata: map[string]any{MetadataSource: "page"},
	}}

	chunks, err := SplitDocuments(splitter, docs)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), 20)
		assert.Equal(t, "page", c.Source())
	}

	chunks[0].Metadata["mutated"] = true
	_, leaked := docs[0].Metadata["mutated"]
	assert.False(t, leaked)
}

func TestDocumentSource(t *testing.T) {
	assert.Equal(t, "", Document{}.Source())
	assert.Equal(t, SourceWebSearch, Document{Metadata: map[string]any{MetadataSource: SourceWebSearch}}.Source())
}
