package rag

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkTokens is the chunk length in tokens.
	DefaultChunkTokens = 250

	// DefaultEncoding is the tiktoken encoding chunks are measured in.
	DefaultEncoding = "cl100k_base"
)

var loadEncoding = sync.OnceValues(func() (*tiktoken.Tiktoken, error) {
	return tiktoken.GetEncoding(DefaultEncoding)
})

// CountTokens returns a counter of DefaultEncoding tokens. The encoding is
// fetched on first use and cached under TIKTOKEN_CACHE_DIR.
func CountTokens() (func(string) int, error) {
	tk, err := loadEncoding()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", DefaultEncoding, err)
	}
	return func(text string) int {
		return len(tk.EncodeOrdinary(text))
	}, nil
}

// NewChunkSplitter returns the recursive character splitter used for
// ingestion: DefaultChunkTokens tokens per chunk and no overlap.
func NewChunkSplitter() (textsplitter.TextSplitter, error) {
	count, err := CountTokens()
	if err != nil {
		return nil, err
	}
	return NewChunkSplitterWithCounter(count), nil
}

// NewChunkSplitterWithCounter is NewChunkSplitter with chunk length measured
// by count.
func NewChunkSplitterWithCounter(count func(string) int) textsplitter.TextSplitter {
	return textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(DefaultChunkTokens),
		textsplitter.WithChunkOverlap(0),
		textsplitter.WithLenFunc(count),
	)
}

// Ingest loads documents, splits them into chunks and adds the chunks to the
// store. It returns the number of chunks stored.
func Ingest(ctx context.Context, loader DocumentLoader, splitter textsplitter.TextSplitter, store VectorStore) (int, error) {
	docs, err := loader.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load documents: %w", err)
	}
	if splitter == nil {
		if splitter, err = NewChunkSplitter(); err != nil {
			return 0, err
		}
	}

	chunks, err := SplitDocuments(splitter, docs)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	if err := store.Add(ctx, chunks); err != nil {
		return 0, fmt.Errorf("failed to store %d chunks: %w", len(chunks), err)
	}
	return len(chunks), nil
}
