package store

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// MockEmbedder is an offline embedder for tests. Words are hashed into
// signed buckets and the vector is L2-normalized, so passages sharing words
// score closer. Text without letters or digits embeds to the zero vector.
type MockEmbedder struct {
	Dimension int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{Dimension: dimension}
}

func (e *MockEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.embed(text), nil
}

func (e *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.embed(text)
	}
	return out, nil
}

func (e *MockEmbedder) GetDimension() int {
	return e.Dimension
}

func (e *MockEmbedder) embed(text string) []float32 {
	vec := make([]float32, e.Dimension)
	if e.Dimension <= 0 {
		return vec
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		sum := h.Sum32()

		// high bit picks the sign so collisions tend to cancel
		if sum>>31 == 1 {
			vec[sum%uint32(e.Dimension)]--
		} else {
			vec[sum%uint32(e.Dimension)]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}
