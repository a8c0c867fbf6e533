package selfrag

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redrussianarmy/self-rag/rag"
	"github.com/redrussianarmy/self-rag/tool"
)

func TestRetrieve_ReplacesDocuments(t *testing.T) {
	s := &stubs{docs: docs("a", "b")}
	w := newWorkflow(t, s, Options{})

	out, err := w.retrieve(context.Background(), GraphState{Question: "q", Documents: docs("old")})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, contents(out.Documents))
	assert.Equal(t, "q", out.Question)
}

func TestRetrieve_Error(t *testing.T) {
	s := &stubs{retrieveErr: errors.New("connection refused")}
	w := newWorkflow(t, s, Options{})

	_, err := w.retrieve(context.Background(), GraphState{Question: "q"})
	require.Error(t, err)

	var ext *ExternalServiceError
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, CollaboratorDocumentStore, ext.Collaborator)
	assert.Equal(t, KindFailure, ext.Kind)
	assert.ErrorIs(t, err, ErrExternalService)
	assert.NotErrorIs(t, err, ErrExternalTimeout)
}

func TestGradeDocuments_KeepsRelevantInOrder(t *testing.T) {
	tests := []struct {
		name      string
		input     []rag.Document
		relevant  map[string]bool
		want      []string
		webSearch bool
	}{
		{
			name:     "all relevant",
			input:    docs("a", "b", "c"),
			relevant: map[string]bool{"a": true, "b": true, "c": true},
			want:     []string{"a", "b", "c"},
		},
		{
			name:      "one irrelevant",
			input:     docs("a", "b", "c"),
			relevant:  map[string]bool{"a": true, "c": true},
			want:      []string{"a", "c"},
			webSearch: true,
		},
		{
			name:      "none relevant",
			input:     docs("a", "b"),
			relevant:  map[string]bool{},
			want:      []string{},
			webSearch: true,
		},
		{
			name:  "empty input",
			input: []rag.Document{},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &stubs{relevant: func(doc string) bool { return tt.relevant[doc] }}
			w := newWorkflow(t, s, Options{})

			out, err := w.gradeDocuments(context.Background(), GraphState{Question: "q", Documents: tt.input})
			require.NoError(t, err)
			assert.Equal(t, tt.want, contents(out.Documents))
			assert.NotNil(t, out.Documents)
			assert.Equal(t, tt.webSearch, out.WebSearch)
			assert.Equal(t, len(tt.input), s.relevanceCalls)
		})
	}
}

func TestGradeDocuments_NilStaysNil(t *testing.T) {
	s := &stubs{}
	w := newWorkflow(t, s, Options{})

	out, err := w.gradeDocuments(context.Background(), GraphState{Question: "q"})
	require.NoError(t, err)
	assert.Nil(t, out.Documents)
	assert.False(t, out.WebSearch)
	assert.Zero(t, s.relevanceCalls)
}

func TestGradeDocuments_Idempotent(t *testing.T) {
	s := &stubs{relevant: func(doc string) bool { return doc != "noise" }}
	w := newWorkflow(t, s, Options{})
	ctx := context.Background()

	first, err := w.gradeDocuments(ctx, GraphState{Question: "q", Documents: docs("a", "noise", "b")})
	require.NoError(t, err)
	require.True(t, first.WebSearch)

	second, err := w.gradeDocuments(ctx, first)
	require.NoError(t, err)
	assert.False(t, second.WebSearch)
	assert.Equal(t, first.Documents, second.Documents)
}

func TestGradeDocuments_ParallelPreservesOrder(t *testing.T) {
	input := docs("d0", "d1", "d2", "d3", "d4", "d5", "d6", "d7")
	s := &stubs{
		relevant: func(doc string) bool { return doc != "d2" && doc != "d5" },
		// later documents finish first
		relevanceDelay: func(doc string) time.Duration {
			return time.Duration(8-int(doc[1]-'0')) * 2 * time.Millisecond
		},
	}
	w := newWorkflow(t, s, Options{GradeConcurrency: 4})

	out, err := w.gradeDocuments(context.Background(), GraphState{Question: "q", Documents: input})
	require.NoError(t, err)
	assert.Equal(t, []string{"d0", "d1", "d3", "d4", "d6", "d7"}, contents(out.Documents))
	assert.True(t, out.WebSearch)
	assert.Equal(t, 8, s.relevanceCalls)
}

func TestGradeDocuments_Error(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		s := &stubs{relevanceErr: errors.New("rate limited")}
		w := newWorkflow(t, s, Options{GradeConcurrency: concurrency})

		_, err := w.gradeDocuments(context.Background(), GraphState{Question: "q", Documents: docs("a", "b")})
		var ext *ExternalServiceError
		require.ErrorAs(t, err, &ext)
		assert.Equal(t, CollaboratorRelevance, ext.Collaborator)
	}
}

func TestGenerate_CountsAttempts(t *testing.T) {
	s := &stubs{}
	w := newWorkflow(t, s, Options{})
	input := docs("a", "b")

	out, err := w.generate(context.Background(), GraphState{Question: "q", Documents: input, Attempts: 1})
	require.NoError(t, err)
	assert.Equal(t, "answer 1", out.Generation)
	assert.Equal(t, 2, out.Attempts)
	require.Len(t, s.generatedWith, 1)
	assert.Equal(t, input, s.generatedWith[0])
}

func TestGenerate_Timeout(t *testing.T) {
	s := &stubs{generateHook: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	w := newWorkflow(t, s, Options{CallTimeout: 20 * time.Millisecond})

	_, err := w.generate(context.Background(), GraphState{Question: "q"})
	var ext *ExternalServiceError
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, CollaboratorGenerator, ext.Collaborator)
	assert.Equal(t, KindTimeout, ext.Kind)
	assert.ErrorIs(t, err, ErrExternalTimeout)
	assert.ErrorIs(t, err, ErrExternalService)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWebSearch_AppendsSyntheticDocument(t *testing.T) {
	s := &stubs{results: []tool.SearchResult{
		{URL: "https://en.wikipedia.org/wiki/RAG", Content: "RAG is..."},
		{URL: "https://en.wikipedia.org/wiki/LLM", Content: "An LLM is..."},
	}}
	w := newWorkflow(t, s, Options{})

	prior := make([]rag.Document, 2, 8)
	copy(prior, docs("a", "b"))
	in := GraphState{Question: "q", Documents: prior}

	out, err := w.webSearch(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, out.Documents, 3)
	assert.Equal(t, prior, out.Documents[:2])
	web := out.Documents[2]
	assert.Equal(t,
		"Source: https://en.wikipedia.org/wiki/RAG\nRAG is...\n\nSource: https://en.wikipedia.org/wiki/LLM\nAn LLM is...",
		web.Content)
	assert.Equal(t, rag.SourceWebSearch, web.Source())

	// the caller's backing array is not written to
	assert.Len(t, in.Documents, 2)
	assert.Empty(t, prior[:3][2].Content)
}

func TestWebSearch_NilDocuments(t *testing.T) {
	s := &stubs{results: []tool.SearchResult{{URL: "https://x", Content: "x"}}}
	w := newWorkflow(t, s, Options{})

	out, err := w.webSearch(context.Background(), GraphState{Question: "q"})
	require.NoError(t, err)
	require.Len(t, out.Documents, 1)
	assert.Equal(t, rag.SourceWebSearch, out.Documents[0].Source())
}

func TestWebSearch_EmptyResults(t *testing.T) {
	s := &stubs{results: []tool.SearchResult{}}
	w := newWorkflow(t, s, Options{})

	out, err := w.webSearch(context.Background(), GraphState{Question: "q", Documents: docs("a")})
	require.NoError(t, err)
	require.Len(t, out.Documents, 2)
	assert.Empty(t, out.Documents[1].Content)
	assert.Equal(t, rag.SourceWebSearch, out.Documents[1].Source())
}

func TestWebSearch_FailureLeavesDocumentsUnchanged(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	s := &stubs{searchErr: errors.New("quota exceeded")}
	w := newWorkflow(t, s, Options{Metrics: metrics})
	ctx := context.Background()

	prior := docs("a", "b")
	out, err := w.webSearch(ctx, GraphState{Question: "q", Documents: prior})
	require.NoError(t, err)
	assert.Equal(t, prior, out.Documents)

	out, err = w.webSearch(ctx, GraphState{Question: "q"})
	require.NoError(t, err)
	assert.Nil(t, out.Documents)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.webSearchFailures))
}

func TestWebSearch_TimeoutIsRecovered(t *testing.T) {
	s := &stubs{}
	slow := searchFunc(func(ctx context.Context, _ string) ([]tool.SearchResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	w := newWorkflow(t, s, Options{CallTimeout: 10 * time.Millisecond})
	w.searcher = slow

	out, err := w.webSearch(context.Background(), GraphState{Question: "q", Documents: docs("a")})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, contents(out.Documents))
}

type searchFunc func(ctx context.Context, query string) ([]tool.SearchResult, error)

func (f searchFunc) Search(ctx context.Context, query string) ([]tool.SearchResult, error) {
	return f(ctx, query)
}

func TestWebDocument_Metadata(t *testing.T) {
	doc := webDocument([]tool.SearchResult{{URL: "https://a", Content: "A"}, {URL: "https://b", Content: "B"}})
	assert.Equal(t, []string{"https://a", "https://b"}, doc.Metadata["urls"])
	assert.Equal(t, 2, strings.Count(doc.Content, "Source: "))
}
