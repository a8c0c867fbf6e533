package selfrag

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/redrussianarmy/self-rag/graph"
	"github.com/redrussianarmy/self-rag/log"
	"github.com/redrussianarmy/self-rag/rag"
	"github.com/redrussianarmy/self-rag/tool"
)

// stubs implements every collaborator with scripted behaviour and call counts.
type stubs struct {
	mu sync.Mutex

	docs         []rag.Document
	retrieveErr  error
	retrieveHook func(ctx context.Context)

	relevant       func(doc string) bool
	relevanceDelay func(doc string) time.Duration
	relevanceErr   error
	relevanceCalls int

	generateHook  func(ctx context.Context) error
	generateCalls int
	generatedWith [][]rag.Document

	grounded      func(call int) bool
	groundedCalls int

	useful      func(call int) bool
	usefulCalls int

	results     []tool.SearchResult
	searchErr   error
	searchCalls int
}

func (s *stubs) Retrieve(ctx context.Context, _ string) ([]rag.Document, error) {
	if s.retrieveHook != nil {
		s.retrieveHook(ctx)
	}
	if s.retrieveErr != nil {
		return nil, s.retrieveErr
	}
	return slices.Clone(s.docs), nil
}

func (s *stubs) Relevant(ctx context.Context, _ string, doc string) (bool, error) {
	s.mu.Lock()
	s.relevanceCalls++
	s.mu.Unlock()

	if s.relevanceDelay != nil {
		time.Sleep(s.relevanceDelay(doc))
	}
	if s.relevanceErr != nil {
		return false, s.relevanceErr
	}
	if s.relevant == nil {
		return true, nil
	}
	return s.relevant(doc), nil
}

func (s *stubs) Generate(ctx context.Context, _ string, documents []rag.Document) (string, error) {
	s.generateCalls++
	s.generatedWith = append(s.generatedWith, slices.Clone(documents))
	if s.generateHook != nil {
		if err := s.generateHook(ctx); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("answer %d", s.generateCalls), nil
}

func (s *stubs) Grounded(context.Context, []rag.Document, string) (bool, error) {
	s.groundedCalls++
	if s.grounded == nil {
		return true, nil
	}
	return s.grounded(s.groundedCalls), nil
}

func (s *stubs) Resolves(context.Context, string, string) (bool, error) {
	s.usefulCalls++
	if s.useful == nil {
		return true, nil
	}
	return s.useful(s.usefulCalls), nil
}

func (s *stubs) Search(context.Context, string) ([]tool.SearchResult, error) {
	s.searchCalls++
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.results, nil
}

func always(v bool) func(int) bool {
	return func(int) bool { return v }
}

func newWorkflow(t *testing.T, s *stubs, opts Options) *Workflow {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = &log.NoOpLogger{}
	}
	w, err := New(Collaborators{
		Retriever:       s,
		Relevance:       s,
		Generator:       s,
		Groundedness:    s,
		AnswerRelevance: s,
		WebSearch:       s,
	}, opts)
	require.NoError(t, err)
	return w
}

func docs(contents ...string) []rag.Document {
	out := make([]rag.Document, len(contents))
	for i, c := range contents {
		out[i] = rag.Document{
			ID:       fmt.Sprintf("doc_%d", i),
			Content:  c,
			Metadata: map[string]any{rag.MetadataSource: "https://example.org/" + c},
		}
	}
	return out
}

func contents(documents []rag.Document) []string {
	out := make([]string, len(documents))
	for i, d := range documents {
		out[i] = d.Content
	}
	return out
}

// recordingStore wraps the in-memory checkpoint store and records calls.
type recordingStore struct {
	*graph.MemoryCheckpointStore
	mu      sync.Mutex
	saved   []*graph.Checkpoint
	cleared []string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryCheckpointStore: graph.NewMemoryCheckpointStore()}
}

func (r *recordingStore) Save(ctx context.Context, cp *graph.Checkpoint) error {
	r.mu.Lock()
	r.saved = append(r.saved, cp)
	r.mu.Unlock()
	return r.MemoryCheckpointStore.Save(ctx, cp)
}

func (r *recordingStore) Clear(ctx context.Context, runID string) error {
	r.mu.Lock()
	r.cleared = append(r.cleared, runID)
	r.mu.Unlock()
	return r.MemoryCheckpointStore.Clear(ctx, runID)
}
