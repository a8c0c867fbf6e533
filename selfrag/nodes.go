package selfrag

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/redrussianarmy/self-rag/rag"
	"github.com/redrussianarmy/self-rag/tool"
)

// Node names.
const (
	NodeRetrieve       = "retrieve"
	NodeGradeDocuments = "grade_documents"
	NodeGenerate       = "generate"
	NodeWebSearch      = "websearch"
)

// retrieve replaces the documents with the store's results for the question.
func (w *Workflow) retrieve(ctx context.Context, state GraphState) (GraphState, error) {
	w.logger.Info("---RETRIEVE---")

	docs, err := call(ctx, w, CollaboratorDocumentStore, func(ctx context.Context) ([]rag.Document, error) {
		return w.retriever.Retrieve(ctx, state.Question)
	})
	if err != nil {
		return state, err
	}

	w.logger.Debug("retrieved %d documents", len(docs))
	state.Documents = docs
	return state, nil
}

// gradeDocuments keeps the relevant documents in their original order and
// requests a web search if any document was dropped.
func (w *Workflow) gradeDocuments(ctx context.Context, state GraphState) (GraphState, error) {
	w.logger.Info("---CHECK DOCUMENT RELEVANCE TO QUESTION---")

	verdicts, err := w.gradeAll(ctx, state.Question, state.Documents)
	if err != nil {
		return state, err
	}

	var filtered []rag.Document
	if state.Documents != nil {
		filtered = make([]rag.Document, 0, len(state.Documents))
	}
	for i, doc := range state.Documents {
		if verdicts[i] {
			w.logger.Info("---GRADE: DOCUMENT RELEVANT---")
			filtered = append(filtered, doc)
		} else {
			w.logger.Info("---GRADE: DOCUMENT NOT RELEVANT---")
		}
	}

	state.WebSearch = len(filtered) < len(state.Documents)
	state.Documents = filtered
	return state, nil
}

// gradeAll returns one verdict per document, index-aligned with docs.
func (w *Workflow) gradeAll(ctx context.Context, question string, docs []rag.Document) ([]bool, error) {
	verdicts := make([]bool, len(docs))
	grade := func(ctx context.Context, i int) error {
		ok, err := call(ctx, w, CollaboratorRelevance, func(ctx context.Context) (bool, error) {
			return w.relevance.Relevant(ctx, question, docs[i].Content)
		})
		if err != nil {
			return err
		}
		verdicts[i] = ok
		return nil
	}

	if w.opts.GradeConcurrency <= 1 || len(docs) <= 1 {
		for i := range docs {
			if err := grade(ctx, i); err != nil {
				return nil, err
			}
		}
		return verdicts, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.GradeConcurrency)
	for i := range docs {
		g.Go(func() error { return grade(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return verdicts, nil
}

// generate answers from the current documents and counts the attempt.
func (w *Workflow) generate(ctx context.Context, state GraphState) (GraphState, error) {
	w.logger.Info("---GENERATE---")

	generation, err := call(ctx, w, CollaboratorGenerator, func(ctx context.Context) (string, error) {
		return w.generator.Generate(ctx, state.Question, state.Documents)
	})
	if err != nil {
		return state, err
	}

	state.Generation = generation
	state.Attempts++
	return state, nil
}

// webSearch appends one synthetic document built from the search results.
// A failed search is logged and leaves the documents untouched.
func (w *Workflow) webSearch(ctx context.Context, state GraphState) (GraphState, error) {
	w.logger.Info("---WEB SEARCH---")

	results, err := call(ctx, w, CollaboratorWebSearch, func(ctx context.Context) ([]tool.SearchResult, error) {
		return w.searcher.Search(ctx, state.Question)
	})
	if err != nil {
		w.logger.Error("web search failed, continuing with %d documents: %v", len(state.Documents), err)
		w.metrics.webSearchFailed()
		return state, nil
	}

	state.Documents = append(slices.Clone(state.Documents), webDocument(results))
	return state, nil
}

// webDocument joins search results into a single document.
func webDocument(results []tool.SearchResult) rag.Document {
	blocks := make([]string, len(results))
	urls := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("Source: %s\n%s", r.URL, r.Content)
		urls[i] = r.URL
	}
	return rag.Document{
		Content: strings.Join(blocks, "\n\n"),
		Metadata: map[string]any{
			rag.MetadataSource: rag.SourceWebSearch,
			"urls":             urls,
		},
	}
}
