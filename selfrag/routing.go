package selfrag

import (
	"context"

	"github.com/redrussianarmy/self-rag/graph"
)

// Route labels.
const (
	LabelWebSearch    = "websearch"
	LabelGenerate     = "generate"
	LabelUseful       = "useful"
	LabelNotUseful    = "not useful"
	LabelNotSupported = "not supported"
	LabelMaxRetries   = "max retries"

	// LabelMaxRetriesNotUseful ends a run whose last answer was grounded but
	// did not resolve the question.
	LabelMaxRetriesNotUseful = "max retries not useful"
)

var documentsPathMap = map[string]string{
	LabelWebSearch: NodeWebSearch,
	LabelGenerate:  NodeGenerate,
}

var generationPathMap = map[string]string{
	LabelNotSupported: NodeGenerate,
	LabelUseful:       graph.END,
	LabelNotUseful:    NodeWebSearch,
	LabelMaxRetries:   graph.END,

	LabelMaxRetriesNotUseful: graph.END,
}

// decideToGenerate reads only the web-search flag set by grading.
func (w *Workflow) decideToGenerate(_ context.Context, state GraphState) (string, error) {
	w.logger.Info("---ASSESS GRADED DOCUMENTS---")

	if state.WebSearch {
		w.logger.Info("---DECISION: NOT ALL DOCUMENTS ARE RELEVANT TO QUESTION, INCLUDE WEB SEARCH---")
		return LabelWebSearch, nil
	}
	w.logger.Info("---DECISION: GENERATE---")
	return LabelGenerate, nil
}

// gradeGeneration checks groundedness first and only then asks whether the
// answer resolves the question.
func (w *Workflow) gradeGeneration(ctx context.Context, state GraphState) (string, error) {
	w.logger.Info("---CHECK HALLUCINATIONS---")

	grounded, err := call(ctx, w, CollaboratorGroundedness, func(ctx context.Context) (bool, error) {
		return w.groundedness.Grounded(ctx, state.Documents, state.Generation)
	})
	if err != nil {
		return "", err
	}
	if !grounded {
		w.logger.Info("---DECISION: GENERATION IS NOT GROUNDED IN DOCUMENTS, RE-TRY---")
		return w.retryOr(state, LabelNotSupported, LabelMaxRetries), nil
	}

	w.logger.Info("---DECISION: GENERATION IS GROUNDED IN DOCUMENTS---")
	w.logger.Info("---GRADE GENERATION vs QUESTION---")

	useful, err := call(ctx, w, CollaboratorAnswerRelevance, func(ctx context.Context) (bool, error) {
		return w.answerRelevance.Resolves(ctx, state.Question, state.Generation)
	})
	if err != nil {
		return "", err
	}
	if useful {
		w.logger.Info("---DECISION: GENERATION ADDRESSES QUESTION---")
		return LabelUseful, nil
	}

	w.logger.Info("---DECISION: GENERATION DOES NOT ADDRESS QUESTION---")
	return w.retryOr(state, LabelNotUseful, LabelMaxRetriesNotUseful), nil
}

// retryOr returns label while generations remain, exhausted after.
func (w *Workflow) retryOr(state GraphState, label, exhausted string) string {
	if state.Attempts >= w.opts.MaxGenerations {
		w.logger.Warn("giving up after %d generations (%s), returning best-effort answer", state.Attempts, label)
		return exhausted
	}
	return label
}
