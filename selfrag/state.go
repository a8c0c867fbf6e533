package selfrag

import (
	"context"

	"github.com/redrussianarmy/self-rag/rag"
)

// GraphState is the record threaded through every step of a run.
//
// Documents distinguishes nil (nothing retrieved yet) from an empty slice
// (retrieval or grading left nothing). Nodes receive a copy and return the
// next value; slices are never appended to in place.
type GraphState struct {
	Question   string         `json:"question"`
	Documents  []rag.Document `json:"documents"`
	Generation string         `json:"generation"`
	WebSearch  bool           `json:"web_search"`
	Attempts   int            `json:"attempts"`
}

// Outcome is how a run terminated.
type Outcome string

const (
	// OutcomeAnswered means the answer was graded grounded and useful.
	OutcomeAnswered Outcome = "answered"

	// OutcomeUngrounded means the generation attempts ran out while the
	// answer was not supported by the documents. The answer is the last
	// generation, returned as a best effort.
	OutcomeUngrounded Outcome = "ungrounded"

	// OutcomeUnresolved means the attempts ran out on an answer that was
	// grounded but did not resolve the question.
	OutcomeUnresolved Outcome = "unresolved"
)

// Result is the terminal record of a run.
type Result struct {
	RunID     string
	Question  string
	Answer    string
	Outcome   Outcome
	Documents []rag.Document
	Attempts  int
	// Route lists the nodes executed, in order.
	Route []string
}

// RelevanceClassifier grades one retrieved passage against the question.
type RelevanceClassifier interface {
	Relevant(ctx context.Context, question, document string) (bool, error)
}

// AnswerGenerator produces an answer from the question and ordered passages.
type AnswerGenerator interface {
	Generate(ctx context.Context, question string, documents []rag.Document) (string, error)
}

// GroundednessClassifier decides whether an answer is supported by the passages.
type GroundednessClassifier interface {
	Grounded(ctx context.Context, documents []rag.Document, generation string) (bool, error)
}

// AnswerRelevanceClassifier decides whether an answer resolves the question.
type AnswerRelevanceClassifier interface {
	Resolves(ctx context.Context, question, generation string) (bool, error)
}
