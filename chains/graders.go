package chains

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/redrussianarmy/self-rag/rag"
)

// DocumentGrader decides whether a retrieved passage is relevant to a question.
type DocumentGrader struct {
	grader binaryGrader
}

// NewDocumentGrader creates a relevance grader over model.
func NewDocumentGrader(model llms.Model) *DocumentGrader {
	return &DocumentGrader{grader: binaryGrader{
		model:       model,
		system:      retrievalGraderSystem,
		toolName:    "GradeDocuments",
		description: "Documents are relevant to the question",
	}}
}

// Relevant grades one passage.
func (g *DocumentGrader) Relevant(ctx context.Context, question, document string) (bool, error) {
	return g.grader.grade(ctx, fmt.Sprintf(retrievalGraderHuman, document, question))
}

// HallucinationGrader decides whether a generation is supported by the documents.
type HallucinationGrader struct {
	grader binaryGrader
}

// NewHallucinationGrader creates a groundedness grader over model.
func NewHallucinationGrader(model llms.Model) *HallucinationGrader {
	return &HallucinationGrader{grader: binaryGrader{
		model:       model,
		system:      hallucinationGraderSystem,
		toolName:    "GradeHallucinations",
		description: "Answer is grounded in the facts",
	}}
}

// Grounded grades a generation against the documents it was produced from.
func (g *HallucinationGrader) Grounded(ctx context.Context, documents []rag.Document, generation string) (bool, error) {
	return g.grader.grade(ctx, fmt.Sprintf(hallucinationGraderHuman, FormatDocuments(documents), generation))
}

// AnswerGrader decides whether a generation resolves the question.
type AnswerGrader struct {
	grader binaryGrader
}

// NewAnswerGrader creates an answer-relevance grader over model.
func NewAnswerGrader(model llms.Model) *AnswerGrader {
	return &AnswerGrader{grader: binaryGrader{
		model:       model,
		system:      answerGraderSystem,
		toolName:    "GradeAnswer",
		description: "Answer addresses the question",
	}}
}

// Resolves grades a generation against the question.
func (g *AnswerGrader) Resolves(ctx context.Context, question, generation string) (bool, error) {
	return g.grader.grade(ctx, fmt.Sprintf(answerGraderHuman, question, generation))
}

// FormatDocuments joins document contents with blank lines.
func FormatDocuments(documents []rag.Document) string {
	parts := make([]string, len(documents))
	for i, d := range documents {
		parts[i] = d.Content
	}
	return strings.Join(parts, "\n\n")
}
