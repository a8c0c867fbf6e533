package chains

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/redrussianarmy/self-rag/rag"
)

// Generator answers a question from retrieved context.
type Generator struct {
	model llms.Model
}

// NewGenerator creates a Generator over model.
func NewGenerator(model llms.Model) *Generator {
	return &Generator{model: model}
}

// Generate sends the question and every document, in order, to the model.
// An empty document list is valid; the prompt asks the model to admit it
// does not know.
func (g *Generator) Generate(ctx context.Context, question string, documents []rag.Document) (string, error) {
	prompt := fmt.Sprintf(ragPrompt, question, FormatDocuments(documents))

	resp, err := g.model.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		llms.WithTemperature(0),
	)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
