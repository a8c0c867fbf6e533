package chains

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/redrussianarmy/self-rag/rag"
)

// scriptedLLM returns one scripted choice per call and records what it saw.
type scriptedLLM struct {
	choices  []*llms.ContentChoice
	err      error
	calls    int
	messages [][]llms.MessageContent
	options  []llms.CallOptions
}

func (m *scriptedLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, o := range options {
		o(&opts)
	}
	m.messages = append(m.messages, messages)
	m.options = append(m.options, opts)
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.choices) == 0 {
		return &llms.ContentResponse{}, nil
	}
	choice := m.choices[(m.calls-1)%len(m.choices)]
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{choice}}, nil
}

func (m *scriptedLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func toolChoice(args string) *llms.ContentChoice {
	return &llms.ContentChoice{ToolCalls: []llms.ToolCall{{
		ID:           "call_1",
		Type:         "function",
		FunctionCall: &llms.FunctionCall{Name: "grade", Arguments: args},
	}}}
}

func textOf(m llms.MessageContent) string {
	var out string
	for _, p := range m.Parts {
		if tc, ok := p.(llms.TextContent); ok {
			out += tc.Text
		}
	}
	return out
}

func TestDecodeVerdict(t *testing.T) {
	tests := []struct {
		name   string
		choice *llms.ContentChoice
		want   bool
	}{
		{"tool call yes", toolChoice(`{"binary_score":"yes"}`), true},
		{"tool call no", toolChoice(`{"binary_score":"no"}`), false},
		{"tool call bool", toolChoice(`{"binary_score":true}`), true},
		{"tool call upper", toolChoice(`{"binary_score":"YES"}`), true},
		{"legacy func call", &llms.ContentChoice{FuncCall: &llms.FunctionCall{Arguments: `{"binary_score":false}`}}, false},
		{"json in content", &llms.ContentChoice{Content: "Here you go: {\"binary_score\": \"yes\"}"}, true},
		{"bare answer", &llms.ContentChoice{Content: "No."}, false},
		{"bad tool call falls back to content", &llms.ContentChoice{
			Content:   "yes",
			ToolCalls: []llms.ToolCall{{FunctionCall: &llms.FunctionCall{Arguments: `{"score":1}`}}},
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeVerdict(tt.choice)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeVerdict_NoScore(t *testing.T) {
	_, err := decodeVerdict(&llms.ContentChoice{Content: "I am not sure about this one"})
	assert.ErrorIs(t, err, ErrNoScore)

	_, err = decodeVerdict(toolChoice(`{"binary_score":"maybe"}`))
	assert.ErrorIs(t, err, ErrNoScore)
}

func TestDocumentGrader(t *testing.T) {
	llm := &scriptedLLM{choices: []*llms.ContentChoice{toolChoice(`{"binary_score":"yes"}`)}}
	g := NewDocumentGrader(llm)

	ok, err := g.Relevant(context.Background(), "what is RAG?", "RAG combines retrieval with generation.")
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, llm.messages, 1)
	msgs := llm.messages[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, msgs[0].Role)
	assert.Contains(t, textOf(msgs[0]), "relevance of a retrieved document")
	assert.Contains(t, textOf(msgs[1]), "RAG combines retrieval with generation.")
	assert.Contains(t, textOf(msgs[1]), "User question: what is RAG?")

	opts := llm.options[0]
	require.Len(t, opts.Tools, 1)
	assert.Equal(t, "GradeDocuments", opts.Tools[0].Function.Name)
	assert.Zero(t, opts.Temperature)
	choice, ok := opts.ToolChoice.(llms.ToolChoice)
	require.True(t, ok)
	assert.Equal(t, "GradeDocuments", choice.Function.Name)
}

func TestHallucinationGrader(t *testing.T) {
	llm := &scriptedLLM{choices: []*llms.ContentChoice{toolChoice(`{"binary_score":false}`)}}
	g := NewHallucinationGrader(llm)

	docs := []rag.Document{{Content: "fact one"}, {Content: "fact two"}}
	ok, err := g.Grounded(context.Background(), docs, "made up")
	require.NoError(t, err)
	assert.False(t, ok)

	human := textOf(llm.messages[0][1])
	assert.Contains(t, human, "fact one\n\nfact two")
	assert.Contains(t, human, "LLM generation: made up")
	assert.Equal(t, "GradeHallucinations", llm.options[0].Tools[0].Function.Name)
}

func TestAnswerGrader(t *testing.T) {
	llm := &scriptedLLM{choices: []*llms.ContentChoice{{Content: `{"binary_score": "yes"}`}}}
	g := NewAnswerGrader(llm)

	ok, err := g.Resolves(context.Background(), "q?", "an answer")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "GradeAnswer", llm.options[0].Tools[0].Function.Name)
}

func TestGraders_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := NewDocumentGrader(&scriptedLLM{err: boom}).Relevant(ctx, "q", "d")
	assert.ErrorIs(t, err, boom)

	_, err = NewAnswerGrader(&scriptedLLM{}).Resolves(ctx, "q", "a")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = NewHallucinationGrader(&scriptedLLM{choices: []*llms.ContentChoice{{Content: "hmm"}}}).
		Grounded(ctx, nil, "a")
	assert.ErrorIs(t, err, ErrNoScore)
}

func TestGenerator(t *testing.T) {
	llm := &scriptedLLM{choices: []*llms.ContentChoice{{Content: "  RAG retrieves then generates.\n"}}}
	g := NewGenerator(llm)

	docs := []rag.Document{{Content: "first passage"}, {Content: "second passage"}}
	answer, err := g.Generate(context.Background(), "What is RAG?", docs)
	require.NoError(t, err)
	assert.Equal(t, "RAG retrieves then generates.", answer)

	require.Len(t, llm.messages[0], 1)
	prompt := textOf(llm.messages[0][0])
	assert.Contains(t, prompt, "Question: What is RAG?")
	assert.Contains(t, prompt, "Context: first passage\n\nsecond passage")
	assert.Empty(t, llm.options[0].Tools)
}

func TestGenerator_EmptyDocuments(t *testing.T) {
	llm := &scriptedLLM{choices: []*llms.ContentChoice{{Content: "I don't know."}}}
	answer, err := NewGenerator(llm).Generate(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "I don't know.", answer)
	assert.Contains(t, textOf(llm.messages[0][0]), "Context: \nAnswer:")
}

func TestGenerator_Errors(t *testing.T) {
	_, err := NewGenerator(&scriptedLLM{}).Generate(context.Background(), "q", nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)

	boom := errors.New("boom")
	_, err = NewGenerator(&scriptedLLM{err: boom}).Generate(context.Background(), "q", nil)
	assert.ErrorIs(t, err, boom)
}
