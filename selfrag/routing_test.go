package selfrag

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redrussianarmy/self-rag/graph"
	"github.com/redrussianarmy/self-rag/rag"
)

func TestDecideToGenerate_ReadsOnlyWebSearchFlag(t *testing.T) {
	w := newWorkflow(t, &stubs{}, Options{})

	variants := []GraphState{
		{},
		{Question: "q", Documents: docs("a", "b"), Generation: "g", Attempts: 2},
		{Documents: docs()},
	}
	for i, base := range variants {
		t.Run(fmt.Sprintf("variant %d", i), func(t *testing.T) {
			on := base
			on.WebSearch = true
			label, err := w.decideToGenerate(context.Background(), on)
			require.NoError(t, err)
			assert.Equal(t, LabelWebSearch, label)
			assert.Equal(t, NodeWebSearch, documentsPathMap[label])

			off := base
			off.WebSearch = false
			label, err = w.decideToGenerate(context.Background(), off)
			require.NoError(t, err)
			assert.Equal(t, LabelGenerate, label)
			assert.Equal(t, NodeGenerate, documentsPathMap[label])
		})
	}
}

func TestGradeGeneration_VerdictMatrix(t *testing.T) {
	tests := []struct {
		grounded    bool
		useful      bool
		label       string
		next        string
		usefulCalls int
	}{
		{grounded: true, useful: true, label: LabelUseful, next: graph.END, usefulCalls: 1},
		{grounded: true, useful: false, label: LabelNotUseful, next: NodeWebSearch, usefulCalls: 1},
		{grounded: false, useful: true, label: LabelNotSupported, next: NodeGenerate, usefulCalls: 0},
		{grounded: false, useful: false, label: LabelNotSupported, next: NodeGenerate, usefulCalls: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("grounded=%v useful=%v", tt.grounded, tt.useful), func(t *testing.T) {
			s := &stubs{grounded: always(tt.grounded), useful: always(tt.useful)}
			w := newWorkflow(t, s, Options{})

			label, err := w.gradeGeneration(context.Background(), GraphState{
				Question: "q", Documents: docs("a"), Generation: "g", Attempts: 1,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.label, label)
			assert.Equal(t, tt.next, generationPathMap[label])
			assert.Equal(t, 1, s.groundedCalls)
			assert.Equal(t, tt.usefulCalls, s.usefulCalls)
		})
	}
}

func TestGradeGeneration_MaxRetries(t *testing.T) {
	state := GraphState{Question: "q", Generation: "g", Attempts: 3}

	tests := []struct {
		name     string
		grounded bool
		useful   bool
		want     string
	}{
		{"not supported at the limit", false, true, LabelMaxRetries},
		{"not useful at the limit", true, false, LabelMaxRetriesNotUseful},
		{"useful at the limit", true, true, LabelUseful},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &stubs{grounded: always(tt.grounded), useful: always(tt.useful)}
			w := newWorkflow(t, s, Options{MaxGenerations: 3})

			label, err := w.gradeGeneration(context.Background(), state)
			require.NoError(t, err)
			assert.Equal(t, tt.want, label)
			assert.Equal(t, graph.END, generationPathMap[tt.want])
		})
	}
}

func TestGradeGeneration_ClassifierErrors(t *testing.T) {
	w := newWorkflow(t, &stubs{}, Options{})
	w.groundedness = groundedFunc(func() (bool, error) { return false, fmt.Errorf("503") })

	_, err := w.gradeGeneration(context.Background(), GraphState{Attempts: 1})
	var ext *ExternalServiceError
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, CollaboratorGroundedness, ext.Collaborator)

	w = newWorkflow(t, &stubs{}, Options{})
	w.answerRelevance = resolvesFunc(func() (bool, error) { return false, fmt.Errorf("503") })

	_, err = w.gradeGeneration(context.Background(), GraphState{Attempts: 1})
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, CollaboratorAnswerRelevance, ext.Collaborator)
}

type groundedFunc func() (bool, error)

func (f groundedFunc) Grounded(context.Context, []rag.Document, string) (bool, error) { return f() }

type resolvesFunc func() (bool, error)

func (f resolvesFunc) Resolves(context.Context, string, string) (bool, error) { return f() }
