package selfrag

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/redrussianarmy/self-rag/graph"
	"github.com/redrussianarmy/self-rag/log"
	"github.com/redrussianarmy/self-rag/rag"
	"github.com/redrussianarmy/self-rag/tool"
)

const (
	// DefaultMaxGenerations bounds GENERATE executions per run.
	DefaultMaxGenerations = 3

	// DefaultCallTimeout applies to every collaborator call.
	DefaultCallTimeout = 60 * time.Second
)

// Collaborators are the external services a workflow calls.
type Collaborators struct {
	Retriever       rag.Retriever
	Relevance       RelevanceClassifier
	Generator       AnswerGenerator
	Groundedness    GroundednessClassifier
	AnswerRelevance AnswerRelevanceClassifier
	WebSearch       tool.WebSearcher
}

// Options tunes a workflow. Zero values select the defaults.
type Options struct {
	// MaxGenerations caps GENERATE executions before the run gives up.
	MaxGenerations int

	// CallTimeout bounds each collaborator call.
	CallTimeout time.Duration

	// GradeConcurrency grades documents in parallel when greater than one.
	GradeConcurrency int

	// RecursionLimit caps node executions per run. It is raised to
	// MinRecursionLimit(MaxGenerations) so the generation bound always ends
	// a run before the engine does.
	RecursionLimit int

	// Checkpointer records one checkpoint per step when set.
	Checkpointer graph.CheckpointStore

	// Logger defaults to the package-level logger.
	Logger log.Logger

	// Metrics is optional.
	Metrics *Metrics
}

// MinRecursionLimit is the longest run maxGenerations allows: retrieve and
// grade_documents, then a websearch and a generate per attempt.
func MinRecursionLimit(maxGenerations int) int {
	return 2 + 2*maxGenerations
}

func (o Options) withDefaults() Options {
	if o.MaxGenerations <= 0 {
		o.MaxGenerations = DefaultMaxGenerations
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = DefaultCallTimeout
	}
	if o.RecursionLimit <= 0 {
		o.RecursionLimit = graph.DefaultRecursionLimit
	}
	o.RecursionLimit = max(o.RecursionLimit, MinRecursionLimit(o.MaxGenerations))
	if o.Logger == nil {
		o.Logger = log.GetDefaultLogger()
	}
	return o
}

// Workflow answers questions with the self-correcting retrieval loop.
type Workflow struct {
	retriever       rag.Retriever
	relevance       RelevanceClassifier
	generator       AnswerGenerator
	groundedness    GroundednessClassifier
	answerRelevance AnswerRelevanceClassifier
	searcher        tool.WebSearcher

	opts     Options
	logger   log.Logger
	metrics  *Metrics
	runnable *graph.Runnable[GraphState]
}

// New validates the collaborators and compiles the workflow graph.
func New(c Collaborators, opts Options) (*Workflow, error) {
	checks := []struct {
		name    string
		missing bool
	}{
		{CollaboratorDocumentStore, c.Retriever == nil},
		{CollaboratorRelevance, c.Relevance == nil},
		{CollaboratorGenerator, c.Generator == nil},
		{CollaboratorGroundedness, c.Groundedness == nil},
		{CollaboratorAnswerRelevance, c.AnswerRelevance == nil},
		{CollaboratorWebSearch, c.WebSearch == nil},
	}
	for _, check := range checks {
		if check.missing {
			return nil, fmt.Errorf("%w: %s", ErrMissingCollaborator, check.name)
		}
	}

	opts = opts.withDefaults()
	w := &Workflow{
		retriever:       c.Retriever,
		relevance:       c.Relevance,
		generator:       c.Generator,
		groundedness:    c.Groundedness,
		answerRelevance: c.AnswerRelevance,
		searcher:        c.WebSearch,
		opts:            opts,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
	}

	runnable, err := w.buildGraph().Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile workflow: %w", err)
	}
	if w.metrics != nil {
		runnable.AddListener(w.metrics)
	}
	w.runnable = runnable
	return w, nil
}

func (w *Workflow) buildGraph() *graph.StateGraph[GraphState] {
	g := graph.NewStateGraph[GraphState]()

	g.AddNode(NodeRetrieve, "Fetch candidate passages from the document store", w.retrieve)
	g.AddNode(NodeGradeDocuments, "Drop passages that are not relevant to the question", w.gradeDocuments)
	g.AddNode(NodeGenerate, "Answer the question from the current passages", w.generate)
	g.AddNode(NodeWebSearch, "Append a document built from web search results", w.webSearch)

	g.SetEntryPoint(NodeRetrieve)
	g.AddEdge(NodeRetrieve, NodeGradeDocuments)
	g.AddConditionalEdges(NodeGradeDocuments, w.decideToGenerate, documentsPathMap)
	g.AddEdge(NodeWebSearch, NodeGenerate)
	g.AddConditionalEdges(NodeGenerate, w.gradeGeneration, generationPathMap)

	return g
}

// Run answers one question. The context bounds the whole run; cancellation
// is observed between steps and discards the run's checkpoints.
func (w *Workflow) Run(ctx context.Context, question string) (*Result, error) {
	runID := uuid.NewString()

	var routes []graph.Route
	trail := graph.RouteListenerFunc[GraphState](func(_ context.Context, route graph.Route, _ GraphState) {
		routes = append(routes, route)
	})

	w.logger.Debug("starting run %s: %q", runID, question)
	final, err := w.runnable.InvokeWithConfig(ctx, GraphState{Question: question}, &graph.Config{
		RunID:          runID,
		RecursionLimit: w.opts.RecursionLimit,
		Listeners:      []any{trail},
		Checkpointer:   w.opts.Checkpointer,
	})
	if err != nil {
		w.metrics.runFailed()
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	outcome := OutcomeAnswered
	path := make([]string, len(routes))
	for i, r := range routes {
		path[i] = r.From
	}
	if n := len(routes); n > 0 {
		switch routes[n-1].Label {
		case LabelMaxRetries:
			outcome = OutcomeUngrounded
		case LabelMaxRetriesNotUseful:
			outcome = OutcomeUnresolved
		}
	}
	w.metrics.runFinished(outcome)

	return &Result{
		RunID:     runID,
		Question:  final.Question,
		Answer:    final.Generation,
		Outcome:   outcome,
		Documents: final.Documents,
		Attempts:  final.Attempts,
		Route:     path,
	}, nil
}
