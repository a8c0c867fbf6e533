package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redrussianarmy/self-rag/log"
)

// StateGraph represents a state-based graph with compile-time type safety.
// The type parameter S is the state record threaded through every node,
// typically a struct passed by value.
//
// Example usage:
//
//	g := graph.NewStateGraph[MyState]()
//	g.AddNode("increment", "Increment counter", func(ctx context.Context, state MyState) (MyState, error) {
//	    state.Count++
//	    return state, nil
//	})
type StateGraph[S any] struct {
	// nodes is a map of node names to their corresponding Node objects
	nodes map[string]Node[S]

	// edges is a slice of Edge objects representing the connections between nodes
	edges []Edge

	// conditionalEdges maps a "From" node to the router deciding its successor
	conditionalEdges map[string]conditionalEdge[S]

	// entryPoint is the name of the entry point node in the graph
	entryPoint string

	// retryPolicy defines retry behavior for failed nodes
	retryPolicy *RetryPolicy
}

// NewStateGraph creates a new instance of StateGraph.
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:            make(map[string]Node[S]),
		conditionalEdges: make(map[string]conditionalEdge[S]),
	}
}

// AddNode adds a new node to the state graph with the given name, description and function.
func (g *StateGraph[S]) AddNode(name string, description string, fn func(ctx context.Context, state S) (S, error)) {
	g.nodes[name] = Node[S]{
		Name:        name,
		Description: description,
		Function:    fn,
	}
}

// AddEdge adds a new edge to the state graph between the "from" and "to" nodes.
func (g *StateGraph[S]) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{
		From: from,
		To:   to,
	})
}

// AddConditionalEdges routes the successor of "from" through router.
// pathMap translates router labels into node names; a nil pathMap means the
// label is the node name itself.
//
// Example:
//
//	g.AddConditionalEdges("check", func(ctx context.Context, state MyState) (string, error) {
//	    if state.Count > 10 {
//	        return "high", nil
//	    }
//	    return "low", nil
//	}, map[string]string{"high": "alert", "low": graph.END})
func (g *StateGraph[S]) AddConditionalEdges(from string, router Router[S], pathMap map[string]string) {
	g.conditionalEdges[from] = conditionalEdge[S]{
		router:  router,
		pathMap: pathMap,
	}
}

// SetEntryPoint sets the entry point node name for the state graph.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// SetRetryPolicy sets the retry policy for the graph.
func (g *StateGraph[S]) SetRetryPolicy(policy *RetryPolicy) {
	g.retryPolicy = policy
}

// Nodes returns the registered node names and descriptions.
func (g *StateGraph[S]) Nodes() map[string]string {
	out := make(map[string]string, len(g.nodes))
	for name, n := range g.nodes {
		out[name] = n.Description
	}
	return out
}

// Compile validates the graph and returns a Runnable.
func (g *StateGraph[S]) Compile() (*Runnable[S], error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if err := g.checkTarget(g.entryPoint); err != nil {
		return nil, err
	}

	static := make(map[string]string, len(g.edges))
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, e.From)
		}
		if err := g.checkTarget(e.To); err != nil {
			return nil, err
		}
		if _, ok := g.conditionalEdges[e.From]; ok {
			// Conditional edges take precedence.
			continue
		}
		if prev, dup := static[e.From]; dup && prev != e.To {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousEdge, e.From)
		}
		static[e.From] = e.To
	}

	for from, ce := range g.conditionalEdges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, from)
		}
		for _, to := range ce.pathMap {
			if err := g.checkTarget(to); err != nil {
				return nil, err
			}
		}
	}

	return &Runnable[S]{
		graph:  g,
		static: static,
	}, nil
}

func (g *StateGraph[S]) checkTarget(name string) error {
	if name == END {
		return nil
	}
	if _, ok := g.nodes[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}
	return nil
}

// Runnable represents a compiled state graph.
type Runnable[S any] struct {
	graph     *StateGraph[S]
	static    map[string]string
	listeners []any
}

// AddListener registers a NodeListener and/or RouteListener for every invocation.
func (r *Runnable[S]) AddListener(listener any) *Runnable[S] {
	r.listeners = append(r.listeners, listener)
	return r
}

// Invoke executes the compiled graph with the given input state.
func (r *Runnable[S]) Invoke(ctx context.Context, initialState S) (S, error) {
	return r.InvokeWithConfig(ctx, initialState, nil)
}

// InvokeWithConfig executes the graph one node at a time until END.
// Cancellation is checked between steps, never while a node is running;
// a cancelled run clears its checkpoints before returning.
func (r *Runnable[S]) InvokeWithConfig(ctx context.Context, initialState S, config *Config) (S, error) {
	var zero S
	if config == nil {
		config = &Config{}
	}
	runID := config.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	limit := config.RecursionLimit
	if limit <= 0 {
		limit = DefaultRecursionLimit
	}

	var listeners listenerSet[S]
	for _, l := range r.listeners {
		listeners.add(l)
	}
	for _, l := range config.Listeners {
		listeners.add(l)
	}

	state := initialState
	current := r.graph.entryPoint

	for step := 1; current != END; step++ {
		if err := ctx.Err(); err != nil {
			r.abandon(ctx, config.Checkpointer, runID)
			return zero, fmt.Errorf("run %s cancelled before %s: %w", runID, current, err)
		}
		if step > limit {
			return zero, fmt.Errorf("%w: %d steps without reaching %s", ErrRecursionLimit, limit, END)
		}

		node, ok := r.graph.nodes[current]
		if !ok {
			return zero, fmt.Errorf("%w: %s", ErrNodeNotFound, current)
		}

		listeners.notifyNode(ctx, NodeEventStart, current, state, nil)
		next, err := executeWithRetry(ctx, r.graph.retryPolicy, state, node.Function)
		if err != nil {
			listeners.notifyNode(ctx, NodeEventError, current, state, err)
			if ctx.Err() != nil {
				r.abandon(ctx, config.Checkpointer, runID)
			}
			return zero, fmt.Errorf("error in node %s: %w", current, err)
		}
		state = next
		listeners.notifyNode(ctx, NodeEventComplete, current, state, nil)

		route, err := r.nextRoute(ctx, current, state)
		if err != nil {
			if ctx.Err() != nil {
				r.abandon(ctx, config.Checkpointer, runID)
			}
			return zero, err
		}
		route.Step = step
		listeners.notifyRoute(ctx, route, state)

		if config.Checkpointer != nil {
			if err := config.Checkpointer.Save(ctx, NewCheckpoint(runID, route, state)); err != nil {
				log.Warn("failed to save checkpoint for run %s step %d: %v", runID, step, err)
			}
		}

		current = route.To
	}

	return state, nil
}

// nextRoute determines the next node from conditional or static edges.
func (r *Runnable[S]) nextRoute(ctx context.Context, current string, state S) (Route, error) {
	if ce, ok := r.graph.conditionalEdges[current]; ok {
		label, err := ce.router(ctx, state)
		if err != nil {
			return Route{}, fmt.Errorf("error routing from %s: %w", current, err)
		}
		to := label
		if ce.pathMap != nil {
			mapped, ok := ce.pathMap[label]
			if !ok {
				return Route{}, fmt.Errorf("%w: %q from %s", ErrInvalidRoute, label, current)
			}
			to = mapped
		} else if err := r.graph.checkTarget(to); err != nil {
			return Route{}, fmt.Errorf("%w: %q from %s", ErrInvalidRoute, label, current)
		}
		return Route{From: current, Label: label, To: to}, nil
	}

	to, ok := r.static[current]
	if !ok {
		return Route{}, fmt.Errorf("%w: %s", ErrNoOutgoingEdge, current)
	}
	return Route{From: current, To: to}, nil
}

// abandon drops the checkpoints of a cancelled run. It detaches from the
// cancelled context so the store call itself can complete.
func (r *Runnable[S]) abandon(ctx context.Context, store CheckpointStore, runID string) {
	if store == nil {
		return
	}
	if err := store.Clear(context.WithoutCancel(ctx), runID); err != nil {
		log.Warn("failed to clear checkpoints for cancelled run %s: %v", runID, err)
	}
}
