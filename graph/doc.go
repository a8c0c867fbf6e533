// Package graph provides the state-machine engine behind the Self-RAG workflow.
//
// A StateGraph is a set of named nodes joined by edges. Each node receives a
// copy of the typed state record and returns the next value; the engine then
// picks exactly one successor, either through a static edge or through a
// Router whose label is translated by a path map. Execution is strictly one
// node at a time and ends when the successor is END.
//
// # Core Concepts
//
// ## Nodes and Edges
// Nodes wrap a function of the state. Static edges are unconditional; a node
// may have at most one. Conditional edges call a Router after the node has
// completed and map its label to the next node, so a branch can loop back
// onto the node that produced it.
//
// ## Runs
// Compile validates the graph and returns a Runnable. Every invocation is a
// run with its own RunID. The engine checks the context between steps,
// enforces a recursion limit, and reports every node event and every route
// to registered listeners.
//
// ## Checkpoints
// When a CheckpointStore is configured the engine saves one Checkpoint per
// completed step. A cancelled run clears its checkpoints so no partial state
// outlives it. Redis, Postgres and SQLite stores live under the store
// package tree.
//
// # Example Usage
//
//	g := graph.NewStateGraph[State]()
//	g.AddNode("draft", "Write a draft", draft)
//	g.AddNode("review", "Review the draft", review)
//	g.SetEntryPoint("draft")
//	g.AddEdge("draft", "review")
//	g.AddConditionalEdges("review", func(ctx context.Context, s State) (string, error) {
//		if s.Approved {
//			return "approved", nil
//		}
//		return "rejected", nil
//	}, map[string]string{
//		"approved": graph.END,
//		"rejected": "draft",
//	})
//
//	app, err := g.Compile()
//	if err != nil {
//		return err
//	}
//	final, err := app.InvokeWithConfig(ctx, State{}, &graph.Config{RecursionLimit: 10})
//
// # Retries
//
// SetRetryPolicy wraps every node in a retry loop with fixed, linear or
// exponential backoff. Without a policy a failing node ends the run.
package graph
