package graph

import (
	"context"
	"errors"
)

// END is a special constant used to represent the end node in the graph.
const END = "END"

// DefaultRecursionLimit bounds the number of steps a single run may execute
// when the caller does not configure one.
const DefaultRecursionLimit = 25

var (
	// ErrEntryPointNotSet is returned when the entry point of the graph is not set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when a node is not found in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when no outgoing edge is found for a node.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrAmbiguousEdge is returned when a node has more than one static outgoing edge.
	ErrAmbiguousEdge = errors.New("node has more than one outgoing edge")

	// ErrInvalidRoute is returned when a router returns a label missing from its path map.
	ErrInvalidRoute = errors.New("router returned an unknown route")

	// ErrRecursionLimit is returned when a run exceeds its step limit.
	ErrRecursionLimit = errors.New("recursion limit reached")

	// ErrCheckpointNotFound is returned by checkpoint stores for unknown IDs.
	ErrCheckpointNotFound = errors.New("checkpoint not found")
)

// Node represents a node in the graph.
type Node[S any] struct {
	// Name is the unique identifier for the node.
	Name string

	// Description describes the functionality of the node.
	Description string

	// Function receives a copy of the current state and returns the next one.
	Function func(ctx context.Context, state S) (S, error)
}

// Edge represents an unconditional edge in the graph.
type Edge struct {
	// From is the name of the node from which the edge originates.
	From string

	// To is the name of the node to which the edge points.
	To string
}

// Router picks the label of the next branch after a node has run.
// It may call external services, so it can fail.
type Router[S any] func(ctx context.Context, state S) (string, error)

type conditionalEdge[S any] struct {
	router  Router[S]
	pathMap map[string]string
}

// Route describes a transition taken by a run.
type Route struct {
	// Step is the 1-based index of the node execution that produced the route.
	Step int

	// From is the node that just completed.
	From string

	// Label is the router output, empty for unconditional edges.
	Label string

	// To is the next node, END when the run finishes.
	To string
}

// Config carries per-invocation settings.
type Config struct {
	// RunID identifies the run in checkpoints and listener callbacks.
	RunID string

	// RecursionLimit caps node executions, DefaultRecursionLimit when zero.
	RecursionLimit int

	// Listeners receive events for this invocation only.
	Listeners []any

	// Checkpointer persists one checkpoint per completed step.
	Checkpointer CheckpointStore
}
