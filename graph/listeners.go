package graph

import "context"

// NodeEvent represents different types of node events
type NodeEvent string

const (
	// NodeEventStart indicates a node has started execution
	NodeEventStart NodeEvent = "start"

	// NodeEventComplete indicates a node has completed successfully
	NodeEventComplete NodeEvent = "complete"

	// NodeEventError indicates a node encountered an error
	NodeEventError NodeEvent = "error"
)

// NodeListener receives node lifecycle events.
type NodeListener[S any] interface {
	// OnNodeEvent is called when a node event occurs
	OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state S, err error)
}

// NodeListenerFunc is a function adapter for NodeListener
type NodeListenerFunc[S any] func(ctx context.Context, event NodeEvent, nodeName string, state S, err error)

// OnNodeEvent implements the NodeListener interface
func (f NodeListenerFunc[S]) OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state S, err error) {
	f(ctx, event, nodeName, state, err)
}

// RouteListener receives every transition, including the final one to END.
type RouteListener[S any] interface {
	OnRoute(ctx context.Context, route Route, state S)
}

// RouteListenerFunc is a function adapter for RouteListener
type RouteListenerFunc[S any] func(ctx context.Context, route Route, state S)

// OnRoute implements the RouteListener interface
func (f RouteListenerFunc[S]) OnRoute(ctx context.Context, route Route, state S) {
	f(ctx, route, state)
}

type listenerSet[S any] struct {
	nodes  []NodeListener[S]
	routes []RouteListener[S]
}

// add sorts a listener into the node and route buckets. A value implementing
// both interfaces is registered twice.
func (ls *listenerSet[S]) add(l any) {
	if nl, ok := l.(NodeListener[S]); ok {
		ls.nodes = append(ls.nodes, nl)
	}
	if rl, ok := l.(RouteListener[S]); ok {
		ls.routes = append(ls.routes, rl)
	}
}

func (ls *listenerSet[S]) notifyNode(ctx context.Context, event NodeEvent, nodeName string, state S, err error) {
	for _, l := range ls.nodes {
		l.OnNodeEvent(ctx, event, nodeName, state, err)
	}
}

func (ls *listenerSet[S]) notifyRoute(ctx context.Context, route Route, state S) {
	for _, l := range ls.routes {
		l.OnRoute(ctx, route, state)
	}
}
