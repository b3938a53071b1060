// Package flow implements the node/flow orchestration pattern used by the
// platform's agents. A node runs in three stages: Prep gathers inputs from
// the shared store, Exec performs the work (and is the only stage that is
// retried), and Post writes results back and returns an action that selects
// the next node in the flow.
package flow

import (
	"context"
)

// Action is the routing signal a node returns from Post. The flow follows
// the transition registered for (node, action).
type Action string

const (
	// ActionDefault is the implicit transition when a node has exactly one
	// successor.
	ActionDefault Action = "default"
	// ActionDone terminates the flow.
	ActionDone Action = "done"
)

// Node is one staged step in a flow.
type Node interface {
	// Name identifies the node in transitions and error messages.
	Name() string
	// Prep reads inputs from the shared store.
	Prep(ctx context.Context, store *SharedStore) (any, error)
	// Exec performs the node's work. Exec must not touch the shared store;
	// it may be retried per the flow's retry policy.
	Exec(ctx context.Context, prepResult any) (any, error)
	// Post writes results to the shared store and picks the next action.
	Post(ctx context.Context, store *SharedStore, prepResult, execResult any) (Action, error)
}

// NodeFunc assembles a Node from plain functions, for small inline steps.
type NodeFunc struct {
	NodeName string
	PrepFn   func(ctx context.Context, store *SharedStore) (any, error)
	ExecFn   func(ctx context.Context, prepResult any) (any, error)
	PostFn   func(ctx context.Context, store *SharedStore, prepResult, execResult any) (Action, error)
}

func (n *NodeFunc) Name() string { return n.NodeName }

func (n *NodeFunc) Prep(ctx context.Context, store *SharedStore) (any, error) {
	if n.PrepFn == nil {
		return nil, nil
	}
	return n.PrepFn(ctx, store)
}

func (n *NodeFunc) Exec(ctx context.Context, prepResult any) (any, error) {
	if n.ExecFn == nil {
		return prepResult, nil
	}
	return n.ExecFn(ctx, prepResult)
}

func (n *NodeFunc) Post(ctx context.Context, store *SharedStore, prepResult, execResult any) (Action, error) {
	if n.PostFn == nil {
		return ActionDone, nil
	}
	return n.PostFn(ctx, store, prepResult, execResult)
}
