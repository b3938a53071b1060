package flow

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy controls how Exec failures are retried.
type RetryPolicy struct {
	MaxRetries    int
	RetryDelay    time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy matches the platform defaults: three retries starting
// at one second with exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    3,
		RetryDelay:    time.Second,
		BackoffFactor: 2.0,
	}
}

// Flow chains nodes together. Transitions are keyed by the node name and the
// action its Post stage returned.
type Flow struct {
	start       Node
	transitions map[string]map[Action]Node
	retry       RetryPolicy
}

// New creates a flow beginning at the given node.
func New(start Node) *Flow {
	return &Flow{
		start:       start,
		transitions: make(map[string]map[Action]Node),
		retry:       DefaultRetryPolicy(),
	}
}

// WithRetry overrides the retry policy.
func (f *Flow) WithRetry(policy RetryPolicy) *Flow {
	f.retry = policy
	return f
}

// On registers a transition: after `from` returns `action`, run `to`.
func (f *Flow) On(from Node, action Action, to Node) *Flow {
	if f.transitions[from.Name()] == nil {
		f.transitions[from.Name()] = make(map[Action]Node)
	}
	f.transitions[from.Name()][action] = to
	return f
}

// Then registers the default transition from one node to the next.
func (f *Flow) Then(from, to Node) *Flow {
	return f.On(from, ActionDefault, to)
}

// Run walks the flow from the start node until a node returns ActionDone or
// no transition matches. The shared store carries data between nodes.
func (f *Flow) Run(ctx context.Context, store *SharedStore) error {
	current := f.start
	for current != nil {
		if err := ctx.Err(); err != nil {
			return err
		}

		action, err := f.runNode(ctx, current, store)
		if err != nil {
			return fmt.Errorf("node %s: %w", current.Name(), err)
		}
		if action == ActionDone {
			return nil
		}

		next := f.next(current, action)
		if next == nil && action != ActionDefault {
			// Fall back to the default transition when the specific action
			// has no edge.
			next = f.next(current, ActionDefault)
		}
		current = next
	}
	return nil
}

func (f *Flow) next(from Node, action Action) Node {
	edges, ok := f.transitions[from.Name()]
	if !ok {
		return nil
	}
	return edges[action]
}

// runNode executes one node through its three stages, retrying Exec with
// exponential backoff.
func (f *Flow) runNode(ctx context.Context, node Node, store *SharedStore) (Action, error) {
	prepResult, err := node.Prep(ctx, store)
	if err != nil {
		return "", fmt.Errorf("prep: %w", err)
	}

	execResult, err := f.execWithRetry(ctx, node, prepResult)
	if err != nil {
		return "", fmt.Errorf("exec: %w", err)
	}

	action, err := node.Post(ctx, store, prepResult, execResult)
	if err != nil {
		return "", fmt.Errorf("post: %w", err)
	}
	return action, nil
}

func (f *Flow) execWithRetry(ctx context.Context, node Node, prepResult any) (any, error) {
	var lastErr error
	delay := f.retry.RetryDelay

	for attempt := 0; attempt <= f.retry.MaxRetries; attempt++ {
		result, err := node.Exec(ctx, prepResult)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == f.retry.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * f.retry.BackoffFactor)
	}

	return nil, fmt.Errorf("failed after %d retries: %w", f.retry.MaxRetries, lastErr)
}
