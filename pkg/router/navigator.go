package router

import (
	"context"
	"sync"
)

// Navigator sequences the activations of one client. Each Navigate
// supersedes the previous activation: its context is cancelled and its
// Wait returns ErrSuperseded, so only the latest result is ever delivered.
type Navigator struct {
	router *Router

	mu     sync.Mutex
	token  uint64
	cancel context.CancelFunc
	closed bool
}

// Navigate starts an activation of path, superseding the current one.
func (n *Navigator) Navigate(ctx context.Context, path string) *Activation {
	n.mu.Lock()
	if n.cancel != nil {
		n.cancel()
	}
	n.token++
	token := n.token
	ctx, cancel := context.WithCancel(ctx)
	if n.closed {
		cancel()
	}
	n.cancel = cancel
	n.mu.Unlock()

	return n.router.activate(ctx, path, n, token)
}

// IsCurrent reports whether token belongs to the latest activation.
func (n *Navigator) IsCurrent(token uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return !n.closed && token == n.token
}

// Current returns the token of the latest activation.
func (n *Navigator) Current() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.token
}

// Close cancels the current activation. Activations started afterwards are
// cancelled immediately and never current.
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
}
