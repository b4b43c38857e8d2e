package report

import (
	"context"
	"fmt"
	"sync"
)

// Handle is a rendered chart surface that can produce an image snapshot.
type Handle interface {
	// Snapshot encodes the current visual surface as an image payload.
	Snapshot(ctx context.Context) ([]byte, error)
}

// HandleFunc adapts a plain function to a Handle.
type HandleFunc func(ctx context.Context) ([]byte, error)

func (f HandleFunc) Snapshot(ctx context.Context) ([]byte, error) { return f(ctx) }

// Registry maps chart identity keys to live render handles. It replaces an
// ambient mutable map: the rendering layer owns one registry and registers
// handles for the lifetime of each rendered chart.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]Handle
}

func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]Handle)}
}

// Register binds a handle to an identity, replacing any previous binding.
func (r *Registry) Register(identity string, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[identity] = h
}

// Unregister drops the binding for an identity, if any.
func (r *Registry) Unregister(identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, identity)
}

// Get looks up the handle for an identity.
func (r *Registry) Get(identity string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[identity]
	return h, ok
}

// Capture snapshots the handle registered for an identity.
func (r *Registry) Capture(ctx context.Context, identity string) ([]byte, error) {
	h, ok := r.Get(identity)
	if !ok {
		return nil, fmt.Errorf("no rendered chart for %s", identity)
	}
	return h.Snapshot(ctx)
}
