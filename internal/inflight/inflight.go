// ABOUTME: Guards for user-triggered network actions
// ABOUTME: Generation discards superseded results; Group collapses duplicate submissions

package inflight

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Generation hands out tickets. Only the newest ticket is current, so a slow
// response from an older request can be recognised and dropped.
type Generation struct {
	n atomic.Uint64
}

// Next starts a new request and returns its ticket
func (g *Generation) Next() uint64 {
	return g.n.Add(1)
}

// Current reports whether ticket is still the latest one
func (g *Generation) Current(ticket uint64) bool {
	return g.n.Load() == ticket
}

// Group runs at most one action per key at a time. Callers arriving while an
// action is running share its result instead of issuing a second request.
type Group struct {
	sf singleflight.Group

	mu   sync.Mutex
	busy map[string]int
}

// Do runs fn under key. shared is true for callers that joined a running action.
func (g *Group) Do(ctx context.Context, key string, fn func(context.Context) (any, error)) (v any, shared bool, err error) {
	g.enter(key)
	defer g.leave(key)

	v, err, shared = g.sf.Do(key, func() (any, error) {
		return fn(ctx)
	})
	return v, shared, err
}

// Busy reports whether an action under key is running
func (g *Group) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy[key] > 0
}

func (g *Group) enter(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy == nil {
		g.busy = make(map[string]int)
	}
	g.busy[key]++
}

func (g *Group) leave(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.busy[key]--
	if g.busy[key] <= 0 {
		delete(g.busy, key)
	}
}
