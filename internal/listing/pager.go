// ABOUTME: Accumulating pager over a paginated backend listing
// ABOUTME: First page replaces, later pages append; superseded responses are dropped

package listing

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/arizayilmaz/voteverse/internal/inflight"
)

var (
	ErrNoMorePages = errors.New("no more pages")
	ErrBusy        = errors.New("a page is already loading")
	ErrStale       = errors.New("response superseded by a newer load")
)

// FetchFunc loads one page (0-based)
type FetchFunc[T any] func(ctx context.Context, page int) (*client.Page[T], error)

// Pager accumulates the pages of a listing. It is safe for concurrent use.
type Pager[T any] struct {
	name  string
	fetch FetchFunc[T]
	gen   inflight.Generation

	mu      sync.Mutex
	items   []T
	page    int
	hasMore bool
	loading bool
	loaded  bool
	total   int64
}

// New creates an empty pager; name only appears in logs
func New[T any](name string, fetch FetchFunc[T]) *Pager[T] {
	return &Pager[T]{name: name, fetch: fetch}
}

// Load fetches page. Page 0 replaces the accumulated items, any other page
// appends to them. The pager state is untouched when the fetch fails.
func (p *Pager[T]) Load(ctx context.Context, page int) error {
	ticket := p.gen.Next()

	p.mu.Lock()
	p.loading = true
	p.mu.Unlock()

	res, err := p.fetch(ctx, page)

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.gen.Current(ticket) {
		slog.Debug("Discarding stale page", "list", p.name, "page", page)
		return ErrStale
	}
	p.loading = false

	if err != nil {
		return err
	}

	if page == 0 {
		p.items = append([]T(nil), res.Content...)
	} else {
		p.items = append(p.items, res.Content...)
	}
	p.page = page
	p.hasMore = !res.Last
	p.loaded = true
	p.total = res.TotalElements

	slog.Debug("Page loaded", "list", p.name, "page", page, "items", len(res.Content), "has_more", p.hasMore)
	return nil
}

// LoadMore fetches the page after the current one
func (p *Pager[T]) LoadMore(ctx context.Context) error {
	p.mu.Lock()
	if p.loading {
		p.mu.Unlock()
		return ErrBusy
	}
	if !p.hasMore {
		p.mu.Unlock()
		return ErrNoMorePages
	}
	next := p.page + 1
	p.mu.Unlock()

	return p.Load(ctx, next)
}

// Reload starts over from the first page
func (p *Pager[T]) Reload(ctx context.Context) error {
	return p.Load(ctx, 0)
}

// RemoveFunc drops every item for which match is true, keeping order. The
// page cursor is left alone, so a later LoadMore may skip an item that
// shifted onto an already-loaded page.
func (p *Pager[T]) RemoveFunc(match func(T) bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.items[:0]
	removed := 0
	for _, item := range p.items {
		if match(item) {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	clear(p.items[len(kept):])
	p.items = kept
	if removed > 0 && p.total >= int64(removed) {
		p.total -= int64(removed)
	}
	return removed
}

// Items returns a copy of the accumulated items
func (p *Pager[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]T(nil), p.items...)
}

// Page is the index of the last loaded page
func (p *Pager[T]) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// HasMore reports whether the server said more pages follow
func (p *Pager[T]) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Loading reports whether a fetch is running
func (p *Pager[T]) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Loaded reports whether any page has been loaded successfully
func (p *Pager[T]) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// Total is the server-reported element count, adjusted for local removals
func (p *Pager[T]) Total() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}
