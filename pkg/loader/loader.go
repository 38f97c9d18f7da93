// Package loader drives "load more" for infinite scroll: each time the
// sentinel area enters the viewport it fetches exactly one more page and
// folds it into the collection, never duplicating a fetch and never reading
// past the last page.
package loader

import (
	"context"
	"fmt"
	"sync"

	threads "github.com/goliatone/go-threads"
	"github.com/goliatone/go-threads/pkg/remote"
)

// FetchFunc retrieves one page from the remote store.
type FetchFunc[E threads.Identifiable] func(ctx context.Context, req remote.PageRequest) (remote.Page[E], error)

// Loader coordinates {cursor, hasMore, isFetching} for one entity stream.
//
// Cursor-first policy: when a response carries a next-page cursor it is used
// verbatim for the following request; only without a cursor does the loader
// fall back to numeric page increments bounded by the server-reported total
// page count.
type Loader[E threads.Identifiable] struct {
	mu         sync.Mutex
	col        *threads.Collection[E]
	fetch      FetchFunc[E]
	limit      int
	page       int
	cursor     string
	totalPages int
	hasMore    bool
	fetching   bool
}

// Option configures a Loader.
type Option func(*config)

type config struct {
	limit int
}

// WithLimit sets the page size requested from the server.
func WithLimit(limit int) Option {
	return func(cfg *config) {
		if limit > 0 {
			cfg.limit = limit
		}
	}
}

// New builds a loader feeding col via fetch. The first OnSentinel call
// requests page one.
func New[E threads.Identifiable](col *threads.Collection[E], fetch FetchFunc[E], opts ...Option) *Loader[E] {
	cfg := config{limit: 20}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Loader[E]{
		col:     col,
		fetch:   fetch,
		limit:   cfg.limit,
		hasMore: true,
	}
}

// OnSentinel is invoked when the load-more marker becomes visible (or an
// equivalent trigger fires). It fetches at most one page: triggers while a
// fetch is in flight, or after the stream is exhausted, are no-ops.
func (l *Loader[E]) OnSentinel(ctx context.Context) error {
	l.mu.Lock()
	if !l.hasMore || l.fetching {
		l.mu.Unlock()
		return nil
	}
	l.fetching = true
	req := remote.PageRequest{Page: l.page + 1, Limit: l.limit, Cursor: l.cursor}
	l.mu.Unlock()

	page, err := l.fetch(ctx, req)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.fetching = false
	if err != nil {
		return fmt.Errorf("loader: fetch page %d: %w", req.Page, err)
	}

	l.col.ApplyPage(page.Items)
	l.advance(req, page)
	return nil
}

// advance updates position and exhaustion state from the response. Explicit
// server hints win over the numeric computation.
func (l *Loader[E]) advance(req remote.PageRequest, page remote.Page[E]) {
	l.page = req.Page
	if page.Pagination.Page > 0 {
		l.page = page.Pagination.Page
	}
	if page.Pagination.TotalPages > 0 {
		l.totalPages = page.Pagination.TotalPages
	}
	l.cursor = page.Meta.NextCursor

	switch {
	case page.Meta.HasMore != nil:
		l.hasMore = *page.Meta.HasMore
	case l.cursor != "":
		l.hasMore = true
	case l.totalPages > 0:
		l.hasMore = l.page < l.totalPages
	default:
		l.hasMore = len(page.Items) >= l.limit && len(page.Items) > 0
	}
}

// HasMore reports whether further pages remain.
func (l *Loader[E]) HasMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasMore
}

// Fetching reports whether a fetch is in flight.
func (l *Loader[E]) Fetching() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fetching
}

// Reset rewinds the loader to the start of the stream, e.g. after a
// pull-to-refresh. The collection is left untouched; the next page merge
// reconciles it.
func (l *Loader[E]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.page = 0
	l.cursor = ""
	l.totalPages = 0
	l.hasMore = true
}
