package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	threads "github.com/goliatone/go-threads"
	"github.com/goliatone/go-threads/pkg/remote"
)

type fakeFetcher struct {
	mu    sync.Mutex
	pages []remote.Page[threads.Post]
	reqs  []remote.PageRequest
	err   error
	block chan struct{}
}

func (f *fakeFetcher) fetch(_ context.Context, req remote.PageRequest) (remote.Page[threads.Post], error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	calls := len(f.reqs)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if f.err != nil {
		return remote.Page[threads.Post]{}, f.err
	}
	if calls > len(f.pages) {
		return remote.Page[threads.Post]{}, fmt.Errorf("no page for call %d", calls)
	}
	return f.pages[calls-1], nil
}

func (f *fakeFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

func pageOf(page, totalPages int, ids ...string) remote.Page[threads.Post] {
	items := make([]threads.Post, len(ids))
	for i, id := range ids {
		items[i] = threads.Post{ID: id}
	}
	return remote.Page[threads.Post]{
		Items:      items,
		Pagination: remote.Pagination{Page: page, Limit: len(ids), TotalPages: totalPages},
	}
}

func TestLoaderStopsAtLastPage(t *testing.T) {
	fetcher := &fakeFetcher{pages: []remote.Page[threads.Post]{
		pageOf(1, 3, "p1", "p2"),
		pageOf(2, 3, "p3", "p4"),
		pageOf(3, 3, "p5"),
	}}
	col := threads.NewCollection[threads.Post]()
	l := New(col, fetcher.fetch, WithLimit(2))

	for i := 0; i < 3; i++ {
		if err := l.OnSentinel(context.Background()); err != nil {
			t.Fatalf("sentinel %d: %v", i+1, err)
		}
	}
	if l.HasMore() {
		t.Fatalf("expected stream exhausted after page 3 of 3")
	}

	// The exhausted stream ignores further triggers.
	if err := l.OnSentinel(context.Background()); err != nil {
		t.Fatalf("sentinel after exhaustion: %v", err)
	}
	if fetcher.calls() != 3 {
		t.Fatalf("expected 3 fetches, got %d", fetcher.calls())
	}
	if col.Len() != 5 {
		t.Fatalf("expected 5 entities, got %d", col.Len())
	}
}

func TestLoaderRequestsSequentialPages(t *testing.T) {
	fetcher := &fakeFetcher{pages: []remote.Page[threads.Post]{
		pageOf(1, 2, "p1"),
		pageOf(2, 2, "p2"),
	}}
	l := New(threads.NewCollection[threads.Post](), fetcher.fetch, WithLimit(1))

	_ = l.OnSentinel(context.Background())
	_ = l.OnSentinel(context.Background())

	if fetcher.reqs[0].Page != 1 || fetcher.reqs[1].Page != 2 {
		t.Fatalf("expected pages 1 then 2, got %d then %d", fetcher.reqs[0].Page, fetcher.reqs[1].Page)
	}
	if fetcher.reqs[0].Limit != 1 {
		t.Fatalf("expected limit 1, got %d", fetcher.reqs[0].Limit)
	}
}

func TestLoaderCursorWinsOverNumericPaging(t *testing.T) {
	fetcher := &fakeFetcher{pages: []remote.Page[threads.Post]{
		{
			Items: []threads.Post{{ID: "p1"}},
			Meta:  remote.Meta{NextCursor: "abc"},
		},
		{
			Items: []threads.Post{{ID: "p2"}},
		},
	}}
	l := New(threads.NewCollection[threads.Post](), fetcher.fetch, WithLimit(1))

	_ = l.OnSentinel(context.Background())
	if !l.HasMore() {
		t.Fatalf("expected more pages while a cursor is present")
	}
	_ = l.OnSentinel(context.Background())

	if fetcher.reqs[1].Cursor != "abc" {
		t.Fatalf("expected cursor forwarded, got %q", fetcher.reqs[1].Cursor)
	}
}

func TestLoaderServerHasMoreHintWins(t *testing.T) {
	no := false
	fetcher := &fakeFetcher{pages: []remote.Page[threads.Post]{
		{
			// A full page would normally imply more, but the server says no.
			Items:      []threads.Post{{ID: "p1"}, {ID: "p2"}},
			Pagination: remote.Pagination{Page: 1, TotalPages: 9},
			Meta:       remote.Meta{HasMore: &no},
		},
	}}
	l := New(threads.NewCollection[threads.Post](), fetcher.fetch, WithLimit(2))

	_ = l.OnSentinel(context.Background())
	if l.HasMore() {
		t.Fatalf("expected explicit hasMore=false to win")
	}
}

func TestLoaderShortPageImpliesExhaustion(t *testing.T) {
	fetcher := &fakeFetcher{pages: []remote.Page[threads.Post]{
		{Items: []threads.Post{{ID: "p1"}}},
	}}
	l := New(threads.NewCollection[threads.Post](), fetcher.fetch, WithLimit(5))

	_ = l.OnSentinel(context.Background())
	if l.HasMore() {
		t.Fatalf("expected short page without hints to end the stream")
	}
}

func TestLoaderSingleFlight(t *testing.T) {
	block := make(chan struct{})
	fetcher := &fakeFetcher{
		pages: []remote.Page[threads.Post]{pageOf(1, 1, "p1")},
		block: block,
	}
	l := New(threads.NewCollection[threads.Post](), fetcher.fetch, WithLimit(1))

	done := make(chan error, 1)
	go func() { done <- l.OnSentinel(context.Background()) }()

	for !l.Fetching() {
		time.Sleep(time.Millisecond)
	}
	// Triggers while fetching are dropped.
	if err := l.OnSentinel(context.Background()); err != nil {
		t.Fatalf("concurrent sentinel: %v", err)
	}
	close(block)
	if err := <-done; err != nil {
		t.Fatalf("sentinel: %v", err)
	}
	if fetcher.calls() != 1 {
		t.Fatalf("expected a single fetch, got %d", fetcher.calls())
	}
}

func TestLoaderFetchErrorKeepsStreamOpen(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("boom")}
	l := New(threads.NewCollection[threads.Post](), fetcher.fetch)

	if err := l.OnSentinel(context.Background()); err == nil {
		t.Fatalf("expected fetch error surfaced")
	}
	if !l.HasMore() {
		t.Fatalf("expected stream still open after a failed fetch")
	}
	if l.Fetching() {
		t.Fatalf("expected fetching flag cleared")
	}
}

func TestLoaderReset(t *testing.T) {
	fetcher := &fakeFetcher{pages: []remote.Page[threads.Post]{
		pageOf(1, 1, "p1"),
		pageOf(1, 1, "p1"),
	}}
	col := threads.NewCollection[threads.Post]()
	l := New(col, fetcher.fetch, WithLimit(1))

	_ = l.OnSentinel(context.Background())
	if l.HasMore() {
		t.Fatalf("expected exhaustion")
	}

	l.Reset()
	if !l.HasMore() {
		t.Fatalf("expected stream reopened")
	}
	if err := l.OnSentinel(context.Background()); err != nil {
		t.Fatalf("sentinel after reset: %v", err)
	}
	if fetcher.reqs[1].Page != 1 {
		t.Fatalf("expected rewind to page 1, got %d", fetcher.reqs[1].Page)
	}
	if col.Len() != 1 {
		t.Fatalf("expected merge to keep a single p1, got %d", col.Len())
	}
}

func TestStreamsDispatchByPostKind(t *testing.T) {
	answerCalls := 0
	answers := New(threads.NewCollection[threads.Answer](),
		func(context.Context, remote.PageRequest) (remote.Page[threads.Answer], error) {
			answerCalls++
			return remote.Page[threads.Answer]{}, nil
		})
	commentCalls := 0
	comments := New(threads.NewCollection[threads.Comment](),
		func(context.Context, remote.PageRequest) (remote.Page[threads.Comment], error) {
			commentCalls++
			return remote.Page[threads.Comment]{}, nil
		})

	question := NewStreams(threads.Post{ID: "p1", IsQuestion: true}, answers, comments)
	if err := question.OnSentinel(context.Background()); err != nil {
		t.Fatalf("question sentinel: %v", err)
	}
	if answerCalls != 1 || commentCalls != 0 {
		t.Fatalf("expected answer stream only, got answers=%d comments=%d", answerCalls, commentCalls)
	}

	plain := NewStreams(threads.Post{ID: "p2"}, answers, comments)
	if err := plain.OnSentinel(context.Background()); err != nil {
		t.Fatalf("plain sentinel: %v", err)
	}
	if commentCalls != 1 {
		t.Fatalf("expected comment stream dispatch, got %d", commentCalls)
	}
}
