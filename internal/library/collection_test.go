package library

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/tessro/vinyl/internal/core"
	"github.com/tessro/vinyl/internal/logging"
)

// pagedSource serves total albums in pages and counts requests.
type pagedSource struct {
	mu    sync.Mutex
	total int
	calls []int
	err   error
	// block, when set, holds requests until closed.
	block chan struct{}
}

func (s *pagedSource) SavedAlbums(ctx context.Context, offset, limit int) (*core.AlbumPage, error) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, offset)
	if s.err != nil {
		return nil, s.err
	}

	end := offset + limit
	if end > s.total {
		end = s.total
	}
	page := &core.AlbumPage{Offset: offset, Total: s.total, HasMore: end < s.total}
	for i := offset; i < end; i++ {
		page.Albums = append(page.Albums, core.Album{ID: fmt.Sprintf("a%d", i)})
	}
	return page, nil
}

func newTestCollection(src core.AlbumSource) *Collection {
	return NewCollection(src, logging.Discard(), nil)
}

func TestLoadMoreAppendsPages(t *testing.T) {
	src := &pagedSource{total: 120}
	c := newTestCollection(src)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.LoadMore(ctx); err != nil {
			t.Fatalf("LoadMore() error = %v", err)
		}
	}

	if c.Len() != 120 {
		t.Errorf("Len() = %d, want 120", c.Len())
	}
	if c.HasMore() {
		t.Error("HasMore() = true after the last page")
	}
	want := []int{0, 50, 100}
	for i, off := range want {
		if src.calls[i] != off {
			t.Errorf("request %d offset = %d, want %d", i, src.calls[i], off)
		}
	}
	if albums := c.Albums(); albums[50].ID != "a50" {
		t.Errorf("Albums()[50] = %s, want a50", albums[50].ID)
	}
}

func TestLoadMoreExhausted(t *testing.T) {
	src := &pagedSource{total: 10}
	c := newTestCollection(src)
	ctx := context.Background()

	_, _ = c.LoadMore(ctx)
	fetched, err := c.LoadMore(ctx)
	if err != nil {
		t.Fatalf("LoadMore() error = %v", err)
	}
	if fetched {
		t.Error("LoadMore() fetched after the collection was exhausted")
	}
	if len(src.calls) != 1 {
		t.Errorf("requests = %d, want 1", len(src.calls))
	}
}

func TestLoadMoreWhileLoading(t *testing.T) {
	src := &pagedSource{total: 100, block: make(chan struct{})}
	c := newTestCollection(src)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		_, _ = c.LoadMore(ctx)
		close(done)
	}()

	// Wait for the first request to be in flight.
	for !c.Loading() {
	}

	fetched, err := c.LoadMore(ctx)
	if fetched || err != nil {
		t.Errorf("LoadMore() while loading = %v, %v; want false, nil", fetched, err)
	}

	close(src.block)
	<-done

	if c.Len() != 50 {
		t.Errorf("Len() = %d, want 50", c.Len())
	}
}

func TestLoadMoreError(t *testing.T) {
	boom := errors.New("boom")
	src := &pagedSource{total: 100, err: boom}
	c := newTestCollection(src)

	if _, err := c.LoadMore(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("LoadMore() error = %v, want boom", err)
	}
	if !errors.Is(c.Err(), boom) {
		t.Errorf("Err() = %v, want boom", c.Err())
	}
	if c.Loading() {
		t.Error("Loading() = true after failure")
	}
	if !c.HasMore() {
		t.Error("HasMore() = false after failure, want retry possible")
	}

	src.err = nil
	if _, err := c.LoadMore(context.Background()); err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if c.Err() != nil {
		t.Errorf("Err() = %v after success, want nil", c.Err())
	}
}

func TestRefresh(t *testing.T) {
	src := &pagedSource{total: 80}
	c := newTestCollection(src)
	ctx := context.Background()

	_ = c.LoadAll(ctx)
	if c.Len() != 80 {
		t.Fatalf("Len() = %d, want 80", c.Len())
	}

	src.total = 30
	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if c.Len() != 30 {
		t.Errorf("Len() after refresh = %d, want 30", c.Len())
	}
	if c.HasMore() {
		t.Error("HasMore() = true, want false")
	}
}

// gatedSource hands every request to the test, which answers it.
type gatedSource struct {
	requests chan gatedRequest
}

type gatedRequest struct {
	offset int
	reply  chan *core.AlbumPage
}

func (s *gatedSource) SavedAlbums(ctx context.Context, offset, limit int) (*core.AlbumPage, error) {
	req := gatedRequest{offset: offset, reply: make(chan *core.AlbumPage)}
	s.requests <- req
	return <-req.reply, nil
}

func albumPage(prefix string, offset, n int, more bool) *core.AlbumPage {
	page := &core.AlbumPage{Offset: offset, HasMore: more}
	for i := range n {
		page.Albums = append(page.Albums, core.Album{ID: fmt.Sprintf("%s%d", prefix, offset+i)})
	}
	return page
}

func TestRefreshDropsStalePage(t *testing.T) {
	src := &gatedSource{requests: make(chan gatedRequest)}
	c := newTestCollection(src)
	ctx := context.Background()

	staleDone := make(chan error, 1)
	go func() {
		fetched, err := c.LoadMore(ctx)
		if err == nil && fetched {
			err = errors.New("stale page reported as fetched")
		}
		staleDone <- err
	}()
	stale := <-src.requests

	refreshDone := make(chan error, 1)
	go func() { refreshDone <- c.Refresh(ctx) }()
	fresh := <-src.requests
	if fresh.offset != 0 {
		t.Fatalf("refresh requested offset %d, want 0", fresh.offset)
	}

	// The old page lands while the refresh is still in flight.
	stale.reply <- albumPage("stale", 0, 5, false)
	if err := <-staleDone; err != nil {
		t.Fatal(err)
	}
	if got := c.Len(); got != 0 {
		t.Errorf("Len() after stale page = %d, want 0", got)
	}
	if !c.Loading() {
		t.Error("stale page cleared the refresh's loading flag")
	}
	if !c.HasMore() {
		t.Error("stale page changed HasMore")
	}

	fresh.reply <- albumPage("fresh", 0, 3, true)
	if err := <-refreshDone; err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	albums := c.Albums()
	if len(albums) != 3 {
		t.Fatalf("Len() = %d, want 3", len(albums))
	}
	for _, a := range albums {
		if a.ID[:5] != "fresh" {
			t.Errorf("album %q survived the refresh", a.ID)
		}
	}
	c.mu.Lock()
	offset, loading := c.offset, c.loading
	c.mu.Unlock()
	if offset != 3 || loading {
		t.Errorf("offset = %d, loading = %v; want 3, false", offset, loading)
	}
}

func TestLoadAllEmpty(t *testing.T) {
	c := newTestCollection(&pagedSource{})
	if err := c.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if c.Len() != 0 || c.HasMore() {
		t.Errorf("Len() = %d HasMore() = %v, want empty and exhausted", c.Len(), c.HasMore())
	}
}

func TestNearEnd(t *testing.T) {
	c := newTestCollection(&pagedSource{total: 100})
	_, _ = c.LoadMore(context.Background())

	tests := []struct {
		index int
		want  bool
	}{
		{0, false},
		{44, false},
		{45, true},
		{49, true},
	}
	for _, tt := range tests {
		if got := c.NearEnd(tt.index, 5); got != tt.want {
			t.Errorf("NearEnd(%d, 5) = %v, want %v", tt.index, got, tt.want)
		}
	}

	_ = c.LoadAll(context.Background())
	if c.NearEnd(99, 5) {
		t.Error("NearEnd() = true once exhausted")
	}
}
