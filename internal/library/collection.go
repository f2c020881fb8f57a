// Package library pages through the user's album collection for the crate.
package library

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tessro/vinyl/internal/core"
	"github.com/tessro/vinyl/internal/metrics"
)

// PageSize is the number of albums requested per page.
const PageSize = 50

// Collection accumulates pages from an AlbumSource.
type Collection struct {
	source  core.AlbumSource
	logger  *logrus.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	albums  []core.Album
	offset  int
	hasMore bool
	loading bool
	err     error
	// gen is bumped by Refresh so pages requested before it are dropped.
	gen int
}

// NewCollection creates an empty collection over source.
func NewCollection(source core.AlbumSource, logger *logrus.Logger, m *metrics.Metrics) *Collection {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Collection{
		source:  source,
		logger:  logger,
		metrics: m,
		hasMore: true,
	}
}

// Albums returns a copy of the albums loaded so far.
func (c *Collection) Albums() []core.Album {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.Album(nil), c.albums...)
}

// Len returns the number of albums loaded so far.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.albums)
}

// HasMore reports whether another page may exist.
func (c *Collection) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

// Loading reports whether a page request is in flight.
func (c *Collection) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the error from the last page request, if any.
func (c *Collection) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// LoadMore fetches the next page and appends it. It returns false without
// fetching when a request is already in flight or the collection is
// exhausted.
func (c *Collection) LoadMore(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.loading || !c.hasMore {
		c.mu.Unlock()
		return false, nil
	}
	c.loading = true
	offset := c.offset
	gen := c.gen
	c.mu.Unlock()

	page, err := c.source.SavedAlbums(ctx, offset, PageSize)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		return false, nil
	}
	c.loading = false

	if err != nil {
		c.err = err
		c.logger.WithError(err).WithField("offset", offset).Warn("Failed to load albums")
		return true, err
	}

	c.err = nil
	c.albums = append(c.albums, page.Albums...)
	c.offset = offset + len(page.Albums)
	c.hasMore = page.HasMore && len(page.Albums) > 0
	c.metrics.AlbumPage()

	c.logger.WithFields(logrus.Fields{
		"offset":   offset,
		"loaded":   len(page.Albums),
		"total":    len(c.albums),
		"has_more": c.hasMore,
	}).Debug("Loaded album page")

	return true, nil
}

// Refresh clears the collection and loads the first page again.
func (c *Collection) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.albums = nil
	c.offset = 0
	c.hasMore = true
	c.loading = false
	c.err = nil
	c.gen++
	c.mu.Unlock()

	_, err := c.LoadMore(ctx)
	return err
}

// LoadAll pages until the source is exhausted or ctx is done.
func (c *Collection) LoadAll(ctx context.Context) error {
	for c.HasMore() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fetched, err := c.LoadMore(ctx)
		if err != nil {
			return err
		}
		if !fetched {
			return nil
		}
	}
	return nil
}

// NearEnd reports whether index is within threshold rows of the last loaded
// album, which is when the crate asks for the next page.
func (c *Collection) NearEnd(index, threshold int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore && index >= len(c.albums)-threshold
}
