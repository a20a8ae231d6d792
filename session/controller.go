// Package session implements the pagination controller of one infinite-list
// session: it triggers page loads, appends fetched pages to the cached
// sequence, and exposes the flattened item view together with
// loading/error/has-more state.
//
// A controller owns exactly one cache key. Changing the filter or sort of a
// list means constructing a new controller over a new key; the old entry
// ages out through the store's idle eviction.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	gridcache "github.com/nrfta/gridcache-go"
	"github.com/nrfta/gridcache-go/store"
)

// State is the controller's position in its list-session state machine.
type State int

const (
	// StateIdle means no load has been attempted yet.
	StateIdle State = iota

	// StateLoadingFirstPage means the initial load is in flight.
	StateLoadingFirstPage

	// StateReady means at least one load settled successfully and no load is
	// in flight.
	StateReady

	// StateLoadingNextPage means a follow-up load is in flight.
	StateLoadingNextPage

	// StateReadyWithError means the last load failed. Already-loaded pages
	// remain visible and one more LoadNextPage attempt is permitted without
	// resetting the session.
	StateReadyWithError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoadingFirstPage:
		return "loadingFirstPage"
	case StateReady:
		return "ready"
	case StateLoadingNextPage:
		return "loadingNextPage"
	case StateReadyWithError:
		return "readyWithError"
	default:
		return "unknown"
	}
}

// Controller orchestrates page loads for one list session.
type Controller[T any] struct {
	mu           sync.Mutex
	cfg          gridcache.Config
	log          zerolog.Logger
	store        *store.Store[T]
	fetcher      gridcache.PageFetcher[T]
	key          gridcache.Key
	state        State
	lastErr      error
	epoch        uint64
	inFlight     bool
	revalidating bool

	// sleep is the backoff delay primitive, injectable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Controller.
type Option[T any] func(*Controller[T])

// WithLogger sets the controller's logger.
func WithLogger[T any](log zerolog.Logger) Option[T] {
	return func(c *Controller[T]) {
		c.log = log
	}
}

// WithSleep overrides the backoff delay primitive. Tests use this to avoid
// real waiting.
func WithSleep[T any](sleep func(ctx context.Context, d time.Duration) error) Option[T] {
	return func(c *Controller[T]) {
		c.sleep = sleep
	}
}

// New creates a controller for the given cache key, backed by the given
// store and fetcher.
func New[T any](
	key gridcache.Key,
	fetcher gridcache.PageFetcher[T],
	st *store.Store[T],
	cfg gridcache.Config,
	opts ...Option[T],
) *Controller[T] {
	c := &Controller[T]{
		cfg:     cfg.WithDefaults(),
		log:     zerolog.Nop(),
		store:   st,
		fetcher: fetcher,
		key:     key,
		state:   StateIdle,
		sleep:   sleepCtx,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Key returns the cache key this controller owns.
func (c *Controller[T]) Key() gridcache.Key {
	return c.key
}

// State returns the current session state.
func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error recorded by the last failed load, or nil.
func (c *Controller[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Loading reports whether a load is currently in flight.
func (c *Controller[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// HasMore reports whether the last fetched page announced a next cursor.
// Before the first load it reports true, so the initial load is attempted.
func (c *Controller[T]) HasMore() bool {
	entry, ok := c.store.Get(c.key)
	if !ok || len(entry.Pages) == 0 {
		return true
	}
	return entry.Pages[len(entry.Pages)-1].HasMore
}

// Items returns the flattened item sequence: the concatenation of all
// fetched pages' items in load order, recomputed from cache content alone.
func (c *Controller[T]) Items() []T {
	entry, ok := c.store.Get(c.key)
	if !ok {
		return nil
	}
	return gridcache.Flatten(entry.Pages)
}

// TotalCount returns the server's estimate from the most recent page, or 0
// before the first load.
func (c *Controller[T]) TotalCount() int {
	entry, ok := c.store.Get(c.key)
	if !ok || len(entry.Pages) == 0 {
		return 0
	}
	return entry.Pages[len(entry.Pages)-1].TotalCount
}

// LoadNextPage loads the page after the last fetched one and appends it to
// the cached sequence. It is a no-op returning nil when a load is already in
// flight or when the last page reported no next cursor; this guard is what
// guarantees at most one in-flight load per session and therefore
// initiation-ordered appends.
//
// A transport failure (after retries) is recorded as session state, so prior
// pages stay visible and one more attempt is permitted. It is also returned
// for callers that want to react inline.
func (c *Controller[T]) LoadNextPage(ctx context.Context) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil
	}

	entry, haveEntry := c.store.Get(c.key)
	var cursor *string
	if haveEntry && len(entry.Pages) > 0 {
		last := entry.Pages[len(entry.Pages)-1]
		if !last.HasMore {
			c.mu.Unlock()
			return nil
		}
		cursor = last.NextCursor
	}

	c.inFlight = true
	if !haveEntry || len(entry.Pages) == 0 {
		c.state = StateLoadingFirstPage
	} else {
		c.state = StateLoadingNextPage
	}
	epoch := c.epoch
	gen := entry.Generation
	c.mu.Unlock()

	page, err := c.fetchWithRetry(ctx, cursor)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.inFlight = false

	if c.epoch != epoch {
		// Session was reset while the load was in flight; the result belongs
		// to a torn-down context and must not touch the cache.
		c.log.Debug().Str("key", c.key.String()).Msg("discarding page load from superseded session epoch")
		return nil
	}

	if err != nil {
		c.state = StateReadyWithError
		c.lastErr = err
		c.log.Debug().Err(err).Str("key", c.key.String()).Msg("page load failed")
		return err
	}

	page.Normalize()
	pages := append(entry.Pages, page)
	if !c.store.SetPagesIfGeneration(c.key, pages, gen) {
		// The entry moved underneath us (mutation, invalidation refill, or
		// eviction). Dropping the fetched page is the safe outcome; the next
		// observation reloads from current truth.
		c.log.Debug().Str("key", c.key.String()).Msg("discarding page load for superseded cache generation")
	}

	c.state = StateReady
	c.lastErr = nil
	return nil
}

// Reset abandons any in-flight load result and returns the session to idle.
// It does not clear the cache entry; the store's eviction owns that.
func (c *Controller[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.state = StateIdle
	c.lastErr = nil
}

func (c *Controller[T]) fetchWithRetry(ctx context.Context, cursor *string) (gridcache.Page[T], error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.RetryCount; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, c.cfg.Backoff(attempt-1)); err != nil {
				return gridcache.Page[T]{}, lastErr
			}
		}

		fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
		page, err := c.fetcher.FetchPage(fetchCtx, cursor, c.cfg.PageSize)
		cancel()

		if err == nil {
			return page, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return gridcache.Page[T]{}, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
