package session

import (
	"context"

	gridcache "github.com/nrfta/gridcache-go"
)

// Observe registers a UI observer on the session's cache entry and returns
// the current flattened items immediately. If the entry has been invalidated
// or has aged past the freshness window, a background revalidation is kicked
// off; the stale value keeps being served until it settles. Call Release
// when the observer detaches.
func (c *Controller[T]) Observe(ctx context.Context) []T {
	c.store.Observe(c.key)
	items := c.Items()

	if c.store.NeedsRevalidation(c.key) {
		c.startRevalidate(ctx)
	}

	return items
}

// Release detaches a previously registered observer.
func (c *Controller[T]) Release() {
	c.store.Release(c.key)
}

// startRevalidate spawns at most one background revalidation at a time. The
// refetch is registered with the store so a mutation can cancel it before
// patching optimistically.
func (c *Controller[T]) startRevalidate(ctx context.Context) {
	c.mu.Lock()
	if c.revalidating {
		c.mu.Unlock()
		return
	}
	c.revalidating = true
	epoch := c.epoch
	c.mu.Unlock()

	rctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.store.TrackRefetch(c.key, cancel)

	go func() {
		defer func() {
			c.store.TrackRefetch(c.key, nil)
			cancel()
			c.mu.Lock()
			c.revalidating = false
			c.mu.Unlock()
		}()

		c.revalidate(rctx, epoch)
	}()
}

// revalidate refetches the already-loaded prefix of the sequence from the
// beginning, following fresh cursors, and swaps it in wholesale. The swap is
// generation-checked: if anything (a mutation's optimistic patch, another
// load) touched the entry meanwhile, the refetched pages are discarded
// rather than allowed to clobber newer state.
func (c *Controller[T]) revalidate(ctx context.Context, epoch uint64) {
	entry, ok := c.store.Get(c.key)
	if !ok || len(entry.Pages) == 0 {
		return
	}

	want := len(entry.Pages)
	fresh := make([]gridcache.Page[T], 0, want)
	var cursor *string

	for i := 0; i < want; i++ {
		fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
		page, err := c.fetcher.FetchPage(fetchCtx, cursor, c.cfg.PageSize)
		cancel()

		if err != nil {
			// Revalidation is best-effort: the cached value stays served and
			// the entry stays marked for the next observation to try again.
			c.log.Debug().Err(err).Str("key", c.key.String()).Msg("background revalidation failed")
			return
		}

		page.Normalize()
		fresh = append(fresh, page)
		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}

	c.mu.Lock()
	stale := c.epoch != epoch
	c.mu.Unlock()
	if stale {
		return
	}

	if !c.store.SetPagesIfGeneration(c.key, fresh, entry.Generation) {
		c.log.Debug().Str("key", c.key.String()).Msg("discarding revalidation for superseded cache generation")
	}
}
