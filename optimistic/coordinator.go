// Package optimistic implements the mutation coordinator: a user-initiated
// change is written into the cached pages immediately, the server call is
// issued afterwards, and on failure the touched entries are restored
// verbatim from a snapshot taken at mutation start.
//
// Ordering matters in exactly one place here: in-flight background refetches
// for the affected keys are cancelled strictly before the speculative patch
// is applied. Otherwise a stale refetch resolving mid-mutation could
// overwrite the optimistic value with pre-mutation server state.
package optimistic

import (
	"context"

	"github.com/rs/zerolog"

	gridcache "github.com/nrfta/gridcache-go"
	"github.com/nrfta/gridcache-go/store"
)

// ItemPatch is the speculative transform for one cached item. It returns
// the replacement value and whether the item was the mutation's target;
// untargeted items are left untouched.
type ItemPatch[T any] func(T) (T, bool)

// Call issues the actual server mutation. A non-nil result is the server's
// authoritative version of the mutated entity.
type Call[T any] func(ctx context.Context) (*T, error)

// Coordinator applies optimistic mutations against a store.
type Coordinator[T any] struct {
	store *store.Store[T]
	cfg   gridcache.Config
	log   zerolog.Logger
}

// Option configures a Coordinator.
type Option[T any] func(*Coordinator[T])

// WithLogger sets the coordinator's logger.
func WithLogger[T any](log zerolog.Logger) Option[T] {
	return func(c *Coordinator[T]) {
		c.log = log
	}
}

// New creates a coordinator over the given store.
func New[T any](st *store.Store[T], cfg gridcache.Config, opts ...Option[T]) *Coordinator[T] {
	c := &Coordinator[T]{
		store: st,
		cfg:   cfg.WithDefaults(),
		log:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Mutate runs one optimistic mutation:
//
//  1. cancel in-flight refetches for every entry selected by scope,
//  2. snapshot those entries,
//  3. apply patch to every cached item in scope (visible to readers before
//     the network call settles),
//  4. issue call,
//  5. on success, overwrite the target with the server's authoritative value
//     and invalidate the scope so the next observation reconciles,
//  6. on failure, restore the snapshot verbatim and return the error.
//
// The snapshot is released when Mutate returns, regardless of outcome.
func (c *Coordinator[T]) Mutate(
	ctx context.Context,
	scope gridcache.KeyPredicate,
	patch ItemPatch[T],
	call Call[T],
) (*T, error) {
	c.store.CancelRefetches(scope)

	snap := c.store.Snapshot(scope)
	c.store.PatchAllMatching(scope, pagePatch(patch))

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	result, err := call(callCtx)
	if err != nil {
		c.store.Restore(snap)
		c.log.Debug().Err(err).Msg("mutation failed, cache rolled back")
		return nil, err
	}

	if result != nil {
		authoritative := *result
		c.store.PatchAllMatching(scope, pagePatch(func(item T) (T, bool) {
			if _, target := patch(item); target {
				return authoritative, true
			}
			return item, false
		}))
	}

	c.store.Invalidate(scope)
	return result, nil
}

// pagePatch lifts an item-level patch to the page level.
func pagePatch[T any](patch ItemPatch[T]) func(gridcache.Page[T]) gridcache.Page[T] {
	return func(p gridcache.Page[T]) gridcache.Page[T] {
		items := make([]T, len(p.Items))
		copy(items, p.Items)
		for i, item := range items {
			if next, ok := patch(item); ok {
				items[i] = next
			}
		}
		p.Items = items
		return p
	}
}
