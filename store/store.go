// Package store implements the page cache behind a list session: keyed
// storage of fetched page sequences with staleness tracking, predicate-scoped
// patching and invalidation, snapshot/restore for optimistic mutations, and
// idle eviction.
//
// The store is the only shared mutable state in the core. Everything that
// changes cached pages goes through SetPages, PatchAllMatching, Invalidate,
// or Restore; readers get copies and can never corrupt an entry. One mutex
// guards the whole map, which keeps every operation atomic with respect to
// concurrent reads: a reader never observes a partially transformed entry.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	gridcache "github.com/nrfta/gridcache-go"
)

// Entry is a read-only view of one cached sequence, returned by Get. The
// page slice is a copy; mutating it does not touch the cache.
type Entry[T any] struct {
	Key        gridcache.Key
	Pages      []gridcache.Page[T]
	FetchedAt  time.Time
	Generation uint64

	// Invalidated reports whether the entry was marked stale by Invalidate.
	// An invalidated entry is still served; the next observer is expected to
	// trigger a refetch.
	Invalidated bool
}

// entryState is the store's owned representation of one cached sequence.
type entryState[T any] struct {
	key          gridcache.Key
	pages        []gridcache.Page[T]
	fetchedAt    time.Time
	lastObserved time.Time
	invalidated  bool
	generation   uint64
	observers    int

	// cancelRefetch aborts the in-flight background refetch for this entry,
	// if any. Registered by the session controller, fired by the optimistic
	// coordinator before patching.
	cancelRefetch context.CancelFunc
}

// Store is a goroutine-safe page cache. Construct one per dashboard session
// with New and pass it to the session controller and mutation coordinator;
// there is no package-level instance.
type Store[T any] struct {
	mu      sync.Mutex
	cfg     gridcache.Config
	log     zerolog.Logger
	now     func() time.Time
	entries map[string]*entryState[T]
}

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithLogger sets the logger used for consistency warnings.
func WithLogger[T any](log zerolog.Logger) Option[T] {
	return func(s *Store[T]) {
		s.log = log
	}
}

// WithClock overrides the time source. Tests use this to drive staleness and
// eviction deterministically.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(s *Store[T]) {
		s.now = now
	}
}

// New creates an empty store with the given configuration.
func New[T any](cfg gridcache.Config, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		cfg:     cfg.WithDefaults(),
		log:     zerolog.Nop(),
		now:     time.Now,
		entries: make(map[string]*entryState[T]),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get returns a copy of the entry for key, or ok=false if absent.
func (s *Store[T]) Get(key gridcache.Key) (Entry[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.entries[key.String()]
	if !ok {
		return Entry[T]{}, false
	}

	return s.view(st), true
}

// SetPages replaces the entry's page sequence wholesale, marks it fresh, and
// bumps its generation. It creates the entry if absent. The new generation
// is returned.
func (s *Store[T]) SetPages(key gridcache.Key, pages []gridcache.Page[T]) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.ensure(key)
	st.pages = gridcache.ClonePages(pages)
	st.fetchedAt = s.now()
	st.invalidated = false
	st.generation++

	return st.generation
}

// SetPagesIfGeneration replaces the entry's pages only if its generation
// still equals expect. It returns false, leaving the entry untouched, when
// the entry was superseded (mutated, invalidated and refilled, or evicted)
// since the caller captured expect. Async fetch results are applied through
// this so a stale response can never clobber newer state.
func (s *Store[T]) SetPagesIfGeneration(key gridcache.Key, pages []gridcache.Page[T], expect uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.entries[key.String()]
	if !ok {
		// A zero expectation means the caller captured "entry absent"; the
		// write is valid as long as that is still true.
		if expect != 0 {
			return false
		}
		st = s.ensure(key)
	} else if st.generation != expect {
		return false
	}

	st.pages = gridcache.ClonePages(pages)
	st.fetchedAt = s.now()
	st.invalidated = false
	st.generation++

	return true
}

// Generation returns the entry's current generation, or 0 if absent.
func (s *Store[T]) Generation(key gridcache.Key) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.entries[key.String()]; ok {
		return st.generation
	}
	return 0
}

// PatchAllMatching applies transform to every page of every entry selected
// by pred, atomically with respect to concurrent reads. It returns the
// number of entries patched. A predicate that selects nothing is treated as
// a no-op and logged as a warning, not an error: the targeted entries may
// simply have been evicted meanwhile.
func (s *Store[T]) PatchAllMatching(pred gridcache.KeyPredicate, transform func(gridcache.Page[T]) gridcache.Page[T]) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	patched := 0
	for _, st := range s.entries {
		if !pred(st.key) {
			continue
		}

		next := make([]gridcache.Page[T], len(st.pages))
		for i, p := range st.pages {
			next[i] = transform(p)
		}
		st.pages = next
		st.generation++
		patched++
	}

	if patched == 0 {
		s.log.Warn().Msg("cache patch matched no entries")
	}

	return patched
}

// Invalidate marks every entry selected by pred as stale and returns how
// many were marked. Invalidated entries keep serving their cached pages;
// the next observation triggers a consistency refetch.
func (s *Store[T]) Invalidate(pred gridcache.KeyPredicate) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := 0
	for _, st := range s.entries {
		if pred(st.key) {
			st.invalidated = true
			st.generation++
			marked++
		}
	}

	return marked
}

// NeedsRevalidation reports whether the entry should be refetched in the
// background on observation: either it was invalidated, or it has aged past
// the freshness window. Absent entries report false; they need a first
// load, not a revalidation.
func (s *Store[T]) NeedsRevalidation(key gridcache.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.entries[key.String()]
	if !ok {
		return false
	}

	return st.invalidated || s.now().Sub(st.fetchedAt) > s.cfg.FreshnessWindow
}

// Observe increments the entry's observer count and stamps its last
// observation time, creating the entry if absent. Call Release when the
// observer detaches; unobserved entries become eligible for idle eviction.
func (s *Store[T]) Observe(key gridcache.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.ensure(key)
	st.observers++
	st.lastObserved = s.now()
}

// Release decrements the entry's observer count.
func (s *Store[T]) Release(key gridcache.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.entries[key.String()]; ok && st.observers > 0 {
		st.observers--
		st.lastObserved = s.now()
	}
}

// SweepIdle evicts entries that have had no observer for longer than the
// idle eviction window and returns how many were dropped. Callers run this
// periodically; the store does not own a background goroutine.
func (s *Store[T]) SweepIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.cfg.IdleEviction)
	evicted := 0

	for ks, st := range s.entries {
		if st.observers == 0 && st.lastObserved.Before(cutoff) {
			if st.cancelRefetch != nil {
				st.cancelRefetch()
			}
			delete(s.entries, ks)
			evicted++
		}
	}

	return evicted
}

// TrackRefetch registers cancel as the aborter for the entry's in-flight
// background refetch, replacing (and firing) any previous one. Pass nil to
// clear the registration once the refetch settles.
func (s *Store[T]) TrackRefetch(key gridcache.Key, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.ensure(key)
	if st.cancelRefetch != nil && cancel != nil {
		st.cancelRefetch()
	}
	st.cancelRefetch = cancel
}

// CancelRefetches aborts the in-flight background refetch of every entry
// selected by pred. The optimistic coordinator calls this strictly before
// applying a speculative patch, so a concurrently resolving stale refetch
// cannot clobber the optimistic value.
func (s *Store[T]) CancelRefetches(pred gridcache.KeyPredicate) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancelled := 0
	for _, st := range s.entries {
		if pred(st.key) && st.cancelRefetch != nil {
			st.cancelRefetch()
			st.cancelRefetch = nil
			cancelled++
		}
	}

	return cancelled
}

// Keys returns the keys of all live entries, in no particular order.
func (s *Store[T]) Keys() []gridcache.Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]gridcache.Key, 0, len(s.entries))
	for _, st := range s.entries {
		keys = append(keys, st.key)
	}

	return keys
}

// Len returns the number of live entries.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

func (s *Store[T]) ensure(key gridcache.Key) *entryState[T] {
	ks := key.String()
	st, ok := s.entries[ks]
	if !ok {
		st = &entryState[T]{key: key, lastObserved: s.now()}
		s.entries[ks] = st
	}
	return st
}

func (s *Store[T]) view(st *entryState[T]) Entry[T] {
	return Entry[T]{
		Key:         st.key,
		Pages:       gridcache.ClonePages(st.pages),
		FetchedAt:   st.fetchedAt,
		Generation:  st.generation,
		Invalidated: st.invalidated,
	}
}
