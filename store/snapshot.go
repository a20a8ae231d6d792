package store

import gridcache "github.com/nrfta/gridcache-go"

// Snapshot is a mutation-scoped copy of the prior values of a set of
// entries. It exists only for the duration of one optimistic mutation: taken
// at mutation start, restored verbatim on failure, and discarded either way.
type Snapshot[T any] struct {
	entries []snapshotEntry[T]
}

type snapshotEntry[T any] struct {
	key         gridcache.Key
	pages       []gridcache.Page[T]
	invalidated bool
}

// Len returns the number of captured entries.
func (sn *Snapshot[T]) Len() int {
	if sn == nil {
		return 0
	}
	return len(sn.entries)
}

// Snapshot deep-copies every entry selected by pred.
func (s *Store[T]) Snapshot(pred gridcache.KeyPredicate) *Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	sn := &Snapshot[T]{}
	for _, st := range s.entries {
		if !pred(st.key) {
			continue
		}
		sn.entries = append(sn.entries, snapshotEntry[T]{
			key:         st.key,
			pages:       gridcache.ClonePages(st.pages),
			invalidated: st.invalidated,
		})
	}

	return sn
}

// Restore writes every snapshotted entry back, wholesale. Restoration is
// last-writer-wins at the entry granularity, never a per-item merge: if an
// entry was evicted since the snapshot was taken it is re-created with the
// snapshotted pages, and whatever replaced an entry meanwhile is
// overwritten.
func (s *Store[T]) Restore(sn *Snapshot[T]) {
	if sn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, se := range sn.entries {
		st := s.ensure(se.key)
		st.pages = gridcache.ClonePages(se.pages)
		st.invalidated = se.invalidated
		st.generation++
	}
}
