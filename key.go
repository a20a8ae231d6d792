package gridcache

import (
	"sort"
	"strings"
)

// Kind discriminates list sessions from single-entity lookups within one
// entity domain.
type Kind string

const (
	KindList   Kind = "list"
	KindDetail Kind = "detail"
)

// Key identifies one independent cached sequence. Two keys with different
// filter params are entirely independent: loading or mutating one never
// touches the other.
type Key struct {
	// Domain is the entity domain, e.g. "resources".
	Domain string

	// Kind separates list sessions from detail lookups.
	Kind Kind

	// Params carries the filter/sort parameters that make this sequence
	// distinct, e.g. {"status": "ACTIVE", "sort": "name"}.
	Params map[string]string
}

// NewListKey builds a list key for a domain with the given params.
func NewListKey(domain string, params map[string]string) Key {
	return Key{Domain: domain, Kind: KindList, Params: params}
}

// NewDetailKey builds a detail key for a single entity.
func NewDetailKey(domain, id string) Key {
	return Key{Domain: domain, Kind: KindDetail, Params: map[string]string{"id": id}}
}

// String returns the canonical form of the key. Params are emitted in sorted
// order so that equal tuples always produce equal strings.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(k.Domain)
	b.WriteByte('/')
	b.WriteString(string(k.Kind))

	names := make([]string, 0, len(k.Params))
	for name := range k.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(k.Params[name])
	}

	return b.String()
}

// KeyPredicate selects cache entries by key. Predicates are how callers
// scope patches, invalidations, and snapshots to a key-prefix family.
type KeyPredicate func(Key) bool

// MatchDomain selects every entry in an entity domain, lists and details.
func MatchDomain(domain string) KeyPredicate {
	return func(k Key) bool {
		return k.Domain == domain
	}
}

// MatchLists selects every list entry in a domain, regardless of filter
// params. This is the scope a mutation uses: the mutated item may appear in
// any filtered sequence of its domain.
func MatchLists(domain string) KeyPredicate {
	return func(k Key) bool {
		return k.Domain == domain && k.Kind == KindList
	}
}

// MatchExact selects the single entry whose canonical form equals key's.
func MatchExact(key Key) KeyPredicate {
	want := key.String()
	return func(k Key) bool {
		return k.String() == want
	}
}
