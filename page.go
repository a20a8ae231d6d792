// Package gridcache provides the client-side core of an infinite-scroll
// resource list: typed pages, hierarchical cache keys, and the shared
// contracts between the page cache (store), the pagination controller
// (session), and the optimistic mutation coordinator (optimistic).
//
// The package is deliberately free of any HTTP or UI concern. Fetching is
// abstracted behind PageFetcher, and all collaborators are constructed
// explicitly and passed in; there is no package-level state.
package gridcache

// Page is one fetch result: an ordered slice of items, the opaque cursor
// for the following page, and pagination metadata.
//
// Type parameter T is the item type being listed (e.g. a Resource DTO).
type Page[T any] struct {
	// Items contains this page's items in server order.
	Items []T `json:"data"`

	// NextCursor is the opaque, server-assigned position token for the next
	// page. Nil means this is the final page.
	NextCursor *string `json:"nextCursor"`

	// TotalCount is the server's estimate of the full result size.
	TotalCount int `json:"totalCount"`

	// HasMore reports whether another page exists. It always equals
	// NextCursor != nil; Normalize enforces that.
	HasMore bool `json:"hasMore"`
}

// Normalize enforces the page invariant HasMore == (NextCursor != nil),
// treating the cursor as the source of truth. An empty-string cursor counts
// as absent.
func (p *Page[T]) Normalize() {
	if p.NextCursor != nil && *p.NextCursor == "" {
		p.NextCursor = nil
	}
	p.HasMore = p.NextCursor != nil
}

// Flatten concatenates the items of the given pages in slice order into one
// logical sequence. It is a pure function of its input: the controller
// recomputes the flattened view from cached pages on every change rather
// than patching it incrementally.
func Flatten[T any](pages []Page[T]) []T {
	n := 0
	for _, p := range pages {
		n += len(p.Items)
	}

	out := make([]T, 0, n)
	for _, p := range pages {
		out = append(out, p.Items...)
	}

	return out
}

// ClonePages returns a deep-enough copy of a page sequence for snapshotting:
// the page slice and each page's item slice are copied. Items themselves are
// copied by value, so value-type items (structs without shared pointers) are
// fully independent.
func ClonePages[T any](pages []Page[T]) []Page[T] {
	if pages == nil {
		return nil
	}

	out := make([]Page[T], len(pages))
	for i, p := range pages {
		cp := p
		if p.Items != nil {
			cp.Items = make([]T, len(p.Items))
			copy(cp.Items, p.Items)
		}
		if p.NextCursor != nil {
			c := *p.NextCursor
			cp.NextCursor = &c
		}
		out[i] = cp
	}

	return out
}
