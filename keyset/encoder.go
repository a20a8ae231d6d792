// Package keyset provides the server half of cursor pagination: an opaque
// cursor codec and a gorm query builder for keyset (seek) queries.
//
// Cursors are base64-encoded JSON objects mapping short keys to the sort
// column values of the last row served:
//
//	{"c":"2024-01-01T00:00:00Z","i":"f4a1…"}
//	→ eyJjIjoiMjAyNC0wMS0wMVQwMDowMDowMFoiLCJpIjoiZjRhMeKApiJ9
//
// Short keys come from a Schema, so cursors leak no column names. Invalid
// cursors decode to nil, which callers treat as "start from the beginning"
// rather than an error.
package keyset

import (
	"encoding/base64"
	"encoding/json"
)

// Position is a decoded cursor: the sort column values of the row to seek
// past.
type Position struct {
	Values map[string]any
}

// Sort is one ORDER BY directive.
type Sort struct {
	Column string
	Desc   bool
}

// Encoder converts items to opaque cursors and back, using an extractor
// that pulls the sort column values out of an item.
type Encoder[T any] struct {
	extract func(T) map[string]any
}

// NewEncoder creates an encoder over the given extractor. The extractor
// must return a value for every column used in ORDER BY.
func NewEncoder[T any](extract func(T) map[string]any) *Encoder[T] {
	return &Encoder[T]{extract: extract}
}

// Encode returns the opaque cursor marking item's position, or nil when the
// extractor yields nothing.
func (e *Encoder[T]) Encode(item T) *string {
	values := e.extract(item)
	if len(values) == 0 {
		return nil
	}

	data, err := json.Marshal(values)
	if err != nil {
		return nil
	}

	encoded := base64.URLEncoding.EncodeToString(data)
	return &encoded
}

// Decode parses an opaque cursor. It returns nil, never an error, for an
// empty, non-base64, or non-JSON cursor, so a corrupted cursor degrades to
// first-page behavior instead of failing the request.
func Decode(cursor string) *Position {
	if cursor == "" {
		return nil
	}

	data, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil
	}

	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil
	}
	if len(values) == 0 {
		return nil
	}

	return &Position{Values: values}
}
