package keyset

import (
	"github.com/friendsofgo/errors"
)

// field is one declared column: its SQL name, the short key it encodes
// under, and how to pull its value off an item.
type field[T any] struct {
	column    string
	shortKey  string
	extract   func(T) any
	fixed     bool
	fixedDesc bool
}

// Schema is the single source of truth tying cursors and ORDER BY clauses
// together for one listable entity. It declares which columns a client may
// sort by and which fixed tiebreaker columns are always appended, and it
// derives a matching Encoder so the cursor always carries exactly the
// columns the query orders by.
//
// Example:
//
//	var resourceSchema = keyset.NewSchema[models.Resource]().
//	    Sortable("name", "n", func(r models.Resource) any { return r.Name }).
//	    Sortable("created_at", "c", func(r models.Resource) any { return r.CreatedAt }).
//	    Fixed("id", true, "i", func(r models.Resource) any { return r.ID.String() })
type Schema[T any] struct {
	fields []*field[T]
}

// NewSchema creates an empty schema.
func NewSchema[T any]() *Schema[T] {
	return &Schema[T]{}
}

// Sortable declares a client-selectable sort column.
func (s *Schema[T]) Sortable(column, shortKey string, extract func(T) any) *Schema[T] {
	s.fields = append(s.fields, &field[T]{column: column, shortKey: shortKey, extract: extract})
	return s
}

// Fixed declares a column that is always appended to ORDER BY as a
// tiebreaker (typically the primary key), with a fixed direction.
func (s *Schema[T]) Fixed(column string, desc bool, shortKey string, extract func(T) any) *Schema[T] {
	s.fields = append(s.fields, &field[T]{
		column: column, shortKey: shortKey, extract: extract,
		fixed: true, fixedDesc: desc,
	})
	return s
}

// OrderBy builds the full ORDER BY list for a client sort choice: the
// chosen sortable column (if any) followed by the fixed tiebreakers in
// declaration order. An empty column means fixed tiebreakers only.
// An unknown column is an error.
func (s *Schema[T]) OrderBy(column string, desc bool) ([]Sort, error) {
	var out []Sort

	if column != "" {
		f := s.lookup(column)
		if f == nil || f.fixed {
			return nil, errors.Errorf("invalid sort column: %s", column)
		}
		out = append(out, Sort{Column: column, Desc: desc})
	}

	for _, f := range s.fields {
		if f.fixed {
			out = append(out, Sort{Column: f.column, Desc: f.fixedDesc})
		}
	}

	return out, nil
}

// EncoderFor returns an encoder that captures exactly the columns of the
// given ORDER BY list, stored under their short keys.
func (s *Schema[T]) EncoderFor(orderBy []Sort) *Encoder[T] {
	fields := make([]*field[T], 0, len(orderBy))
	for _, ob := range orderBy {
		if f := s.lookup(ob.Column); f != nil {
			fields = append(fields, f)
		}
	}

	return NewEncoder(func(item T) map[string]any {
		values := make(map[string]any, len(fields))
		for _, f := range fields {
			values[f.shortKey] = f.extract(item)
		}
		return values
	})
}

// ResolvePosition maps a decoded cursor's short keys back to column names,
// restricted to the columns of the given ORDER BY list. It returns nil when
// the cursor is missing any ordered column, which degrades to first-page
// behavior.
func (s *Schema[T]) ResolvePosition(pos *Position, orderBy []Sort) *Position {
	if pos == nil {
		return nil
	}

	values := make(map[string]any, len(orderBy))
	for _, ob := range orderBy {
		f := s.lookup(ob.Column)
		if f == nil {
			return nil
		}
		v, ok := pos.Values[f.shortKey]
		if !ok {
			return nil
		}
		values[ob.Column] = v
	}

	return &Position{Values: values}
}

func (s *Schema[T]) lookup(column string) *field[T] {
	for _, f := range s.fields {
		if f.column == column {
			return f
		}
	}
	return nil
}
