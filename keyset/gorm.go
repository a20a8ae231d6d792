package keyset

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Params are the inputs of one keyset page query.
type Params struct {
	// Limit is the page size. Callers fetch Limit+1 rows (see Apply) to
	// detect whether a next page exists without a second query.
	Limit int

	// After is the decoded cursor position, nil for the first page.
	After *Position

	// OrderBy is the full sort directive list, fixed tiebreakers included.
	OrderBy []Sort
}

// Apply adds the keyset WHERE clause, ORDER BY, and LIMIT+1 to a gorm
// query. The extra row is the has-more probe: callers trim the result back
// to Limit and treat the overflow as "another page exists".
func Apply(db *gorm.DB, p Params) *gorm.DB {
	if p.After != nil && len(p.OrderBy) > 0 {
		if clause, args := whereClause(p.After, p.OrderBy); clause != "" {
			db = db.Where(clause, args...)
		}
	}

	if len(p.OrderBy) > 0 {
		db = db.Order(orderClause(p.OrderBy))
	}

	if p.Limit > 0 {
		db = db.Limit(p.Limit + 1)
	}

	return db
}

// Trim applies the N+1 pattern to a fetched row set: it reports whether an
// overflow row was present and returns the rows cut back to limit.
func Trim[T any](rows []T, limit int) ([]T, bool) {
	if limit > 0 && len(rows) > limit {
		return rows[:limit], true
	}
	return rows, false
}

// whereClause builds the expanded keyset comparison for a cursor position:
//
//	DESC: col1 < ? OR (col1 = ? AND col2 < ?)
//	ASC:  col1 > ? OR (col1 = ? AND col2 > ?)
//
// The expanded form works on any backend, unlike tuple comparison. Mixed
// directions use each column's own operator. Returns an empty clause when
// the position is missing any ordered column.
func whereClause(pos *Position, orderBy []Sort) (string, []any) {
	if pos == nil || len(pos.Values) == 0 || len(orderBy) == 0 {
		return "", nil
	}

	var parts []string
	var args []any

	for i, ob := range orderBy {
		val, ok := pos.Values[ob.Column]
		if !ok {
			return "", nil
		}

		op := ">"
		if ob.Desc {
			op = "<"
		}

		if i == 0 {
			parts = append(parts, fmt.Sprintf("%s %s ?", ob.Column, op))
			args = append(args, normalizeValue(val))
			continue
		}

		var equals []string
		for j := 0; j < i; j++ {
			prev := orderBy[j]
			equals = append(equals, fmt.Sprintf("%s = ?", prev.Column))
			args = append(args, normalizeValue(pos.Values[prev.Column]))
		}

		parts = append(parts, fmt.Sprintf("(%s AND %s %s ?)",
			strings.Join(equals, " AND "), ob.Column, op))
		args = append(args, normalizeValue(val))
	}

	return "(" + strings.Join(parts, " OR ") + ")", args
}

func orderClause(orderBy []Sort) string {
	parts := make([]string, len(orderBy))
	for i, ob := range orderBy {
		dir := "ASC"
		if ob.Desc {
			dir = "DESC"
		}
		parts[i] = ob.Column + " " + dir
	}
	return strings.Join(parts, ", ")
}

// normalizeValue undoes what JSON decoding did to cursor values: RFC3339
// strings become time.Time so timestamp columns compare correctly; numbers
// stay float64 and the database casts them.
func normalizeValue(val any) any {
	if s, ok := val.(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
	}
	return val
}
