package keyset

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("whereClause", func() {
	It("builds the expanded comparison for a single descending column", func() {
		pos := &Position{Values: map[string]any{"id": "r-10"}}
		clause, args := whereClause(pos, []Sort{{Column: "id", Desc: true}})

		Expect(clause).To(Equal("(id < ?)"))
		Expect(args).To(Equal([]any{"r-10"}))
	})

	It("chains equality prefixes for composite orders", func() {
		pos := &Position{Values: map[string]any{"name": "edge", "id": "r-10"}}
		clause, args := whereClause(pos, []Sort{
			{Column: "name", Desc: false},
			{Column: "id", Desc: true},
		})

		Expect(clause).To(Equal("(name > ? OR (name = ? AND id < ?))"))
		Expect(args).To(Equal([]any{"edge", "edge", "r-10"}))
	})

	It("uses each column's own operator for mixed directions", func() {
		pos := &Position{Values: map[string]any{"cost_per_hour": 2.5, "created_at": "x", "id": "r-1"}}
		clause, _ := whereClause(pos, []Sort{
			{Column: "cost_per_hour", Desc: true},
			{Column: "created_at", Desc: false},
			{Column: "id", Desc: true},
		})

		Expect(clause).To(Equal("(cost_per_hour < ? OR (cost_per_hour = ? AND created_at > ?) OR (cost_per_hour = ? AND created_at = ? AND id < ?))"))
	})

	It("returns nothing when the position misses an ordered column", func() {
		pos := &Position{Values: map[string]any{"name": "edge"}}
		clause, args := whereClause(pos, []Sort{
			{Column: "name", Desc: false},
			{Column: "id", Desc: true},
		})

		Expect(clause).To(BeEmpty())
		Expect(args).To(BeNil())
	})

	It("converts RFC3339 cursor strings back to timestamps", func() {
		pos := &Position{Values: map[string]any{"created_at": "2026-03-01T12:00:00Z"}}
		_, args := whereClause(pos, []Sort{{Column: "created_at", Desc: true}})

		Expect(args).To(HaveLen(1))
		Expect(args[0]).To(Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	})
})

var _ = Describe("orderClause", func() {
	It("renders direction per column", func() {
		Expect(orderClause([]Sort{
			{Column: "name", Desc: false},
			{Column: "id", Desc: true},
		})).To(Equal("name ASC, id DESC"))
	})
})
