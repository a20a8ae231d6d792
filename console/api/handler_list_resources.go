package api

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"gorm.io/gorm"

	gridcache "github.com/nrfta/gridcache-go"
	"github.com/nrfta/gridcache-go/console/models"
	"github.com/nrfta/gridcache-go/keyset"
)

// resourceSchema ties cursors and ORDER BY together for the resource list.
// The id tiebreaker makes every sort total, so cursors are unambiguous.
var resourceSchema = keyset.NewSchema[models.Resource]().
	Sortable("name", "n", func(r models.Resource) any { return r.Name }).
	Sortable("cost_per_hour", "p", func(r models.Resource) any { return r.CostPerHour }).
	Sortable("created_at", "c", func(r models.Resource) any { return r.CreatedAt }).
	Fixed("id", true, "i", func(r models.Resource) any { return r.ID.String() })

// sortColumns maps the query-string sort names to SQL columns.
var sortColumns = map[string]string{
	"name":    "name",
	"cost":    "cost_per_hour",
	"created": "created_at",
}

// HandleListResources serves GET /api/v1/resources: one keyset-paginated
// page of resources, filtered by the query parameters. The response body is
// the wire shape the client core consumes: {data, nextCursor, totalCount,
// hasMore}.
func (s *Server) HandleListResources(c fiber.Ctx) error {
	limit := s.pageLimit(c.Query("limit"))

	sortCol := "created_at"
	desc := true
	if name := c.Query("sort"); name != "" {
		col, ok := sortColumns[name]
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid sort", Details: name})
		}
		sortCol = col
		desc = c.Query("order", "asc") == "desc"
	}

	orderBy, err := resourceSchema.OrderBy(sortCol, desc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid sort"})
	}

	// An undecodable cursor degrades to the first page rather than failing.
	after := resourceSchema.ResolvePosition(keyset.Decode(c.Query("cursor")), orderBy)

	base := s.resourceFilter(c)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		s.log.Error().Err(err).Msg("count resources")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list resources"})
	}

	var rows []models.Resource
	err = keyset.
		Apply(base, keyset.Params{Limit: limit, After: after, OrderBy: orderBy}).
		Find(&rows).
		Error
	if err != nil {
		s.log.Error().Err(err).Msg("list resources")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list resources"})
	}

	rows, hasMore := keyset.Trim(rows, limit)

	var next *string
	if hasMore {
		next = resourceSchema.EncoderFor(orderBy).Encode(rows[len(rows)-1])
	}

	page := gridcache.Page[models.Resource]{
		Items:      rows,
		NextCursor: next,
		TotalCount: int(total),
	}
	page.Normalize()

	return c.JSON(page)
}

// resourceFilter builds the filtered base query from the request's filter
// parameters. Every page of one logical sequence re-derives the same filter
// from the same parameters, so cursors stay valid across pages.
func (s *Server) resourceFilter(c fiber.Ctx) *gorm.DB {
	q := s.db.WithContext(c.Context()).Model(&models.Resource{})

	if v := c.Query("status"); v != "" {
		q = q.Where("status = ?", v)
	}
	if v := c.Query("category"); v != "" {
		q = q.Where("category = ?", v)
	}
	if v := c.Query("department"); v != "" {
		q = q.Where("department = ?", v)
	}
	if v := c.Query("q"); v != "" {
		q = q.Where("name ILIKE ?", "%"+v+"%")
	}

	return q
}

// pageLimit parses the limit parameter, applying the configured default and
// ceiling.
func (s *Server) pageLimit(raw string) int {
	limit := s.cfg.DefaultPageSize
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	return limit
}
