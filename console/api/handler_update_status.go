package api

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/nrfta/gridcache-go/console/feed"
	"github.com/nrfta/gridcache-go/console/models"
)

// UpdateStatusRequest is the status mutation payload. Any status may
// replace any other; there is deliberately no transition graph.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) HandleUpdateResourceStatus(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid resource id"})
	}

	var req UpdateStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if !models.ValidStatus(req.Status) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Error:   "validation failed",
			Details: "status: unknown status",
		})
	}

	var resource models.Resource
	if err := s.db.WithContext(c.Context()).First(&resource, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "resource not found"})
	}

	now := time.Now().UTC()
	resource.Status = req.Status
	resource.UpdatedAt = now
	resource.LastHealthCheckAt = null.TimeFrom(now)

	if err := s.db.WithContext(c.Context()).Save(&resource).Error; err != nil {
		s.log.Error().Err(err).Msg("update resource status")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to update resource"})
	}

	if s.hub != nil {
		s.hub.Broadcast(feed.NewResourceUpdated(resource))
	}

	return c.JSON(resource)
}
