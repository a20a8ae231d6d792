package api

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/nrfta/gridcache-go/console/models"
)

// CreateResourceRequest is the create payload. Validation mirrors the
// client-side rules; violations come back per-field in the 422 body.
type CreateResourceRequest struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Department  string   `json:"department"`
	Provider    string   `json:"provider"`
	Region      string   `json:"region"`
	Status      string   `json:"status"`
	CostPerHour float64  `json:"costPerHour"`
	Tags        []string `json:"tags"`
}

func (s *Server) HandleCreateResource(c fiber.Ctx) error {
	var req CreateResourceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if req.Status == "" {
		req.Status = models.StatusActive
	}

	if verr := validateResource(&req); verr != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Error:   "validation failed",
			Details: verr.Error(),
		})
	}

	now := time.Now().UTC()
	resource := models.Resource{
		ID:          uuid.New(),
		Name:        req.Name,
		Category:    req.Category,
		Department:  req.Department,
		Provider:    req.Provider,
		Region:      req.Region,
		Status:      req.Status,
		CostPerHour: req.CostPerHour,
		Tags:        pq.StringArray(req.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.WithContext(c.Context()).Create(&resource).Error; err != nil {
		s.log.Error().Err(err).Msg("create resource")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to create resource"})
	}

	return c.Status(fiber.StatusCreated).JSON(resource)
}
