package api

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/nrfta/gridcache-go/console/models"
)

func (s *Server) HandleGetResource(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid resource id"})
	}

	var resource models.Resource
	err = s.db.WithContext(c.Context()).First(&resource, "id = ?", id).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "resource not found"})
	}

	return c.JSON(resource)
}
