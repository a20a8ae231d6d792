package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/nrfta/gridcache-go/console/models"
)

// ListProjectsResponse is offset-paged like the team roster.
type ListProjectsResponse struct {
	Data       []models.Project `json:"data"`
	TotalCount int              `json:"totalCount"`
	Offset     int              `json:"offset"`
}

func (s *Server) HandleListProjects(c fiber.Ctx) error {
	limit := s.pageLimit(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	q := s.db.WithContext(c.Context()).Model(&models.Project{})
	if v := c.Query("department"); v != "" {
		q = q.Where("department = ?", v)
	}
	if v := c.Query("status"); v != "" {
		q = q.Where("status = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		s.log.Error().Err(err).Msg("count projects")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list projects"})
	}

	var rows []models.Project
	err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&rows).Error
	if err != nil {
		s.log.Error().Err(err).Msg("list projects")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list projects"})
	}

	return c.JSON(ListProjectsResponse{Data: rows, TotalCount: int(total), Offset: offset})
}

// CreateProjectRequest is the create payload for a project.
type CreateProjectRequest struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Status     string `json:"status"`
}

func (s *Server) HandleCreateProject(c fiber.Ctx) error {
	var req CreateProjectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if req.Status == "" {
		req.Status = models.ProjectActive
	}

	fields := map[string]string{}
	if req.Name == "" {
		fields["name"] = "required"
	}
	if !models.ValidDepartment(req.Department) {
		fields["department"] = "unknown department"
	}
	if !models.ValidProjectStatus(req.Status) {
		fields["status"] = "unknown status"
	}
	if len(fields) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Error:   "validation failed",
			Details: validationDetails(fields),
		})
	}

	now := time.Now().UTC()
	project := models.Project{
		ID:         uuid.New(),
		Name:       req.Name,
		Department: req.Department,
		Status:     req.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.db.WithContext(c.Context()).Create(&project).Error; err != nil {
		s.log.Error().Err(err).Msg("create project")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to create project"})
	}

	return c.Status(fiber.StatusCreated).JSON(project)
}
