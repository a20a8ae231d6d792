package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/nrfta/gridcache-go/console/models"
)

// ListTeamMembersResponse is offset-paged: the team roster is small and
// mostly static, so keyset pagination would be overkill.
type ListTeamMembersResponse struct {
	Data       []models.TeamMember `json:"data"`
	TotalCount int                 `json:"totalCount"`
	Offset     int                 `json:"offset"`
}

func (s *Server) HandleListTeamMembers(c fiber.Ctx) error {
	limit := s.pageLimit(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	q := s.db.WithContext(c.Context()).Model(&models.TeamMember{})
	if v := c.Query("department"); v != "" {
		q = q.Where("department = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		s.log.Error().Err(err).Msg("count team members")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list team members"})
	}

	var rows []models.TeamMember
	err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&rows).Error
	if err != nil {
		s.log.Error().Err(err).Msg("list team members")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list team members"})
	}

	return c.JSON(ListTeamMembersResponse{Data: rows, TotalCount: int(total), Offset: offset})
}

// CreateTeamMemberRequest is the create payload for a roster entry.
type CreateTeamMemberRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

func (s *Server) HandleCreateTeamMember(c fiber.Ctx) error {
	var req CreateTeamMemberRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	fields := map[string]string{}
	if req.Name == "" {
		fields["name"] = "required"
	}
	if req.Email == "" {
		fields["email"] = "required"
	}
	if !models.ValidRole(req.Role) {
		fields["role"] = "unknown role"
	}
	if !models.ValidDepartment(req.Department) {
		fields["department"] = "unknown department"
	}
	if len(fields) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Error:   "validation failed",
			Details: validationDetails(fields),
		})
	}

	now := time.Now().UTC()
	member := models.TeamMember{
		ID:         uuid.New(),
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		Department: req.Department,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.db.WithContext(c.Context()).Create(&member).Error; err != nil {
		s.log.Error().Err(err).Msg("create team member")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to create team member"})
	}

	return c.Status(fiber.StatusCreated).JSON(member)
}
