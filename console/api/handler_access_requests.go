package api

import (
	"strconv"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/nrfta/gridcache-go/console/feed"
	"github.com/nrfta/gridcache-go/console/models"
)

// ListAccessRequestsResponse is offset-paged.
type ListAccessRequestsResponse struct {
	Data       []models.AccessRequest `json:"data"`
	TotalCount int                    `json:"totalCount"`
	Offset     int                    `json:"offset"`
}

func (s *Server) HandleListAccessRequests(c fiber.Ctx) error {
	limit := s.pageLimit(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	q := s.db.WithContext(c.Context()).Model(&models.AccessRequest{})
	if v := c.Query("status"); v != "" {
		q = q.Where("status = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		s.log.Error().Err(err).Msg("count access requests")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list access requests"})
	}

	var rows []models.AccessRequest
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error
	if err != nil {
		s.log.Error().Err(err).Msg("list access requests")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list access requests"})
	}

	return c.JSON(ListAccessRequestsResponse{Data: rows, TotalCount: int(total), Offset: offset})
}

// CreateAccessRequestRequest asks for access to a resource.
type CreateAccessRequestRequest struct {
	RequesterID string `json:"requesterId"`
	ResourceID  string `json:"resourceId"`
	Reason      string `json:"reason"`
}

func (s *Server) HandleCreateAccessRequest(c fiber.Ctx) error {
	var req CreateAccessRequestRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	fields := map[string]string{}
	requesterID, err := uuid.Parse(req.RequesterID)
	if err != nil {
		fields["requesterId"] = "invalid id"
	}
	resourceID, err := uuid.Parse(req.ResourceID)
	if err != nil {
		fields["resourceId"] = "invalid id"
	}
	if req.Reason == "" {
		fields["reason"] = "required"
	}
	if len(fields) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Error:   "validation failed",
			Details: validationDetails(fields),
		})
	}

	var resource models.Resource
	if err := s.db.WithContext(c.Context()).First(&resource, "id = ?", resourceID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "resource not found"})
	}

	now := time.Now().UTC()
	request := models.AccessRequest{
		ID:          uuid.New(),
		RequesterID: requesterID,
		ResourceID:  resourceID,
		Reason:      req.Reason,
		Status:      models.RequestPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.WithContext(c.Context()).Create(&request).Error; err != nil {
		s.log.Error().Err(err).Msg("create access request")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to create access request"})
	}

	if s.hub != nil {
		s.hub.Broadcast(feed.NewAccessRequested(request, resource.Name))
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

// DecideAccessRequestRequest settles a pending request.
type DecideAccessRequestRequest struct {
	Approve   bool   `json:"approve"`
	DecidedBy string `json:"decidedBy"`
}

func (s *Server) HandleDecideAccessRequest(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request id"})
	}

	var req DecideAccessRequestRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	var request models.AccessRequest
	if err := s.db.WithContext(c.Context()).First(&request, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "access request not found"})
	}

	if request.Status != models.RequestPending {
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: "request already decided"})
	}

	now := time.Now().UTC()
	request.Status = models.RequestApproved
	if !req.Approve {
		request.Status = models.RequestDenied
	}
	request.DecidedBy = null.StringFrom(req.DecidedBy)
	request.DecidedAt = null.TimeFrom(now)
	request.UpdatedAt = now

	if err := s.db.WithContext(c.Context()).Save(&request).Error; err != nil {
		s.log.Error().Err(err).Msg("decide access request")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to update access request"})
	}

	return c.JSON(request)
}
