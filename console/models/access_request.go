package models

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
)

// AccessRequest is a pending or settled request for access to a resource.
type AccessRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null;index" json:"requesterId"`
	ResourceID  uuid.UUID `gorm:"type:uuid;not null;index" json:"resourceId"`
	Reason      string    `gorm:"type:text;not null" json:"reason"`
	Status      string    `gorm:"type:varchar(20);not null;index" json:"status"`

	DecidedBy null.String `gorm:"type:varchar(120)" json:"decidedBy"`
	DecidedAt null.Time   `gorm:"type:timestamptz" json:"decidedAt"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (AccessRequest) TableName() string {
	return "console_access_requests"
}
