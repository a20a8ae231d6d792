package models

import (
	"time"

	"github.com/google/uuid"
)

// Project statuses.
const (
	ProjectActive   = "ACTIVE"
	ProjectPaused   = "PAUSED"
	ProjectArchived = "ARCHIVED"
)

// ProjectStatuses lists every valid project status.
var ProjectStatuses = []string{ProjectActive, ProjectPaused, ProjectArchived}

// ValidProjectStatus reports whether value is a known project status.
func ValidProjectStatus(value string) bool { return oneOf(value, ProjectStatuses) }

// Project groups resources under a department initiative.
type Project struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(120);not null" json:"name"`
	Department string    `gorm:"type:varchar(20);not null;index" json:"department"`
	Status     string    `gorm:"type:varchar(20);not null" json:"status"`

	ResourceCount int `gorm:"not null;default:0" json:"resourceCount"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Project) TableName() string {
	return "console_projects"
}
