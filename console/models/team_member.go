package models

import (
	"time"

	"github.com/google/uuid"
)

// TeamMember is a dashboard user entry.
type TeamMember struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(120);not null" json:"name"`
	Email      string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Role       string    `gorm:"type:varchar(20);not null" json:"role"`
	Department string    `gorm:"type:varchar(20);not null;index" json:"department"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (TeamMember) TableName() string {
	return "console_team_members"
}
