package models

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Resource is an infrastructure resource row. Resources are never deleted;
// retirement is the DECOMMISSIONED status.
type Resource struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(120);not null;index" json:"name"`
	Category   string    `gorm:"type:varchar(20);not null;index" json:"category"`
	Department string    `gorm:"type:varchar(20);not null;index" json:"department"`
	Provider   string    `gorm:"type:varchar(20);not null" json:"provider"`
	Region     string    `gorm:"type:varchar(64);not null" json:"region"`

	Status            string  `gorm:"type:varchar(20);not null;index" json:"status"`
	CPUUtilization    float64 `gorm:"not null;default:0" json:"cpuUtilization"`
	MemoryUtilization float64 `gorm:"not null;default:0" json:"memoryUtilization"`
	CostPerHour       float64 `gorm:"not null;default:0" json:"costPerHour"`

	Tags pq.StringArray `gorm:"type:text[]" json:"tags"`

	LastHealthCheckAt null.Time `gorm:"type:timestamptz" json:"lastHealthCheckAt"`
	CreatedAt         time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"not null" json:"updatedAt"`
}

func (Resource) TableName() string {
	return "console_resources"
}
