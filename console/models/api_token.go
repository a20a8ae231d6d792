package models

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
)

// APIToken is a bearer credential record. Only the bcrypt hash of the token
// is stored; the cleartext exists once, at issuance.
type APIToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(120);not null" json:"name"`
	TokenHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role      string    `gorm:"type:varchar(20);not null" json:"role"`

	RevokedAt null.Time `gorm:"type:timestamptz" json:"revokedAt"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (APIToken) TableName() string {
	return "console_api_tokens"
}
