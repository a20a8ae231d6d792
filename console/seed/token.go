package seed

import (
	"time"

	"github.com/friendsofgo/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nrfta/gridcache-go/console/models"
)

// Token stores an API token with the given cleartext and role, returning
// the created row. Only the bcrypt hash is persisted.
func Token(db *gorm.DB, name, cleartext, role string) (*models.APIToken, error) {
	if !models.ValidRole(role) {
		return nil, errors.Errorf("invalid role: %s", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cleartext), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash token")
	}

	token := models.APIToken{
		ID:        uuid.New(),
		Name:      name,
		TokenHash: string(hash),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	if err := db.Create(&token).Error; err != nil {
		return nil, errors.Wrap(err, "store token")
	}

	return &token, nil
}
