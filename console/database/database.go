// Package database owns the console's gorm connection and schema migration.
package database

import (
	"github.com/friendsofgo/errors"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nrfta/gridcache-go/console/models"
)

// Connect opens a gorm connection against the given postgres URL.
func Connect(dbURL string, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}

	log.Info().Msg("database connected")
	return db, nil
}

// AutoMigrate creates or updates the console tables.
func AutoMigrate(db *gorm.DB, log zerolog.Logger) error {
	log.Info().Msg("running auto migration")

	err := db.AutoMigrate(
		&models.Resource{},
		&models.TeamMember{},
		&models.Project{},
		&models.AccessRequest{},
		&models.APIToken{},
	)
	if err != nil {
		return errors.Wrap(err, "auto migrate")
	}

	// Keyset pagination on the default sort needs a composite index; gorm
	// tags cannot express multi-column DESC ordering.
	err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_console_resources_created_id
		ON console_resources (created_at DESC, id DESC)`).Error
	if err != nil {
		return errors.Wrap(err, "create keyset index")
	}

	log.Info().Msg("auto migration completed")
	return nil
}
