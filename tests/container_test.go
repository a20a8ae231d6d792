package console_test

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/nrfta/gridcache-go/console/database"
)

// Container is a running PostgreSQL testcontainer with the console schema
// migrated and a gorm connection open.
type Container struct {
	Container *postgres.PostgresContainer
	DB        *gorm.DB
	ConnStr   string
}

// SetupPostgres starts a PostgreSQL container and migrates the console
// tables into it.
func SetupPostgres(ctx context.Context) (*Container, error) {
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("console_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start PostgreSQL container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	log := zerolog.Nop()
	db, err := database.Connect(connStr, log)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.AutoMigrate(db, log); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Container{
		Container: pgContainer,
		DB:        db,
		ConnStr:   connStr,
	}, nil
}

// Terminate stops and removes the PostgreSQL container.
func (c *Container) Terminate(ctx context.Context) error {
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if c.Container != nil {
		return c.Container.Terminate(ctx)
	}
	return nil
}
