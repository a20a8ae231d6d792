// Package api is the console's HTTP surface: cursor-paginated resource
// listing, resource create/status mutation, team members, projects, access
// requests, and bearer-token role enforcement.
package api

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nrfta/gridcache-go/console/config"
	"github.com/nrfta/gridcache-go/console/feed"
	"github.com/nrfta/gridcache-go/console/models"
)

// ErrorResponse is the non-2xx body: {error, details?}.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Server holds the handlers' dependencies.
type Server struct {
	db  *gorm.DB
	cfg *config.Config
	log zerolog.Logger
	hub *feed.Hub
}

// NewServer creates a Server. hub may be nil when the event feed is not
// running.
func NewServer(db *gorm.DB, cfg *config.Config, log zerolog.Logger, hub *feed.Hub) *Server {
	return &Server{db: db, cfg: cfg, log: log, hub: hub}
}

// SetupRoutes registers every route on app.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	}))

	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1", s.AuthMiddleware())

	api.Get("/resources", s.HandleListResources)
	api.Post("/resources", s.HandleCreateResource, s.RequireRole(models.RoleOperator))
	api.Get("/resources/:id", s.HandleGetResource)
	api.Patch("/resources/:id/status", s.HandleUpdateResourceStatus, s.RequireRole(models.RoleOperator))

	api.Get("/team-members", s.HandleListTeamMembers)
	api.Post("/team-members", s.HandleCreateTeamMember, s.RequireRole(models.RoleAdmin))

	api.Get("/projects", s.HandleListProjects)
	api.Post("/projects", s.HandleCreateProject, s.RequireRole(models.RoleOperator))

	api.Get("/access-requests", s.HandleListAccessRequests)
	api.Post("/access-requests", s.HandleCreateAccessRequest)
	api.Post("/access-requests/:id/decide", s.HandleDecideAccessRequest, s.RequireRole(models.RoleAdmin))
}
