// Package seed fabricates console data for mock mode and the integration
// suite.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nrfta/gridcache-go/console/models"
)

var serviceNames = []string{
	"ingest", "gateway", "billing", "search", "auth",
	"metrics", "reports", "scheduler", "notifications", "archive",
	"catalog", "checkout", "inventory", "ledger", "profiles",
	"recommender", "renderer", "sessions", "streams", "webhooks",
}

var regions = []string{
	"us-east-1", "us-west-2", "eu-west-1", "eu-central-1",
	"ap-southeast-1", "ap-northeast-1", "sa-east-1",
}

var tagPool = []string{
	"production", "staging", "critical", "batch", "legacy",
	"pci", "internal", "public", "gpu", "spot",
	"team-core", "team-data", "team-edge", "experiment",
}

var memberNames = []string{
	"Alex Rivera", "Sam Chen", "Jordan Okafor", "Priya Natarajan",
	"Morgan Lee", "Casey Dubois", "Riley Novak", "Dana Petrov",
	"Jamie Araya", "Quinn Haddad", "Avery Lindqvist", "Rowan Diallo",
}

// Resources generates n resource rows with plausible attribute spreads.
// Creation timestamps descend from now so the default created_at DESC sort
// matches insertion order.
func Resources(n int) []models.Resource {
	now := time.Now().UTC()
	out := make([]models.Resource, n)

	for i := 0; i < n; i++ {
		status := models.Statuses[rand.Intn(len(models.Statuses))]
		if rand.Float64() < 0.6 {
			status = models.StatusActive
		}

		created := now.Add(-time.Duration(i) * time.Minute)
		out[i] = models.Resource{
			ID:                uuid.New(),
			Name:              fmt.Sprintf("%s-%03d", serviceNames[rand.Intn(len(serviceNames))], i),
			Category:          models.Categories[rand.Intn(len(models.Categories))],
			Department:        models.Departments[rand.Intn(len(models.Departments))],
			Provider:          models.Providers[rand.Intn(len(models.Providers))],
			Region:            regions[rand.Intn(len(regions))],
			Status:            status,
			CPUUtilization:    rand.Float64() * 100,
			MemoryUtilization: rand.Float64() * 100,
			CostPerHour:       float64(rand.Intn(2000)) / 100,
			Tags:              pq.StringArray(pickTags()),
			LastHealthCheckAt: null.TimeFrom(created),
			CreatedAt:         created,
			UpdatedAt:         created,
		}
	}

	return out
}

func pickTags() []string {
	n := rand.Intn(4)
	tags := make([]string, 0, n)
	seen := map[string]bool{}
	for len(tags) < n {
		t := tagPool[rand.Intn(len(tagPool))]
		if !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}
	return tags
}

// TeamMembers generates one roster entry per name in the pool.
func TeamMembers() []models.TeamMember {
	now := time.Now().UTC()
	out := make([]models.TeamMember, len(memberNames))

	roles := []string{models.RoleViewer, models.RoleViewer, models.RoleOperator, models.RoleAdmin}
	for i, name := range memberNames {
		out[i] = models.TeamMember{
			ID:         uuid.New(),
			Name:       name,
			Email:      fmt.Sprintf("member%02d@example.com", i),
			Role:       roles[i%len(roles)],
			Department: models.Departments[i%len(models.Departments)],
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	return out
}

// Database fills an empty database with mock data. Existing resources are
// left alone so restarts do not duplicate rows.
func Database(db *gorm.DB, resources int, log zerolog.Logger) error {
	var count int64
	if err := db.Model(&models.Resource{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info().Int64("existing", count).Msg("seed skipped, database not empty")
		return nil
	}

	if err := db.CreateInBatches(Resources(resources), 100).Error; err != nil {
		return err
	}
	if err := db.Create(TeamMembers()).Error; err != nil {
		return err
	}

	log.Info().Int("resources", resources).Msg("database seeded")
	return nil
}
