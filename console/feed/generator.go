package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nrfta/gridcache-go/console/models"
)

// Generator fabricates feed activity on a timer: utilization drift on a
// random sample of resources, with the occasional status flip persisted and
// announced. It exists so the dashboard has something live to show in mock
// mode.
type Generator struct {
	db       *gorm.DB
	hub      *Hub
	log      zerolog.Logger
	interval time.Duration

	// statusFlipChance is the probability per tick that one resource's
	// status is flipped to a random other status.
	statusFlipChance float64
}

// NewGenerator creates a generator ticking at the given interval.
func NewGenerator(db *gorm.DB, hub *Hub, interval time.Duration, log zerolog.Logger) *Generator {
	return &Generator{
		db:               db,
		hub:              hub,
		log:              log,
		interval:         interval,
		statusFlipChance: 0.25,
	}
}

// Run ticks until ctx is done.
func (g *Generator) Run(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	g.log.Info().Dur("interval", g.interval).Msg("feed generator started")

	for {
		select {
		case <-ctx.Done():
			g.log.Info().Msg("feed generator stopped")
			return
		case <-ticker.C:
			g.tick(ctx)
		}
	}
}

func (g *Generator) tick(ctx context.Context) {
	var sample []models.Resource
	err := g.db.WithContext(ctx).
		Where("status <> ?", models.StatusDecommissioned).
		Order("random()").
		Limit(5).
		Find(&sample).
		Error
	if err != nil {
		g.log.Warn().Err(err).Msg("feed tick: sample resources")
		return
	}

	for i := range sample {
		r := &sample[i]
		r.CPUUtilization = drift(r.CPUUtilization, 12)
		r.MemoryUtilization = drift(r.MemoryUtilization, 8)
		r.UpdatedAt = time.Now().UTC()

		err := g.db.WithContext(ctx).Model(r).Updates(map[string]any{
			"cpu_utilization":    r.CPUUtilization,
			"memory_utilization": r.MemoryUtilization,
			"updated_at":         r.UpdatedAt,
		}).Error
		if err != nil {
			g.log.Warn().Err(err).Msg("feed tick: persist drift")
			continue
		}

		g.hub.Broadcast(NewMetricsTick(*r))
	}

	if len(sample) > 0 && rand.Float64() < g.statusFlipChance {
		g.flipStatus(ctx, &sample[rand.Intn(len(sample))])
	}
}

func (g *Generator) flipStatus(ctx context.Context, r *models.Resource) {
	next := models.Statuses[rand.Intn(len(models.Statuses))]
	if next == r.Status || next == models.StatusDecommissioned {
		return
	}

	r.Status = next
	r.UpdatedAt = time.Now().UTC()

	err := g.db.WithContext(ctx).Model(r).Updates(map[string]any{
		"status":     r.Status,
		"updated_at": r.UpdatedAt,
	}).Error
	if err != nil {
		g.log.Warn().Err(err).Msg("feed tick: persist status flip")
		return
	}

	g.hub.Broadcast(NewResourceUpdated(*r))
}
