// consoled is the resource console backend: the cursor-paginated list and
// mutation API the dashboard's list core talks to, plus the simulated
// event feed. In mock mode it seeds itself with generated data and fabricates
// live activity.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/nrfta/gridcache-go/console/api"
	"github.com/nrfta/gridcache-go/console/config"
	"github.com/nrfta/gridcache-go/console/database"
	"github.com/nrfta/gridcache-go/console/feed"
	"github.com/nrfta/gridcache-go/console/seed"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}

	if err := database.AutoMigrate(db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	hub := feed.NewHub(log)
	go hub.Run(ctx)

	if cfg.MockMode {
		if err := seed.Database(db, cfg.MockResources, log); err != nil {
			log.Fatal().Err(err).Msg("seed database")
		}

		generator := feed.NewGenerator(db, hub, cfg.FeedInterval, log)
		go generator.Run(ctx)
	}

	feedServer := &http.Server{Addr: cfg.FeedListenAddr, Handler: feedMux(hub)}
	go func() {
		log.Info().Str("addr", cfg.FeedListenAddr).Msg("feed listening")
		if err := feedServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("feed server stopped")
		}
	}()

	app := fiber.New(fiber.Config{AppName: "console"})
	api.NewServer(db, cfg, log, hub).SetupRoutes(app)

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("api listening")
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Error().Err(err).Msg("api server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = feedServer.Shutdown(shutdownCtx)
	_ = app.ShutdownWithContext(shutdownCtx)
}

func feedMux(hub *feed.Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub.Handler())
	return mux
}
