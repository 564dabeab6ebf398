package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/benbeisheim/minechess-engine/internal/config"
	"github.com/benbeisheim/minechess-engine/internal/controller"
	"github.com/benbeisheim/minechess-engine/internal/engine"
	"github.com/benbeisheim/minechess-engine/internal/middleware"
	"github.com/benbeisheim/minechess-engine/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := config.Load(os.Getenv("MINECHESS_CONFIG")); err != nil {
		log.Fatal().Err(err).Msg("config-load-failed")
	}
	cfg := config.Get()
	zerolog.SetGlobalLevel(cfg.Level())
	zerolog.DurationFieldUnit = time.Millisecond

	app := fiber.New(fiber.Config{
		AppName:               "minechess-engine",
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(cfg.Origins(), ","),
		AllowHeaders:  "Origin, Content-Type, Accept, " + middleware.ClientIDHeader,
		AllowMethods:  "GET, POST, OPTIONS",
		ExposeHeaders: middleware.ClientIDHeader,
	}))
	app.Use(middleware.RequestLogger())

	// Initialize services
	searchManager := service.NewSearchManager(engine.New(cfg.TTMaxEntries), service.Options{
		QueueCapacity:     cfg.QueueCapacity,
		HardDeadlineGrace: cfg.HardDeadlineGrace(),
		ResultTTL:         cfg.ResultTTL(),
	})
	searchService := service.NewSearchService(searchManager, cfg.DefaultRating, cfg.MaxPerftDepth)

	// Initialize controllers
	searchController := controller.NewSearchController(searchService)
	wsController := controller.NewWebSocketController(searchService)
	controller.RegisterRoutes(app, searchController, wsController, cfg.Origins())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return searchManager.Run(ctx)
	})
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("server-listening")
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		log.Info().Msg("server-shutting-down")
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server-exited")
	}
	log.Info().Msg("server-stopped")
}
