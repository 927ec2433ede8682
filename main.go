package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rodrigopasa/launchajato/database"
	"github.com/rodrigopasa/launchajato/internal/config"
	"github.com/rodrigopasa/launchajato/internal/handlers"
	"github.com/rodrigopasa/launchajato/internal/jobs"
	"github.com/rodrigopasa/launchajato/internal/metrics"
	"github.com/rodrigopasa/launchajato/internal/routes"
	"github.com/rodrigopasa/launchajato/internal/services"
	"github.com/rodrigopasa/launchajato/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		if err := godotenv.Load(".env"); err != nil {
			if err := godotenv.Load("environments/.env.development"); err != nil {
				log.Info().Msg("no .env file found, using environment variables")
			}
		}
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENVIRONMENT") == "" || os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Logger = logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Str("provider", cfg.WhatsAppProvider).
		Bool("memory_store", cfg.UseMemoryStore).
		Msg("🚀 starting chatbot")

	ctx := context.Background()

	// Initialize storage
	var store storage.Store
	storageType := "postgresql"
	if cfg.UseMemoryStore {
		logger.Warn().Msg("⚠️  using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
		storageType = "memory"
	} else {
		db, err := database.Connect(cfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("database connection failed")
		}
		if err := storage.AutoMigrate(db); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate database")
		}
		logger.Info().Msg("✅ database migrations completed")
		store = storage.NewDatabaseStore(db)
	}

	if cfg.SeedDemoData {
		seedDemo(ctx, store, logger)
	}

	m := metrics.New()
	svc, err := services.New(cfg, store, m, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize services")
	}

	notificationJob := jobs.NewNotificationJob(store, svc.Sender, svc.Sessions, jobs.Options{
		SweepInterval: cfg.SweepInterval,
		PollInterval:  cfg.NotificationInterval,
		Lookback:      cfg.NotificationLookback,
		Notify:        cfg.NotificationsEnabled,
	}, logger, jobs.WithJobMetrics(m))
	if err := notificationJob.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start scheduled jobs")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName + " v" + routes.Version,
		ErrorHandler: handlers.ErrorHandler(logger),
	})

	// Middleware
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	whatsapp := routes.SetupRoutes(app, svc, cfg, storageType, logger)

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("🌐 server listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	<-shutdown

	logger.Info().Msg("shutting down gracefully...")
	if err := app.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	notificationJob.Stop()
	whatsapp.Wait()
	logger.Info().Msg("server stopped")
}

func seedDemo(ctx context.Context, store storage.Store, logger zerolog.Logger) {
	if _, err := store.GetUserByUsername(ctx, "ana"); err == nil {
		logger.Info().Msg("demo data already present")
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		logger.Error().Err(err).Msg("failed to check demo data")
		return
	}

	if err := storage.SeedDemoData(ctx, store); err != nil {
		logger.Error().Err(err).Msg("failed to seed demo data")
		return
	}
	logger.Info().Str("password", storage.DemoPassword).Msg("🌱 demo data seeded (users ana, bruno)")
}
