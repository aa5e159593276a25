package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"focargo/config"
	"focargo/handlers"
	"focargo/logger"
	"focargo/metrics"
	"focargo/middleware"
	"focargo/models"
	"focargo/services"
	"focargo/utils"
	"focargo/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	cfg, fromFile, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logg.Sync()
	if !fromFile {
		logg.Warn("⚠️  No .env file found, reading environment variables directly")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		logg.Fatal("failed to connect to database", "driver", cfg.DBDriver, "error", err.Error())
	}
	if err := db.AutoMigrate(
		&models.CollectionPoint{},
		&models.MarketItem{},
	); err != nil {
		logg.Fatal("failed to migrate database", "error", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalogService := services.NewCatalogService(db)
	if err := catalogService.Seed(ctx); err != nil {
		logg.Fatal("failed to seed catalog", "error", err.Error())
	}

	var archive utils.Archive = utils.NopArchive{}
	if cfg.R2Enabled() {
		r2, err := utils.NewR2Archive(ctx, utils.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			Bucket:          cfg.R2Bucket,
			CDNBaseURL:      cfg.CDNBaseURL,
		})
		if err != nil {
			logg.Fatal("failed to initialize R2 client", "error", err.Error())
		}
		archive = r2
	} else {
		logg.Info("R2 not configured, scan images will not be archived")
	}

	scheduler, err := services.NewCronScheduler(logg)
	if err != nil {
		logg.Fatal("failed to start scheduler", "error", err.Error())
	}

	store := services.NewSessionStore(scheduler, services.SessionConfig{
		InviteDelay:     cfg.QuizInviteDelay,
		AIRatePerMinute: cfg.AIRatePerMinute,
	}, logg)

	gemini := services.NewGeminiClient(services.GeminiConfig{
		BaseURL: cfg.GeminiBaseURL,
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
	}, utils.AIHTTPClient, logg)

	recyclingService := services.NewRecyclingService(gemini, archive, catalogService, logg)

	app := fiber.New(fiber.Config{
		BodyLimit: 15 * 1024 * 1024, // base64 photos
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowedOrigins,
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:  "Origin, Content-Type, Accept, X-Requested-With, X-Request-ID, Cache-Control, " + middleware.SessionHeader,
		ExposeHeaders: "Content-Length, Content-Type, X-Request-ID, " + middleware.SessionHeader,
		MaxAge:        86400, // 24 hours
	}))

	// Unscoped routes first: they must not create sessions.
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "sessions": store.Len()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	api := app.Group("/", middleware.SessionContextMiddleware(store), middleware.RequestLogger(logg))
	handlers.SetupSessionRoutes(api, store, catalogService)
	handlers.SetupRecyclingRoutes(api, recyclingService)
	handlers.SetupCatalogRoutes(api, catalogService, recyclingService)

	reaper := workers.NewSessionReaper(store, cfg.SessionIdleTTL, cfg.ReapInterval, logg)
	reaper.Start(ctx)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logg.Error("Server error", "error", err.Error())
		}
	}()

	logg.Info(fmt.Sprintf("✅ Server running on http://localhost:%s", cfg.Port))
	logg.Info("✅ CORS configured", "origins", cfg.AllowedOrigins)
	logg.Info("✅ AI gateway ready", "model", cfg.GeminiModel)

	<-ctx.Done()
	logg.Info("Shutting down server...")

	store.Close()
	if err := scheduler.Shutdown(); err != nil {
		logg.Warn("scheduler shutdown failed", "error", err.Error())
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logg.Warn("server shutdown failed", "error", err.Error())
	}
}

func openDatabase(cfg config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DatabaseURL), &gorm.Config{})
	default:
		return gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	}
}
