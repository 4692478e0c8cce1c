package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"shopapi/docs"
	"shopapi/internal/auth"
	"shopapi/internal/cache"
	"shopapi/internal/config"
	"shopapi/internal/database"
	"shopapi/internal/database/migration"
	handlers "shopapi/internal/http/handler"
	"shopapi/internal/http/middleware"
	"shopapi/internal/logger"
	"shopapi/internal/otel"
	"shopapi/internal/repository/postgres"
	"shopapi/internal/service"
	"shopapi/internal/storage"
	"shopapi/internal/validation"
)

const shutdownTimeout = 10 * time.Second

// @title Marketplace API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server_failed", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log, cfg.Log.ServiceName)
	if err != nil {
		return err
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			log.Warn("tracing_shutdown_failed", zap.Error(err))
		}
	}()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return err
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		return err
	}

	rdb, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()
	revoked := cache.NewRedisTokenStore(rdb)

	tokens, err := auth.NewTokenManager(cfg.JWT)
	if err != nil {
		return err
	}
	validate := validation.New()

	userRepo := postgres.NewUserPostgres(db)
	shopRepo := postgres.NewShopPostgres(db)
	productRepo := postgres.NewProductPostgres(db)
	photoRepo := postgres.NewPhotoPostgres(db)
	categoryRepo := postgres.NewCategoryPostgres(db)

	services := handlers.Services{
		Auth:       service.NewAuthService(userRepo, tokens, revoked, validate, log),
		Users:      service.NewUserService(userRepo, postgres.NewDeliveryPostgres(db), validate, log),
		Shops:      service.NewShopService(shopRepo, validate, log),
		Products:   service.NewProductService(productRepo, shopRepo, categoryRepo, photoRepo, objStore, cfg.Upload.PhotoURLLifetime, validate, log),
		Photos:     service.NewPhotoService(productRepo, shopRepo, photoRepo, objStore, cfg.Upload, log),
		Categories: service.NewCategoryService(categoryRepo),
	}

	metrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.Log.ServiceName,
		ErrorHandler: handlers.ErrorHandler(),
		// Multipart overhead on top of the largest accepted photo.
		BodyLimit: int(cfg.Upload.MaxBytes) + 1<<20,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || c.Path() == "/healthz"
	})))
	app.Use(middleware.Logger(log))
	app.Use(metrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, db, services, handlers.Options{
		HealthDeps: []handlers.Dependency{
			{Name: "redis", Pinger: revoked},
			{Name: "storage", Pinger: objStore},
		},
		AuthObserver: metrics,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server_started", zap.String("addr", addr))
		serveErr <- app.Listen(addr)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("server_shutting_down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Warn("server_shutdown_failed", zap.Error(err))
	}
	return nil
}
