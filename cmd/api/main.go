package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/forecast"
	"github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/application/metrics"
	"github.com/jhoicas/stock-ledger-api/internal/application/report"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/stock-ledger-api/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/stock-ledger-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Cache del dashboard: opcional, solo si REDIS_ADDR está configurado.
	var statsCache analytics.StatsCache
	if cfg.Redis.Enabled() {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, dashboard sin cache")
		} else {
			statsCache = infraredis.NewStatsCache(redisClient, cfg.Redis.StatsTTL)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("cache de dashboard habilitado")
		}
	}

	aggregator := metrics.NewAggregatorUseCase(productRepo, categoryRepo, ledgerRepo)
	mutator := ledger.NewApplyStockChangeUseCase(txRunner, aggregator, log.Component("ledger"))
	productUC := usecase.NewProductUseCase(txRunner, productRepo, categoryRepo, ledgerRepo, mutator)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo, productRepo)
	estimator := forecast.NewEstimatorUseCase(productRepo, ledgerRepo)
	analyticsUC := analytics.NewUseCase(productRepo, categoryRepo, ledgerRepo, aggregator, statsCache, log.Component("analytics"))

	pdfGenerator := infrapdf.NewMarotoReportGenerator()
	reportUC := report.NewLowStockReportUseCase(productRepo, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   productUC,
		CategoryUC:  categoryUC,
		Mutator:     mutator,
		Aggregator:  aggregator,
		AnalyticsUC: analyticsUC,
		Estimator:   estimator,
		ReportUC:    reportUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
