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

	_ "github.com/jhoicas/stock-ledger/docs"
	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/events"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// @title        Stock Ledger API
// @version      1.0
// @description  Libro de stock por bodega y ciclo de vida de movimientos.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
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
		Str("storage", cfg.Ledger.Storage).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		if cfg.App.Env == "production" {
			log.Fatal().Msg("JWT_SECRET es obligatorio en production")
		}
		log.Warn().Msg("JWT_SECRET vacío: ningún token será aceptado")
	}

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.close()

	// Índice de bajo stock: se reconstruye desde el libro al arrancar.
	lowStock := inventory.NewLowStockAggregator(store.stock, store.products, log)
	if err := lowStock.Rebuild(ctx); err != nil {
		log.Fatal().Err(err).Msg("reconstruir índice de bajo stock")
	}

	var publisher inventory.EventPublisher = events.NewLogPublisher(log)
	if cfg.NATS.URL != "" {
		nc, err := events.Connect(cfg.NATS.URL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a NATS")
		}
		defer nc.Drain()
		natsCfg := events.DefaultNATSConfig()
		if cfg.NATS.SubjectPrefix != "" {
			natsCfg.SubjectPrefix = cfg.NATS.SubjectPrefix
		}
		publisher = events.NewNATSPublisher(nc, natsCfg, log)
	}

	var engineMetrics inventory.Metrics
	var promMetrics *metrics.Metrics
	if cfg.Metrics.Enabled {
		promMetrics, err = metrics.New(lowStock.Count)
		if err != nil {
			log.Fatal().Err(err).Msg("inicializar métricas")
		}
		engineMetrics = promMetrics
	}

	engine := inventory.NewMovementUseCase(
		store.txRunner, store.movements, store.stock, store.products, store.warehouses,
		lowStock, publisher, engineMetrics, log,
		inventory.EngineConfig{MaxRetries: cfg.Ledger.MaxRetries, RetryBackoff: cfg.Ledger.RetryBackoff},
	)
	queries := inventory.NewQueryUseCase(store.movements, store.stock, store.products, store.warehouses, lowStock,
		inventory.PageConfig{Default: cfg.Ledger.PageSize, Max: cfg.Ledger.MaxPageSize})
	replenishmentUC := inventory.NewReplenishmentUseCase(store.products, lowStock)
	reportUC := inventory.NewReportUseCase(queries, store.products, infrapdf.NewMarotoReportGenerator())
	dashboardUC := appanalytics.NewDashboardUseCase(store.products, store.warehouses, store.movements, lowStock)
	warehouseUC := usecase.NewWarehouseUseCase(store.warehouses)
	productUC := usecase.NewProductUseCase(store.products, lowStock)

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
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Ledger.Storage})
	})

	deps := httpRouter.RouterDeps{
		WarehouseUC:   warehouseUC,
		ProductUC:     productUC,
		Engine:        engine,
		Queries:       queries,
		Replenishment: replenishmentUC,
		Reports:       reportUC,
		DashboardUC:   dashboardUC,
		Auth:          httpRouter.AuthConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer},
	}
	if promMetrics != nil {
		deps.MetricsHandler = promMetrics.Handler()
	}
	httpRouter.Router(app, deps)

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
	if promMetrics != nil {
		if err := promMetrics.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("apagado de métricas")
		}
	}

	log.Info().Msg("aplicación detenida")
}
