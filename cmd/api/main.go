package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/tu-usuario/kardex-core/internal/application/audit"
	"github.com/tu-usuario/kardex-core/internal/application/inventory"
	"github.com/tu-usuario/kardex-core/internal/infrastructure/postgres"
	"github.com/tu-usuario/kardex-core/internal/infrastructure/rediscache"
	httpRouter "github.com/tu-usuario/kardex-core/internal/interfaces/http"
	"github.com/tu-usuario/kardex-core/pkg/config"
	"github.com/tu-usuario/kardex-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if err := runMigrations(cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	sessionRepo := postgres.NewAuditSessionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Caché de último costo — opcional, REDIS_ADDR vacío la deshabilita.
	var costCache inventory.CostCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis no disponible, caché de costos deshabilitada")
		} else {
			costCache = rediscache.NewCostCache(rdb, 10*time.Minute)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("caché de costos habilitada")
		}
	}

	productUC := inventory.NewProductUseCase(productRepo)
	ledgerUC := inventory.NewLedgerUseCase(txRunner, productRepo, movementRepo, costCache)
	costUC := inventory.NewCostUseCase(movementRepo, productRepo, costCache)
	lowStockUC := inventory.NewLowStockUseCase(productRepo, costUC)
	auditUC := audit.NewSessionUseCase(sessionRepo, productRepo, ledgerUC, costUC)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	// El JSON lo genera `swag init`; si no se corrió, el servicio arranca sin UI.
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Kardex Core API",
		}))
	} else {
		log.Warn().Msg("docs/swagger.json no encontrado, Swagger UI deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC: productUC,
		Ledger:    ledgerUC,
		CostUC:    costUC,
		LowStock:  lowStockUC,
		AuditUC:   auditUC,
		JWTSecret: cfg.JWT.Secret,
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

// runMigrations aplica las migraciones goose pendientes antes de abrir el pool.
func runMigrations(dsn string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	return goose.Up(db, "migrations")
}
