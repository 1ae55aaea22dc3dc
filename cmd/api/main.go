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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/labstock-api/docs"
	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
	"github.com/jhoicas/labstock-api/internal/infrastructure/lock"
	"github.com/jhoicas/labstock-api/internal/infrastructure/memory"
	"github.com/jhoicas/labstock-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/labstock-api/internal/infrastructure/pdf"
	"github.com/jhoicas/labstock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/labstock-api/internal/infrastructure/redislock"
	"github.com/jhoicas/labstock-api/internal/infrastructure/sqlite"
	httpRouter "github.com/jhoicas/labstock-api/internal/interfaces/http"
	"github.com/jhoicas/labstock-api/pkg/config"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

// stores repositorios del driver elegido más su función de cierre.
type stores struct {
	movements repository.MovementRepository
	items     repository.ItemRepository
	orders    repository.OrderRepository
	tx        inventory.TxRunner
	close     func()
}

// @title						LabStock API
// @version					1.0
// @description				Libro de movimientos de insumos de laboratorio con asignación FIFO.
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("abrir almacén de movimientos")
	}
	defer st.close()

	var locker inventory.ItemLocker = lock.NewKeyedMutex()
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		locker = redislock.New(rdb, time.Duration(cfg.Redis.LockTTLSeconds)*time.Second)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("candado por ítem en Redis")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	balanceUC := inventory.NewBalanceUseCase(st.movements)
	allocateUC := inventory.NewAllocateUseCase(st.movements, st.items, locker, collector, log.Component("fifo"))
	adjustUC := inventory.NewAdjustUseCase(st.tx, st.items, balanceUC, locker, collector, log.Component("adjust"))
	// PDF: hoja de existencias por orden
	reconcileUC := inventory.NewReconcileUseCase(st.orders, balanceUC, infrapdf.NewOrderStockRenderer())

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
		Title:    docs.SwaggerInfo.Title,
	}))

	deps := httpRouter.RouterDeps{
		AllocateUC:  allocateUC,
		BalanceUC:   balanceUC,
		AdjustUC:    adjustUC,
		ReconcileUC: reconcileUC,
		JWTSecret:   cfg.JWT.Secret,
		ServiceName: cfg.App.Name,
		Logger:      log.Component("http"),
	}
	if cfg.Metrics.Enabled {
		deps.Gatherer = reg
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

	log.Info().Msg("aplicación detenida")
}

// openStores abre el adaptador indicado por STORE_DRIVER y aplica el esquema.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLite)
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &stores{
			movements: sqlite.NewMovementRepository(db),
			items:     sqlite.NewItemRepository(db),
			orders:    sqlite.NewOrderRepository(db),
			tx:        sqlite.NewTxRunner(db),
			close:     func() { db.Close() },
		}, nil
	case config.StoreDriverMemory:
		store := memory.NewStore()
		return &stores{
			movements: store.Movements(),
			items:     store.Items(),
			orders:    store.Orders(),
			tx:        store,
			close:     func() {},
		}, nil
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &stores{
			movements: postgres.NewMovementRepository(pool),
			items:     postgres.NewItemRepository(pool),
			orders:    postgres.NewOrderRepository(pool),
			tx:        postgres.NewTxRunner(pool),
			close:     pool.Close,
		}, nil
	}
}
