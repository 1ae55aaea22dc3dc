package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AllocateUC  *inventory.AllocateUseCase
	BalanceUC   *inventory.BalanceUseCase
	AdjustUC    *inventory.AdjustUseCase
	ReconcileUC *inventory.ReconcileUseCase
	JWTSecret   string
	ServiceName string
	// Gatherer nil deshabilita /metrics.
	Gatherer prometheus.Gatherer
	Logger   *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Logger != nil {
		app.Use(RequestLogger(deps.Logger))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Rutas protegidas (requieren Bearer Token)
	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.AllocateUC, deps.BalanceUC, deps.AdjustUC)
	invGroup.Post("/allocations", inventoryHandler.Allocate)
	invGroup.Post("/allocations/batch", inventoryHandler.AllocateBatch)
	invGroup.Get("/items/:id/balance", inventoryHandler.Balance)
	invGroup.Get("/items/:id/batches", inventoryHandler.Batches)
	invGroup.Get("/items/:id/movements", inventoryHandler.Movements)
	invGroup.Post("/items/:id/adjustments", inventoryHandler.Adjust)
	invGroup.Get("/items/:id/on-hand/verify", inventoryHandler.VerifyOnHand)

	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.ReconcileUC)
	orders.Get("/:id/stock", orderHandler.Stock)
	orders.Get("/:id/stock.pdf", orderHandler.StockPDF)
}

// RequestLogger registra cada petición con zerolog (método, ruta, estado, duración).
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		ev := log.Info()
		if status >= fiber.StatusInternalServerError || err != nil {
			ev = log.Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("actor", GetActor(c)).
			Msg("petición HTTP")
		return err
	}
}
