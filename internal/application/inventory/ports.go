package inventory

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Lo usan los ajustes directos para que contador en caché y movimiento se escriban juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		itemRepo repository.ItemRepository,
	) error) error
}

// ItemLocker serializa escrituras por ítem (un solo escritor por ítem a la vez).
// Lock bloquea hasta obtener el candado o hasta que ctx termine; unlock debe llamarse siempre.
type ItemLocker interface {
	Lock(ctx context.Context, itemID string) (unlock func(), err error)
}

// NoopLocker no serializa nada: deja expuesta la carrera lectura-escritura sobre los lotes.
type NoopLocker struct{}

// Lock no bloquea.
func (NoopLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }

// Resultados observados por las métricas.
const (
	OutcomeOK                = "ok"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeError             = "error"
)

// Metrics recibe observaciones de asignaciones y ajustes.
type Metrics interface {
	ObserveAllocation(outcome string, units, shortfall decimal.Decimal)
	ObserveAdjustment(operation, outcome string)
}

// NoopMetrics descarta las observaciones.
type NoopMetrics struct{}

func (NoopMetrics) ObserveAllocation(string, decimal.Decimal, decimal.Decimal) {}
func (NoopMetrics) ObserveAdjustment(string, string)                          {}

// ReportRenderer genera el documento imprimible del reporte de existencias de una orden.
type ReportRenderer interface {
	RenderOrderStock(ctx context.Context, report *dto.OrderStockReport) ([]byte, error)
}
