package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// ItemRepository define el puerto para leer ítems del catálogo y su contador de existencias en caché.
// GetByID y GetForUpdate devuelven domain.NotFoundError si el ítem no existe.
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	// GetForUpdate bloquea la fila del ítem dentro de la transacción (SELECT FOR UPDATE) cuando el adaptador lo soporta.
	GetForUpdate(ctx context.Context, id string) (*entity.Item, error)
	UpdateStock(ctx context.Context, id string, onHand decimal.Decimal, status string, updatedAt time.Time) error
}
