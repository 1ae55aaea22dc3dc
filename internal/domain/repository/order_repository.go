package repository

import (
	"context"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// OrderRepository lee órdenes y sus líneas (propiedad de gestión de órdenes).
type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Order, error)
}
