package repository

import (
	"context"

	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// MovementFilter criterios para listar movimientos de un ítem.
// LocationID nil = todas las ubicaciones; "" o GeneralPool = pool general.
// Type vacío = entradas y salidas. Desc invierte el orden por fecha (y orden de inserción).
type MovementFilter struct {
	ItemID     string
	LocationID *string
	Type       string
	Desc       bool
}

// MovementRepository define el puerto del libro de movimientos (solo anexar).
// CreateBatch no garantiza todo-o-nada en todos los adaptadores; el núcleo no depende de ello.
type MovementRepository interface {
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
	CreateBatch(ctx context.Context, movements []*entity.Movement) ([]string, error)
	ListLinkedExits(ctx context.Context, batchID string) ([]*entity.Movement, error)
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
}
