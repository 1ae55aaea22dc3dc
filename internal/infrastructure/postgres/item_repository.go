package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de ítems. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemSelect = `
	SELECT id, code, name, unit_measure, packaging_factor, on_hand, status, updated_at
	FROM items WHERE id = $1`

// GetByID obtiene un ítem del catálogo.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	return r.get(ctx, itemSelect, id)
}

// GetForUpdate obtiene el ítem y bloquea la fila para update (SELECT FOR UPDATE).
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.get(ctx, itemSelect+" FOR UPDATE", id)
}

func (r *ItemRepo) get(ctx context.Context, query, id string) (*entity.Item, error) {
	var it entity.Item
	err := r.q.QueryRow(ctx, query, id).Scan(
		&it.ID, &it.Code, &it.Name, &it.UnitMeasure, &it.PackagingFactor, &it.OnHand, &it.Status, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFound(domain.KindItem, id)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

// UpdateStock actualiza el contador en caché y el estado del ítem.
func (r *ItemRepo) UpdateStock(ctx context.Context, id string, onHand decimal.Decimal, status string, updatedAt time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE items SET on_hand = $2, status = $3, updated_at = $4 WHERE id = $1`,
		id, onHand, status, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update item stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.KindItem, id)
	}
	return nil
}
