package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

type itemRow struct {
	ID              string          `db:"id"`
	Code            string          `db:"code"`
	Name            string          `db:"name"`
	UnitMeasure     string          `db:"unit_measure"`
	PackagingFactor decimal.Decimal `db:"packaging_factor"`
	OnHand          decimal.Decimal `db:"on_hand"`
	Status          string          `db:"status"`
	UpdatedAt       int64           `db:"updated_at"`
}

// ItemRepo catálogo de ítems sobre SQLite.
type ItemRepo struct {
	q sqlx.ExtContext
}

// NewItemRepository construye el adaptador de ítems.
func NewItemRepository(q sqlx.ExtContext) *ItemRepo {
	return &ItemRepo{q: q}
}

// GetByID obtiene un ítem del catálogo.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	var row itemRow
	err := sqlx.GetContext(ctx, r.q, &row, `
		SELECT id, code, name, unit_measure, packaging_factor, on_hand, status, updated_at
		FROM items WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound(domain.KindItem, id)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &entity.Item{
		ID:              row.ID,
		Code:            row.Code,
		Name:            row.Name,
		UnitMeasure:     row.UnitMeasure,
		PackagingFactor: row.PackagingFactor,
		OnHand:          row.OnHand,
		Status:          row.Status,
		UpdatedAt:       fromNanos(row.UpdatedAt),
	}, nil
}

// GetForUpdate en SQLite la transacción ya serializa las escrituras (una sola conexión).
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.GetByID(ctx, id)
}

// UpdateStock actualiza el contador en caché y el estado del ítem.
func (r *ItemRepo) UpdateStock(ctx context.Context, id string, onHand decimal.Decimal, status string, updatedAt time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE items SET on_hand = ?, status = ?, updated_at = ? WHERE id = ?`,
		onHand.String(), status, toNanos(updatedAt), id,
	)
	if err != nil {
		return fmt.Errorf("update item stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update item stock: %w", err)
	}
	if n == 0 {
		return domain.NewNotFound(domain.KindItem, id)
	}
	return nil
}

// Save inserta o reemplaza un ítem (carga de catálogo).
func (r *ItemRepo) Save(ctx context.Context, it *entity.Item) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO items (id, code, name, unit_measure, packaging_factor, on_hand, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET code = excluded.code, name = excluded.name,
			unit_measure = excluded.unit_measure, packaging_factor = excluded.packaging_factor,
			on_hand = excluded.on_hand, status = excluded.status, updated_at = excluded.updated_at`,
		it.ID, it.Code, it.Name, it.UnitMeasure, it.PackagingFactor.String(), it.OnHand.String(), it.Status, toNanos(it.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save item: %w", err)
	}
	return nil
}
