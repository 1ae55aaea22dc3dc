package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo lectura de órdenes y líneas sobre SQLite.
type OrderRepo struct {
	q sqlx.ExtContext
}

// NewOrderRepository construye el adaptador.
func NewOrderRepository(q sqlx.ExtContext) *OrderRepo {
	return &OrderRepo{q: q}
}

// GetByID obtiene la orden con sus líneas en el orden de captura.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	var o struct {
		ID   string `db:"id"`
		Code string `db:"code"`
	}
	if err := sqlx.GetContext(ctx, r.q, &o, `SELECT id, code FROM orders WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound(domain.KindOrder, id)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	var lines []struct {
		OrderID         string          `db:"order_id"`
		ItemID          string          `db:"item_id"`
		QuantityOrdered decimal.Decimal `db:"quantity_ordered"`
	}
	if err := sqlx.SelectContext(ctx, r.q, &lines,
		`SELECT order_id, item_id, quantity_ordered FROM order_lines WHERE order_id = ? ORDER BY line_no`, id); err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	order := &entity.Order{ID: o.ID, Code: o.Code}
	for _, l := range lines {
		order.Lines = append(order.Lines, entity.OrderLine{OrderID: l.OrderID, ItemID: l.ItemID, QuantityOrdered: l.QuantityOrdered})
	}
	return order, nil
}

// Save inserta o reemplaza una orden y sus líneas.
func (r *OrderRepo) Save(ctx context.Context, o *entity.Order) error {
	if _, err := r.q.ExecContext(ctx,
		`INSERT INTO orders (id, code) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET code = excluded.code`,
		o.ID, o.Code); err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, `DELETE FROM order_lines WHERE order_id = ?`, o.ID); err != nil {
		return fmt.Errorf("clear order lines: %w", err)
	}
	for i, l := range o.Lines {
		if _, err := r.q.ExecContext(ctx,
			`INSERT INTO order_lines (order_id, line_no, item_id, quantity_ordered) VALUES (?, ?, ?, ?)`,
			o.ID, i+1, l.ItemID, l.QuantityOrdered.String()); err != nil {
			if isForeignKeyViolation(err) {
				return domain.NewNotFound(domain.KindItem, l.ItemID)
			}
			return fmt.Errorf("save order line: %w", err)
		}
	}
	return nil
}
