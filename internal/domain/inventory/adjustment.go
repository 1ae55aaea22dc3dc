package inventory

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// StockTransition resultado de aplicar un ajuste directo al contador en caché.
type StockTransition struct {
	PreviousOnHand decimal.Decimal
	NewOnHand      decimal.Decimal
	StatusAfter    string
}

// ApplyDiscount descuenta qty del contador. Falla si qty supera lo disponible en caché;
// al llegar exactamente a cero el ítem pasa a DEPLETED.
func ApplyDiscount(item *entity.Item, qty decimal.Decimal) (StockTransition, error) {
	if !qty.IsPositive() {
		return StockTransition{}, domain.ErrInvalidInput
	}
	if qty.GreaterThan(item.OnHand) {
		return StockTransition{}, &domain.InsufficientStockError{ItemID: item.ID, Shortfall: qty.Sub(item.OnHand)}
	}
	next := item.OnHand.Sub(qty)
	status := item.Status
	if next.IsZero() {
		status = entity.ItemStatusDepleted
	}
	return StockTransition{PreviousOnHand: item.OnHand, NewOnHand: next, StatusAfter: status}, nil
}

// ApplyReceive suma qty al contador; si estaba en cero el ítem pasa a AVAILABLE.
func ApplyReceive(item *entity.Item, qty decimal.Decimal) (StockTransition, error) {
	if !qty.IsPositive() {
		return StockTransition{}, domain.ErrInvalidInput
	}
	status := item.Status
	if item.OnHand.IsZero() {
		status = entity.ItemStatusAvailable
	}
	return StockTransition{PreviousOnHand: item.OnHand, NewOnHand: item.OnHand.Add(qty), StatusAfter: status}, nil
}
