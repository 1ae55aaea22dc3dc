package dto

import "github.com/shopspring/decimal"

// LineStockReport existencias de una línea de orden sobre el pool de la orden y el pool general.
type LineStockReport struct {
	ItemID                  string          `json:"item_id"`
	QuantityOrdered         decimal.Decimal `json:"quantity_ordered"`
	ProducedInOrderPool     decimal.Decimal `json:"produced_in_order_pool"`
	DispatchedFromOrderPool decimal.Decimal `json:"dispatched_from_order_pool"`
	OrderPoolOnHand         decimal.Decimal `json:"order_pool_on_hand"`
	GeneralPoolOnHand       decimal.Decimal `json:"general_pool_on_hand"`
	TotalAvailable          decimal.Decimal `json:"total_available"`
	LineComplete            bool            `json:"line_complete"`
	Shortfall               decimal.Decimal `json:"shortfall"`
	PendingToDispatch       decimal.Decimal `json:"pending_to_dispatch"`
	LineDispatched          bool            `json:"line_dispatched"`
}

// OrderStockReport respuesta de GET /api/orders/:id/stock.
type OrderStockReport struct {
	OrderID                   string            `json:"order_id"`
	OrderCode                 string            `json:"order_code,omitempty"`
	Lines                     []LineStockReport `json:"lines"`
	OrderComplete             bool              `json:"order_complete"`
	OrderDispatched           bool              `json:"order_dispatched"`
	TotalOrdered              decimal.Decimal   `json:"total_ordered"`
	TotalAvailable            decimal.Decimal   `json:"total_available"`
	TotalShortfall            decimal.Decimal   `json:"total_shortfall"`
	TotalDispatched           decimal.Decimal   `json:"total_dispatched"`
	TotalPending              decimal.Decimal   `json:"total_pending"`
	TotalGeneralPoolAvailable decimal.Decimal   `json:"total_general_pool_available"`
}
