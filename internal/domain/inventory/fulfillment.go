package inventory

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// LineStock proyección de existencias de una línea de orden sobre el pool de la orden y el pool general.
type LineStock struct {
	ItemID                  string
	QuantityOrdered         decimal.Decimal
	ProducedInOrderPool     decimal.Decimal
	DispatchedFromOrderPool decimal.Decimal
	OrderPoolOnHand         decimal.Decimal
	GeneralPoolOnHand       decimal.Decimal
	TotalAvailable          decimal.Decimal
	LineComplete            bool
	Shortfall               decimal.Decimal
	PendingToDispatch       decimal.Decimal
	LineDispatched          bool
}

// OrderStock agregados a nivel de orden.
type OrderStock struct {
	OrderID                   string
	Lines                     []LineStock
	OrderComplete             bool
	OrderDispatched           bool
	TotalOrdered              decimal.Decimal
	TotalAvailable            decimal.Decimal
	TotalShortfall            decimal.Decimal
	TotalDispatched           decimal.Decimal
	TotalPending              decimal.Decimal
	TotalGeneralPoolAvailable decimal.Decimal
}

// ProjectLine calcula completitud y despacho de una línea.
// orderPool es el pliegue de (ítem, orden) y general el de (ítem, pool general).
func ProjectLine(line entity.OrderLine, orderPool, general Balance) LineStock {
	produced := orderPool.Entries
	dispatched := orderPool.Exits
	orderOnHand := clampZero(produced.Sub(dispatched))
	generalOnHand := general.Available()
	total := orderOnHand.Add(generalOnHand)

	complete := total.GreaterThanOrEqual(line.QuantityOrdered)
	shortfall := decimal.Zero
	if !complete {
		shortfall = line.QuantityOrdered.Sub(total)
	}

	return LineStock{
		ItemID:                  line.ItemID,
		QuantityOrdered:         line.QuantityOrdered,
		ProducedInOrderPool:     produced,
		DispatchedFromOrderPool: dispatched,
		OrderPoolOnHand:         orderOnHand,
		GeneralPoolOnHand:       generalOnHand,
		TotalAvailable:          total,
		LineComplete:            complete,
		Shortfall:               shortfall,
		PendingToDispatch:       clampZero(line.QuantityOrdered.Sub(dispatched)),
		LineDispatched:          dispatched.GreaterThanOrEqual(line.QuantityOrdered),
	}
}

// Summarize agrega las líneas. Una orden sin líneas se considera completa y despachada.
func Summarize(orderID string, lines []LineStock) OrderStock {
	out := OrderStock{
		OrderID:                   orderID,
		Lines:                     lines,
		OrderComplete:             true,
		OrderDispatched:           true,
		TotalOrdered:              decimal.Zero,
		TotalAvailable:            decimal.Zero,
		TotalShortfall:            decimal.Zero,
		TotalDispatched:           decimal.Zero,
		TotalPending:              decimal.Zero,
		TotalGeneralPoolAvailable: decimal.Zero,
	}
	for _, l := range lines {
		out.OrderComplete = out.OrderComplete && l.LineComplete
		out.OrderDispatched = out.OrderDispatched && l.LineDispatched
		out.TotalOrdered = out.TotalOrdered.Add(l.QuantityOrdered)
		out.TotalAvailable = out.TotalAvailable.Add(l.TotalAvailable)
		out.TotalShortfall = out.TotalShortfall.Add(l.Shortfall)
		out.TotalDispatched = out.TotalDispatched.Add(l.DispatchedFromOrderPool)
		out.TotalPending = out.TotalPending.Add(l.PendingToDispatch)
		out.TotalGeneralPoolAvailable = out.TotalGeneralPoolAvailable.Add(l.GeneralPoolOnHand)
	}
	return out
}
