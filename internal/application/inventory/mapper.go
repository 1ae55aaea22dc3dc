package inventory

import (
	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/inventory"
)

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:             m.ID,
		ItemID:         m.ItemID,
		LocationID:     m.LocationID,
		Type:           m.Type,
		Quantity:       m.Quantity,
		Unit:           m.Unit,
		OccurredAt:     m.OccurredAt,
		DocumentRef:    m.DocumentRef,
		Responsible:    m.Responsible,
		Note:           m.Note,
		SourceBatchRef: m.SourceBatchRef,
	}
}

// ToMovementResponses convierte movimientos del libro a su representación de salida.
func ToMovementResponses(list []*entity.Movement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return out
}

func toOrderStockReport(order *entity.Order, s inventory.OrderStock) *dto.OrderStockReport {
	lines := make([]dto.LineStockReport, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, dto.LineStockReport{
			ItemID:                  l.ItemID,
			QuantityOrdered:         l.QuantityOrdered,
			ProducedInOrderPool:     l.ProducedInOrderPool,
			DispatchedFromOrderPool: l.DispatchedFromOrderPool,
			OrderPoolOnHand:         l.OrderPoolOnHand,
			GeneralPoolOnHand:       l.GeneralPoolOnHand,
			TotalAvailable:          l.TotalAvailable,
			LineComplete:            l.LineComplete,
			Shortfall:               l.Shortfall,
			PendingToDispatch:       l.PendingToDispatch,
			LineDispatched:          l.LineDispatched,
		})
	}
	return &dto.OrderStockReport{
		OrderID:                   order.ID,
		OrderCode:                 order.Code,
		Lines:                     lines,
		OrderComplete:             s.OrderComplete,
		OrderDispatched:           s.OrderDispatched,
		TotalOrdered:              s.TotalOrdered,
		TotalAvailable:            s.TotalAvailable,
		TotalShortfall:            s.TotalShortfall,
		TotalDispatched:           s.TotalDispatched,
		TotalPending:              s.TotalPending,
		TotalGeneralPoolAvailable: s.TotalGeneralPoolAvailable,
	}
}
