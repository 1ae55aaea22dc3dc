package inventory

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// BatchState un lote (movimiento de entrada) con lo ya consumido por salidas vinculadas.
type BatchState struct {
	Batch    *entity.Movement
	Consumed decimal.Decimal
}

// Remaining capacidad restante del lote. Puede ser ≤ 0 si el lote está agotado.
func (b BatchState) Remaining() decimal.Decimal {
	return b.Batch.Quantity.Sub(b.Consumed)
}

// Exhausted indica si el lote ya no tiene capacidad.
func (b BatchState) Exhausted() bool {
	return !b.Remaining().IsPositive()
}

// Consumption porción de demanda asignada a un lote.
type Consumption struct {
	Batch    *entity.Movement
	Quantity decimal.Decimal
}

// SortFIFO ordena lotes del más antiguo al más nuevo: fecha de ingreso y luego orden de inserción.
func SortFIFO(batches []BatchState) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i].Batch, batches[j].Batch
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.Before(b.OccurredAt)
		}
		return a.Seq < b.Seq
	})
}

// PlanFIFO recorre los lotes en el orden dado y consume primero los más antiguos.
// Devuelve el plan y el faltante; si el faltante es positivo el plan no debe persistirse.
func PlanFIFO(batches []BatchState, demand decimal.Decimal) ([]Consumption, decimal.Decimal) {
	remaining := demand
	plan := make([]Consumption, 0, len(batches))
	for _, b := range batches {
		if !remaining.IsPositive() {
			break
		}
		available := b.Remaining()
		if !available.IsPositive() {
			continue
		}
		consume := decimal.Min(remaining, available)
		plan = append(plan, Consumption{Batch: b.Batch, Quantity: consume})
		remaining = remaining.Sub(consume)
	}
	return plan, clampZero(remaining)
}
