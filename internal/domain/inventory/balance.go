package inventory

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
)

// Balance resultado de plegar movimientos de un par (ítem, ubicación).
type Balance struct {
	Entries decimal.Decimal
	Exits   decimal.Decimal
}

// Net saldo con signo: Σ entradas − Σ salidas. Puede ser negativo por errores de captura.
func (b Balance) Net() decimal.Decimal {
	return b.Entries.Sub(b.Exits)
}

// Available saldo para cálculos de disponibilidad: nunca menor que cero.
func (b Balance) Available() decimal.Decimal {
	return clampZero(b.Net())
}

// Fold suma entradas y salidas. El resultado no depende del orden de los movimientos.
// El llamador es responsable de filtrar por ítem y ubicación.
func Fold(movements []*entity.Movement) Balance {
	b := Balance{Entries: decimal.Zero, Exits: decimal.Zero}
	for _, m := range movements {
		switch m.Type {
		case entity.MovementTypeEntry:
			b.Entries = b.Entries.Add(m.Quantity)
		case entity.MovementTypeExit:
			b.Exits = b.Exits.Add(m.Quantity)
		}
	}
	return b
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
