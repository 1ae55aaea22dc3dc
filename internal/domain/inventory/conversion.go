package inventory

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/labstock-api/internal/domain"
)

// DivisionPrecision dígitos decimales usados al convertir unidad base → unidad de empaque.
const DivisionPrecision = 16

// DemandUnits convierte una demanda en unidad base (ej. gramos) a unidades de empaque.
// No redondea: unidades fraccionarias son válidas como valor intermedio.
func DemandUnits(demandBaseUnits, packagingFactor decimal.Decimal) (decimal.Decimal, error) {
	if !packagingFactor.IsPositive() || !demandBaseUnits.IsPositive() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	return demandBaseUnits.DivRound(packagingFactor, DivisionPrecision), nil
}
