package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del contador de existencias de un ítem.
const (
	ItemStatusAvailable = "AVAILABLE"
	ItemStatusDepleted  = "DEPLETED"
)

// Item representa un insumo de laboratorio identificado por un código estable.
// PackagingFactor es la cantidad en unidad base contenida en una unidad de empaque (ej. gramos por bolsa).
// OnHand es un contador en caché, no autoritativo: la fuente de verdad es el pliegue de movimientos.
type Item struct {
	ID              string
	Code            string
	Name            string
	UnitMeasure     string
	PackagingFactor decimal.Decimal
	OnHand          decimal.Decimal
	Status          string
	UpdatedAt       time.Time
}
