package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	MovementTypeEntry = "ENTRY" // entrada (lote)
	MovementTypeExit  = "EXIT"  // salida
)

// GeneralPool es la ubicación centinela del stock no comprometido con ninguna orden.
// Una ubicación vacía equivale a GeneralPool.
const GeneralPool = "GENERAL"

// NormalizeLocation devuelve GeneralPool para ubicaciones vacías o el alias del pool general.
func NormalizeLocation(locationID string) string {
	loc := strings.TrimSpace(locationID)
	if loc == "" || strings.EqualFold(loc, GeneralPool) {
		return GeneralPool
	}
	return loc
}

// IsGeneralPool indica si la ubicación es el pool general.
func IsGeneralPool(locationID string) bool {
	return NormalizeLocation(locationID) == GeneralPool
}

// Movement es un hecho inmutable del libro: se crea una vez, nunca se actualiza ni se borra.
// LocationID es un ID de orden (pool de la orden) o GeneralPool.
// SourceBatchRef solo se llena en salidas generadas por el asignador FIFO y apunta a la entrada (lote) origen.
type Movement struct {
	ID             string
	Seq            int64 // orden de inserción asignado por el almacén
	ItemID         string
	LocationID     string
	Type           string
	Quantity       decimal.Decimal // siempre > 0; el signo lo da Type
	Unit           string
	OccurredAt     time.Time
	DocumentRef    string
	Responsible    string
	Note           string
	SourceBatchRef string
	CreatedAt      time.Time
}

// IsEntry indica si el movimiento suma stock.
func (m *Movement) IsEntry() bool { return m.Type == MovementTypeEntry }

// IsExit indica si el movimiento resta stock.
func (m *Movement) IsExit() bool { return m.Type == MovementTypeExit }

// Valid verifica las reglas de forma de un movimiento antes de persistirlo.
func (m *Movement) Valid() bool {
	if m.ItemID == "" || !m.Quantity.IsPositive() {
		return false
	}
	switch m.Type {
	case MovementTypeEntry:
		return m.SourceBatchRef == ""
	case MovementTypeExit:
		return true
	}
	return false
}
