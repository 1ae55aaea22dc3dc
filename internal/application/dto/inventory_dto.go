package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocateRequest body para POST /api/inventory/allocations.
// DemandBaseUnits en unidad base (ej. gramos); PackagingConversionFactor unidad base por empaque.
// LocationID vacío = pool general.
type AllocateRequest struct {
	ItemID                    string          `json:"item_id"`
	LocationID                string          `json:"location_id,omitempty"`
	DemandBaseUnits           decimal.Decimal `json:"demand_base_units"`
	PackagingConversionFactor decimal.Decimal `json:"packaging_conversion_factor"`
	EventRef                  string          `json:"event_ref"`
	OccurredAt                *time.Time      `json:"occurred_at,omitempty"`
}

// AllocateBatchRequest body para POST /api/inventory/allocations/batch.
type AllocateBatchRequest struct {
	Items []AllocateRequest `json:"items"`
}

// MovementResponse representación de un movimiento del libro.
type MovementResponse struct {
	ID             string          `json:"id"`
	ItemID         string          `json:"item_id"`
	LocationID     string          `json:"location_id"`
	Type           string          `json:"type"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
	DocumentRef    string          `json:"document_ref,omitempty"`
	Responsible    string          `json:"responsible,omitempty"`
	Note           string          `json:"note,omitempty"`
	SourceBatchRef string          `json:"source_batch_ref,omitempty"`
}

// AllocateResponse éxito de una asignación FIFO.
type AllocateResponse struct {
	ExitsCreated []MovementResponse `json:"exits_created"`
}

// Estados por ítem en una asignación múltiple.
const (
	AllocationStatusAllocated         = "ALLOCATED"
	AllocationStatusInsufficientStock = "INSUFFICIENT_STOCK"
	AllocationStatusFailed            = "FAILED"
)

// AllocationResult resultado por ítem de una asignación múltiple (nunca se colapsa en un solo booleano).
type AllocationResult struct {
	ItemID         string             `json:"item_id"`
	Status         string             `json:"status"`
	ExitsCreated   []MovementResponse `json:"exits_created,omitempty"`
	ShortfallUnits *decimal.Decimal   `json:"shortfall_units,omitempty"`
	Error          string             `json:"error,omitempty"`
}

// AllocateBatchResponse respuesta de una asignación múltiple.
type AllocateBatchResponse struct {
	Results   []AllocationResult `json:"results"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
}

// InsufficientStockResponse cuerpo de error 409 con el faltante.
type InsufficientStockResponse struct {
	Code           string          `json:"code"`
	Message        string          `json:"message"`
	ItemID         string          `json:"item_id"`
	ShortfallUnits decimal.Decimal `json:"shortfall_units"`
}

// BalanceResponse saldo de (ítem, ubicación) con el saldo crudo para diagnóstico.
type BalanceResponse struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	Entries    decimal.Decimal `json:"entries"`
	Exits      decimal.Decimal `json:"exits"`
	Balance    decimal.Decimal `json:"balance"`
	Available  decimal.Decimal `json:"available"`
}

// BatchStatusResponse capacidad restante de un lote.
type BatchStatusResponse struct {
	Batch     MovementResponse `json:"batch"`
	Consumed  decimal.Decimal  `json:"consumed"`
	Remaining decimal.Decimal  `json:"remaining"`
	Exhausted bool             `json:"exhausted"`
}

// Operaciones de ajuste directo.
const (
	AdjustmentReceive  = "receive"
	AdjustmentDiscount = "discount"
)

// AdjustmentRequest body para POST /api/inventory/items/:id/adjustments.
type AdjustmentRequest struct {
	ItemID    string             `json:"-"`
	Operation string             `json:"operation"`
	Quantity  decimal.Decimal    `json:"quantity"`
	Metadata  AdjustmentMetadata `json:"metadata"`
	Actor     string             `json:"-"`
}

// AdjustmentMetadata datos del documento que respalda el ajuste.
type AdjustmentMetadata struct {
	DocumentRef string     `json:"document_ref,omitempty"`
	Note        string     `json:"note,omitempty"`
	OccurredAt  *time.Time `json:"occurred_at,omitempty"`
}

// AdjustmentResponse resultado de un ajuste directo.
type AdjustmentResponse struct {
	ItemID         string          `json:"item_id"`
	PreviousOnHand decimal.Decimal `json:"previous_on_hand"`
	NewOnHand      decimal.Decimal `json:"new_on_hand"`
	StatusAfter    string          `json:"status_after"`
	MovementID     string          `json:"movement_id"`
	MovementIDs    []string        `json:"movement_ids"` // un descuento crea una salida por lote consumido
}

// OnHandCheckResponse compara el contador en caché con el pliegue del libro (pool general).
type OnHandCheckResponse struct {
	ItemID       string          `json:"item_id"`
	CachedOnHand decimal.Decimal `json:"cached_on_hand"`
	LedgerOnHand decimal.Decimal `json:"ledger_on_hand"`
	Drift        decimal.Decimal `json:"drift"`
	InSync       bool            `json:"in_sync"`
}
