package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas salvo decimal para cantidades).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrStoreUnavailable  = errors.New("almacén de movimientos no disponible")
)

// InsufficientStockError indica que la demanda supera todo lo disponible para el ítem.
// Shortfall es la porción no cubierta, en la unidad de la operación que falló.
type InsufficientStockError struct {
	ItemID    string
	Shortfall decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para ítem %s: faltan %s", e.ItemID, e.Shortfall.String())
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// Tipos de entidad para NotFoundError.
const (
	KindItem  = "item"
	KindOrder = "order"
	KindBatch = "batch"
)

// NotFoundError referencia a una entidad ausente en el almacén.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFound construye un NotFoundError.
func NewNotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// StoreError envuelve una falla del colaborador de persistencia. Se propaga sin reintentos.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// WrapStore envuelve err como StoreError; nil se conserva.
// Los errores de dominio ya tipados (NotFound, InvalidInput) no se reenvuelven.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
