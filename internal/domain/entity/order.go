package entity

import "github.com/shopspring/decimal"

// Order es una orden de trabajo o despacho; su ID funciona también como ubicación del pool de la orden.
type Order struct {
	ID    string
	Code  string
	Lines []OrderLine
}

// OrderLine cantidad ordenada de un ítem dentro de una orden (solo lectura para este servicio).
type OrderLine struct {
	OrderID         string
	ItemID          string
	QuantityOrdered decimal.Decimal
}
