package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN         = "IN"         // entrada
	MovementTypeOUT        = "OUT"        // salida
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste (conciliación de conteo)
	MovementTypeTRANSFER   = "TRANSFER"   // traslado entre bodegas
)

// InventoryMovement representa un movimiento de inventario.
// Reference apunta al documento de origen (OC, embarque, conteo) cuando existe.
type InventoryMovement struct {
	ID            string
	TransactionID string
	ProductID     string
	WarehouseID   string
	Type          string
	Quantity      decimal.Decimal // positivo entrada/ajuste+, negativo salida
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	Reference     string
	Date          time.Time
	CreatedAt     time.Time
	CreatedBy     string
}
