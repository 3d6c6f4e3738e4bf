package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock representa la existencia de un SKU en una bodega al último conteo o movimiento.
type Stock struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}
