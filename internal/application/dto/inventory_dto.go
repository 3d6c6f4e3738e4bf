package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	ProductID       string           `json:"product_id" validate:"required,uuid"`
	WarehouseID     string           `json:"warehouse_id,omitempty" validate:"omitempty,uuid"`
	FromWarehouseID string           `json:"from_warehouse_id,omitempty" validate:"omitempty,uuid"`
	ToWarehouseID   string           `json:"to_warehouse_id,omitempty" validate:"omitempty,uuid"`
	Type            string           `json:"type" validate:"required,oneof=IN OUT ADJUSTMENT TRANSFER"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference       string           `json:"reference,omitempty" validate:"max=100"`
}

// MovementResponse fila del kardex.
type MovementResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	ProductID     string          `json:"product_id"`
	WarehouseID   string          `json:"warehouse_id"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Reference     string          `json:"reference,omitempty"`
	Date          time.Time       `json:"date"`
	CreatedBy     string          `json:"created_by,omitempty"`
}

// OnHandResponse existencia total por SKU (todas las bodegas).
type OnHandResponse struct {
	ProductID  string          `json:"product_id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Value      decimal.Decimal `json:"value"`
	Warehouses int             `json:"warehouses"`
}

// CountLine conteo físico de un SKU en la bodega.
type CountLine struct {
	ProductID  string          `json:"product_id" validate:"required,uuid"`
	CountedQty decimal.Decimal `json:"counted_qty"`
}

// ReconciliationRequest conteo físico de una bodega para conciliar contra el sistema.
type ReconciliationRequest struct {
	WarehouseID string      `json:"warehouse_id" validate:"required,uuid"`
	Reference   string      `json:"reference" validate:"max=100"`
	Lines       []CountLine `json:"lines" validate:"required,min=1,dive"`
}

// ReconciliationLine comparación sistema vs conteo de un SKU.
type ReconciliationLine struct {
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku"`
	SystemQty     decimal.Decimal `json:"system_qty"`
	CountedQty    decimal.Decimal `json:"counted_qty"`
	Variance      decimal.Decimal `json:"variance"` // conteo − sistema
	UnitCost      decimal.Decimal `json:"unit_cost"`
	VarianceValue decimal.Decimal `json:"variance_value"`
	Applied       bool            `json:"applied"`
}

// ReconciliationResponse resultado de la vista previa o de la aplicación del conteo.
type ReconciliationResponse struct {
	WarehouseID        string               `json:"warehouse_id"`
	TransactionID      string               `json:"transaction_id,omitempty"`
	Lines              []ReconciliationLine `json:"lines"`
	LinesWithVariance  int                  `json:"lines_with_variance"`
	TotalVarianceValue decimal.Decimal      `json:"total_variance_value"`
}
