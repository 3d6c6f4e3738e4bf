package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	Supplier  string              `json:"supplier" validate:"required,min=1,max=200"`
	OrderDate *time.Time          `json:"order_date,omitempty"`
	Notes     string              `json:"notes" validate:"max=1000"`
	Items     []PurchaseOrderItem `json:"items" validate:"required,min=1,dive"`
}

// PurchaseOrderItem línea de la OC. ExpectedDate = mercancía disponible en bodega.
type PurchaseOrderItem struct {
	ProductID    string          `json:"product_id" validate:"required,uuid"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	ExpectedDate time.Time       `json:"expected_date" validate:"required"`
}

// ChangePOStatusRequest transición de estado de la OC.
type ChangePOStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed in_production shipped received cancelled"`
}

// RecordDeliveryRequest entrega de fábrica contra una línea de la OC.
// Con WarehouseID la mercancía entra directo a esa bodega (movimiento IN).
type RecordDeliveryRequest struct {
	ItemID      string          `json:"item_id" validate:"required,uuid"`
	Quantity    decimal.Decimal `json:"quantity"`
	PlannedDate *time.Time      `json:"planned_date,omitempty"`
	ActualDate  *time.Time      `json:"actual_date,omitempty"`
	WarehouseID string          `json:"warehouse_id,omitempty" validate:"omitempty,uuid"`
}

// PurchaseOrderItemResponse línea de OC en respuestas.
type PurchaseOrderItemResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	DeliveredQty decimal.Decimal `json:"delivered_qty"`
	Remaining    decimal.Decimal `json:"remaining"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	LineTotal    decimal.Decimal `json:"line_total"`
	ExpectedDate time.Time       `json:"expected_date"`
}

// PurchaseOrderResponse salida de una OC.
type PurchaseOrderResponse struct {
	ID        string                      `json:"id"`
	PONumber  string                      `json:"po_number"`
	Supplier  string                      `json:"supplier"`
	Status    string                      `json:"status"`
	OrderDate time.Time                   `json:"order_date"`
	Notes     string                      `json:"notes,omitempty"`
	Total     decimal.Decimal             `json:"total"`
	Items     []PurchaseOrderItemResponse `json:"items"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// PurchaseOrderListResponse lista paginada de OCs.
type PurchaseOrderListResponse struct {
	Items []PurchaseOrderResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// DeliveryResponse entrega de producción registrada.
type DeliveryResponse struct {
	ID          string          `json:"id"`
	POItemID    string          `json:"po_item_id"`
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	ShippedQty  decimal.Decimal `json:"shipped_qty"`
	PlannedDate time.Time       `json:"planned_date"`
	ActualDate  *time.Time      `json:"actual_date,omitempty"`
	Received    bool            `json:"received"`
}
