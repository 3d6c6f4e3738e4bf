package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateShipmentRequest body para POST /api/shipments.
type CreateShipmentRequest struct {
	TrackingNumber   string         `json:"tracking_number" validate:"required,min=1,max=100"`
	Carrier          string         `json:"carrier" validate:"max=100"`
	WarehouseID      string         `json:"warehouse_id" validate:"required,uuid"`
	PlannedDeparture time.Time      `json:"planned_departure" validate:"required"`
	PlannedArrival   time.Time      `json:"planned_arrival" validate:"required"`
	Lines            []ShipmentLine `json:"lines" validate:"required,min=1,dive"`
}

// ShipmentLine SKU y cantidad del embarque; DeliveryID opcional enlaza con la entrega de fábrica.
type ShipmentLine struct {
	ProductID  string          `json:"product_id" validate:"required,uuid"`
	DeliveryID string          `json:"delivery_id,omitempty" validate:"omitempty,uuid"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// DepartShipmentRequest zarpe del embarque.
type DepartShipmentRequest struct {
	ActualDeparture  *time.Time `json:"actual_departure,omitempty"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
}

// ArriveShipmentRequest llegada a bodega destino.
type ArriveShipmentRequest struct {
	ActualArrival *time.Time `json:"actual_arrival,omitempty"`
}

// ShipmentLineResponse línea del embarque en respuestas.
type ShipmentLineResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	DeliveryID string          `json:"delivery_id,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// ShipmentResponse salida de un embarque.
type ShipmentResponse struct {
	ID               string                 `json:"id"`
	TrackingNumber   string                 `json:"tracking_number"`
	Carrier          string                 `json:"carrier"`
	WarehouseID      string                 `json:"warehouse_id"`
	Status           string                 `json:"status"`
	PlannedDeparture time.Time              `json:"planned_departure"`
	PlannedArrival   time.Time              `json:"planned_arrival"`
	ActualDeparture  *time.Time             `json:"actual_departure,omitempty"`
	EstimatedArrival *time.Time             `json:"estimated_arrival,omitempty"`
	ActualArrival    *time.Time             `json:"actual_arrival,omitempty"`
	Lines            []ShipmentLineResponse `json:"lines"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// ShipmentListResponse lista paginada de embarques.
type ShipmentListResponse struct {
	Items []ShipmentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
