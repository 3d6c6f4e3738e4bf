package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un embarque.
const (
	ShipmentStatusPlanned   = "planned"
	ShipmentStatusInTransit = "in_transit"
	ShipmentStatusArrived   = "arrived"
	ShipmentStatusCancelled = "cancelled"
)

// Shipment embarque de mercancía hacia una bodega destino.
// EstimatedArrival se recalcula al zarpar; ActualArrival se fija al recibir.
type Shipment struct {
	ID               string
	CompanyID        string
	TrackingNumber   string
	Carrier          string
	WarehouseID      string
	Status           string
	PlannedDeparture time.Time
	PlannedArrival   time.Time
	ActualDeparture  *time.Time
	EstimatedArrival *time.Time
	ActualArrival    *time.Time
	Lines            []ShipmentLine
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ShipmentLine cantidad de un SKU dentro del embarque.
// DeliveryID enlaza con la entrega de producción de la que sale la mercancía (opcional).
type ShipmentLine struct {
	ID         string
	ShipmentID string
	ProductID  string
	DeliveryID string
	Quantity   decimal.Decimal
}
