package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OpenPOItem línea de OC abierta con cantidad aún no entregada por la fábrica.
type OpenPOItem struct {
	ItemID       string
	PONumber     string
	ProductID    string
	Remaining    decimal.Decimal
	ExpectedDate time.Time
}

// OpenDelivery entrega de fábrica con cantidad que todavía no viaja en un embarque.
type OpenDelivery struct {
	DeliveryID  string
	PONumber    string
	ProductID   string
	Unshipped   decimal.Decimal
	PlannedDate time.Time
	ActualDate  *time.Time
}

// InboundLine línea de un embarque planeado o en tránsito.
type InboundLine struct {
	ShipmentID       string
	TrackingNumber   string
	ProductID        string
	Quantity         decimal.Decimal
	PlannedArrival   time.Time
	EstimatedArrival *time.Time
}

// SupplyReader lee la oferta en tubería (aún no recibida) por etapa.
// Cada unidad está en una sola etapa: OC pendiente, entregada sin embarcar o embarcada.
// productIDs vacío = todos los productos de la empresa.
type SupplyReader interface {
	ListOpenPOItems(ctx context.Context, companyID string, productIDs []string) ([]OpenPOItem, error)
	ListOpenDeliveries(ctx context.Context, companyID string, productIDs []string) ([]OpenDelivery, error)
	ListInboundLines(ctx context.Context, companyID string, productIDs []string) ([]InboundLine, error)
}
