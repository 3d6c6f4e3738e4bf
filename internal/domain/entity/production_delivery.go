package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductionDelivery entrega de fábrica contra una línea de OC.
// ActualDate nil = entrega programada, aún no realizada. ShippedQty es lo que ya salió en embarques.
type ProductionDelivery struct {
	ID          string
	CompanyID   string
	POItemID    string
	ProductID   string
	Quantity    decimal.Decimal
	ShippedQty  decimal.Decimal
	PlannedDate time.Time
	ActualDate  *time.Time
	CreatedAt   time.Time
}

// Unshipped cantidad entregada por la fábrica que todavía no viaja en un embarque.
func (d ProductionDelivery) Unshipped() decimal.Decimal {
	r := d.Quantity.Sub(d.ShippedQty)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}
