package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra.
const (
	POStatusDraft        = "draft"
	POStatusConfirmed    = "confirmed"
	POStatusInProduction = "in_production"
	POStatusShipped      = "shipped"
	POStatusReceived     = "received"
	POStatusCancelled    = "cancelled"
)

// poTransitions estados destino permitidos desde cada estado.
var poTransitions = map[string][]string{
	POStatusDraft:        {POStatusConfirmed, POStatusCancelled},
	POStatusConfirmed:    {POStatusInProduction, POStatusCancelled},
	POStatusInProduction: {POStatusShipped, POStatusCancelled},
	POStatusShipped:      {POStatusReceived, POStatusCancelled},
}

// CanTransitionPO informa si una OC puede pasar de from a to.
func CanTransitionPO(from, to string) bool {
	for _, s := range poTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsOpenPOStatus estados en los que la OC sigue aportando oferta futura.
func IsOpenPOStatus(status string) bool {
	switch status {
	case POStatusConfirmed, POStatusInProduction, POStatusShipped:
		return true
	}
	return false
}

// PurchaseOrder orden de compra a proveedor/fábrica.
type PurchaseOrder struct {
	ID        string
	CompanyID string
	PONumber  string
	Supplier  string
	Status    string
	OrderDate time.Time
	Notes     string
	Items     []POItem
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// POItem línea de la OC. ExpectedDate es la fecha en que la mercancía debe estar
// disponible en bodega; DeliveredQty acumula las entregas de producción registradas.
type POItem struct {
	ID           string
	POID         string
	ProductID    string
	Quantity     decimal.Decimal
	DeliveredQty decimal.Decimal
	UnitCost     decimal.Decimal
	ExpectedDate time.Time
}

// Remaining cantidad pendiente de entrega por la fábrica.
func (i POItem) Remaining() decimal.Decimal {
	r := i.Quantity.Sub(i.DeliveredQty)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Total valor de la OC.
func (po *PurchaseOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range po.Items {
		total = total.Add(it.Quantity.Mul(it.UnitCost))
	}
	return total
}
