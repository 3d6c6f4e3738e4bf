package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un SKU (producto/variante de color) con sus parámetros de planeación.
// Son datos de referencia que se editan desde configuración.
type Product struct {
	ID                  string
	CompanyID           string
	SKU                 string // código único por empresa
	Name                string
	Variant             string // color o presentación
	UnitCost            decimal.Decimal
	ProductionLeadWeeks int             // semanas de producción en fábrica
	SafetyStockWeeks    decimal.Decimal // cobertura mínima en semanas de demanda promedio
	OrderMultiple       decimal.Decimal // MOQ / múltiplo de pedido; 0 = sin redondeo
	Active              bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
