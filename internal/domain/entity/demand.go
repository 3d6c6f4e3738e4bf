package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// WeeklyDemand demanda de un SKU en una semana ISO.
// ActualQty es nil mientras la semana no ha cerrado.
type WeeklyDemand struct {
	CompanyID   string
	ProductID   string
	Year        int // año ISO
	Week        int // semana ISO 1..53
	ForecastQty decimal.Decimal
	ActualQty   *decimal.Decimal
	UpdatedAt   time.Time
}
