package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/scm-api/internal/domain/planning"
)

// UpsertForecastRequest pronóstico de varias semanas de un SKU.
type UpsertForecastRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Weeks     []ForecastEntry `json:"weeks" validate:"required,min=1,max=104,dive"`
}

// ForecastEntry pronóstico de una semana ISO ("2026-W05").
type ForecastEntry struct {
	Week        planning.Week   `json:"week"`
	ForecastQty decimal.Decimal `json:"forecast_qty"`
}

// RecordActualRequest venta real de una semana cerrada.
type RecordActualRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Week      planning.Week   `json:"week"`
	ActualQty decimal.Decimal `json:"actual_qty"`
}

// DemandWeekResponse una semana de la serie.
type DemandWeekResponse struct {
	ProductID   string           `json:"product_id"`
	Week        planning.Week    `json:"week"`
	ForecastQty decimal.Decimal  `json:"forecast_qty"`
	ActualQty   *decimal.Decimal `json:"actual_qty"`
}
