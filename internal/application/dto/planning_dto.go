package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/scm-api/internal/domain/planning"
)

// ProjectionQuery parámetros opcionales de la proyección (query string).
type ProjectionQuery struct {
	StartWeek string `query:"start_week"` // "2026-W05"; vacío = semana actual
	Horizon   int    `query:"horizon"`    // 0 = configurado por defecto
}

// SupplyEventResponse oferta abierta reportada en la proyección.
type SupplyEventResponse struct {
	Source     planning.SupplySource `json:"source"`
	Reference  string                `json:"reference"`
	Quantity   decimal.Decimal       `json:"quantity"`
	TargetWeek planning.Week         `json:"target_week"`
}

// ProjectionResponse traza semanal de un SKU.
type ProjectionResponse struct {
	ProductID        string                   `json:"product_id"`
	SKU              string                   `json:"sku"`
	Name             string                   `json:"name"`
	StartWeek        planning.Week            `json:"start_week"`
	OnHand           decimal.Decimal          `json:"on_hand"`
	AvgWeeklyDemand  decimal.Decimal          `json:"avg_weekly_demand"`
	SafetyThreshold  decimal.Decimal          `json:"safety_threshold"`
	Rows             []planning.ProjectionRow `json:"rows"`
	WorstStatus      planning.StockStatus     `json:"worst_status"`
	FirstRiskWeek    *planning.Week           `json:"first_risk_week,omitempty"`
	FirstStockout    *planning.Week           `json:"first_stockout_week,omitempty"`
	PastDueSupply    []SupplyEventResponse    `json:"past_due_supply,omitempty"`
	PastDueSupplyQty decimal.Decimal          `json:"past_due_supply_qty"`
}

// ReplenishmentSuggestion sugerencia de pedido para un SKU en riesgo.
type ReplenishmentSuggestion struct {
	ProductID     string               `json:"product_id"`
	SKU           string               `json:"sku"`
	Name          string               `json:"name"`
	TriggerStatus planning.StockStatus `json:"trigger_status"`
	ClosingAtRisk decimal.Decimal      `json:"closing_at_target"`
	Shortfall     decimal.Decimal      `json:"shortfall"`
	SuggestedQty  decimal.Decimal      `json:"suggested_qty"`
	UnitCost      decimal.Decimal      `json:"unit_cost"`
	EstimatedCost decimal.Decimal      `json:"estimated_cost"`
	Schedule      planning.Schedule    `json:"schedule"`
}

// ReplenishmentResponse lista de sugerencias ordenada por urgencia.
type ReplenishmentResponse struct {
	CurrentWeek planning.Week             `json:"current_week"`
	Total       int                       `json:"total"`
	Overdue     int                       `json:"overdue"`
	Suggestions []ReplenishmentSuggestion `json:"suggestions"`
}

// ReverseScheduleRequest programación inversa ad hoc.
// Sin ProductID se usan los tiempos enviados; con ProductID las semanas de producción del SKU.
type ReverseScheduleRequest struct {
	TargetWeek         planning.Week `json:"target_week"`
	ProductID          string        `json:"product_id,omitempty" validate:"omitempty,uuid"`
	ProductionWeeks    *int          `json:"production_weeks,omitempty" validate:"omitempty,min=0,max=104"`
	LoadingBufferWeeks *int          `json:"loading_buffer_weeks,omitempty" validate:"omitempty,min=0,max=52"`
	TransitWeeks       *int          `json:"transit_weeks,omitempty" validate:"omitempty,min=0,max=52"`
	InboundBufferWeeks *int          `json:"inbound_buffer_weeks,omitempty" validate:"omitempty,min=0,max=52"`
}

// ReverseScheduleResponse resultado con los tiempos efectivamente usados.
type ReverseScheduleResponse struct {
	CurrentWeek planning.Week      `json:"current_week"`
	LeadTimes   planning.LeadTimes `json:"lead_times"`
	Schedule    planning.Schedule  `json:"schedule"`
}
