package dto

import "github.com/jhoicas/scm-api/internal/domain/planning"

// StockoutAlert SKU con quiebre proyectado.
type StockoutAlert struct {
	ProductID    string        `json:"product_id"`
	SKU          string        `json:"sku"`
	StockoutWeek planning.Week `json:"stockout_week"`
	WeeksAway    int           `json:"weeks_away"`
}

// DashboardSummaryDTO resumen de la cadena de suministro para la empresa.
type DashboardSummaryDTO struct {
	CurrentWeek        planning.Week   `json:"current_week"`
	WeekLabel          string          `json:"week_label"`
	SKUsTotal          int             `json:"skus_total"`
	SKUsOK             int             `json:"skus_ok"`
	SKUsRisk           int             `json:"skus_risk"`
	SKUsStockout       int             `json:"skus_stockout"`
	UpcomingStockouts  []StockoutAlert `json:"upcoming_stockouts"`
	OpenPurchaseOrders int             `json:"open_purchase_orders"`
	ShipmentsInTransit int             `json:"shipments_in_transit"`
	OverdueSuggestions int             `json:"overdue_suggestions"`
}
