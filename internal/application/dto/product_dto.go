package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un SKU con sus parámetros de planeación.
type CreateProductRequest struct {
	SKU                 string          `json:"sku" validate:"required,min=1,max=100"`
	Name                string          `json:"name" validate:"required,min=1,max=200"`
	Variant             string          `json:"variant" validate:"max=100"`
	UnitCost            decimal.Decimal `json:"unit_cost"`
	ProductionLeadWeeks int             `json:"production_lead_weeks" validate:"min=0,max=52"`
	SafetyStockWeeks    decimal.Decimal `json:"safety_stock_weeks"`
	OrderMultiple       decimal.Decimal `json:"order_multiple"`
}

// UpdateProductRequest formulario de configuración del SKU (campos opcionales).
type UpdateProductRequest struct {
	Name                *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Variant             *string          `json:"variant" validate:"omitempty,max=100"`
	UnitCost            *decimal.Decimal `json:"unit_cost"`
	ProductionLeadWeeks *int             `json:"production_lead_weeks" validate:"omitempty,min=0,max=52"`
	SafetyStockWeeks    *decimal.Decimal `json:"safety_stock_weeks"`
	OrderMultiple       *decimal.Decimal `json:"order_multiple"`
	Active              *bool            `json:"active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                  string          `json:"id"`
	CompanyID           string          `json:"company_id"`
	SKU                 string          `json:"sku"`
	Name                string          `json:"name"`
	Variant             string          `json:"variant"`
	UnitCost            decimal.Decimal `json:"unit_cost"`
	ProductionLeadWeeks int             `json:"production_lead_weeks"`
	SafetyStockWeeks    decimal.Decimal `json:"safety_stock_weeks"`
	OrderMultiple       decimal.Decimal `json:"order_multiple"`
	Active              bool            `json:"active"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
