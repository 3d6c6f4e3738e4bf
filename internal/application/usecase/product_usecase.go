package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/scm-api/internal/application/dto"
	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para SKUs y sus parámetros de planeación.
// El costo unitario se recalcula con los movimientos de entrada.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un SKU. Devuelve domain.ErrDuplicate si el SKU ya existe en la empresa.
func (uc *ProductUseCase) Create(ctx context.Context, companyID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.ToUpper(strings.TrimSpace(in.SKU))
	if err := validatePlanningParams(in.ProductionLeadWeeks, in.SafetyStockWeeks, in.OrderMultiple, in.UnitCost); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByCompanyAndSKU(ctx, companyID, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:                  uuid.New().String(),
		CompanyID:           companyID,
		SKU:                 sku,
		Name:                strings.TrimSpace(in.Name),
		Variant:             strings.TrimSpace(in.Variant),
		UnitCost:            in.UnitCost,
		ProductionLeadWeeks: in.ProductionLeadWeeks,
		SafetyStockWeeks:    in.SafetyStockWeeks,
		OrderMultiple:       in.OrderMultiple,
		Active:              true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un SKU de la empresa.
func (uc *ProductUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(p), nil
}

// Update aplica el formulario de configuración del SKU.
func (uc *ProductUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Variant != nil {
		p.Variant = strings.TrimSpace(*in.Variant)
	}
	if in.UnitCost != nil {
		p.UnitCost = *in.UnitCost
	}
	if in.ProductionLeadWeeks != nil {
		p.ProductionLeadWeeks = *in.ProductionLeadWeeks
	}
	if in.SafetyStockWeeks != nil {
		p.SafetyStockWeeks = *in.SafetyStockWeeks
	}
	if in.OrderMultiple != nil {
		p.OrderMultiple = *in.OrderMultiple
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if err := validatePlanningParams(p.ProductionLeadWeeks, p.SafetyStockWeeks, p.OrderMultiple, p.UnitCost); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// List lista SKUs por empresa con paginación.
func (uc *ProductUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func validatePlanningParams(leadWeeks int, safetyWeeks, orderMultiple, unitCost decimal.Decimal) error {
	switch {
	case leadWeeks < 0:
		return fmt.Errorf("%w: production_lead_weeks no puede ser negativo", domain.ErrInvalidInput)
	case safetyWeeks.IsNegative():
		return fmt.Errorf("%w: safety_stock_weeks no puede ser negativo", domain.ErrInvalidInput)
	case orderMultiple.IsNegative():
		return fmt.Errorf("%w: order_multiple no puede ser negativo", domain.ErrInvalidInput)
	case unitCost.IsNegative():
		return fmt.Errorf("%w: unit_cost no puede ser negativo", domain.ErrInvalidInput)
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:                  p.ID,
		CompanyID:           p.CompanyID,
		SKU:                 p.SKU,
		Name:                p.Name,
		Variant:             p.Variant,
		UnitCost:            p.UnitCost,
		ProductionLeadWeeks: p.ProductionLeadWeeks,
		SafetyStockWeeks:    p.SafetyStockWeeks,
		OrderMultiple:       p.OrderMultiple,
		Active:              p.Active,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}
