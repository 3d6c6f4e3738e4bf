package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/scm-api/internal/application/dto"
	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/repository"
)

// StockQueryUseCase consultas de solo lectura: existencias por SKU y kardex.
type StockQueryUseCase struct {
	onHand        repository.OnHandReader
	movementRepo  repository.InventoryMovementRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
}

// NewStockQueryUseCase construye el caso de uso.
func NewStockQueryUseCase(
	onHand repository.OnHandReader,
	movementRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
) *StockQueryUseCase {
	return &StockQueryUseCase{onHand: onHand, movementRepo: movementRepo, productRepo: productRepo, warehouseRepo: warehouseRepo}
}

// OnHand existencia total por SKU con su valorización al costo promedio.
func (uc *StockQueryUseCase) OnHand(ctx context.Context, companyID string) ([]dto.OnHandResponse, error) {
	rows, err := uc.onHand.ListOnHand(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OnHandResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.OnHandResponse{
			ProductID:  r.ProductID,
			SKU:        r.SKU,
			Name:       r.Name,
			Quantity:   r.Quantity,
			UnitCost:   r.UnitCost,
			Value:      r.Quantity.Mul(r.UnitCost).Round(2),
			Warehouses: r.Warehouses,
		})
	}
	return out, nil
}

// MovementFilter filtros del kardex. Se exige producto o bodega.
type MovementFilter struct {
	ProductID   string
	WarehouseID string
	From, To    *time.Time
	dto.PageRequest
}

// ListMovements devuelve el kardex por producto (prioritario) o por bodega.
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, companyID string, f MovementFilter) ([]dto.MovementResponse, error) {
	f.DefaultPage()
	var list []*entity.InventoryMovement
	switch {
	case f.ProductID != "":
		p, err := uc.productRepo.GetByID(ctx, f.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil || p.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
		list, err = uc.movementRepo.ListByProduct(ctx, f.ProductID, f.From, f.To, f.Limit, f.Offset)
		if err != nil {
			return nil, err
		}
	case f.WarehouseID != "":
		wh, err := uc.warehouseRepo.GetByID(ctx, f.WarehouseID)
		if err != nil {
			return nil, err
		}
		if wh == nil || wh.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
		list, err = uc.movementRepo.ListByWarehouse(ctx, f.WarehouseID, f.From, f.To, f.Limit, f.Offset)
		if err != nil {
			return nil, err
		}
	default:
		return nil, domain.ErrInvalidInput
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MovementResponse{
			ID:            m.ID,
			TransactionID: m.TransactionID,
			ProductID:     m.ProductID,
			WarehouseID:   m.WarehouseID,
			Type:          m.Type,
			Quantity:      m.Quantity,
			UnitCost:      m.UnitCost,
			TotalCost:     m.TotalCost,
			Reference:     m.Reference,
			Date:          m.Date,
			CreatedBy:     m.CreatedBy,
		})
	}
	return out, nil
}
