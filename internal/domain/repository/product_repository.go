package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/scm-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID devuelve (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// UpdateCost lo usa el motor de inventario para el costo promedio ponderado.
	UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error)
	// ListActive devuelve todos los SKUs activos de la empresa ordenados por SKU (sin paginar).
	ListActive(ctx context.Context, companyID string) ([]*entity.Product, error)
}
