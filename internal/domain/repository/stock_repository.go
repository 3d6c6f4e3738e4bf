package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/scm-api/internal/domain/entity"
)

// StockRepository define el puerto para existencias por producto y bodega.
// Get y GetForUpdate devuelven cantidad 0 cuando no hay fila.
type StockRepository interface {
	Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	Upsert(ctx context.Context, stock *entity.Stock) error
	ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.Stock, error)
}

// OnHandRow existencia total de un SKU sumando todas las bodegas de la empresa.
type OnHandRow struct {
	ProductID  string
	SKU        string
	Name       string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	Warehouses int
}

// OnHandReader lecturas agregadas de existencias para planeación y reportes.
type OnHandReader interface {
	// OnHandByProduct devuelve productID -> cantidad total. productIDs vacío = todos los de la empresa.
	OnHandByProduct(ctx context.Context, companyID string, productIDs []string) (map[string]decimal.Decimal, error)
	ListOnHand(ctx context.Context, companyID string) ([]OnHandRow, error)
}
