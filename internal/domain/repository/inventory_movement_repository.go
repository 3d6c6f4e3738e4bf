package repository

import (
	"context"
	"time"

	"github.com/jhoicas/scm-api/internal/domain/entity"
)

// InventoryMovementRepository define el puerto para el kardex de movimientos.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListByWarehouse(ctx context.Context, warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
	ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
}
