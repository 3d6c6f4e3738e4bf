package inventory

import (
	"context"

	"github.com/jhoicas/scm-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción de BD.
type Repos struct {
	Movements      repository.InventoryMovementRepository
	Stock          repository.StockRepository
	Products       repository.ProductRepository
	PurchaseOrders repository.PurchaseOrderRepository
	Deliveries     repository.ProductionDeliveryRepository
	Shipments      repository.ShipmentRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
