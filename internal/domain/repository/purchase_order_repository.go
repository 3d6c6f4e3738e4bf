package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/scm-api/internal/domain/entity"
)

// PurchaseOrderFilter filtros del listado de OCs.
type PurchaseOrderFilter struct {
	Status   string
	Supplier string
	Limit    int
	Offset   int
}

// PurchaseOrderRepository define el puerto de persistencia de OCs y sus líneas.
// GetByID carga las líneas; devuelve (nil, nil) si no existe.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	List(ctx context.Context, companyID string, filter PurchaseOrderFilter) ([]*entity.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) error
	// AddDelivered devuelve ErrConflict si lo entregado superaría la cantidad de la línea.
	AddDelivered(ctx context.Context, itemID string, qty decimal.Decimal) error
	CountOpen(ctx context.Context, companyID string) (int, error)
}

// ProductionDeliveryRepository define el puerto de entregas de fábrica.
type ProductionDeliveryRepository interface {
	Create(ctx context.Context, d *entity.ProductionDelivery) error
	GetByID(ctx context.Context, id string) (*entity.ProductionDelivery, error)
	ListByPOItem(ctx context.Context, poItemID string) ([]*entity.ProductionDelivery, error)
	// AddShipped devuelve ErrConflict si lo embarcado saldría de [0, cantidad entregada].
	AddShipped(ctx context.Context, id string, qty decimal.Decimal) error
}
