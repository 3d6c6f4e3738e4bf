package repository

import (
	"context"

	"github.com/jhoicas/scm-api/internal/domain/entity"
)

// ShipmentFilter filtros del listado de embarques.
type ShipmentFilter struct {
	Status string
	Limit  int
	Offset int
}

// ShipmentRepository define el puerto de persistencia de embarques.
type ShipmentRepository interface {
	Create(ctx context.Context, s *entity.Shipment) error
	GetByID(ctx context.Context, id string) (*entity.Shipment, error)
	List(ctx context.Context, companyID string, filter ShipmentFilter) ([]*entity.Shipment, error)
	// Update persiste estado y fechas reales/estimadas (las líneas no cambian después de crear).
	Update(ctx context.Context, s *entity.Shipment) error
	CountByStatus(ctx context.Context, companyID, status string) (int, error)
}
