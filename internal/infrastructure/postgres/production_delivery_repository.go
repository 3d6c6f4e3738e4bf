package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/repository"
)

var _ repository.ProductionDeliveryRepository = (*ProductionDeliveryRepo)(nil)

// ProductionDeliveryRepo entregas de fábrica contra líneas de OC.
type ProductionDeliveryRepo struct {
	q Querier
}

// NewProductionDeliveryRepository construye el adaptador.
func NewProductionDeliveryRepository(q Querier) *ProductionDeliveryRepo {
	return &ProductionDeliveryRepo{q: q}
}

const deliveryColumns = `id, company_id, po_item_id, product_id, quantity, shipped_qty, planned_date, actual_date, created_at`

func scanDelivery(row interface{ Scan(...any) error }) (*entity.ProductionDelivery, error) {
	var d entity.ProductionDelivery
	if err := row.Scan(&d.ID, &d.CompanyID, &d.POItemID, &d.ProductID, &d.Quantity, &d.ShippedQty,
		&d.PlannedDate, &d.ActualDate, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create persiste la entrega.
func (r *ProductionDeliveryRepo) Create(ctx context.Context, d *entity.ProductionDelivery) error {
	_, err := r.q.Exec(ctx, `INSERT INTO production_deliveries (`+deliveryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.CompanyID, d.POItemID, d.ProductID, d.Quantity, d.ShippedQty, d.PlannedDate, d.ActualDate, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert production delivery: %w", err)
	}
	return nil
}

// GetByID obtiene una entrega. (nil, nil) si no existe.
func (r *ProductionDeliveryRepo) GetByID(ctx context.Context, id string) (*entity.ProductionDelivery, error) {
	d, err := scanDelivery(r.q.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM production_deliveries WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production delivery: %w", err)
	}
	return d, nil
}

// ListByPOItem entregas de una línea de OC en orden cronológico.
func (r *ProductionDeliveryRepo) ListByPOItem(ctx context.Context, poItemID string) ([]*entity.ProductionDelivery, error) {
	rows, err := r.q.Query(ctx, `SELECT `+deliveryColumns+` FROM production_deliveries
		WHERE po_item_id = $1 ORDER BY planned_date, created_at`, poItemID)
	if err != nil {
		return nil, fmt.Errorf("list production deliveries: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductionDelivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan production delivery: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// AddShipped suma qty (negativo al cancelar un embarque) a lo ya embarcado, sin salir de
// [0, quantity]. Fuera de ese rango devuelve ErrConflict.
func (r *ProductionDeliveryRepo) AddShipped(ctx context.Context, id string, qty decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `UPDATE production_deliveries SET shipped_qty = shipped_qty + $2
		WHERE id = $1 AND shipped_qty + $2 BETWEEN 0 AND quantity`, id, qty)
	if err != nil {
		return fmt.Errorf("add shipped qty: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return guardMiss(ctx, r.q, "production_deliveries", id, "el embarque supera lo pendiente de la entrega")
	}
	return nil
}
