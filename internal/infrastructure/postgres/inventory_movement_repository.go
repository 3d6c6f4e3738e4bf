package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo kardex sobre PostgreSQL (usable con pool o tx). Solo inserta: los movimientos no se editan.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

const movementColumns = `id, transaction_id, product_id, warehouse_id, type, quantity, unit_cost, total_cost,
	reference, date, created_at, created_by`

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TransactionID, m.ProductID, m.WarehouseID,
		m.Type, m.Quantity, m.UnitCost, m.TotalCost,
		nullable(m.Reference), m.Date, m.CreatedAt, nullable(m.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// ListByWarehouse lista movimientos de una bodega en un rango de fechas, más recientes primero.
func (r *InventoryMovementRepo) ListByWarehouse(ctx context.Context, warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	return r.list(ctx, "warehouse_id", warehouseID, from, to, limit, offset)
}

// ListByProduct lista movimientos de un producto en un rango de fechas, más recientes primero.
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	return r.list(ctx, "product_id", productID, from, to, limit, offset)
}

// list col es siempre una constante interna (warehouse_id o product_id).
func (r *InventoryMovementRepo) list(ctx context.Context, col, id string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	var a argList
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE ` + col + ` = ` + a.add(id)
	if from != nil {
		query += " AND date >= " + a.add(*from)
	}
	if to != nil {
		query += " AND date <= " + a.add(*to)
	}
	query += " ORDER BY date DESC, created_at DESC LIMIT " + a.add(limit) + " OFFSET " + a.add(offset)

	rows, err := r.q.Query(ctx, query, a.args...)
	if err != nil {
		return nil, fmt.Errorf("list movements by %s: %w", col, err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		var reference, createdBy *string
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.ProductID, &m.WarehouseID, &m.Type,
			&m.Quantity, &m.UnitCost, &m.TotalCost, &reference, &m.Date, &m.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Reference = deref(reference)
		m.CreatedBy = deref(createdBy)
		list = append(list, &m)
	}
	return list, rows.Err()
}
