package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo OCs (purchase_orders) y sus líneas (purchase_order_items).
// Create inserta cabecera y líneas; llamarlo dentro de TxRunner para que sea atómico.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx.
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const poColumns = `id, company_id, po_number, supplier, status, order_date, notes, created_by, created_at, updated_at`

// Create persiste la OC con todas sus líneas.
func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	_, err := r.q.Exec(ctx, `INSERT INTO purchase_orders (`+poColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		po.ID, po.CompanyID, po.PONumber, po.Supplier, po.Status, po.OrderDate,
		po.Notes, nullable(po.CreatedBy), po.CreatedAt, po.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	for _, it := range po.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO purchase_order_items (id, po_id, product_id, quantity, delivered_qty, unit_cost, expected_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, po.ID, it.ProductID, it.Quantity, it.DeliveredQty, it.UnitCost, it.ExpectedDate,
		)
		if err != nil {
			return fmt.Errorf("insert purchase order item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la OC con sus líneas. (nil, nil) si no existe.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	po, err := scanPO(r.q.QueryRow(ctx, `SELECT `+poColumns+` FROM purchase_orders WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.PurchaseOrder{po}); err != nil {
		return nil, err
	}
	return po, nil
}

// List OCs de la empresa filtradas por estado y proveedor, más recientes primero.
func (r *PurchaseOrderRepo) List(ctx context.Context, companyID string, f repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, error) {
	var a argList
	query := `SELECT ` + poColumns + ` FROM purchase_orders WHERE company_id = ` + a.add(companyID)
	if f.Status != "" {
		query += " AND status = " + a.add(f.Status)
	}
	if f.Supplier != "" {
		query += " AND supplier ILIKE " + a.add("%"+f.Supplier+"%")
	}
	query += " ORDER BY order_date DESC, po_number DESC LIMIT " + a.add(f.Limit) + " OFFSET " + a.add(f.Offset)

	rows, err := r.q.Query(ctx, query, a.args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	var list []*entity.PurchaseOrder
	for rows.Next() {
		po, err := scanPO(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, po)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadItems carga las líneas de varias OCs en una sola consulta.
func (r *PurchaseOrderRepo) loadItems(ctx context.Context, pos []*entity.PurchaseOrder) error {
	if len(pos) == 0 {
		return nil
	}
	byID := make(map[string]*entity.PurchaseOrder, len(pos))
	ids := make([]string, 0, len(pos))
	for _, po := range pos {
		byID[po.ID] = po
		ids = append(ids, po.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, po_id, product_id, quantity, delivered_qty, unit_cost, expected_date
		FROM purchase_order_items WHERE po_id = ANY($1)
		ORDER BY expected_date, id`, ids)
	if err != nil {
		return fmt.Errorf("list purchase order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.POItem
		if err := rows.Scan(&it.ID, &it.POID, &it.ProductID, &it.Quantity, &it.DeliveredQty, &it.UnitCost, &it.ExpectedDate); err != nil {
			return fmt.Errorf("scan purchase order item: %w", err)
		}
		po := byID[it.POID]
		po.Items = append(po.Items, it)
	}
	return rows.Err()
}

// UpdateStatus cambia el estado. La validez de la transición se decide en la capa de aplicación.
func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE purchase_orders SET status = $2, updated_at = $3 WHERE id = $1`, id, status, updatedAt)
	if err != nil {
		return fmt.Errorf("update purchase order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddDelivered suma qty a lo entregado por la fábrica en la línea. La condición del UPDATE
// se evalúa sobre la fila bloqueada, así que dos entregas simultáneas no superan lo pedido:
// la segunda no afecta filas y devuelve ErrConflict.
func (r *PurchaseOrderRepo) AddDelivered(ctx context.Context, itemID string, qty decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `UPDATE purchase_order_items SET delivered_qty = delivered_qty + $2
		WHERE id = $1 AND delivered_qty + $2 <= quantity`, itemID, qty)
	if err != nil {
		return fmt.Errorf("add delivered qty: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return guardMiss(ctx, r.q, "purchase_order_items", itemID, "la entrega supera lo pendiente de la línea")
	}
	return nil
}

// CountOpen OCs que todavía aportan oferta (confirmada, en producción o despachada).
func (r *PurchaseOrderRepo) CountOpen(ctx context.Context, companyID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders
		WHERE company_id = $1 AND status IN ($2, $3, $4)`,
		companyID, entity.POStatusConfirmed, entity.POStatusInProduction, entity.POStatusShipped,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open purchase orders: %w", err)
	}
	return n, nil
}

func scanPO(row interface{ Scan(...any) error }) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	var createdBy *string
	if err := row.Scan(&po.ID, &po.CompanyID, &po.PONumber, &po.Supplier, &po.Status, &po.OrderDate,
		&po.Notes, &createdBy, &po.CreatedAt, &po.UpdatedAt); err != nil {
		return nil, err
	}
	po.CreatedBy = deref(createdBy)
	return &po, nil
}
