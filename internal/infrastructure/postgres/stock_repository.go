package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/repository"
)

var (
	_ repository.StockRepository = (*StockRepo)(nil)
	_ repository.OnHandReader    = (*StockRepo)(nil)
)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto en una bodega. Sin fila devuelve cantidad 0.
func (r *StockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	return r.get(ctx, `SELECT product_id, warehouse_id, quantity, updated_at
		FROM stock WHERE product_id = $1 AND warehouse_id = $2`, productID, warehouseID)
}

// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE) hasta el fin de la tx.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	return r.get(ctx, `SELECT product_id, warehouse_id, quantity, updated_at
		FROM stock WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`, productID, warehouseID)
}

func (r *StockRepo) get(ctx context.Context, query, productID, warehouseID string) (*entity.Stock, error) {
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return &entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la cantidad en stock (por producto y bodega).
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.Stock) error {
	query := `
		INSERT INTO stock (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, stock.ProductID, stock.WarehouseID, stock.Quantity); err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// ListByWarehouse devuelve las existencias de una bodega.
func (r *StockRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.Stock, error) {
	rows, err := r.q.Query(ctx, `SELECT product_id, warehouse_id, quantity, updated_at
		FROM stock WHERE warehouse_id = $1 ORDER BY product_id`, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// OnHandByProduct suma las existencias de todas las bodegas de la empresa por producto.
func (r *StockRepo) OnHandByProduct(ctx context.Context, companyID string, productIDs []string) (map[string]decimal.Decimal, error) {
	var a argList
	query := `
		SELECT s.product_id, COALESCE(SUM(s.quantity), 0)
		FROM stock s
		JOIN warehouses w ON w.id = s.warehouse_id
		WHERE w.company_id = ` + a.add(companyID) + a.productFilter("s.product_id", productIDs) + `
		GROUP BY s.product_id`
	rows, err := r.q.Query(ctx, query, a.args...)
	if err != nil {
		return nil, fmt.Errorf("on hand by product: %w", err)
	}
	defer rows.Close()
	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var id string
		var qty decimal.Decimal
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("scan on hand: %w", err)
		}
		out[id] = qty
	}
	return out, rows.Err()
}

// ListOnHand existencia consolidada por SKU activo, incluidos los que están en cero.
func (r *StockRepo) ListOnHand(ctx context.Context, companyID string) ([]repository.OnHandRow, error) {
	const query = `
		SELECT p.id, p.sku, p.name, COALESCE(SUM(s.quantity), 0), p.unit_cost,
		       COUNT(s.warehouse_id) FILTER (WHERE s.quantity <> 0)
		FROM products p
		LEFT JOIN stock s ON s.product_id = p.id
		WHERE p.company_id = $1 AND p.active
		GROUP BY p.id, p.sku, p.name, p.unit_cost
		ORDER BY p.sku`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list on hand: %w", err)
	}
	defer rows.Close()
	var list []repository.OnHandRow
	for rows.Next() {
		var row repository.OnHandRow
		if err := rows.Scan(&row.ProductID, &row.SKU, &row.Name, &row.Quantity, &row.UnitCost, &row.Warehouses); err != nil {
			return nil, fmt.Errorf("scan on hand row: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}
