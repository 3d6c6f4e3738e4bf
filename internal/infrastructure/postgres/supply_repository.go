package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/repository"
)

var _ repository.SupplyReader = (*SupplyRepo)(nil)

// SupplyRepo lecturas de la oferta en tubería para el motor de proyección.
// Cada unidad aparece en una sola etapa: pendiente en la OC (quantity - delivered_qty),
// entregada sin embarcar (quantity - shipped_qty) o en un embarque planeado/en tránsito.
type SupplyRepo struct {
	q Querier
}

// NewSupplyRepository construye el lector.
func NewSupplyRepository(q Querier) *SupplyRepo {
	return &SupplyRepo{q: q}
}

// ListOpenPOItems líneas con saldo de OCs abiertas. Los borradores no cuentan como oferta.
func (r *SupplyRepo) ListOpenPOItems(ctx context.Context, companyID string, productIDs []string) ([]repository.OpenPOItem, error) {
	var a argList
	query := `
		SELECT i.id, po.po_number, i.product_id, i.quantity - i.delivered_qty, i.expected_date
		FROM purchase_order_items i
		JOIN purchase_orders po ON po.id = i.po_id
		WHERE po.company_id = ` + a.add(companyID) + `
		  AND po.status IN (` + a.add(entity.POStatusConfirmed) + `, ` + a.add(entity.POStatusInProduction) + `, ` + a.add(entity.POStatusShipped) + `)
		  AND i.quantity > i.delivered_qty` + a.productFilter("i.product_id", productIDs) + `
		ORDER BY i.expected_date`
	rows, err := r.q.Query(ctx, query, a.args...)
	if err != nil {
		return nil, fmt.Errorf("list open po items: %w", err)
	}
	defer rows.Close()
	var list []repository.OpenPOItem
	for rows.Next() {
		var it repository.OpenPOItem
		if err := rows.Scan(&it.ItemID, &it.PONumber, &it.ProductID, &it.Remaining, &it.ExpectedDate); err != nil {
			return nil, fmt.Errorf("scan open po item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// ListOpenDeliveries entregas de fábrica con cantidad aún sin embarcar.
func (r *SupplyRepo) ListOpenDeliveries(ctx context.Context, companyID string, productIDs []string) ([]repository.OpenDelivery, error) {
	var a argList
	query := `
		SELECT d.id, po.po_number, d.product_id, d.quantity - d.shipped_qty, d.planned_date, d.actual_date
		FROM production_deliveries d
		JOIN purchase_order_items i ON i.id = d.po_item_id
		JOIN purchase_orders po ON po.id = i.po_id
		WHERE d.company_id = ` + a.add(companyID) + `
		  AND d.quantity > d.shipped_qty` + a.productFilter("d.product_id", productIDs) + `
		ORDER BY d.planned_date`
	rows, err := r.q.Query(ctx, query, a.args...)
	if err != nil {
		return nil, fmt.Errorf("list open deliveries: %w", err)
	}
	defer rows.Close()
	var list []repository.OpenDelivery
	for rows.Next() {
		var d repository.OpenDelivery
		if err := rows.Scan(&d.DeliveryID, &d.PONumber, &d.ProductID, &d.Unshipped, &d.PlannedDate, &d.ActualDate); err != nil {
			return nil, fmt.Errorf("scan open delivery: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// ListInboundLines líneas de embarques planeados o en tránsito.
func (r *SupplyRepo) ListInboundLines(ctx context.Context, companyID string, productIDs []string) ([]repository.InboundLine, error) {
	var a argList
	query := `
		SELECT s.id, s.tracking_number, l.product_id, l.quantity, s.planned_arrival, s.estimated_arrival
		FROM shipment_lines l
		JOIN shipments s ON s.id = l.shipment_id
		WHERE s.company_id = ` + a.add(companyID) + `
		  AND s.status IN (` + a.add(entity.ShipmentStatusPlanned) + `, ` + a.add(entity.ShipmentStatusInTransit) + `)` +
		a.productFilter("l.product_id", productIDs) + `
		ORDER BY s.planned_arrival`
	rows, err := r.q.Query(ctx, query, a.args...)
	if err != nil {
		return nil, fmt.Errorf("list inbound lines: %w", err)
	}
	defer rows.Close()
	var list []repository.InboundLine
	for rows.Next() {
		var l repository.InboundLine
		if err := rows.Scan(&l.ShipmentID, &l.TrackingNumber, &l.ProductID, &l.Quantity, &l.PlannedArrival, &l.EstimatedArrival); err != nil {
			return nil, fmt.Errorf("scan inbound line: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
