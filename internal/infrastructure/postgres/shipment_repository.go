package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/repository"
)

var _ repository.ShipmentRepository = (*ShipmentRepo)(nil)

// ShipmentRepo embarques (shipments) y sus líneas (shipment_lines).
type ShipmentRepo struct {
	q Querier
}

// NewShipmentRepository construye el adaptador. Pasar pool o tx.
func NewShipmentRepository(q Querier) *ShipmentRepo {
	return &ShipmentRepo{q: q}
}

const shipmentColumns = `id, company_id, tracking_number, carrier, warehouse_id, status,
	planned_departure, planned_arrival, actual_departure, estimated_arrival, actual_arrival,
	created_by, created_at, updated_at`

func scanShipment(row interface{ Scan(...any) error }) (*entity.Shipment, error) {
	var s entity.Shipment
	var createdBy *string
	if err := row.Scan(&s.ID, &s.CompanyID, &s.TrackingNumber, &s.Carrier, &s.WarehouseID, &s.Status,
		&s.PlannedDeparture, &s.PlannedArrival, &s.ActualDeparture, &s.EstimatedArrival, &s.ActualArrival,
		&createdBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.CreatedBy = deref(createdBy)
	return &s, nil
}

// Create persiste el embarque con sus líneas. El tracking es único por empresa.
func (r *ShipmentRepo) Create(ctx context.Context, s *entity.Shipment) error {
	_, err := r.q.Exec(ctx, `INSERT INTO shipments (`+shipmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		s.ID, s.CompanyID, s.TrackingNumber, s.Carrier, s.WarehouseID, s.Status,
		s.PlannedDeparture, s.PlannedArrival, s.ActualDeparture, s.EstimatedArrival, s.ActualArrival,
		nullable(s.CreatedBy), s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert shipment: %w", err)
	}
	for _, l := range s.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO shipment_lines (id, shipment_id, product_id, delivery_id, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			l.ID, s.ID, l.ProductID, nullable(l.DeliveryID), l.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert shipment line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene el embarque con sus líneas. (nil, nil) si no existe.
func (r *ShipmentRepo) GetByID(ctx context.Context, id string) (*entity.Shipment, error) {
	s, err := scanShipment(r.q.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.Shipment{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// List embarques de la empresa ordenados por llegada planeada.
func (r *ShipmentRepo) List(ctx context.Context, companyID string, f repository.ShipmentFilter) ([]*entity.Shipment, error) {
	var a argList
	query := `SELECT ` + shipmentColumns + ` FROM shipments WHERE company_id = ` + a.add(companyID)
	if f.Status != "" {
		query += " AND status = " + a.add(f.Status)
	}
	query += " ORDER BY planned_arrival, tracking_number LIMIT " + a.add(f.Limit) + " OFFSET " + a.add(f.Offset)

	rows, err := r.q.Query(ctx, query, a.args...)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	var list []*entity.Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		list = append(list, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ShipmentRepo) loadLines(ctx context.Context, list []*entity.Shipment) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Shipment, len(list))
	ids := make([]string, 0, len(list))
	for _, s := range list {
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, shipment_id, product_id, delivery_id, quantity
		FROM shipment_lines WHERE shipment_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("list shipment lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.ShipmentLine
		var deliveryID *string
		if err := rows.Scan(&l.ID, &l.ShipmentID, &l.ProductID, &deliveryID, &l.Quantity); err != nil {
			return fmt.Errorf("scan shipment line: %w", err)
		}
		l.DeliveryID = deref(deliveryID)
		s := byID[l.ShipmentID]
		s.Lines = append(s.Lines, l)
	}
	return rows.Err()
}

// Update persiste estado y fechas. Las líneas no cambian después de crear.
func (r *ShipmentRepo) Update(ctx context.Context, s *entity.Shipment) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE shipments SET status = $2, actual_departure = $3, estimated_arrival = $4,
		       actual_arrival = $5, updated_at = $6
		WHERE id = $1`,
		s.ID, s.Status, s.ActualDeparture, s.EstimatedArrival, s.ActualArrival, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update shipment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountByStatus número de embarques de la empresa en el estado dado.
func (r *ShipmentRepo) CountByStatus(ctx context.Context, companyID, status string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM shipments WHERE company_id = $1 AND status = $2`,
		companyID, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("count shipments: %w", err)
	}
	return n, nil
}
