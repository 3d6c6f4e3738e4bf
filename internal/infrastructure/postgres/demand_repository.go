package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/planning"
	"github.com/jhoicas/scm-api/internal/domain/repository"
)

var _ repository.DemandRepository = (*DemandRepo)(nil)

// DemandRepo serie semanal de demanda en la tabla weekly_demand (clave: producto, año ISO, semana ISO).
type DemandRepo struct {
	q Querier
}

// NewDemandRepository construye el adaptador.
func NewDemandRepository(q Querier) *DemandRepo {
	return &DemandRepo{q: q}
}

// UpsertForecast reemplaza el pronóstico de la semana y conserva actual_qty.
func (r *DemandRepo) UpsertForecast(ctx context.Context, d *entity.WeeklyDemand) error {
	const query = `
		INSERT INTO weekly_demand (company_id, product_id, iso_year, iso_week, forecast_qty, actual_qty, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULL, $6)
		ON CONFLICT (product_id, iso_year, iso_week)
		DO UPDATE SET forecast_qty = EXCLUDED.forecast_qty, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, d.CompanyID, d.ProductID, d.Year, d.Week, d.ForecastQty, d.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("upsert forecast: %w", err)
	}
	return nil
}

// RecordActual fija la venta real; si la semana no existía se crea con pronóstico 0.
func (r *DemandRepo) RecordActual(ctx context.Context, companyID, productID string, w planning.Week, qty decimal.Decimal) error {
	const query = `
		INSERT INTO weekly_demand (company_id, product_id, iso_year, iso_week, forecast_qty, actual_qty, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, now())
		ON CONFLICT (product_id, iso_year, iso_week)
		DO UPDATE SET actual_qty = EXCLUDED.actual_qty, updated_at = now()`
	_, err := r.q.Exec(ctx, query, companyID, productID, w.Year, w.Week, qty)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("record actual demand: %w", err)
	}
	return nil
}

// ListRange semanas [from, to] ordenadas por producto y semana. La comparación (año, semana)
// como tupla respeta el orden ISO aunque el año tenga 53 semanas.
func (r *DemandRepo) ListRange(ctx context.Context, companyID string, productIDs []string, from, to planning.Week) ([]*entity.WeeklyDemand, error) {
	var a argList
	query := `
		SELECT company_id, product_id, iso_year, iso_week, forecast_qty, actual_qty, updated_at
		FROM weekly_demand
		WHERE company_id = ` + a.add(companyID) + a.productFilter("product_id", productIDs) + `
		  AND (iso_year, iso_week) >= (` + a.add(from.Year) + `, ` + a.add(from.Week) + `)
		  AND (iso_year, iso_week) <= (` + a.add(to.Year) + `, ` + a.add(to.Week) + `)
		ORDER BY product_id, iso_year, iso_week`
	rows, err := r.q.Query(ctx, query, a.args...)
	if err != nil {
		return nil, fmt.Errorf("list demand: %w", err)
	}
	defer rows.Close()
	var list []*entity.WeeklyDemand
	for rows.Next() {
		var d entity.WeeklyDemand
		if err := rows.Scan(&d.CompanyID, &d.ProductID, &d.Year, &d.Week, &d.ForecastQty, &d.ActualQty, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan demand: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}
