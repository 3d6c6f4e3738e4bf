package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/planning"
)

// DemandRepository define el puerto para la serie semanal de demanda (pronóstico y real).
type DemandRepository interface {
	// UpsertForecast crea la semana o reemplaza su pronóstico sin tocar la venta real.
	UpsertForecast(ctx context.Context, d *entity.WeeklyDemand) error
	// RecordActual fija la venta real de una semana; crea la fila con pronóstico 0 si no existía.
	RecordActual(ctx context.Context, companyID, productID string, week planning.Week, qty decimal.Decimal) error
	// ListRange devuelve las semanas [from, to] de los productos indicados (vacío = todos), ordenadas.
	ListRange(ctx context.Context, companyID string, productIDs []string, from, to planning.Week) ([]*entity.WeeklyDemand, error)
}
