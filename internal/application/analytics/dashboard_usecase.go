// Package analytics contiene el caso de uso del tablero de la cadena de suministro.
package analytics

import (
	"context"
	"fmt"

	"github.com/jhoicas/scm-api/internal/application/dto"
	appplanning "github.com/jhoicas/scm-api/internal/application/planning"
	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/planning"
	"github.com/jhoicas/scm-api/internal/domain/repository"
	"github.com/jhoicas/scm-api/pkg/logger"
)

const dashboardTopStockouts = 5 // número de quiebres en el widget del dashboard

// DashboardUseCase arma el resumen de la cadena para la empresa.
//
// Fuentes: proyección de todos los SKUs, conteo de OCs abiertas y embarques en tránsito.
type DashboardUseCase struct {
	projections   *appplanning.ProjectionUseCase
	replenishment *appplanning.ReplenishmentUseCase
	poRepo        repository.PurchaseOrderRepository
	shipmentRepo  repository.ShipmentRepository
	log           *logger.Logger
}

// NewDashboardUseCase construye el caso de uso. log puede ser nil.
func NewDashboardUseCase(
	projections *appplanning.ProjectionUseCase,
	replenishment *appplanning.ReplenishmentUseCase,
	poRepo repository.PurchaseOrderRepository,
	shipmentRepo repository.ShipmentRepository,
	log *logger.Logger,
) *DashboardUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &DashboardUseCase{
		projections:   projections,
		replenishment: replenishment,
		poRepo:        poRepo,
		shipmentRepo:  shipmentRepo,
		log:           log,
	}
}

// GetSummary construye el DashboardSummaryDTO para la empresa indicada.
//
// Tres consultas en paralelo:
//  1. Snapshot de proyecciones → estados por SKU, quiebres y sugerencias vencidas
//  2. CountOpen                → OCs abiertas
//  3. CountByStatus(in_transit) → embarques en tránsito
func (uc *DashboardUseCase) GetSummary(ctx context.Context, companyID string) (*dto.DashboardSummaryDTO, error) {
	current := uc.projections.CurrentWeek()

	type snapshotResult struct {
		list []*appplanning.SKUProjection
		err  error
	}
	type countResult struct {
		n   int
		err error
	}

	snapCh := make(chan snapshotResult, 1)
	posCh := make(chan countResult, 1)
	shipCh := make(chan countResult, 1)

	go func() {
		list, err := uc.projections.Snapshot(ctx, companyID, dto.ProjectionQuery{})
		snapCh <- snapshotResult{list, err}
	}()
	go func() {
		n, err := uc.poRepo.CountOpen(ctx, companyID)
		posCh <- countResult{n, err}
	}()
	go func() {
		n, err := uc.shipmentRepo.CountByStatus(ctx, companyID, entity.ShipmentStatusInTransit)
		shipCh <- countResult{n, err}
	}()

	snap := <-snapCh
	pos := <-posCh
	ships := <-shipCh

	if snap.err != nil {
		return nil, fmt.Errorf("dashboard: proyecciones: %w", snap.err)
	}
	if pos.err != nil {
		return nil, uc.unavailable("órdenes abiertas", pos.err)
	}
	if ships.err != nil {
		return nil, uc.unavailable("embarques en tránsito", ships.err)
	}

	out := &dto.DashboardSummaryDTO{
		CurrentWeek:        current,
		WeekLabel:          weekLabel(current),
		SKUsTotal:          len(snap.list),
		UpcomingStockouts:  []dto.StockoutAlert{},
		OpenPurchaseOrders: pos.n,
		ShipmentsInTransit: ships.n,
	}
	for _, p := range snap.list {
		// estado de la semana en curso (primera fila de la ventana)
		status := planning.StatusOK
		if len(p.Projection.Rows) > 0 {
			status = p.Projection.Rows[0].Status
		}
		switch status {
		case planning.StatusStockout:
			out.SKUsStockout++
		case planning.StatusRisk:
			out.SKUsRisk++
		default:
			out.SKUsOK++
		}
		// el snapshot ya viene ordenado por quiebre más cercano
		if so := p.Projection.FirstStockout(); so != nil && len(out.UpcomingStockouts) < dashboardTopStockouts {
			out.UpcomingStockouts = append(out.UpcomingStockouts, dto.StockoutAlert{
				ProductID:    p.Product.ID,
				SKU:          p.Product.SKU,
				StockoutWeek: so.Week,
				WeeksAway:    current.WeeksUntil(so.Week),
			})
		}
	}

	suggestions, err := uc.replenishment.FromProjections(snap.list, current)
	if err != nil {
		return nil, fmt.Errorf("dashboard: sugerencias: %w", err)
	}
	out.OverdueSuggestions = suggestions.Overdue
	return out, nil
}

// unavailable registra la causa y devuelve el error genérico de datos no disponibles.
func (uc *DashboardUseCase) unavailable(source string, err error) error {
	uc.log.Error().Err(err).Str("source", source).Msg("no se pudo leer la fuente del tablero")
	return fmt.Errorf("dashboard: %w: %s", domain.ErrDataNotAvailable, source)
}

// weekLabel etiqueta legible de la semana, ej: "Semana 43 · Octubre 2026" (mes del lunes).
func weekLabel(w planning.Week) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	start := w.Start()
	return fmt.Sprintf("Semana %d · %s %d", w.Week, months[start.Month()-1], start.Year())
}
