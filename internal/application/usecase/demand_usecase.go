package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/scm-api/internal/application/dto"
	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/planning"
	"github.com/jhoicas/scm-api/internal/domain/repository"
)

// DemandUseCase mantiene la serie semanal de demanda (pronóstico y venta real) por SKU.
type DemandUseCase struct {
	demandRepo  repository.DemandRepository
	productRepo repository.ProductRepository
	now         func() time.Time
}

// NewDemandUseCase construye el caso de uso.
func NewDemandUseCase(demandRepo repository.DemandRepository, productRepo repository.ProductRepository) *DemandUseCase {
	return &DemandUseCase{demandRepo: demandRepo, productRepo: productRepo, now: time.Now}
}

// SetClock reemplaza el reloj (tests).
func (uc *DemandUseCase) SetClock(now func() time.Time) { uc.now = now }

// UpsertForecast guarda el pronóstico de varias semanas; la venta real ya registrada se conserva.
func (uc *DemandUseCase) UpsertForecast(ctx context.Context, companyID string, in dto.UpsertForecastRequest) (int, error) {
	if err := uc.checkProduct(ctx, companyID, in.ProductID); err != nil {
		return 0, err
	}
	seen := make(map[planning.Week]bool, len(in.Weeks))
	for _, w := range in.Weeks {
		if err := w.Week.Validate(); err != nil {
			return 0, err
		}
		if w.ForecastQty.IsNegative() {
			return 0, fmt.Errorf("%w: pronóstico negativo en %s", domain.ErrInvalidInput, w.Week)
		}
		if seen[w.Week] {
			return 0, fmt.Errorf("%w: semana %s repetida", domain.ErrInvalidInput, w.Week)
		}
		seen[w.Week] = true
	}
	now := uc.now()
	for _, w := range in.Weeks {
		err := uc.demandRepo.UpsertForecast(ctx, &entity.WeeklyDemand{
			CompanyID:   companyID,
			ProductID:   in.ProductID,
			Year:        w.Week.Year,
			Week:        w.Week.Week,
			ForecastQty: w.ForecastQty,
			UpdatedAt:   now,
		})
		if err != nil {
			return 0, err
		}
	}
	return len(in.Weeks), nil
}

// RecordActual registra la venta real de una semana cerrada. La semana en curso sigue
// con su pronóstico hasta que termine.
func (uc *DemandUseCase) RecordActual(ctx context.Context, companyID string, in dto.RecordActualRequest) error {
	if err := in.Week.Validate(); err != nil {
		return err
	}
	if in.ActualQty.IsNegative() {
		return fmt.Errorf("%w: venta real negativa", domain.ErrInvalidInput)
	}
	if current := planning.WeekOf(uc.now()); !in.Week.Before(current) {
		return fmt.Errorf("%w: la semana %s aún no ha cerrado", domain.ErrInvalidInput, in.Week)
	}
	if err := uc.checkProduct(ctx, companyID, in.ProductID); err != nil {
		return err
	}
	return uc.demandRepo.RecordActual(ctx, companyID, in.ProductID, in.Week, in.ActualQty)
}

// ListSeries serie de un SKU en [from, to].
func (uc *DemandUseCase) ListSeries(ctx context.Context, companyID, productID string, from, to planning.Week) ([]dto.DemandWeekResponse, error) {
	if err := from.Validate(); err != nil {
		return nil, err
	}
	if err := to.Validate(); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: rango de semanas invertido", domain.ErrInvalidInput)
	}
	if err := uc.checkProduct(ctx, companyID, productID); err != nil {
		return nil, err
	}
	rows, err := uc.demandRepo.ListRange(ctx, companyID, []string{productID}, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DemandWeekResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.DemandWeekResponse{
			ProductID:   r.ProductID,
			Week:        planning.Week{Year: r.Year, Week: r.Week},
			ForecastQty: r.ForecastQty,
			ActualQty:   r.ActualQty,
		})
	}
	return out, nil
}

func (uc *DemandUseCase) checkProduct(ctx context.Context, companyID, productID string) error {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil || p.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return nil
}
