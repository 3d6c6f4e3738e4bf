package planning

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/scm-api/internal/application/dto"
	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/planning"
	"github.com/jhoicas/scm-api/internal/domain/repository"
	"github.com/jhoicas/scm-api/pkg/config"
)

// ReplenishmentUseCase genera la lista de pedidos sugeridos a partir de la proyección de cada SKU.
// La semana objetivo es la primera en Risk o Stockout y la cantidad cubre el faltante hasta el
// umbral de seguridad, redondeada al múltiplo de pedido.
type ReplenishmentUseCase struct {
	projections *ProjectionUseCase
	productRepo repository.ProductRepository
	cfg         config.PlanningConfig
	metrics     Metrics
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(projections *ProjectionUseCase, productRepo repository.ProductRepository, cfg config.PlanningConfig, metrics Metrics) *ReplenishmentUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &ReplenishmentUseCase{projections: projections, productRepo: productRepo, cfg: cfg, metrics: metrics}
}

// GenerateReplenishmentList proyecta todos los SKUs activos y devuelve las sugerencias:
// primero las vencidas, luego por semana de pedido y finalmente por SKU.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, companyID string, q dto.ProjectionQuery) (*dto.ReplenishmentResponse, error) {
	list, err := uc.projections.Snapshot(ctx, companyID, q)
	if err != nil {
		return nil, err
	}
	out, err := uc.FromProjections(list, uc.projections.CurrentWeek())
	if err != nil {
		return nil, err
	}
	for _, s := range out.Suggestions {
		uc.metrics.SuggestionEmitted(s.Schedule.Urgency)
	}
	return out, nil
}

// FromProjections construye las sugerencias sobre proyecciones ya calculadas. No registra
// métricas: el tablero la usa en cada carga.
func (uc *ReplenishmentUseCase) FromProjections(list []*SKUProjection, current planning.Week) (*dto.ReplenishmentResponse, error) {
	out := &dto.ReplenishmentResponse{CurrentWeek: current, Suggestions: []dto.ReplenishmentSuggestion{}}
	for _, p := range list {
		s, ok, err := uc.suggest(p, current)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if s.Schedule.Urgency == planning.UrgencyOverdue {
			out.Overdue++
		}
		out.Suggestions = append(out.Suggestions, s)
	}

	sort.SliceStable(out.Suggestions, func(i, j int) bool {
		a, b := out.Suggestions[i], out.Suggestions[j]
		ao, bo := a.Schedule.Urgency == planning.UrgencyOverdue, b.Schedule.Urgency == planning.UrgencyOverdue
		if ao != bo {
			return ao
		}
		if a.Schedule.OrderWeek != b.Schedule.OrderWeek {
			return a.Schedule.OrderWeek.Before(b.Schedule.OrderWeek)
		}
		return a.SKU < b.SKU
	})
	out.Total = len(out.Suggestions)
	return out, nil
}

func (uc *ReplenishmentUseCase) suggest(p *SKUProjection, current planning.Week) (dto.ReplenishmentSuggestion, bool, error) {
	row := p.Projection.FirstAtRisk()
	if row == nil {
		return dto.ReplenishmentSuggestion{}, false, nil
	}
	shortfall := p.Projection.SafetyThreshold.Sub(row.ClosingBalance)
	qty := RoundUpToMultiple(shortfall, p.Product.OrderMultiple)
	if !qty.IsPositive() {
		return dto.ReplenishmentSuggestion{}, false, nil
	}
	schedule, err := planning.ReverseSchedule(row.Week, uc.leadTimes(p.Product.ProductionLeadWeeks), current)
	if err != nil {
		return dto.ReplenishmentSuggestion{}, false, err
	}
	return dto.ReplenishmentSuggestion{
		ProductID:     p.Product.ID,
		SKU:           p.Product.SKU,
		Name:          p.Product.Name,
		TriggerStatus: row.Status,
		ClosingAtRisk: row.ClosingBalance,
		Shortfall:     shortfall,
		SuggestedQty:  qty,
		UnitCost:      p.Product.UnitCost,
		EstimatedCost: qty.Mul(p.Product.UnitCost).Round(2),
		Schedule:      schedule,
	}, true, nil
}

func (uc *ReplenishmentUseCase) leadTimes(productionWeeks int) planning.LeadTimes {
	return planning.LeadTimes{
		ProductionWeeks:    productionWeeks,
		LoadingBufferWeeks: uc.cfg.LoadingBufferWeeks,
		TransitWeeks:       uc.cfg.TransitWeeks,
		InboundBufferWeeks: uc.cfg.InboundBufferWeeks,
	}
}

// ReverseSchedule programación inversa ad hoc. Los tiempos no enviados salen del producto
// (semanas de producción) o de la configuración (buffers).
func (uc *ReplenishmentUseCase) ReverseSchedule(ctx context.Context, companyID string, in dto.ReverseScheduleRequest) (*dto.ReverseScheduleResponse, error) {
	lt := uc.leadTimes(0)
	if in.ProductID != "" {
		p, err := uc.productRepo.GetByID(ctx, in.ProductID)
		if err != nil {
			return nil, uc.projections.unavailable("producto", err)
		}
		if p == nil || p.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
		lt.ProductionWeeks = p.ProductionLeadWeeks
	}
	if in.ProductionWeeks != nil {
		lt.ProductionWeeks = *in.ProductionWeeks
	}
	if in.LoadingBufferWeeks != nil {
		lt.LoadingBufferWeeks = *in.LoadingBufferWeeks
	}
	if in.TransitWeeks != nil {
		lt.TransitWeeks = *in.TransitWeeks
	}
	if in.InboundBufferWeeks != nil {
		lt.InboundBufferWeeks = *in.InboundBufferWeeks
	}
	current := uc.projections.CurrentWeek()
	s, err := planning.ReverseSchedule(in.TargetWeek, lt, current)
	if err != nil {
		return nil, err
	}
	return &dto.ReverseScheduleResponse{CurrentWeek: current, LeadTimes: lt, Schedule: s}, nil
}

// RoundUpToMultiple redondea qty hacia arriba al múltiplo indicado; con multiple <= 0 redondea
// a unidades enteras. Nunca devuelve negativo.
func RoundUpToMultiple(qty, multiple decimal.Decimal) decimal.Decimal {
	if !qty.IsPositive() {
		return decimal.Zero
	}
	if !multiple.IsPositive() {
		return qty.Ceil()
	}
	return qty.Div(multiple).Ceil().Mul(multiple)
}
