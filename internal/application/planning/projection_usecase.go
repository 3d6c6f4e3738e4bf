package planning

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/scm-api/internal/application/dto"
	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/planning"
	"github.com/jhoicas/scm-api/internal/domain/repository"
	"github.com/jhoicas/scm-api/pkg/config"
	"github.com/jhoicas/scm-api/pkg/logger"
)

// SKUProjection resultado interno de proyectar un SKU; lo comparten proyección, reposición y tablero.
type SKUProjection struct {
	Product    *entity.Product
	OnHand     decimal.Decimal
	AvgDemand  decimal.Decimal
	Projection *planning.Projection
}

// ProjectionUseCase arma las entradas del calculador (existencia, demanda, oferta en tubería)
// a partir de los repositorios y proyecta uno o todos los SKUs de la empresa.
type ProjectionUseCase struct {
	productRepo repository.ProductRepository
	onHand      repository.OnHandReader
	demandRepo  repository.DemandRepository
	supply      repository.SupplyReader
	cfg         config.PlanningConfig
	metrics     Metrics
	log         *logger.Logger
	now         func() time.Time
}

// NewProjectionUseCase construye el caso de uso. metrics y log pueden ser nil.
func NewProjectionUseCase(
	productRepo repository.ProductRepository,
	onHand repository.OnHandReader,
	demandRepo repository.DemandRepository,
	supply repository.SupplyReader,
	cfg config.PlanningConfig,
	metrics Metrics,
	log *logger.Logger,
) *ProjectionUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ProjectionUseCase{
		productRepo: productRepo,
		onHand:      onHand,
		demandRepo:  demandRepo,
		supply:      supply,
		cfg:         cfg,
		metrics:     metrics,
		log:         log.Component("planning"),
		now:         time.Now,
	}
}

// SetClock fija el reloj usado para la semana actual.
func (uc *ProjectionUseCase) SetClock(now func() time.Time) { uc.now = now }

// CurrentWeek semana ISO actual según el reloj del caso de uso.
func (uc *ProjectionUseCase) CurrentWeek() planning.Week { return planning.WeekOf(uc.now()) }

// Project proyecta un SKU.
func (uc *ProjectionUseCase) Project(ctx context.Context, companyID, productID string, q dto.ProjectionQuery) (*dto.ProjectionResponse, error) {
	start, horizon, err := uc.window(q)
	if err != nil {
		return nil, err
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, uc.unavailable("producto", err)
	}
	if product == nil || product.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	list, err := uc.projectProducts(ctx, companyID, []*entity.Product{product}, start, horizon)
	if err != nil {
		return nil, err
	}
	return toProjectionResponse(list[0]), nil
}

// ProjectAll proyecta todos los SKUs activos, ordenados por el quiebre más cercano
// (los que no quiebran al final, por SKU).
func (uc *ProjectionUseCase) ProjectAll(ctx context.Context, companyID string, q dto.ProjectionQuery) ([]dto.ProjectionResponse, error) {
	list, err := uc.Snapshot(ctx, companyID, q)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProjectionResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toProjectionResponse(p))
	}
	return out, nil
}

// Snapshot proyecta todos los SKUs activos y devuelve los resultados sin mapear.
func (uc *ProjectionUseCase) Snapshot(ctx context.Context, companyID string, q dto.ProjectionQuery) ([]*SKUProjection, error) {
	start, horizon, err := uc.window(q)
	if err != nil {
		return nil, err
	}
	products, err := uc.productRepo.ListActive(ctx, companyID)
	if err != nil {
		return nil, uc.unavailable("productos", err)
	}
	if len(products) == 0 {
		return []*SKUProjection{}, nil
	}
	list, err := uc.projectProducts(ctx, companyID, products, start, horizon)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].Projection.FirstStockout(), list[j].Projection.FirstStockout()
		switch {
		case a != nil && b != nil && a.Week != b.Week:
			return a.Week.Before(b.Week)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return list[i].Product.SKU < list[j].Product.SKU
	})
	return list, nil
}

// window resuelve semana inicial y horizonte con los valores configurados por defecto.
func (uc *ProjectionUseCase) window(q dto.ProjectionQuery) (planning.Week, int, error) {
	start := uc.CurrentWeek()
	if s := strings.TrimSpace(q.StartWeek); s != "" {
		w, err := planning.ParseWeek(s)
		if err != nil {
			return planning.Week{}, 0, err
		}
		start = w
	}
	horizon := q.Horizon
	if horizon == 0 {
		horizon = uc.cfg.HorizonWeeks
	}
	if horizon < 1 || horizon > uc.cfg.MaxHorizonWeeks {
		return planning.Week{}, 0, fmt.Errorf("%w: horizonte debe estar entre 1 y %d semanas", domain.ErrInvalidInput, uc.cfg.MaxHorizonWeeks)
	}
	return start, horizon, nil
}

// projectProducts lee las fuentes una sola vez para todo el lote y proyecta cada SKU por separado.
func (uc *ProjectionUseCase) projectProducts(ctx context.Context, companyID string, products []*entity.Product, start planning.Week, horizon int) ([]*SKUProjection, error) {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	end := start.AddWeeks(horizon - 1)
	from := start.AddWeeks(-uc.cfg.DemandLookbackWeeks)

	onHand, err := uc.onHand.OnHandByProduct(ctx, companyID, ids)
	if err != nil {
		return nil, uc.unavailable("existencias", err)
	}
	demandRows, err := uc.demandRepo.ListRange(ctx, companyID, ids, from, end)
	if err != nil {
		return nil, uc.unavailable("demanda", err)
	}
	supply, err := uc.loadSupply(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}

	demandByProduct := make(map[string][]*entity.WeeklyDemand, len(products))
	for _, d := range demandRows {
		demandByProduct[d.ProductID] = append(demandByProduct[d.ProductID], d)
	}

	out := make([]*SKUProjection, 0, len(products))
	for _, p := range products {
		history, window := splitDemand(demandByProduct[p.ID], start)
		avg := averageDemand(history, window)
		threshold := planning.SafetyThreshold(p.SafetyStockWeeks, avg)

		proj, err := planning.Project(planning.ProjectionInput{
			SKU:             p.SKU,
			Start:           start,
			Horizon:         horizon,
			OpeningBalance:  onHand[p.ID],
			Demand:          window,
			Supply:          supply[p.ID],
			SafetyThreshold: threshold,
		})
		if err != nil {
			return nil, err
		}

		stockouts := 0
		for _, r := range proj.Rows {
			if r.Status == planning.StatusStockout {
				stockouts++
			}
		}
		uc.metrics.ProjectionComputed(proj.WorstStatus())
		uc.metrics.StockoutWeeks(stockouts)

		ev := uc.log.Debug().Str("sku", p.SKU).Int("weeks", horizon).Str("threshold", threshold.String())
		if so := proj.FirstStockout(); so != nil {
			ev = ev.Str("stockout_week", so.Week.String())
		}
		ev.Msg("proyección calculada")

		out = append(out, &SKUProjection{Product: p, OnHand: onHand[p.ID], AvgDemand: avg, Projection: proj})
	}
	return out, nil
}

// loadSupply convierte la tubería abierta en eventos de oferta por producto.
// Cada etapa llega a bodega con un desplazamiento distinto respecto a su fecha:
// la línea de OC ya trae la fecha de disponibilidad, la entrega de fábrica aún debe cargar,
// viajar y recibirse, y el embarque solo espera la recepción.
func (uc *ProjectionUseCase) loadSupply(ctx context.Context, companyID string, ids []string) (map[string][]planning.SupplyEvent, error) {
	items, err := uc.supply.ListOpenPOItems(ctx, companyID, ids)
	if err != nil {
		return nil, uc.unavailable("órdenes de compra", err)
	}
	deliveries, err := uc.supply.ListOpenDeliveries(ctx, companyID, ids)
	if err != nil {
		return nil, uc.unavailable("entregas de producción", err)
	}
	inbound, err := uc.supply.ListInboundLines(ctx, companyID, ids)
	if err != nil {
		return nil, uc.unavailable("embarques", err)
	}

	afterDelivery := uc.cfg.LoadingBufferWeeks + uc.cfg.TransitWeeks + uc.cfg.InboundBufferWeeks
	out := make(map[string][]planning.SupplyEvent)
	for _, it := range items {
		out[it.ProductID] = append(out[it.ProductID], planning.SupplyEvent{
			Source:      planning.SupplyPurchaseOrder,
			Reference:   it.PONumber,
			Quantity:    it.Remaining,
			PlannedDate: it.ExpectedDate,
		})
	}
	for _, d := range deliveries {
		ref := d.PONumber
		if ref == "" {
			ref = d.DeliveryID
		}
		out[d.ProductID] = append(out[d.ProductID], planning.SupplyEvent{
			Source:      planning.SupplyProduction,
			Reference:   ref,
			Quantity:    d.Unshipped,
			PlannedDate: d.PlannedDate,
			ActualDate:  d.ActualDate,
			OffsetWeeks: afterDelivery,
		})
	}
	for _, l := range inbound {
		out[l.ProductID] = append(out[l.ProductID], planning.SupplyEvent{
			Source:      planning.SupplyShipment,
			Reference:   l.TrackingNumber,
			Quantity:    l.Quantity,
			PlannedDate: l.PlannedArrival,
			ActualDate:  l.EstimatedArrival,
			OffsetWeeks: uc.cfg.InboundBufferWeeks,
		})
	}
	return out, nil
}

func (uc *ProjectionUseCase) unavailable(source string, err error) error {
	uc.log.Error().Err(err).Str("source", source).Msg("no se pudo leer la fuente de planeación")
	return fmt.Errorf("%w: %s", domain.ErrDataNotAvailable, source)
}

// splitDemand separa las semanas previas al inicio (historia) de las del horizonte.
func splitDemand(rows []*entity.WeeklyDemand, start planning.Week) (history, window []planning.WeekDemand) {
	for _, r := range rows {
		wd := planning.WeekDemand{Week: planning.Week{Year: r.Year, Week: r.Week}, Forecast: r.ForecastQty, Actual: r.ActualQty}
		if wd.Week.Before(start) {
			history = append(history, wd)
		} else {
			window = append(window, wd)
		}
	}
	return history, window
}

// averageDemand promedio de la demanda efectiva de las semanas cerradas que tienen fila;
// una semana sin fila es "sin dato", no demanda cero. Sin historia, promedio del
// pronóstico del horizonte.
func averageDemand(history, window []planning.WeekDemand) decimal.Decimal {
	values := make([]decimal.Decimal, 0, len(history))
	for _, d := range history {
		qty, _ := d.Effective()
		values = append(values, qty)
	}
	if len(values) == 0 {
		for _, d := range window {
			values = append(values, d.Forecast)
		}
	}
	return planning.AverageWeeklyDemand(values).Round(2)
}

func toProjectionResponse(p *SKUProjection) *dto.ProjectionResponse {
	proj := p.Projection
	out := &dto.ProjectionResponse{
		ProductID:        p.Product.ID,
		SKU:              p.Product.SKU,
		Name:             p.Product.Name,
		StartWeek:        proj.Start,
		OnHand:           p.OnHand,
		AvgWeeklyDemand:  p.AvgDemand,
		SafetyThreshold:  proj.SafetyThreshold,
		Rows:             proj.Rows,
		WorstStatus:      proj.WorstStatus(),
		PastDueSupplyQty: proj.PastDueQty,
	}
	if r := proj.FirstAtRisk(); r != nil {
		w := r.Week
		out.FirstRiskWeek = &w
	}
	if r := proj.FirstStockout(); r != nil {
		w := r.Week
		out.FirstStockout = &w
	}
	for _, ev := range proj.PastDueSupply {
		out.PastDueSupply = append(out.PastDueSupply, dto.SupplyEventResponse{
			Source:     ev.Source,
			Reference:  ev.Reference,
			Quantity:   ev.Quantity,
			TargetWeek: ev.TargetWeek(),
		})
	}
	return out
}
