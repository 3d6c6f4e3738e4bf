package planning_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/scm-api/internal/application/apptest"
	"github.com/jhoicas/scm-api/internal/application/dto"
	appplanning "github.com/jhoicas/scm-api/internal/application/planning"
	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/planning"
	"github.com/jhoicas/scm-api/pkg/config"
)

const companyID = "c1"

// hoy cae en 2026-W43.
var hoy = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

var planningCfg = config.PlanningConfig{
	HorizonWeeks:        12,
	MaxHorizonWeeks:     52,
	DemandLookbackWeeks: 8,
	LoadingBufferWeeks:  1,
	TransitWeeks:        5,
	InboundBufferWeeks:  2,
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func wk(year, week int) planning.Week { return planning.Week{Year: year, Week: week} }

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

type metricsSpy struct {
	projections int
	stockouts   int
	suggestions map[planning.Urgency]int
}

func (m *metricsSpy) ProjectionComputed(planning.StockStatus) { m.projections++ }
func (m *metricsSpy) StockoutWeeks(n int)                     { m.stockouts += n }
func (m *metricsSpy) SuggestionEmitted(u planning.Urgency) {
	if m.suggestions == nil {
		m.suggestions = map[planning.Urgency]int{}
	}
	m.suggestions[u]++
}

type fixture struct {
	store   *apptest.Store
	metrics *metricsSpy
	uc      *appplanning.ProjectionUseCase
}

func newFixture() fixture {
	s := apptest.NewStore()
	spy := &metricsSpy{}
	uc := appplanning.NewProjectionUseCase(apptest.Products{S: s}, apptest.Stock{S: s}, s.Demand(), apptest.Supply{S: s}, planningCfg, spy, nil)
	uc.SetClock(func() time.Time { return hoy })
	return fixture{store: s, metrics: spy, uc: uc}
}

func (f fixture) product(id, sku string, safetyWeeks string, productionWeeks int, multiple string) {
	f.store.AddProduct(&entity.Product{
		ID: id, CompanyID: companyID, SKU: sku, Name: sku, Active: true,
		UnitCost: dec("1000"), SafetyStockWeeks: dec(safetyWeeks),
		ProductionLeadWeeks: productionWeeks, OrderMultiple: dec(multiple),
	})
}

func (f fixture) forecast(t *testing.T, productID string, from planning.Week, weeks int, qty string) {
	t.Helper()
	for i := 0; i < weeks; i++ {
		w := from.AddWeeks(i)
		require.NoError(t, f.store.Demand().UpsertForecast(context.Background(), &entity.WeeklyDemand{
			CompanyID: companyID, ProductID: productID, Year: w.Year, Week: w.Week, ForecastQty: dec(qty),
		}))
	}
}

func closings(rows []planning.ProjectionRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ClosingBalance.String())
	}
	return out
}

func TestProyeccion_EjemploBaseSumaBodegas(t *testing.T) {
	f := newFixture()
	f.product("p-a", "CAM-AZUL", "1", 4, "0")
	f.store.SetStock("p-a", "wh-1", dec("60"))
	f.store.SetStock("p-a", "wh-2", dec("40"))
	f.forecast(t, "p-a", wk(2026, 43), 4, "30")

	out, err := f.uc.Project(context.Background(), companyID, "p-a", dto.ProjectionQuery{Horizon: 4})
	require.NoError(t, err)

	assert.Equal(t, wk(2026, 43), out.StartWeek, "sin semana inicial se usa la actual")
	assert.True(t, dec("100").Equal(out.OnHand))
	assert.True(t, dec("30").Equal(out.AvgWeeklyDemand), "sin historia se promedia el pronóstico")
	assert.True(t, dec("30").Equal(out.SafetyThreshold))
	assert.Equal(t, []string{"70", "40", "10", "-20"}, closings(out.Rows))
	assert.Equal(t, planning.StatusRisk, out.Rows[2].Status)
	assert.Equal(t, planning.StatusStockout, out.Rows[3].Status)
	require.NotNil(t, out.FirstStockout)
	assert.Equal(t, wk(2026, 46), *out.FirstStockout)
	require.NotNil(t, out.FirstRiskWeek)
	assert.Equal(t, wk(2026, 45), *out.FirstRiskWeek)
	assert.Equal(t, planning.StatusStockout, out.WorstStatus)

	assert.Equal(t, 1, f.metrics.projections)
	assert.Equal(t, 1, f.metrics.stockouts)
}

func TestProyeccion_PromedioConVentasReales(t *testing.T) {
	f := newFixture()
	f.product("p-a", "CAM-AZUL", "2", 4, "0")
	f.store.SetStock("p-a", "wh-1", dec("500"))
	ctx := context.Background()
	for i := 1; i <= 8; i++ {
		require.NoError(t, f.store.Demand().RecordActual(ctx, companyID, "p-a", wk(2026, 43).AddWeeks(-i), dec("20")))
	}
	// semana fuera de la ventana de historia: no cuenta
	require.NoError(t, f.store.Demand().RecordActual(ctx, companyID, "p-a", wk(2026, 34), dec("900")))
	f.forecast(t, "p-a", wk(2026, 43), 12, "50")

	out, err := f.uc.Project(ctx, companyID, "p-a", dto.ProjectionQuery{})
	require.NoError(t, err)
	assert.True(t, dec("20").Equal(out.AvgWeeklyDemand))
	assert.True(t, dec("40").Equal(out.SafetyThreshold))
	assert.Len(t, out.Rows, 12, "horizonte por defecto")
}

func TestProyeccion_PromedioSoloSemanasConDato(t *testing.T) {
	f := newFixture()
	f.product("p-n", "CAM-NUEVA", "1", 4, "0")
	f.store.SetStock("p-n", "wh-1", dec("500"))
	ctx := context.Background()
	// SKU lanzado hace cuatro semanas: no hay filas para W35..W38
	for i := 1; i <= 4; i++ {
		require.NoError(t, f.store.Demand().RecordActual(ctx, companyID, "p-n", wk(2026, 43).AddWeeks(-i), dec("20")))
	}

	out, err := f.uc.Project(ctx, companyID, "p-n", dto.ProjectionQuery{Horizon: 4})
	require.NoError(t, err)
	assert.True(t, dec("20").Equal(out.AvgWeeklyDemand), "las semanas sin fila no cuentan como demanda cero")
	assert.True(t, dec("20").Equal(out.SafetyThreshold))
}

func TestProyeccion_OfertaPorEtapa(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.product("p-a", "CAM-AZUL", "0", 4, "0")
	f.store.SetStock("p-a", "wh-1", dec("0"))

	// OC: llega en su fecha esperada (W46) y otra ya vencida (W36).
	require.NoError(t, apptest.PurchaseOrders{S: f.store}.Create(ctx, &entity.PurchaseOrder{
		ID: "po-1", CompanyID: companyID, PONumber: "OC-1", Status: entity.POStatusInProduction,
		Items: []entity.POItem{
			{ID: "i-1", ProductID: "p-a", Quantity: dec("80"), DeliveredQty: dec("30"), ExpectedDate: date(2026, 11, 9)},
			{ID: "i-2", ProductID: "p-a", Quantity: dec("15"), ExpectedDate: date(2026, 9, 1)},
		},
	}))
	// OC en borrador: no es oferta
	require.NoError(t, apptest.PurchaseOrders{S: f.store}.Create(ctx, &entity.PurchaseOrder{
		ID: "po-2", CompanyID: companyID, PONumber: "OC-2", Status: entity.POStatusDraft,
		Items: []entity.POItem{{ID: "i-3", ProductID: "p-a", Quantity: dec("999"), ExpectedDate: date(2026, 11, 9)}},
	}))
	// Entrega de fábrica en W43: + carga 1 + tránsito 5 + recepción 2 = W51.
	require.NoError(t, apptest.Deliveries{S: f.store}.Create(ctx, &entity.ProductionDelivery{
		ID: "d-1", CompanyID: companyID, ProductID: "p-a", Quantity: dec("40"), PlannedDate: date(2026, 10, 20),
	}))
	// Embarque en tránsito con llegada estimada en W43: + recepción 2 = W45.
	eta := date(2026, 10, 21)
	require.NoError(t, apptest.Shipments{S: f.store}.Create(ctx, &entity.Shipment{
		ID: "s-1", CompanyID: companyID, TrackingNumber: "MSKU1", Status: entity.ShipmentStatusInTransit,
		PlannedArrival: date(2026, 10, 12), EstimatedArrival: &eta,
		Lines: []entity.ShipmentLine{{ProductID: "p-a", Quantity: dec("25")}},
	}))

	out, err := f.uc.Project(ctx, companyID, "p-a", dto.ProjectionQuery{Horizon: 12})
	require.NoError(t, err)

	incoming := map[planning.Week]string{}
	for _, r := range out.Rows {
		if !r.Incoming.IsZero() {
			incoming[r.Week] = r.Incoming.String()
		}
	}
	assert.Equal(t, map[planning.Week]string{
		wk(2026, 45): "25",
		wk(2026, 46): "50",
		wk(2026, 51): "40",
	}, incoming)

	require.Len(t, out.PastDueSupply, 1)
	assert.Equal(t, "OC-1", out.PastDueSupply[0].Reference)
	assert.True(t, dec("15").Equal(out.PastDueSupplyQty))
	assert.Equal(t, []string{"0", "0", "25", "75"}, closings(out.Rows[:4]))
}

func TestProyeccion_Errores(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.product("p-a", "CAM-AZUL", "1", 4, "0")
	f.store.AddProduct(&entity.Product{ID: "p-otra", CompanyID: "c2", SKU: "X", Active: true})

	_, err := f.uc.Project(ctx, companyID, "p-otra", dto.ProjectionQuery{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = f.uc.Project(ctx, companyID, "p-a", dto.ProjectionQuery{Horizon: 53})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = f.uc.Project(ctx, companyID, "p-a", dto.ProjectionQuery{StartWeek: "2026-W60"})
	assert.Error(t, err)

	f.store.FailStockReads = errors.New(`relation "stock" does not exist`)
	_, err = f.uc.Project(ctx, companyID, "p-a", dto.ProjectionQuery{})
	assert.True(t, errors.Is(err, domain.ErrDataNotAvailable))
	assert.NotContains(t, err.Error(), "relation", "el detalle técnico no llega al usuario")
}

func TestProyeccion_SemanaInicialExplicitaCruzaAnio(t *testing.T) {
	f := newFixture()
	f.product("p-a", "CAM-AZUL", "0", 4, "0")
	f.store.SetStock("p-a", "wh-1", dec("10"))
	f.forecast(t, "p-a", wk(2026, 52), 3, "4")

	out, err := f.uc.Project(context.Background(), companyID, "p-a", dto.ProjectionQuery{StartWeek: "2026-W52", Horizon: 3})
	require.NoError(t, err)
	require.Len(t, out.Rows, 3)
	assert.Equal(t, []planning.Week{wk(2026, 52), wk(2026, 53), wk(2027, 1)},
		[]planning.Week{out.Rows[0].Week, out.Rows[1].Week, out.Rows[2].Week})
	for i := 1; i < len(out.Rows); i++ {
		assert.True(t, out.Rows[i].OpeningBalance.Equal(out.Rows[i-1].ClosingBalance))
	}
}

func TestProyectarTodos_OrdenPorQuiebre(t *testing.T) {
	f := newFixture()
	f.product("p-a", "A-SIN-QUIEBRE", "0", 4, "0")
	f.product("p-b", "B-QUIEBRE-TARDE", "0", 4, "0")
	f.product("p-c", "C-QUIEBRE-YA", "0", 4, "0")
	f.store.SetStock("p-a", "wh-1", dec("1000"))
	f.store.SetStock("p-b", "wh-1", dec("25"))
	f.forecast(t, "p-a", wk(2026, 43), 12, "10")
	f.forecast(t, "p-b", wk(2026, 43), 12, "10")
	f.forecast(t, "p-c", wk(2026, 43), 12, "10")

	out, err := f.uc.ProjectAll(context.Background(), companyID, dto.ProjectionQuery{})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"C-QUIEBRE-YA", "B-QUIEBRE-TARDE", "A-SIN-QUIEBRE"}, []string{out[0].SKU, out[1].SKU, out[2].SKU})
	assert.Nil(t, out[2].FirstStockout)
}
